package gtfsdb

// Stop is a row of the stops table.
type Stop struct {
	ID            string
	Code          string
	Name          string
	Lat           float64
	Lon           float64
	LocationType  int
	ParentStation string
}

type Route struct {
	ID        string
	ShortName string
	LongName  string
	Type      int
}

// Service is a calendar.txt row. ID is the integer surrogate assigned at
// import, GtfsID the service_id from the feed.
type Service struct {
	ID        int64
	GtfsID    string
	Monday    bool
	Tuesday   bool
	Wednesday bool
	Thursday  bool
	Friday    bool
	Saturday  bool
	Sunday    bool
	StartDate string // YYYYMMDD
	EndDate   string // YYYYMMDD
}

// ServiceException is a calendar_dates.txt row. ExceptionType is stored as
// read and not validated.
type ServiceException struct {
	ServiceID     int64
	Date          string // YYYYMMDD
	ExceptionType int
}

type Trip struct {
	ID        int64
	GtfsID    string
	RouteID   string
	ServiceID int64
	Headsign  string
	ShortName string
}

// StopTime is a stop_times.txt row with times kept as H:MM:SS text.
type StopTime struct {
	TripID        int64
	StopID        string
	StopSequence  int
	ArrivalTime   string
	DepartureTime string
	StopHeadsign  string
}

// CalendarRow is one service with its exceptions in insertion order.
type CalendarRow struct {
	Service    Service
	Exceptions []ServiceException
}

// StopTimeRow is a stop-time at a stop joined with the display fields of
// its trip and route.
type StopTimeRow struct {
	TripID        int64
	TripGtfsID    string
	ServiceID     int64
	ArrivalTime   string
	DepartureTime string
	ShortName     string
	Headsign      string
}

// Station is one result of a station search.
type Station struct {
	ID   string
	Name string
}
