package calendar

import "time"

// ServiceID identifies a Service. The storage layer assigns it when a feed is imported.
type ServiceID uint32

// ExceptionType is the calendar_dates.txt exception_type code.
type ExceptionType int

const (
	// Added means the service runs on the exception date regardless of pattern or range.
	Added ExceptionType = 1
	// Removed means the service does not run on the exception date.
	Removed ExceptionType = 2
)

// Valid reports whether t is one of the two codes defined by GTFS.
func (t ExceptionType) Valid() bool {
	return t == Added || t == Removed
}

func (t ExceptionType) String() string {
	switch t {
	case Added:
		return "ADDED"
	case Removed:
		return "REMOVED"
	default:
		return "INVALID"
	}
}

// Weekdays is the weekly recurrence pattern of a service.
type Weekdays struct {
	Monday    bool
	Tuesday   bool
	Wednesday bool
	Thursday  bool
	Friday    bool
	Saturday  bool
	Sunday    bool
}

// On reports whether the pattern includes the given weekday.
func (w Weekdays) On(day time.Weekday) bool {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	}
	return false
}

// ServiceException overrides the weekly pattern on one date.
type ServiceException struct {
	Date time.Time
	Type ExceptionType
}

// Service is a weekly operating pattern plus its date-specific exceptions.
// StartDate and EndDate are carried from the feed but do not gate availability.
type Service struct {
	ID         ServiceID
	StartDate  time.Time
	EndDate    time.Time
	Weekdays   Weekdays
	Exceptions []ServiceException
}

// IsAvailable reports whether the service runs on date.
//
// The first exception matching date wins: Added forces true, Removed forces
// false, anything else is an InvalidExceptionTypeError. Without a matching
// exception the weekday pattern decides.
func (s *Service) IsAvailable(date time.Time) (bool, error) {
	for _, e := range s.Exceptions {
		if !sameDate(e.Date, date) {
			continue
		}
		switch e.Type {
		case Added:
			return true, nil
		case Removed:
			return false, nil
		default:
			return false, &InvalidExceptionTypeError{ServiceID: s.ID, Date: e.Date, Code: int(e.Type)}
		}
	}
	return s.Weekdays.On(date.Weekday()), nil
}

// isAvailableSkippingInvalid is IsAvailable with unrecognised exception
// records excluded from the scan.
func (s *Service) isAvailableSkippingInvalid(date time.Time) bool {
	for _, e := range s.Exceptions {
		if !e.Type.Valid() || !sameDate(e.Date, date) {
			continue
		}
		return e.Type == Added
	}
	return s.Weekdays.On(date.Weekday())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
