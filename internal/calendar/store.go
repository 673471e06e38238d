package calendar

import (
	"cmp"
	"slices"
	"time"
)

// DateLayout is the fixed 8-digit GTFS date encoding.
const DateLayout = "20060102"

// Row is one calendar row as handed over by the storage layer, with its
// joined exception rows in insertion order.
type Row struct {
	ServiceID  ServiceID
	Weekdays   Weekdays
	StartDate  string
	EndDate    string
	Exceptions []ExceptionRow
}

// ExceptionRow is one raw calendar_dates record.
type ExceptionRow struct {
	Date string
	Type int
}

// Store maps service IDs to services. It is read-only after Load and may be
// shared between goroutines without locking.
type Store struct {
	services map[ServiceID]*Service
}

// Load builds a Store from raw rows. Any malformed date aborts the load so a
// partial calendar is never returned. Exception type codes are not validated
// here; unrecognised codes surface from IsAvailable.
func Load(rows []Row) (*Store, error) {
	store := &Store{services: make(map[ServiceID]*Service, len(rows))}

	for _, row := range rows {
		service, exists := store.services[row.ServiceID]
		if !exists {
			start, err := parseField("start_date", row.StartDate)
			if err != nil {
				return nil, err
			}
			end, err := parseField("end_date", row.EndDate)
			if err != nil {
				return nil, err
			}
			service = &Service{
				ID:        row.ServiceID,
				StartDate: start,
				EndDate:   end,
				Weekdays:  row.Weekdays,
			}
			store.services[row.ServiceID] = service
		}

		for _, er := range row.Exceptions {
			date, err := parseField("exception date", er.Date)
			if err != nil {
				return nil, err
			}
			service.Exceptions = append(service.Exceptions, ServiceException{
				Date: date,
				Type: ExceptionType(er.Type),
			})
		}
	}

	return store, nil
}

// IsAvailable reports whether the service runs on date.
func (s *Store) IsAvailable(id ServiceID, date time.Time) (bool, error) {
	service, ok := s.services[id]
	if !ok {
		return false, &UnknownServiceError{ServiceID: id}
	}
	return service.IsAvailable(date)
}

// IsAvailableSkippingInvalid behaves like IsAvailable but ignores exception
// records whose type code is unrecognised, keeping the rest of the service.
func (s *Store) IsAvailableSkippingInvalid(id ServiceID, date time.Time) (bool, error) {
	service, ok := s.services[id]
	if !ok {
		return false, &UnknownServiceError{ServiceID: id}
	}
	return service.isAvailableSkippingInvalid(date), nil
}

// Service returns the service with the given ID.
func (s *Store) Service(id ServiceID) (*Service, bool) {
	service, ok := s.services[id]
	return service, ok
}

// Len returns the number of services.
func (s *Store) Len() int {
	return len(s.services)
}

// ExceptionCount returns the total number of exception records across all services.
func (s *Store) ExceptionCount() int {
	count := 0
	for _, service := range s.services {
		count += len(service.Exceptions)
	}
	return count
}

// Services returns all services ordered by ID.
func (s *Store) Services() []*Service {
	services := make([]*Service, 0, len(s.services))
	for _, service := range s.services {
		services = append(services, service)
	}
	slices.SortFunc(services, func(a, b *Service) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return services
}

// ParseDate decodes a YYYYMMDD date to midnight UTC.
func ParseDate(value string) (time.Time, error) {
	return parseField("date", value)
}

func parseField(field, value string) (time.Time, error) {
	if len(value) != len(DateLayout) {
		return time.Time{}, &DateFormatError{Field: field, Value: value}
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return time.Time{}, &DateFormatError{Field: field, Value: value}
		}
	}
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &DateFormatError{Field: field, Value: value}
	}
	return date, nil
}
