package calendar

import (
	"fmt"
	"time"
)

// DateFormatError is returned when a calendar or exception date is not YYYYMMDD.
type DateFormatError struct {
	Field string
	Value string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: expected YYYYMMDD", e.Field, e.Value)
}

// UnknownServiceError means a stop-time references a service that was never loaded.
// It indicates malformed input data, not an empty calendar.
type UnknownServiceError struct {
	ServiceID ServiceID
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service %d", e.ServiceID)
}

// InvalidExceptionTypeError means an exception record carries a code other than 1 or 2.
type InvalidExceptionTypeError struct {
	ServiceID ServiceID
	Date      time.Time
	Code      int
}

func (e *InvalidExceptionTypeError) Error() string {
	return fmt.Sprintf("service %d has invalid exception type %d on %s",
		e.ServiceID, e.Code, e.Date.Format(DateLayout))
}
