package schedule

import (
	"fmt"
	"time"

	"boards.onebusaway.org/internal/calendar"
)

// TripID identifies a trip. Like service IDs it is assigned at import time.
type TripID uint32

// StopTime is one scheduled visit of a trip to a stop. Offsets are relative
// to midnight of the service day and may exceed 24 hours.
type StopTime struct {
	ArrivalOffset   time.Duration
	DepartureOffset time.Duration
	TripID          TripID
	ServiceID       calendar.ServiceID
	ShortName       string
	Headsign        string
}

// RawStopTime is a stop-time row before its offsets are parsed.
type RawStopTime struct {
	ArrivalTime   string
	DepartureTime string
	TripID        TripID
	ServiceID     calendar.ServiceID
	ShortName     string
	Headsign      string
}

// ParseStopTime parses both offsets of a raw row.
func ParseStopTime(raw RawStopTime) (StopTime, error) {
	arrival, err := ParseOffset(raw.ArrivalTime)
	if err != nil {
		return StopTime{}, fmt.Errorf("trip %d arrival: %w", raw.TripID, err)
	}
	departure, err := ParseOffset(raw.DepartureTime)
	if err != nil {
		return StopTime{}, fmt.Errorf("trip %d departure: %w", raw.TripID, err)
	}

	return StopTime{
		ArrivalOffset:   arrival,
		DepartureOffset: departure,
		TripID:          raw.TripID,
		ServiceID:       raw.ServiceID,
		ShortName:       raw.ShortName,
		Headsign:        raw.Headsign,
	}, nil
}

// ParseStopTimes parses every row, stopping at the first malformed one.
func ParseStopTimes(rows []RawStopTime) ([]StopTime, error) {
	stopTimes := make([]StopTime, 0, len(rows))
	for _, row := range rows {
		st, err := ParseStopTime(row)
		if err != nil {
			return nil, err
		}
		stopTimes = append(stopTimes, st)
	}
	return stopTimes, nil
}
