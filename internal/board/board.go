// Package board turns scheduled stop-times into an ordered list of upcoming
// arrivals or departures relative to a reference instant.
package board

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"boards.onebusaway.org/internal/calendar"
	"boards.onebusaway.org/internal/logging"
	"boards.onebusaway.org/internal/schedule"
)

// Type selects which offset of a stop-time a board is built from.
type Type int

const (
	Departure Type = iota
	Arrival
)

func (t Type) String() string {
	if t == Arrival {
		return "arrival"
	}
	return "departure"
}

// ParseType accepts "arrival" or "departure" in any case. An empty string means departure.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "departure", "departures":
		return Departure, nil
	case "arrival", "arrivals":
		return Arrival, nil
	}
	return Departure, fmt.Errorf("unknown board type %q", s)
}

// Availability answers whether a service runs on a date. *calendar.Store implements it.
type Availability interface {
	IsAvailable(id calendar.ServiceID, date time.Time) (bool, error)
	IsAvailableSkippingInvalid(id calendar.ServiceID, date time.Time) (bool, error)
}

// Candidate is a stop-time that survived filtering, with both offsets
// anchored to the reference date.
type Candidate struct {
	StopTime  schedule.StopTime
	Arrival   time.Time
	Departure time.Time
}

func (c Candidate) instant(boardType Type) time.Time {
	if boardType == Arrival {
		return c.Arrival
	}
	return c.Departure
}

// Entry is one line of a board.
type Entry struct {
	TripID    schedule.TripID
	ShortName string
	Headsign  string
	Arrival   time.Time
	Departure time.Time
}

// Builder filters and assembles boards against one calendar snapshot.
// It holds no mutable state and may be shared.
type Builder struct {
	store  Availability
	logger *slog.Logger
}

// NewBuilder returns a Builder over store. A nil logger falls back to slog.Default.
func NewBuilder(store Availability, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		store:  store,
		logger: logger.With(slog.String("component", "board_builder")),
	}
}

// Filter keeps the stop-times whose service runs on the date implied by
// rollover and whose adjusted instant is strictly after reference.
//
// An UnknownServiceError aborts the whole computation. An exception record
// with an unrecognised type code is logged and excluded from that lookup.
func (b *Builder) Filter(stopTimes []schedule.StopTime, boardType Type, reference time.Time) ([]Candidate, error) {
	var candidates []Candidate

	for _, st := range stopTimes {
		offset := st.DepartureOffset
		if boardType == Arrival {
			offset = st.ArrivalOffset
		}

		wallClock, dayShift := schedule.Adjust(offset, reference)
		serviceDate := schedule.ServiceDate(reference, dayShift)

		available, err := b.isAvailable(st, serviceDate)
		if err != nil {
			return nil, err
		}
		if !available || !wallClock.After(reference) {
			continue
		}

		arrival, _ := schedule.Adjust(st.ArrivalOffset, reference)
		departure, _ := schedule.Adjust(st.DepartureOffset, reference)
		candidates = append(candidates, Candidate{
			StopTime:  st,
			Arrival:   arrival,
			Departure: departure,
		})
	}

	return candidates, nil
}

func (b *Builder) isAvailable(st schedule.StopTime, serviceDate time.Time) (bool, error) {
	available, err := b.store.IsAvailable(st.ServiceID, serviceDate)
	if err == nil {
		return available, nil
	}

	var invalid *calendar.InvalidExceptionTypeError
	if !errors.As(err, &invalid) {
		return false, fmt.Errorf("trip %d: %w", st.TripID, err)
	}

	logging.LogWarning(b.logger, "skipping service exception with invalid type", err,
		slog.Uint64("service_id", uint64(invalid.ServiceID)),
		slog.String("date", invalid.Date.Format(calendar.DateLayout)),
		slog.Int("exception_type", invalid.Code))

	available, err = b.store.IsAvailableSkippingInvalid(st.ServiceID, serviceDate)
	if err != nil {
		return false, fmt.Errorf("trip %d: %w", st.TripID, err)
	}
	return available, nil
}

// Assemble orders candidates by the instant relevant to boardType and keeps
// at most limit entries. Ties are broken by trip ID, then by the other
// instant, then by short name. The cap is applied after sorting; a limit of
// zero or less keeps everything.
func Assemble(candidates []Candidate, boardType Type, limit int) []Entry {
	other := Arrival
	if boardType == Arrival {
		other = Departure
	}

	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b Candidate) int {
		if c := a.instant(boardType).Compare(b.instant(boardType)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.StopTime.TripID, b.StopTime.TripID); c != 0 {
			return c
		}
		if c := a.instant(other).Compare(b.instant(other)); c != 0 {
			return c
		}
		return cmp.Compare(a.StopTime.ShortName, b.StopTime.ShortName)
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	entries := make([]Entry, 0, len(sorted))
	for _, c := range sorted {
		entries = append(entries, Entry{
			TripID:    c.StopTime.TripID,
			ShortName: c.StopTime.ShortName,
			Headsign:  c.StopTime.Headsign,
			Arrival:   c.Arrival,
			Departure: c.Departure,
		})
	}
	return entries
}

// Build runs Filter and Assemble.
func (b *Builder) Build(stopTimes []schedule.StopTime, boardType Type, reference time.Time, limit int) ([]Entry, error) {
	candidates, err := b.Filter(stopTimes, boardType, reference)
	if err != nil {
		return nil, err
	}
	return Assemble(candidates, boardType, limit), nil
}
