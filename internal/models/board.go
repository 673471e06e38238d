package models

import "time"

const readableClock = "15:04"

// BoardEntry is one arrival or departure. Times are epoch milliseconds with
// a local HH:MM rendering alongside.
type BoardEntry struct {
	TripID            string `json:"tripId"`
	ShortName         string `json:"shortName"`
	Headsign          string `json:"headsign"`
	ArrivalTime       int64  `json:"arrivalTime"`
	DepartureTime     int64  `json:"departureTime"`
	ReadableArrival   string `json:"readableArrival"`
	ReadableDeparture string `json:"readableDeparture"`
}

// Board is the entry of a board-for-stop response.
type Board struct {
	StopID        string       `json:"stopId"`
	Type          string       `json:"type"`
	ReferenceTime int64        `json:"referenceTime"`
	BoardEntries  []BoardEntry `json:"boardEntries"`
}

func NewBoardEntry(tripID, shortName, headsign string, arrival, departure time.Time) BoardEntry {
	return BoardEntry{
		TripID:            tripID,
		ShortName:         shortName,
		Headsign:          headsign,
		ArrivalTime:       arrival.UnixMilli(),
		DepartureTime:     departure.UnixMilli(),
		ReadableArrival:   arrival.Format(readableClock),
		ReadableDeparture: departure.Format(readableClock),
	}
}

// NewBoard never returns a nil entry list, so an empty board encodes as [].
func NewBoard(stopID, boardType string, reference time.Time, entries []BoardEntry) Board {
	if entries == nil {
		entries = []BoardEntry{}
	}
	return Board{
		StopID:        stopID,
		Type:          boardType,
		ReferenceTime: reference.UnixMilli(),
		BoardEntries:  entries,
	}
}
