package gtfsdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarRows_FromFeed(t *testing.T) {
	client := newImportedClient(t)

	rows, err := client.CalendarRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byGtfsID := make(map[string]CalendarRow)
	for _, row := range rows {
		byGtfsID[row.Service.GtfsID] = row
	}

	weekday := byGtfsID["WK"]
	assert.True(t, weekday.Service.Monday)
	assert.True(t, weekday.Service.Friday)
	assert.False(t, weekday.Service.Saturday)
	assert.Equal(t, "20240101", weekday.Service.StartDate)
	assert.Equal(t, "20241231", weekday.Service.EndDate)
	require.Len(t, weekday.Exceptions, 1)
	assert.Equal(t, ServiceException{ServiceID: weekday.Service.ID, Date: "20240110", ExceptionType: 2}, weekday.Exceptions[0])

	weekend := byGtfsID["WE"]
	assert.True(t, weekend.Service.Sunday)
	require.Len(t, weekend.Exceptions, 1)
	assert.Equal(t, 1, weekend.Exceptions[0].ExceptionType)
}

func TestCalendarRows_KeepsInsertionOrderAndRawCodes(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.InsertServices(ctx, []Service{
		{ID: 1, GtfsID: "A", Monday: true, StartDate: "20240101", EndDate: "20240131"},
		{ID: 2, GtfsID: "B", Sunday: true, StartDate: "20240101", EndDate: "20240131"},
	}))
	require.NoError(t, client.InsertServiceExceptions(ctx, []ServiceException{
		{ServiceID: 1, Date: "20240108", ExceptionType: 2},
		{ServiceID: 1, Date: "20240108", ExceptionType: 1},
		{ServiceID: 1, Date: "20240109", ExceptionType: 9},
	}))

	rows, err := client.CalendarRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), rows[0].Service.ID)
	assert.Equal(t, []ServiceException{
		{ServiceID: 1, Date: "20240108", ExceptionType: 2},
		{ServiceID: 1, Date: "20240108", ExceptionType: 1},
		{ServiceID: 1, Date: "20240109", ExceptionType: 9},
	}, rows[0].Exceptions)

	assert.Equal(t, int64(2), rows[1].Service.ID)
	assert.True(t, rows[1].Service.Sunday)
	assert.Empty(t, rows[1].Exceptions)
}

func TestStopTimeRows(t *testing.T) {
	client := newImportedClient(t)
	ctx := context.Background()

	t.Run("station includes its platforms", func(t *testing.T) {
		rows, err := client.StopTimeRows(ctx, "8000105")
		require.NoError(t, err)
		assert.Len(t, rows, 6)

		byTrip := make(map[string]StopTimeRow)
		for _, row := range rows {
			byTrip[row.TripGtfsID] = row
		}

		assert.Equal(t, "8:28:00", byTrip["T1"].ArrivalTime)
		assert.Equal(t, "8:30:00", byTrip["T1"].DepartureTime)
		assert.Equal(t, "ICE 1", byTrip["T1"].ShortName)
		assert.Equal(t, "München Hbf", byTrip["T1"].Headsign)

		assert.Equal(t, "25:12:00", byTrip["T5"].DepartureTime)

		assert.Equal(t, "RB 58", byTrip["T4"].ShortName, "falls back to the trip short name")
		assert.Equal(t, "Köln", byTrip["T4"].Headsign, "stop headsign wins over trip headsign")
	})

	t.Run("platform alone", func(t *testing.T) {
		rows, err := client.StopTimeRows(ctx, "8000105_1")
		require.NoError(t, err)
		assert.Len(t, rows, 6)
	})

	t.Run("unknown stop", func(t *testing.T) {
		rows, err := client.StopTimeRows(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestSearchStations(t *testing.T) {
	client := newImportedClient(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		query    string
		expected []Station
	}{
		{
			name:  "empty query lists main stations",
			query: "",
			expected: []Station{
				{ID: "8011160", Name: "Berlin Hbf"},
				{ID: "8000105", Name: "Frankfurt(Main)Hbf"},
				{ID: "8002549", Name: "Hamburg Hauptbahnhof"},
				{ID: "8000261", Name: "München Hbf"},
			},
		},
		{
			name:  "substring is case insensitive",
			query: "MESSE",
			expected: []Station{
				{ID: "8000207", Name: "Köln Messe/Deutz"},
			},
		},
		{
			name:  "same name collapses to smallest id",
			query: "frankfurt",
			expected: []Station{
				{ID: "8000105", Name: "Frankfurt(Main)Hbf"},
			},
		},
		{
			name:     "wildcards are literal",
			query:    "%",
			expected: []Station{},
		},
		{
			name:     "quotes are not interpreted",
			query:    "' OR 1=1 --",
			expected: []Station{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stations, err := client.SearchStations(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stations)
		})
	}
}

func TestGetStop(t *testing.T) {
	client := newImportedClient(t)
	ctx := context.Background()

	stop, err := client.GetStop(ctx, "8000105_1")
	require.NoError(t, err)
	assert.Equal(t, "Frankfurt(Main)Hbf", stop.Name)
	assert.Equal(t, "8000105", stop.ParentStation)
	assert.InDelta(t, 50.107145, stop.Lat, 1e-6)

	_, err = client.GetStop(ctx, "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
