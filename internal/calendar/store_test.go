package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekdaysOnly = Weekdays{Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoad(t *testing.T) {
	t.Run("builds services with exceptions in order", func(t *testing.T) {
		store, err := Load([]Row{
			{
				ServiceID: 1,
				Weekdays:  weekdaysOnly,
				StartDate: "20240101",
				EndDate:   "20241231",
				Exceptions: []ExceptionRow{
					{Date: "20240110", Type: 2},
					{Date: "20240113", Type: 1},
				},
			},
			{ServiceID: 2, StartDate: "20240101", EndDate: "20241231"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, store.Len())
		assert.Equal(t, 2, store.ExceptionCount())

		service, ok := store.Service(1)
		require.True(t, ok)
		assert.Equal(t, date(2024, 1, 1), service.StartDate)
		assert.Equal(t, date(2024, 12, 31), service.EndDate)
		require.Len(t, service.Exceptions, 2)
		assert.Equal(t, Removed, service.Exceptions[0].Type)
		assert.Equal(t, Added, service.Exceptions[1].Type)
	})

	t.Run("merges repeated service rows", func(t *testing.T) {
		store, err := Load([]Row{
			{ServiceID: 7, Weekdays: weekdaysOnly, StartDate: "20240101", EndDate: "20240131",
				Exceptions: []ExceptionRow{{Date: "20240105", Type: 2}}},
			{ServiceID: 7, Weekdays: weekdaysOnly, StartDate: "20240101", EndDate: "20240131",
				Exceptions: []ExceptionRow{{Date: "20240106", Type: 1}}},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, store.Len())
		service, _ := store.Service(7)
		assert.Len(t, service.Exceptions, 2)
	})

	t.Run("keeps unrecognised exception codes for lookup", func(t *testing.T) {
		store, err := Load([]Row{
			{ServiceID: 1, StartDate: "20240101", EndDate: "20240131",
				Exceptions: []ExceptionRow{{Date: "20240105", Type: 3}}},
		})
		require.NoError(t, err)
		service, _ := store.Service(1)
		assert.False(t, service.Exceptions[0].Type.Valid())
	})

	malformed := []struct {
		name  string
		row   Row
		field string
	}{
		{"short start date", Row{ServiceID: 1, StartDate: "2024011", EndDate: "20240131"}, "start_date"},
		{"dashed end date", Row{ServiceID: 1, StartDate: "20240101", EndDate: "2024-01-31"}, "end_date"},
		{"impossible month", Row{ServiceID: 1, StartDate: "20241301", EndDate: "20241231"}, "start_date"},
		{"bad exception date", Row{ServiceID: 1, StartDate: "20240101", EndDate: "20241231",
			Exceptions: []ExceptionRow{{Date: "2024O105", Type: 1}}}, "exception date"},
	}
	for _, tt := range malformed {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			store, err := Load([]Row{tt.row})
			assert.Nil(t, store, "partial calendars must not be returned")

			var dateErr *DateFormatError
			require.True(t, errors.As(err, &dateErr))
			assert.Equal(t, tt.field, dateErr.Field)
		})
	}
}

func TestIsAvailable(t *testing.T) {
	store, err := Load([]Row{
		{
			ServiceID: 1,
			Weekdays:  weekdaysOnly,
			StartDate: "20240101",
			EndDate:   "20240131",
			Exceptions: []ExceptionRow{
				{Date: "20240110", Type: 2}, // Wednesday removed
				{Date: "20240113", Type: 1}, // Saturday added
				{Date: "20240601", Type: 1}, // far outside the range
				{Date: "20240115", Type: 1}, // duplicate pair: first wins
				{Date: "20240115", Type: 2},
			},
		},
		{ServiceID: 2, Weekdays: Weekdays{Saturday: true, Sunday: true}, StartDate: "20240101", EndDate: "20240131"},
		{ServiceID: 3, StartDate: "20240101", EndDate: "20240131"},
	})
	require.NoError(t, err)

	tests := []struct {
		name      string
		serviceID ServiceID
		date      time.Time
		expected  bool
	}{
		{"weekday pattern monday", 1, date(2024, 1, 8), true},
		{"weekday pattern friday", 1, date(2024, 1, 12), true},
		{"weekday pattern sunday", 1, date(2024, 1, 7), false},
		{"removed overrides set bit", 1, date(2024, 1, 10), false},
		{"added overrides unset bit", 1, date(2024, 1, 13), true},
		{"added outside date range", 1, date(2024, 6, 1), true},
		{"duplicate exception uses first", 1, date(2024, 1, 15), true},
		{"range is not enforced", 1, date(2025, 3, 3), true},
		{"weekend service on monday", 2, date(2024, 1, 8), false},
		{"weekend service on sunday", 2, date(2024, 1, 7), true},
		{"empty pattern never runs", 3, date(2024, 1, 8), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			available, err := store.IsAvailable(tt.serviceID, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, available)
		})
	}

	t.Run("ignores time of day and location", func(t *testing.T) {
		berlin := time.FixedZone("CET", 3600)
		available, err := store.IsAvailable(1, time.Date(2024, 1, 10, 23, 30, 0, 0, berlin))
		require.NoError(t, err)
		assert.False(t, available)
	})
}

func TestIsAvailableMatchesPatternWithoutExceptions(t *testing.T) {
	patterns := []Weekdays{
		weekdaysOnly,
		{Saturday: true, Sunday: true},
		{Monday: true, Thursday: true},
		{},
		{Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true, Saturday: true, Sunday: true},
	}

	for i, pattern := range patterns {
		store, err := Load([]Row{{ServiceID: ServiceID(i), Weekdays: pattern, StartDate: "20240101", EndDate: "20241231"}})
		require.NoError(t, err)

		for d := date(2024, 1, 1); d.Before(date(2024, 3, 1)); d = d.AddDate(0, 0, 1) {
			available, err := store.IsAvailable(ServiceID(i), d)
			require.NoError(t, err)
			assert.Equal(t, pattern.On(d.Weekday()), available, "pattern %d on %s", i, d.Format(DateLayout))
		}
	}
}

func TestIsAvailableErrors(t *testing.T) {
	store, err := Load([]Row{
		{
			ServiceID: 4,
			Weekdays:  weekdaysOnly,
			StartDate: "20240101",
			EndDate:   "20240131",
			Exceptions: []ExceptionRow{
				{Date: "20240108", Type: 9},
				{Date: "20240109", Type: 9},
				{Date: "20240109", Type: 2},
			},
		},
	})
	require.NoError(t, err)

	t.Run("unknown service", func(t *testing.T) {
		_, err := store.IsAvailable(99, date(2024, 1, 8))
		var unknown *UnknownServiceError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, ServiceID(99), unknown.ServiceID)

		_, err = store.IsAvailableSkippingInvalid(99, date(2024, 1, 8))
		assert.True(t, errors.As(err, &unknown))
	})

	t.Run("invalid exception type", func(t *testing.T) {
		_, err := store.IsAvailable(4, date(2024, 1, 8))
		var invalid *InvalidExceptionTypeError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, 9, invalid.Code)
		assert.Equal(t, ServiceID(4), invalid.ServiceID)
		assert.Contains(t, err.Error(), "20240108")
	})

	t.Run("skipping invalid falls back to pattern", func(t *testing.T) {
		available, err := store.IsAvailableSkippingInvalid(4, date(2024, 1, 8))
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("skipping invalid uses next valid exception", func(t *testing.T) {
		available, err := store.IsAvailableSkippingInvalid(4, date(2024, 1, 9))
		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("other dates are unaffected", func(t *testing.T) {
		available, err := store.IsAvailable(4, date(2024, 1, 10))
		require.NoError(t, err)
		assert.True(t, available)
	})
}

func TestServicesOrderedByID(t *testing.T) {
	store, err := Load([]Row{
		{ServiceID: 30, StartDate: "20240101", EndDate: "20240131"},
		{ServiceID: 10, StartDate: "20240101", EndDate: "20240131"},
		{ServiceID: 20, StartDate: "20240101", EndDate: "20240131"},
	})
	require.NoError(t, err)

	services := store.Services()
	require.Len(t, services, 3)
	assert.Equal(t, ServiceID(10), services[0].ID)
	assert.Equal(t, ServiceID(20), services[1].ID)
	assert.Equal(t, ServiceID(30), services[2].ID)
}

func TestExceptionTypeString(t *testing.T) {
	assert.Equal(t, "ADDED", Added.String())
	assert.Equal(t, "REMOVED", Removed.String())
	assert.Equal(t, "INVALID", ExceptionType(0).String())
}
