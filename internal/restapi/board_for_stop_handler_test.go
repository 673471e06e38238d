package restapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boards.onebusaway.org/internal/models"
)

type boardResponse struct {
	Code int `json:"code"`
	Data struct {
		Entry      models.Board           `json:"entry"`
		References models.ReferencesModel `json:"references"`
	} `json:"data"`
}

func getBoard(t *testing.T, api *RestAPI, query string) boardResponse {
	t.Helper()
	w := serve(t, api, "/api/where/board-for-stop/8000105.json?key=test"+query)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response boardResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func boardTrips(b models.Board) []string {
	ids := make([]string, 0, len(b.BoardEntries))
	for _, e := range b.BoardEntries {
		ids = append(ids, e.TripID)
	}
	return ids
}

func TestBoardForStopHandler(t *testing.T) {
	api := createTestApi(t, nil)

	t.Run("departures from now", func(t *testing.T) {
		response := getBoard(t, api, "")
		assert.Equal(t, 200, response.Code)

		b := response.Data.Entry
		assert.Equal(t, "8000105", b.StopID)
		assert.Equal(t, "departure", b.Type)
		assert.Equal(t, testNow.UnixMilli(), b.ReferenceTime)
		assert.Equal(t, []string{"T2", "T1", "T4"}, boardTrips(b))

		ice := b.BoardEntries[1]
		assert.Equal(t, "ICE 1", ice.ShortName)
		assert.Equal(t, "München Hbf", ice.Headsign)
		assert.Equal(t, int64(1704702480000), ice.ArrivalTime)
		assert.Equal(t, int64(1704702600000), ice.DepartureTime)
		assert.Equal(t, "08:28", ice.ReadableArrival)
		assert.Equal(t, "08:30", ice.ReadableDeparture)

		refs := response.Data.References
		require.Len(t, refs.Stops, 1)
		assert.Equal(t, "Frankfurt(Main)Hbf", refs.Stops[0].Name)
		assert.Len(t, refs.Trips, 3)
	})

	t.Run("limit", func(t *testing.T) {
		assert.Equal(t, []string{"T2", "T1"}, boardTrips(getBoard(t, api, "&limit=2").Data.Entry))
	})

	t.Run("arrivals at an explicit local time", func(t *testing.T) {
		b := getBoard(t, api, "&type=arrival&time=2024-01-08T08:29").Data.Entry
		assert.Equal(t, "arrival", b.Type)
		assert.Equal(t, []string{"T4"}, boardTrips(b))
	})

	t.Run("after midnight includes the previous day's late trip", func(t *testing.T) {
		b := getBoard(t, api, "&time=2024-01-08T00:30").Data.Entry
		require.NotEmpty(t, b.BoardEntries)
		assert.Equal(t, "T5", b.BoardEntries[0].TripID)
		assert.Equal(t, "01:12", b.BoardEntries[0].ReadableDeparture)
	})

	t.Run("empty board encodes as an empty list", func(t *testing.T) {
		w := serve(t, api, "/api/where/board-for-stop/8000105.json?key=test&time=2024-01-08T23:00")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"boardEntries":[]`)
	})
}

func TestBoardForStopHandlerErrors(t *testing.T) {
	api := createTestApi(t, nil)

	tests := []struct {
		name       string
		endpoint   string
		status     int
		fieldError string
	}{
		{"unknown stop", "/api/where/board-for-stop/9999999.json?key=test", http.StatusNotFound, ""},
		{"invalid id", "/api/where/board-for-stop/bad%20id.json?key=test", http.StatusBadRequest, "id"},
		{"invalid type", "/api/where/board-for-stop/8000105.json?key=test&type=platform", http.StatusBadRequest, "type"},
		{"invalid time", "/api/where/board-for-stop/8000105.json?key=test&time=yesterday", http.StatusBadRequest, "time"},
		{"negative limit", "/api/where/board-for-stop/8000105.json?key=test&limit=-1", http.StatusBadRequest, "limit"},
		{"limit too large", "/api/where/board-for-stop/8000105.json?key=test&limit=501", http.StatusBadRequest, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, api, tt.endpoint)
			assert.Equal(t, tt.status, w.Code)

			if tt.fieldError != "" {
				var body struct {
					FieldErrors map[string][]string `json:"fieldErrors"`
				}
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Contains(t, body.FieldErrors, tt.fieldError)
			}
		})
	}
}
