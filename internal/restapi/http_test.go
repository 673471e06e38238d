package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boards.onebusaway.org/internal/app"
	"boards.onebusaway.org/internal/appconf"
	"boards.onebusaway.org/internal/gtfs"
	"boards.onebusaway.org/internal/logging"
	"boards.onebusaway.org/internal/metrics"
	"boards.onebusaway.org/internal/models"
)

// Monday 2024-01-08 08:00 UTC
var testNow = time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)

// createTestApi creates a new RestAPI over the board.zip fixture with a fixed clock.
func createTestApi(t *testing.T, logOutput *bytes.Buffer) *RestAPI {
	t.Helper()

	gtfsConfig := gtfs.Config{
		GtfsURL:      filepath.Join("..", "..", "testdata", "board.zip"),
		GTFSDataPath: ":memory:",
		Env:          appconf.Test,
	}
	gtfsManager, err := gtfs.InitGTFSManager(context.Background(), gtfsConfig, nil)
	require.NoError(t, err)
	t.Cleanup(gtfsManager.Shutdown)

	var logger *slog.Logger
	if logOutput != nil {
		logger = logging.NewStructuredLogger(logOutput, slog.LevelInfo)
	}

	application := &app.Application{
		Config: appconf.Config{
			Env:               appconf.Test,
			ApiKeys:           []string{"test"},
			RateLimit:         100,
			DefaultBoardLimit: 20,
			Timezone:          time.UTC,
		},
		GtfsConfig:  gtfsConfig,
		Logger:      logger,
		GtfsManager: gtfsManager,
		Metrics:     metrics.NewCollector(),
		Clock:       func() time.Time { return testNow },
	}

	api := NewRestAPI(application)
	t.Cleanup(api.Close)
	return api
}

func serve(t *testing.T, api *RestAPI, endpoint string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, endpoint, nil)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) models.ResponseModel {
	t.Helper()
	var response models.ResponseModel
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func TestInvalidAPIKey(t *testing.T) {
	api := createTestApi(t, nil)

	for _, endpoint := range []string{
		"/api/where/current-time.json",
		"/api/where/current-time.json?key=wrong",
		"/api/where/stations.json?key=",
		"/api/where/board-for-stop/8000105.json",
	} {
		t.Run(endpoint, func(t *testing.T) {
			w := serve(t, api, endpoint)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			response := decodeResponse(t, w)
			assert.Equal(t, http.StatusUnauthorized, response.Code)
			assert.Equal(t, "permission denied", response.Text)
			assert.Equal(t, 1, response.Version)
		})
	}
}

func TestCurrentTimeHandler(t *testing.T) {
	api := createTestApi(t, nil)

	w := serve(t, api, "/api/where/current-time.json?key=test")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	response := decodeResponse(t, w)
	assert.Equal(t, 200, response.Code)
	assert.Equal(t, 2, response.Version)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(testNow.UnixMilli()), entry["time"])
	assert.Equal(t, "2024-01-08T08:00:00Z", entry["readableTime"])
	assert.Equal(t, "UTC", entry["timezone"])
}

func TestUnknownRoute(t *testing.T) {
	api := createTestApi(t, nil)

	w := serve(t, api, "/api/where/nothing-here.json?key=test")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "resource not found", decodeResponse(t, w).Text)
}

func TestMetricsEndpoint(t *testing.T) {
	api := createTestApi(t, nil)

	serve(t, api, "/api/where/board-for-stop/8000105.json?key=test")
	w := serve(t, api, "/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `board_requests_total{type="departure"} 1`)
}

func TestDebugEndpoint(t *testing.T) {
	api := createTestApi(t, nil)

	w := serve(t, api, "/debug/?dataType=stations")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Berlin Hbf")
}
