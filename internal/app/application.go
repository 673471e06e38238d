package app

import (
	"log/slog"
	"time"

	"boards.onebusaway.org/internal/appconf"
	"boards.onebusaway.org/internal/gtfs"
	"boards.onebusaway.org/internal/metrics"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config      appconf.Config
	GtfsConfig  gtfs.Config
	Logger      *slog.Logger
	GtfsManager *gtfs.Manager
	Metrics     *metrics.Collector

	// Clock returns the current time; nil means time.Now.
	Clock func() time.Time
}

// Now returns the current time in the configured timezone.
func (app *Application) Now() time.Time {
	now := time.Now
	if app.Clock != nil {
		now = app.Clock
	}
	return now().In(app.Config.Location())
}
