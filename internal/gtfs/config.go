package gtfs

import (
	"strings"
	"time"

	"boards.onebusaway.org/internal/appconf"
	"boards.onebusaway.org/internal/calendar"
)

const defaultUpdateInterval = 24 * time.Hour

type Config struct {
	GtfsURL        string // URL or local path of the static feed
	GTFSDataPath   string // SQLite database path
	Env            appconf.Environment
	Verbose        bool
	UpdateInterval time.Duration // Refresh period for URL sources, 24h when zero

	// OnCalendarLoaded, when set, is called with every new calendar snapshot.
	OnCalendarLoaded func(*calendar.Store)
}

func (config Config) isLocalFile() bool {
	return !strings.HasPrefix(config.GtfsURL, "http://") && !strings.HasPrefix(config.GtfsURL, "https://")
}

func (config Config) updateInterval() time.Duration {
	if config.UpdateInterval <= 0 {
		return defaultUpdateInterval
	}
	return config.UpdateInterval
}
