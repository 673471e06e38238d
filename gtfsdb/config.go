package gtfsdb

import (
	"log/slog"

	"boards.onebusaway.org/internal/appconf"
)

// Config holds configuration options for the Client
type Config struct {
	DBPath  string // Path to SQLite database file, ":memory:" for tests
	Env     appconf.Environment
	Verbose bool          // Log import statistics
	Logger  *slog.Logger // Defaults to slog.Default()
}

func NewConfig(dbPath string, env appconf.Environment, verbose bool) Config {
	return Config{
		DBPath:  dbPath,
		Env:     env,
		Verbose: verbose,
	}
}
