package appconf

import "time"

// Config holds the settings of the HTTP server.
type Config struct {
	Port              int
	Env               Environment
	ApiKeys           []string
	RateLimit         int // requests per second per API key
	DefaultBoardLimit int
	Timezone          *time.Location
}

// Location returns the configured timezone, UTC when unset.
func (c Config) Location() *time.Location {
	if c.Timezone == nil {
		return time.UTC
	}
	return c.Timezone
}
