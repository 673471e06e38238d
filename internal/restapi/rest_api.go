package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"boards.onebusaway.org/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	if app.Logger == nil {
		app.Logger = slog.Default()
	}
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second),
	}
}

// Handler returns the router wrapped in the server-wide middleware: security
// headers, request logging and compression, outermost first.
func (api *RestAPI) Handler() http.Handler {
	var handler http.Handler = api.router()
	handler = CompressionMiddleware(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	return api.WithSecurityHeaders(handler)
}

// Close releases the rate limiter's background goroutine.
func (api *RestAPI) Close() {
	api.rateLimiter.Stop()
}
