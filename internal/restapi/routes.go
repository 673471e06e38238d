package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"boards.onebusaway.org/internal/webui"
)

// validateAPIKey rejects requests without a configured key, then applies the
// per-key rate limit.
func (api *RestAPI) validateAPIKey(next http.HandlerFunc) http.Handler {
	limited := api.rateLimiter.Handler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

func (api *RestAPI) router() *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(api.sendNotFound)

	router.Handler(http.MethodGet, "/api/where/current-time.json", api.validateAPIKey(api.currentTimeHandler))
	router.Handler(http.MethodGet, "/api/where/stations.json", api.validateAPIKey(api.stationsHandler))
	router.Handler(http.MethodGet, "/api/where/board-for-stop/:id", api.validateAPIKey(api.boardForStopHandler))

	if api.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", api.Metrics.Handler())
	}

	debug := &webui.WebUI{GtfsManager: api.GtfsManager, Logger: api.Logger}
	router.Handler(http.MethodGet, "/debug/", debug)

	return router
}
