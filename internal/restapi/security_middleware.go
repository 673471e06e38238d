package restapi

import (
	"net/http"
	"strings"

	"boards.onebusaway.org/internal/appconf"
)

const (
	apiContentSecurityPolicy   = "default-src 'none'; frame-ancestors 'none';"
	debugContentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none';"
)

// WithSecurityHeaders wraps the given handler with security headers middleware
func (api *RestAPI) WithSecurityHeaders(handler http.Handler) http.Handler {
	return securityHeaders(api.Config.Env)(handler)
}

// securityHeaders hardens every response and answers CORS preflights. HSTS
// is only sent in production, where the server sits behind TLS.
func securityHeaders(env appconf.Environment) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if strings.HasPrefix(r.URL.Path, "/debug/") {
				h.Set("Content-Security-Policy", debugContentSecurityPolicy)
			} else {
				h.Set("Content-Security-Policy", apiContentSecurityPolicy)
			}
			if env == appconf.Production {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			// Boards are public timetable data; any origin may read them.
			if r.Header.Get("Origin") != "" {
				h.Set("Access-Control-Allow-Origin", "*")
				h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
