package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// Browser-facing surface of the JSON API. The storefront authenticates with
// a Bearer header, so Authorization must be preflightable.
var (
	corsMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsHeaders      = "Accept, Authorization, Content-Type"
	corsPreflightAge = strconv.Itoa(300)
)

// CORS returns a middleware adding Cross-Origin Resource Sharing headers.
// With no arguments any origin is allowed, which suits local development;
// production passes the storefront origins explicitly.
func CORS(origins ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := allowOrigin(origins, r.Header.Get("Origin")); origin != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", corsPreflightAge)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allowOrigin(allowed []string, origin string) string {
	if len(allowed) == 0 {
		return "*"
	}
	for _, o := range allowed {
		if o == "*" || o == origin {
			return o
		}
	}
	return ""
}
