package mid

import (
	"context"
	"net/http"
	"strings"

	"github.com/permledger/permledger/foundation/web"
)

// The node serves a read-only query surface, so these are the only verbs
// and headers cross-origin clients are ever offered.
const (
	corsMethods = "GET, POST, OPTIONS"
	corsHeaders = "Origin, Accept, Content-Type, Content-Length, Accept-Encoding"
)

// Cors stamps the Cross-Origin Resource Sharing headers onto actual
// responses. Preflight requests are answered by CorsPreflight.
func Cors(origins ...string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if origin := matchOrigin(origins, r.Header.Get("Origin")); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}

// CorsPreflight answers OPTIONS preflight requests for every route with
// the read-only method surface. Wire it as the router's options handler.
func CorsPreflight(origins ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if origin := matchOrigin(origins, r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", corsMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// matchOrigin picks the Allow-Origin value for a request origin. A "*"
// entry admits any origin; otherwise the origin must match a configured
// entry exactly (case-insensitive on the host).
func matchOrigin(origins []string, requestOrigin string) string {
	for _, origin := range origins {
		if origin == "*" {
			return "*"
		}
		if strings.EqualFold(origin, requestOrigin) {
			return requestOrigin
		}
	}

	return ""
}
