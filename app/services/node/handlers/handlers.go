// Package handlers manages the different versions of the API.
package handlers

import (
	"expvar"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1 "github.com/permledger/permledger/app/services/node/handlers/v1"
)

// PublicMux constructs a http.Handler with all public application routes
// defined.
func PublicMux(cfg v1.Config) http.Handler {
	return v1.PublicRoutes(cfg)
}

// DebugMux registers all the debug routes from the standard library into a
// new mux bypassing the use of the DefaultServerMux, plus the prometheus
// metrics endpoint.
func DebugMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
