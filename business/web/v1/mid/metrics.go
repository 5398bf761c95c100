package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/permledger/permledger/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "node_requests_total",
		Help: "Total requests served by the node, by path.",
	}, []string{"path"})

	requestsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "node_request_errors_total",
		Help: "Total requests that ended in an error.",
	})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "node_request_duration_seconds",
		Help:    "Request latency distribution.",
		Buckets: prometheus.DefBuckets,
	})
)

// Metrics updates the prometheus counters for each request.
func Metrics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			start := time.Now()

			err := handler(ctx, w, r)

			requestsServed.WithLabelValues(r.URL.Path).Inc()
			requestDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				requestsFailed.Inc()
			}

			return err
		}

		return h
	}

	return m
}
