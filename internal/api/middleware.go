package api

import (
	"fmt"
	"fxconvert/internal/metrics"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// instrument records request counters and latency per route pattern and logs each request.
func instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			duration := time.Since(start)

			m.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(duration.Seconds())
			m.HTTPRequestsTotal.WithLabelValues(route, r.Method, fmt.Sprintf("%dxx", status/100)).Inc()

			logrus.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"route":      route,
				"status":     status,
				"duration":   duration.String(),
			}).Debug("HTTP request")
		})
	}
}
