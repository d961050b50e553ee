package api

import (
	_ "fxconvert/docs"
	"fxconvert/internal/metrics"
	"fxconvert/internal/rate/handler"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swagger "github.com/swaggo/http-swagger"
)

func NewRouter(rateHandler *handler.Handler, m *metrics.Metrics) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Heartbeat("/healthz"))
	// outside Recoverer so panics are counted as 5xx
	router.Use(instrument(m))
	router.Use(middleware.Recoverer)

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)

	router.Route("/api/v1/rates", func(r chi.Router) {
		r.Get("/", rateHandler.GetRates)
		r.Get("/convert", rateHandler.Convert)
		r.Get("/prices", rateHandler.PriceDict)
		r.Post("/refresh", rateHandler.Refresh)
	})
	return router
}

// NewMetricsRouter exposes collectors registered in gatherer on /metrics.
func NewMetricsRouter(gatherer prometheus.Gatherer) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return router
}
