package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RateLookupsTotal *prometheus.CounterVec
	RefreshTotal     *prometheus.CounterVec
	RefreshDuration  prometheus.Histogram
	RatesInTable     prometheus.Gauge
	ConversionsTotal *prometheus.CounterVec
}

// NewMetrics registers all collectors with reg. Tests pass a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status_class"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),

		RateLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_lookups_total",
				Help: "Rate table lookups per tier and result",
			},
			[]string{"tier", "result"},
		),

		RefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_refresh_total",
				Help: "Rate table refreshes from the external provider",
			},
			[]string{"result"},
		),

		RefreshDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rate_refresh_duration_seconds",
				Help:    "Duration of rate table refreshes",
				Buckets: prometheus.DefBuckets,
			},
		),

		RatesInTable: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rate_table_currencies",
				Help: "Number of currencies in the last refreshed rate table",
			},
		),

		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversions_total",
				Help: "Currency conversions by result",
			},
			[]string{"result"},
		),
	}
}
