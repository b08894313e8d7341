package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RoundsStarted    prometheus.Counter
	GuessesScored    *prometheus.CounterVec
	PointsAwarded    prometheus.Histogram
	LookupSeconds    *prometheus.HistogramVec
	LookupErrors     prometheus.Counter
	RateLimitedTotal prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RoundsStarted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "wayfarer_rounds_started_total",
			Help: "Total number of rounds that entered the viewing phase.",
		}),
		GuessesScored: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "wayfarer_guesses_scored_total",
			Help: "Total number of scored guesses.",
		}, []string{"outcome"}),
		PointsAwarded: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "wayfarer_points_awarded",
			Help:    "Points awarded per scored guess.",
			Buckets: prometheus.LinearBuckets(0, 500, 11),
		}),
		LookupSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wayfarer_lookup_duration_seconds",
			Help:    "Duration of requests to the external lookup provider.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		LookupErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "wayfarer_lookup_errors_total",
			Help: "Total number of errors received from the external lookup provider.",
		}),
		RateLimitedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "wayfarer_rate_limited_total",
			Help: "Total number of lookups denied by the rate limiter.",
		}),
	}
}
