package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/onceform-go/core/metrics"
	"github.com/codewandler/onceform-go/core/once"
)

// onceMetrics implements once.Metrics using Prometheus.
type onceMetrics struct {
	jobsStarted     prometheus.Counter
	jobsJoined      prometheus.Counter
	jobsSettled     *prometheus.CounterVec
	jobDuration     prometheus.Histogram
	inFlight        prometheus.Gauge
	tokenMissing    prometheus.Counter
	effectsReplayed prometheus.Counter
}

// NewOnceMetrics creates a new Prometheus implementation of once.Metrics.
func NewOnceMetrics(reg prometheus.Registerer) once.Metrics {
	m := &onceMetrics{
		jobsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onceform_jobs_started_total",
			Help: "Total number of form jobs executed by an owner request",
		}),

		jobsJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onceform_jobs_joined_total",
			Help: "Total number of duplicate requests that joined an in-flight job",
		}),

		jobsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onceform_jobs_settled_total",
			Help: "Total number of settled form jobs by outcome",
		}, []string{"outcome"}),

		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "onceform_job_duration_seconds",
			Help:    "Form handler execution time in seconds",
			Buckets: defaultBuckets,
		}),

		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "onceform_jobs_in_flight",
			Help: "Number of form jobs currently in flight",
		}),

		tokenMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onceform_token_missing_total",
			Help: "Total number of form submissions without a token",
		}),

		effectsReplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onceform_effects_replayed_total",
			Help: "Total number of side effects replayed onto duplicate responses",
		}),
	}

	reg.MustRegister(
		m.jobsStarted,
		m.jobsJoined,
		m.jobsSettled,
		m.jobDuration,
		m.inFlight,
		m.tokenMissing,
		m.effectsReplayed,
	)

	return m
}

func (m *onceMetrics) JobStarted() { m.jobsStarted.Inc() }
func (m *onceMetrics) JobJoined()  { m.jobsJoined.Inc() }

func (m *onceMetrics) JobSettled(kind string) {
	m.jobsSettled.WithLabelValues(kind).Inc()
}

func (m *onceMetrics) JobDuration() metrics.Timer {
	return newTimer(m.jobDuration)
}

func (m *onceMetrics) InFlight(n int) { m.inFlight.Set(float64(n)) }

func (m *onceMetrics) TokenMissing() { m.tokenMissing.Inc() }

func (m *onceMetrics) EffectsReplayed(n int) { m.effectsReplayed.Add(float64(n)) }

var _ once.Metrics = (*onceMetrics)(nil)
