package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for the registration flow.
type BusinessMetrics struct {
	// CEP lookups
	CEPLookups        *prometheus.CounterVec
	CEPLookupDuration *prometheus.HistogramVec

	// Registrations
	Registrations      *prometheus.CounterVec
	RegistrationWrite  *prometheus.HistogramVec
	ValidationFailures *prometheus.CounterVec
	FormsCleared       prometheus.Counter

	// Sessions
	SignOuts      *prometheus.CounterVec
	SessionsEnded prometheus.Counter

	// Events
	EventsPublished *prometheus.CounterVec
}

// NewBusinessMetrics creates the business metrics and registers them with reg.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "cadastro"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	subsystem := "business"
	factory := promauto.With(reg)

	return &BusinessMetrics{
		CEPLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cep_lookups_total",
				Help:      "Total CEP lookups by outcome",
			},
			[]string{"result"}, // result: success, failure, rejected, ignored, stale
		),
		CEPLookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cep_lookup_duration_seconds",
				Help:      "CEP lookup latency including retries",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10},
			},
			[]string{"result"},
		),
		Registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "registrations_total",
				Help:      "Total registration submits by outcome",
			},
			[]string{"result"},
		),
		RegistrationWrite: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "registration_write_duration_seconds",
				Help:      "Time spent on submits that reached the user store",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validation_failures_total",
				Help:      "Total field validation errors shown to users",
			},
			[]string{"field"},
		),
		FormsCleared: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "forms_cleared_total",
				Help:      "Total confirmed form resets",
			},
		),
		SignOuts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sign_outs_total",
				Help:      "Total sign out attempts by outcome",
			},
			[]string{"result"},
		),
		SessionsEnded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sessions_ended_total",
				Help:      "Total sessions removed by sign out or idle expiry",
			},
		),
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_published_total",
				Help:      "Total registration events handed to the broker",
			},
			[]string{"result"},
		),
	}
}

// RecordLookup records one CEP lookup.
func (m *BusinessMetrics) RecordLookup(result string, d time.Duration) {
	m.CEPLookups.WithLabelValues(result).Inc()
	m.CEPLookupDuration.WithLabelValues(result).Observe(d.Seconds())
}

// RecordRegistration records one submit. Duration is only observed for
// submits that reached the store.
func (m *BusinessMetrics) RecordRegistration(result string, d time.Duration, wrote bool) {
	m.Registrations.WithLabelValues(result).Inc()
	if wrote {
		m.RegistrationWrite.WithLabelValues(result).Observe(d.Seconds())
	}
}

// RecordValidationFailures counts each field currently in error.
func (m *BusinessMetrics) RecordValidationFailures(fields []string) {
	for _, f := range fields {
		m.ValidationFailures.WithLabelValues(f).Inc()
	}
}

// RecordEventPublished counts one registration event publish attempt.
func (m *BusinessMetrics) RecordEventPublished(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.EventsPublished.WithLabelValues(result).Inc()
}

// RegisterSessionGauge exposes the live session count.
func RegisterSessionGauge(namespace string, reg prometheus.Registerer, count func() int) {
	if namespace == "" {
		namespace = "cadastro"
	}
	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Sessions currently held in memory",
		},
		func() float64 { return float64(count()) },
	)
}
