package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "matchday_predictor"

// QuotaReader exposes a provider's daily budget usage.
type QuotaReader interface {
	Name() string
	QuotaSnapshot() (used, limit int, resetsAt time.Time)
}

// Metrics collects cycle and provider metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	cyclesTotal   *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	fixturesTotal *prometheus.CounterVec
	providerCalls *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		cyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cycles_total",
				Help:      "Prediction cycles by outcome",
			},
			[]string{"outcome"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "cycle_duration_seconds",
				Help:      "Wall time of one prediction cycle",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
			},
		),
		fixturesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "fixtures_total",
				Help:      "Fixtures processed by result",
			},
			[]string{"result"},
		),
		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "provider_calls_total",
				Help:      "Provider API calls by outcome",
			},
			[]string{"provider", "outcome"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cyclesTotal,
		m.cycleDuration,
		m.fixturesTotal,
		m.providerCalls,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveCycle(outcome string, duration time.Duration) {
	m.cyclesTotal.WithLabelValues(outcome).Inc()
	m.cycleDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveFixtures(analysed, failed, strong int) {
	m.fixturesTotal.WithLabelValues("analysed").Add(float64(analysed))
	m.fixturesTotal.WithLabelValues("failed").Add(float64(failed))
	m.fixturesTotal.WithLabelValues("strong").Add(float64(strong))
}

func (m *Metrics) ObserveProviderCall(provider, outcome string) {
	m.providerCalls.WithLabelValues(provider, outcome).Inc()
}

// TrackQuotas exports used and limit gauges for providers with a daily budget.
func (m *Metrics) TrackQuotas(readers ...QuotaReader) {
	for _, reader := range readers {
		if reader == nil {
			continue
		}
		if _, limit, _ := reader.QuotaSnapshot(); limit <= 0 {
			continue
		}
		r := reader
		labels := prometheus.Labels{"provider": r.Name()}
		m.registry.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace:   metricsNamespace,
				Name:        "provider_quota_used",
				Help:        "Provider calls spent in the current daily window",
				ConstLabels: labels,
			}, func() float64 {
				used, _, _ := r.QuotaSnapshot()
				return float64(used)
			}),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace:   metricsNamespace,
				Name:        "provider_quota_limit",
				Help:        "Provider daily call budget",
				ConstLabels: labels,
			}, func() float64 {
				_, limit, _ := r.QuotaSnapshot()
				return float64(limit)
			}),
		)
	}
}
