// Package metrics exposes pipeline and search counters in the Prometheus
// format, either over HTTP or as a node_exporter textfile.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sdnscreen/internal/extract"
)

// Metrics is nil-safe: every method on a nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	EntitiesExtracted   *prometheus.CounterVec
	PartiesSkipped      prometheus.Counter
	AliasesDropped      prometheus.Counter
	LocationsUnresolved prometheus.Counter

	SourceBytes    prometheus.Gauge
	EntitiesLoaded *prometheus.CounterVec
	LastSuccess    *prometheus.GaugeVec
	SearchLatency  prometheus.Histogram
	SearchOutcome  *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		EntitiesExtracted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sdnscreen_extract_entities_total",
			Help: "Entity records emitted by extraction, by entity type",
		}, []string{"type"}),
		PartiesSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "sdnscreen_extract_parties_skipped_total",
			Help: "DistinctParty elements skipped for a missing FixedRef or Profile",
		}),
		AliasesDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "sdnscreen_extract_aliases_dropped_total",
			Help: "Aliases dropped because their name was empty",
		}),
		LocationsUnresolved: f.NewCounter(prometheus.CounterOpts{
			Name: "sdnscreen_extract_locations_unresolved_total",
			Help: "Location references with no matching Location element",
		}),

		SourceBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "sdnscreen_source_bytes",
			Help: "Size of the last downloaded source document",
		}),
		EntitiesLoaded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sdnscreen_load_entities_total",
			Help: "Entity records written to a store, by driver",
		}, []string{"driver"}),
		LastSuccess: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sdnscreen_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run of a stage",
		}, []string{"stage"}),
		SearchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sdnscreen_search_duration_seconds",
			Help:    "Duration of a single name search",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SearchOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sdnscreen_search_requests_total",
			Help: "Searches by outcome (match, no_match)",
		}, []string{"outcome"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sdnscreen_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"stage"}),
	}
}

// ObserveExtract adds one extraction run's counters.
func (m *Metrics) ObserveExtract(r *extract.Result) {
	if m == nil || r == nil {
		return
	}
	for t, n := range r.ByType {
		m.EntitiesExtracted.WithLabelValues(string(t)).Add(float64(n))
	}
	m.PartiesSkipped.Add(float64(r.PartiesSkipped))
	m.AliasesDropped.Add(float64(r.AliasesDropped))
	m.LocationsUnresolved.Add(float64(r.LocationsUnresolved))
}

func (m *Metrics) ObserveLoad(driver string, n int64) {
	if m != nil {
		m.EntitiesLoaded.WithLabelValues(driver).Add(float64(n))
	}
}

func (m *Metrics) ObserveSource(bytes int64) {
	if m != nil {
		m.SourceBytes.Set(float64(bytes))
	}
}

func (m *Metrics) ObserveSearch(d time.Duration, matches int) {
	if m == nil {
		return
	}
	m.SearchLatency.Observe(d.Seconds())
	outcome := "no_match"
	if matches > 0 {
		outcome = "match"
	}
	m.SearchOutcome.WithLabelValues(outcome).Inc()
}

// StageDone records a finished stage and, when it succeeded, its timestamp.
func (m *Metrics) StageDone(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err == nil {
		m.LastSuccess.WithLabelValues(stage).SetToCurrentTime()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values for the node_exporter textfile
// collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
