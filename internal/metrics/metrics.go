// Package metrics exposes Prometheus collectors for the ledger.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ledger holds the collectors updated by the event processor. A nil *Ledger
// is valid and records nothing.
type Ledger struct {
	EventsApplied *prometheus.CounterVec
	EventsDropped *prometheus.CounterVec
	EventsSkipped *prometheus.CounterVec
	ApplyDuration *prometheus.HistogramVec
	ChangesetSize prometheus.Histogram
	LastBlock     prometheus.Gauge
	TokenLookups  *prometheus.CounterVec
}

// New registers the ledger collectors with reg. Pass prometheus.NewRegistry()
// in tests to avoid clashing with the default registry.
func New(reg prometheus.Registerer) *Ledger {
	f := promauto.With(reg)
	return &Ledger{
		EventsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "events_applied_total",
			Help:      "Events applied to the ledger.",
		}, []string{"kind"}),
		EventsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "events_dropped_total",
			Help:      "Events dropped without a state change.",
		}, []string{"kind", "reason"}),
		EventsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "events_skipped_total",
			Help:      "Events skipped because they were already applied.",
		}, []string{"kind"}),
		ApplyDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "apply_duration_seconds",
			Help:      "Time to load, compute and write one event.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"kind"}),
		ChangesetSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "changeset_writes",
			Help:      "Records written per applied event.",
			Buckets:   prometheus.LinearBuckets(5, 5, 10),
		}),
		LastBlock: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledger",
			Name:      "last_block",
			Help:      "Block number of the last applied event.",
		}),
		TokenLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "token_metadata_lookups_total",
			Help:      "Token metadata resolutions by source.",
		}, []string{"source"}),
	}
}

func (m *Ledger) Applied(kind string, writes int, block uint64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.EventsApplied.WithLabelValues(kind).Inc()
	m.ApplyDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	m.ChangesetSize.Observe(float64(writes))
	m.LastBlock.Set(float64(block))
}

func (m *Ledger) Dropped(kind, reason string) {
	if m == nil {
		return
	}
	m.EventsDropped.WithLabelValues(kind, reason).Inc()
}

func (m *Ledger) Skipped(kind string) {
	if m == nil {
		return
	}
	m.EventsSkipped.WithLabelValues(kind).Inc()
}

// TokenLookup counts a metadata resolution served from source
// ("cache", "native", "rpc").
func (m *Ledger) TokenLookup(source string) {
	if m == nil {
		return
	}
	m.TokenLookups.WithLabelValues(source).Inc()
}
