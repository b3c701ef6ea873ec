// Package metrics holds the Prometheus collectors shared by the index,
// search, triple and loader packages. A nil *Metrics is valid and records
// nothing, so components can run without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "entigraph"

// Metrics contains all collectors.
type Metrics struct {
	// Index
	DocumentsUpserted prometheus.Counter
	DocumentsFailed   prometheus.Counter
	Refreshes         prometheus.Counter
	OpenReaders       prometheus.Gauge

	// Codec
	ClaimsDropped *prometheus.CounterVec

	// Search
	SearchDuration  prometheus.Histogram
	SearchFuzziness *prometheus.CounterVec

	// Triples
	TriplePatterns *prometheus.CounterVec
	TriplesEmitted prometheus.Counter

	// Ingestion
	EntitiesRejected prometheus.Counter
	HierarchyEdges   prometheus.Counter
}

// New creates the collectors. Call Register to expose them.
func New() *Metrics {
	return &Metrics{
		DocumentsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "documents_upserted_total",
			Help:      "Documents written to the index",
		}),
		DocumentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "documents_failed_total",
			Help:      "Documents dropped because their write failed",
		}),
		Refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "refreshes_total",
			Help:      "Commits that published a new snapshot",
		}),
		OpenReaders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "open_readers",
			Help:      "Snapshot readers currently held",
		}),
		ClaimsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "claims_dropped_total",
			Help:      "Claims or fields dropped as schema violations",
		}, []string{"reason"}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search latency including the fuzziness ladder",
			Buckets:   prometheus.DefBuckets,
		}),
		SearchFuzziness: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "fuzziness_total",
			Help:      "Searches by the fuzziness level that produced the page",
		}, []string{"level"}),
		TriplePatterns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "triples",
			Name:      "patterns_total",
			Help:      "Triple pattern evaluations by strategy",
		}, []string{"strategy"}),
		TriplesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "triples",
			Name:      "emitted_total",
			Help:      "Triples handed to the query evaluator",
		}),
		EntitiesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "entities_rejected_total",
			Help:      "Entities skipped because a type ancestor is blocklisted",
		}),
		HierarchyEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "edges_recorded_total",
			Help:      "Child to parent sets written to the hierarchy store",
		}),
	}
}

// Collectors returns every collector for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DocumentsUpserted, m.DocumentsFailed, m.Refreshes, m.OpenReaders,
		m.ClaimsDropped,
		m.SearchDuration, m.SearchFuzziness,
		m.TriplePatterns, m.TriplesEmitted,
		m.EntitiesRejected, m.HierarchyEdges,
	}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
