package metrics

import (
	"strconv"
	"time"
)

// Nil-safe recording helpers.

func (m *Metrics) DocumentUpserted() {
	if m != nil {
		m.DocumentsUpserted.Inc()
	}
}

func (m *Metrics) DocumentFailed() {
	if m != nil {
		m.DocumentsFailed.Inc()
	}
}

func (m *Metrics) Refreshed() {
	if m != nil {
		m.Refreshes.Inc()
	}
}

func (m *Metrics) ReaderOpened() {
	if m != nil {
		m.OpenReaders.Inc()
	}
}

func (m *Metrics) ReaderClosed() {
	if m != nil {
		m.OpenReaders.Dec()
	}
}

func (m *Metrics) ClaimDropped(reason string) {
	if m != nil {
		m.ClaimsDropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) SearchServed(started time.Time, fuzziness int) {
	if m != nil {
		m.SearchDuration.Observe(time.Since(started).Seconds())
		m.SearchFuzziness.WithLabelValues(strconv.Itoa(fuzziness)).Inc()
	}
}

func (m *Metrics) PatternEvaluated(strategy string) {
	if m != nil {
		m.TriplePatterns.WithLabelValues(strategy).Inc()
	}
}

func (m *Metrics) TripleEmitted() {
	if m != nil {
		m.TriplesEmitted.Inc()
	}
}

func (m *Metrics) EntityRejected() {
	if m != nil {
		m.EntitiesRejected.Inc()
	}
}

func (m *Metrics) EdgeRecorded() {
	if m != nil {
		m.HierarchyEdges.Inc()
	}
}
