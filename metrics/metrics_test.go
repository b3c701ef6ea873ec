package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New()
	require.NoError(t, m.Register(reg))

	// second registration of the same collectors must fail
	assert.Error(t, m.Register(reg))
}

func TestRecording(t *testing.T) {
	m := New()

	m.DocumentUpserted()
	m.DocumentUpserted()
	m.DocumentFailed()
	m.ReaderOpened()
	m.ReaderOpened()
	m.ReaderClosed()
	m.ClaimDropped("unknown_property")
	m.SearchServed(time.Now(), 2)
	m.PatternEvaluated("subject")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsUpserted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpenReaders))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClaimsDropped.WithLabelValues("unknown_property")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchFuzziness.WithLabelValues("2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TriplePatterns.WithLabelValues("subject")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.DocumentUpserted()
		m.ReaderOpened()
		m.ReaderClosed()
		m.SearchServed(time.Now(), 0)
		m.TripleEmitted()
		m.EdgeRecorded()
	})
}
