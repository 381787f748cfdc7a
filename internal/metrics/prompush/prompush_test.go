package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maude/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	require.NotNil(t, m.GetCounter())
	return m.GetCounter().GetValue()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	_, err := NewBackend("job", "")
	require.Error(t, err)

	b, err := NewBackend("", "http://gw:9091")
	require.NoError(t, err)
	assert.Equal(t, DefaultJob, b.jobName)
	assert.Equal(t, "http://gw:9091", b.gatewayURL)
}

func TestIncCounterRoutes(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("maude_test", "http://example.com")
	require.NoError(t, err)

	b.IncCounter(metrics.StepTotal, 3, metrics.Labels{"step": "ingest", "status": "success"})
	b.IncCounter(metrics.DocumentsTotal, 5, metrics.Labels{"kind": metrics.KindInserted})
	b.IncCounter(metrics.BatchesTotal, 2, nil)
	b.IncCounter(metrics.BatchesTotal, 0.5, nil)
	b.IncCounter("unknown_metric", 10, metrics.Labels{"foo": "bar"})

	assert.Equal(t, 3.0, readCounterValue(t, b.stepCounter.WithLabelValues("ingest", "success")))
	assert.Equal(t, 5.0, readCounterValue(t, b.docCounter.WithLabelValues("inserted")))
	assert.Equal(t, 2.5, readCounterValue(t, b.batchCounter))
}

func TestIncCounterNilCollectors(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "x", "status": "y"})
	b.IncCounter(metrics.DocumentsTotal, 1, metrics.Labels{"kind": "x"})
	b.IncCounter(metrics.BatchesTotal, 1, nil)
	b.ObserveHistogram(metrics.StepDuration, 1, nil)
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("maude_test", "http://example.com")
	require.NoError(t, err)

	b.ObserveHistogram(metrics.StepDuration, 1.5, metrics.Labels{"step": "export", "status": "success"})
	b.ObserveHistogram(metrics.StepDuration, 0.5, metrics.Labels{"step": "export", "status": "success"})
	b.ObserveHistogram("other", 9, nil)

	m := &dto.Metric{}
	obs, ok := b.stepDuration.WithLabelValues("export", "success").(prometheus.Metric)
	require.True(t, ok)
	require.NoError(t, obs.Write(m))
	assert.Equal(t, uint64(2), m.GetSummary().GetSampleCount())
	assert.InDelta(t, 2.0, m.GetSummary().GetSampleSum(), 1e-9)
}

// TestFlush verifies that Flush pushes the registry to the configured
// Pushgateway.
func TestFlush(t *testing.T) {
	t.Parallel()

	type pushed struct {
		method  string
		path    string
		bodyLen int
	}
	reqCh := make(chan pushed, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushed{method: r.Method, path: r.URL.Path, bodyLen: len(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("maude_job", server.URL)
	require.NoError(t, err)
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "ingest", "status": "success"})

	require.NoError(t, b.Flush())

	select {
	case got := <-reqCh:
		assert.Equal(t, http.MethodPut, got.method)
		assert.Equal(t, "/metrics/job/maude_job", got.path)
		assert.Positive(t, got.bodyLen)
	default:
		t.Fatal("Flush() did not send any request to the Pushgateway")
	}
}
