package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory Backend for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []call
	histograms []call
	flushes    int
}

type call struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, call{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, call{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

func install(t *testing.T) *fakeBackend {
	t.Helper()
	orig := backend
	t.Cleanup(func() { backend = orig })
	fb := &fakeBackend{}
	backend = fb
	return fb
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := install(t)

	RecordStep("jobA", "ingest", nil, 2*time.Second)
	RecordStep("jobB", "export", errors.New("boom"), 1500*time.Millisecond)

	require.Len(t, fb.counters, 2)
	require.Len(t, fb.histograms, 2)

	assert.Equal(t, call{StepTotal, 1, Labels{"job": "jobA", "step": "ingest", "status": "success"}}, fb.counters[0])
	assert.Equal(t, StepDuration, fb.histograms[0].name)
	assert.InDelta(t, 2.0, fb.histograms[0].value, 0.001)

	assert.Equal(t, "failure", fb.counters[1].labels["status"])
	assert.InDelta(t, 1.5, fb.histograms[1].value, 0.001)
}

func TestTime(t *testing.T) {
	fb := install(t)

	want := errors.New("scan failed")
	err := Time("job", "scan", func() error { return want })
	require.ErrorIs(t, err, want)
	require.Len(t, fb.counters, 1)
	assert.Equal(t, "scan", fb.counters[0].labels["step"])
	assert.Equal(t, StatusFailure, fb.counters[0].labels["status"])
}

func TestRecordDocsAndBatches(t *testing.T) {
	fb := install(t)

	RecordDocs("jobX", KindParsed, 3)
	RecordDocs("jobX", KindParsed, 0)
	RecordDocs("jobY", KindDuplicate, -2)
	RecordDocs("jobY", KindInserted, 5)
	RecordBatches("jobZ", 2)
	RecordBatches("jobZ", 0)

	require.Len(t, fb.counters, 3)
	assert.Equal(t, call{DocumentsTotal, 3, Labels{"job": "jobX", "kind": "parsed"}}, fb.counters[0])
	assert.Equal(t, call{DocumentsTotal, 5, Labels{"job": "jobY", "kind": "inserted"}}, fb.counters[1])
	assert.Equal(t, call{BatchesTotal, 2, Labels{"job": "jobZ"}}, fb.counters[2])
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	SetBackend(nil)
	require.Same(t, fb, backend)

	require.NoError(t, Flush())
	assert.Equal(t, 1, fb.flushes)
}
