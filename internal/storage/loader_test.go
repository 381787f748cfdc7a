package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"maude/internal/logger"
	"maude/internal/value"
)

func feed(n int) <-chan value.Value {
	in := make(chan value.Value, n)
	for i := 0; i < n; i++ {
		in <- value.Object(value.F("report_number", value.Int(int64(i))))
	}
	close(in)
	return in
}

// TestLoadBatches_Basic verifies documents are grouped into batches and the
// result sums every Insert.
func TestLoadBatches_Basic(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	s := &fakeStore{}

	res, err := LoadBatches(context.Background(), s, feed(7), 3, logger.FromZap(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, InsertResult{Inserted: 7}, res)
	require.Len(t, s.batches, 3)
	assert.Len(t, s.batches[0], 3)
	assert.Len(t, s.batches[2], 1)
	assert.Equal(t, 3, logs.FilterMessage("loader: batch stored").Len())

	// Batches are copies, not views of the reused buffer.
	assert.Equal(t, "0", s.batches[0][0].Get("report_number").Text())
	assert.Equal(t, "6", s.batches[2][0].Get("report_number").Text())
}

// TestLoadBatches_ErrorPropagation ensures the first insert error is returned
// and processing stops after that batch.
func TestLoadBatches_ErrorPropagation(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("insert failed")
	s := &fakeStore{failAt: 2, err: wantErr}

	res, err := LoadBatches(context.Background(), s, feed(5), 2, nil)
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 2, res.Inserted)
	assert.Len(t, s.batches, 2)
}

func TestLoadBatches_BadArgs(t *testing.T) {
	t.Parallel()

	_, err := LoadBatches(context.Background(), &fakeStore{}, feed(1), 0, nil)
	require.Error(t, err)
	_, err = LoadBatches(context.Background(), nil, feed(1), 1, nil)
	require.Error(t, err)
}

// TestLoadBatches_ContextCancel checks the loader exits on cancellation.
func TestLoadBatches_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan value.Value)

	errCh := make(chan error, 1)
	go func() {
		_, err := LoadBatches(ctx, &fakeStore{}, in, 2, nil)
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("LoadBatches did not return after context cancel")
	}
}
