package storage

import (
	"context"
	"fmt"
	"time"

	"maude/internal/logger"
	"maude/internal/value"
)

// LoadBatches drains documents from in, groups them into batches of
// batchSize and inserts each batch into s. It returns the accumulated
// InsertResult and the first error encountered.
//
// Cancellation: returns (result, ctx.Err()) when canceled. Progress is logged
// on each successful flush.
func LoadBatches(
	ctx context.Context,
	s Store,
	in <-chan value.Value,
	batchSize int,
	log *logger.Logger,
) (InsertResult, error) {
	var total InsertResult
	if batchSize <= 0 {
		return total, fmt.Errorf("batchSize must be > 0")
	}
	if s == nil {
		return total, fmt.Errorf("store must not be nil")
	}
	if log == nil {
		log = logger.Nop()
	}

	var (
		batches     int
		batch       = make([]value.Value, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		res, err := s.Insert(ctx, batch)
		total.Add(res)
		size := len(batch)
		batch = batch[:0]
		if err != nil {
			log.Error("loader: insert failed", "batch", batches+1, "size", size, "err", err)
			return err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		dps := float64(0)
		if sinceLast > 0 {
			dps = float64(size) / sinceLast.Seconds()
		}
		log.Info("loader: batch stored",
			"batch", batches,
			"docs_per_sec", int64(dps),
			"inserted", res.Inserted,
			"duplicates", res.Duplicates,
			"total_inserted", total.Inserted,
			"elapsed", now.Sub(start).Truncate(time.Millisecond),
		)
		lastFlushTS = now
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case doc, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				log.Debug("loader: input closed", "batches", batches, "total_inserted", total.Inserted)
				return total, nil
			}
			batch = append(batch, doc)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
