// Package ingest loads event JSON from one or more sources into a record
// store.
//
// Concurrency model:
//
//	Parser (one source at a time, in order)
//	     → bounded channel
//	     → Loader (batched Store.Insert, one transaction per batch)
//
// Sources are read in order so stored ids follow input order. A failing
// source or insert cancels the other stage.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"maude/internal/datasource"
	"maude/internal/logger"
	"maude/internal/metrics"
	"maude/internal/parser"
	"maude/internal/storage"
	"maude/internal/value"
)

// Options tunes a run.
type Options struct {
	BatchSize int
	// Buffer is the channel capacity between parser and loader.
	Buffer int
	// Job labels metrics.
	Job string
}

// Result summarizes a run.
type Result struct {
	storage.InsertResult
	Sources int
	Batches int
	Elapsed time.Duration
}

// Parsed is the number of documents that reached the store.
func (r Result) Parsed() int { return r.Inserted + r.Duplicates }

// Run parses every source with p and stores the documents in s.
func Run(
	ctx context.Context,
	s storage.Store,
	sources []datasource.Source,
	p parser.Parser,
	opt Options,
	log *logger.Logger,
) (Result, error) {
	var res Result
	if opt.BatchSize <= 0 {
		return res, errors.New("ingest: batch size must be > 0")
	}
	if log == nil {
		log = logger.Nop()
	}
	if opt.Buffer < 0 {
		opt.Buffer = 0
	}
	start := time.Now()

	docs := make(chan value.Value, opt.Buffer)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(docs)
		for i, src := range sources {
			if err := parseSource(gctx, src, p, docs); err != nil {
				return fmt.Errorf("ingest: source %d: %w", i+1, err)
			}
			res.Sources++
			log.Debug("ingest: source parsed", "source", i+1)
		}
		return nil
	})

	g.Go(func() error {
		ir, err := storage.LoadBatches(gctx, s, docs, opt.BatchSize, log)
		res.InsertResult = ir
		return err
	})

	err := metrics.Time(opt.Job, "ingest", g.Wait)
	res.Elapsed = time.Since(start)
	res.Batches = (res.Parsed() + opt.BatchSize - 1) / opt.BatchSize

	metrics.RecordDocs(opt.Job, metrics.KindParsed, int64(res.Parsed()))
	metrics.RecordDocs(opt.Job, metrics.KindInserted, int64(res.Inserted))
	metrics.RecordDocs(opt.Job, metrics.KindDuplicate, int64(res.Duplicates))
	metrics.RecordBatches(opt.Job, int64(res.Batches))

	if err != nil {
		log.Error("ingest: failed", "err", err, "inserted", res.Inserted)
		return res, err
	}
	log.Info("ingest: done",
		"sources", res.Sources,
		"inserted", res.Inserted,
		"duplicates", res.Duplicates,
		"batches", res.Batches,
		"elapsed", res.Elapsed.Truncate(time.Millisecond).String(),
	)
	return res, nil
}

func parseSource(ctx context.Context, src datasource.Source, p parser.Parser, out chan<- value.Value) error {
	rc, err := src.Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()
	return p.Parse(ctx, rc, out)
}
