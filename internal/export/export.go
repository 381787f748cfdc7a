// Package export runs the three workbook exports over a record store:
// the curated workbook (Events, MDR_Texts, Summary and optionally
// Raw_Events), the full-fidelity Raw_Events workbook and the brand by event
// type Analytics sheet.
//
// Every export reads the whole store in id order first. Records that fail to
// decode or flatten become error rows and the run continues.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"maude/internal/aggregate"
	"maude/internal/config"
	"maude/internal/domain"
	"maude/internal/flatten"
	"maude/internal/labels"
	"maude/internal/logger"
	"maude/internal/metrics"
	"maude/internal/report"
	"maude/internal/storage"
	"maude/internal/table"
	"maude/internal/transformer"
	"maude/internal/transformer/builtin"
)

// ErrNoData is returned when the store holds no records to export.
var ErrNoData = errors.New("export: no data")

// Exporter builds workbooks from a Store. Config is read, never modified.
type Exporter struct {
	Store  storage.Store
	Config config.Export
	// Job labels metrics.
	Job string
	Log *logger.Logger
	// RunID returns the id stamped on each workbook. Defaults to a random UUID.
	RunID func() string
}

// New returns an Exporter with a random run id per export.
func New(store storage.Store, cfg config.Export, job string, log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Exporter{Store: store, Config: cfg, Job: job, Log: log, RunID: uuid.NewString}
}

// scanned is a stored record, or the reason it could not be decoded.
type scanned struct {
	rec domain.Record
	err error
}

func (e *Exporter) start(mode string) (string, *logger.Logger) {
	id := uuid.NewString()
	if e.RunID != nil {
		id = e.RunID()
	}
	log := e.Log
	if log == nil {
		log = logger.Nop()
	}
	return id, log.With("run_id", id, "mode", mode)
}

func (e *Exporter) scan(ctx context.Context, log *logger.Logger) ([]scanned, error) {
	var out []scanned
	err := metrics.Time(e.Job, "scan", func() error {
		return e.Store.Scan(ctx, func(raw storage.Raw) error {
			rec, err := raw.Record()
			out = append(out, scanned{rec: rec, err: err})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("export: scan: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	log.Info("export: records loaded", "records", len(out))
	return out, nil
}

// collect runs extract over every record into one dense table. Failures are
// logged and become error rows.
func (e *Exporter) collect(name string, items []scanned, extract func(domain.Record) (*flatten.Row, error), log *logger.Logger) *table.Table {
	col := flatten.NewCollector(name, len(items), e.Config.ChunkSize, e.Config.ChunkThreshold)
	col.OnChunk = func(chunk, rows int) {
		log.Debug("export: chunk folded", "table", name, "chunk", chunk, "rows", rows)
	}
	for _, it := range items {
		err := it.err
		var row *flatten.Row
		if err == nil {
			row, err = extract(it.rec)
		}
		if err != nil {
			log.Warn("export: record failed", "event_id", it.rec.ID, "error", err)
			row = flatten.ErrorRow(it.rec.ID, err)
		}
		col.Add(row)
	}
	t := col.Table()
	metrics.RecordDocs(e.Job, metrics.KindFlattened, int64(col.Rows()-col.Failed()))
	metrics.RecordDocs(e.Job, metrics.KindRecordErrors, int64(col.Failed()))
	log.Info("export: table built",
		"table", name,
		"rows", t.Len(),
		"columns", len(t.Columns),
		"failed", col.Failed(),
		"chunked", col.Chunked(),
	)
	return t
}

func records(items []scanned) []domain.Record {
	out := make([]domain.Record, 0, len(items))
	for _, it := range items {
		if it.err == nil {
			out = append(out, it.rec)
		}
	}
	return out
}

// events builds the curated Events table from items. The returned raw table
// is the projected table before labeling, or nil unless withRaw.
func (e *Exporter) events(items []scanned, withRaw bool, log *logger.Logger) (events, raw *table.Table) {
	cfg := e.Config
	proj := flatten.NewProjector(domain.ParseFieldPaths(cfg.Fields), cfg.LinkBase)
	proj.Sanitize = builtin.SanitizeText

	events = e.collect(report.EventsSheet, items, proj.Project, log)
	builtin.FormatDates{Prefixes: cfg.DatePrefixes}.Apply(events)
	if withRaw {
		raw = events.Clone(report.RawSheet)
	}

	namer := labels.New(cfg.Labels, cfg.Collapsed, cfg.Priority)
	transformer.Chain{
		transformer.Func(func(t *table.Table) {
			if dropped := namer.Apply(t); len(dropped) > 0 {
				log.Debug("export: blank columns pruned", "columns", len(dropped))
			}
		}),
		builtin.Translate{Rules: cfg.Translations},
	}.Apply(events)
	return events, raw
}

// Curated builds the Events, MDR_Texts and Summary sheets, plus Raw_Events
// when Config.IncludeRaw is set.
func (e *Exporter) Curated(ctx context.Context) (*report.Workbook, error) {
	runID, log := e.start("curated")
	items, err := e.scan(ctx, log)
	if err != nil {
		return nil, err
	}

	events, raw := e.events(items, e.Config.IncludeRaw, log)

	var missing []domain.MissingPatient
	err = metrics.Time(e.Job, "missing_patients", func() error {
		var err error
		missing, err = e.Store.MissingPatients(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("export: missing patients: %w", err)
	}

	summary := aggregate.Aggregator{Groupings: e.Config.Groupings}.Summarize(events, missing)
	texts := report.Texts(records(items), e.Config.LinkBase, e.Config.DatePrefixes)

	wb := report.Assemble(report.Input{
		RunID:   runID,
		Events:  events,
		Texts:   texts,
		Summary: summary,
		Raw:     raw,
	})
	log.Info("export: curated workbook assembled",
		"events", events.Len(),
		"texts", texts.Len(),
		"missing_patients", len(missing),
		"sheets", len(wb.Sheets),
		"charts", len(wb.Charts),
	)
	return wb, nil
}

// Raw builds a one-sheet Raw_Events workbook keeping every leaf of every
// record. Columns are neither pruned nor labeled.
func (e *Exporter) Raw(ctx context.Context) (*report.Workbook, error) {
	runID, log := e.start("raw")
	items, err := e.scan(ctx, log)
	if err != nil {
		return nil, err
	}
	f := flatten.Flattener{Sanitize: builtin.SanitizeText}
	t := e.collect(report.RawSheet, items, f.Flatten, log)
	return report.Single(runID, report.RawSheet, t), nil
}

// Analytics builds the Analytics sheet: event type counts for the
// Config.TopBrands brands with the most events.
func (e *Exporter) Analytics(ctx context.Context) (*report.Workbook, error) {
	runID, log := e.start("analytics")
	items, err := e.scan(ctx, log)
	if err != nil {
		return nil, err
	}
	events, _ := e.events(items, false, log)
	t := aggregate.Aggregator{Groupings: e.Config.Groupings}.BrandEventTypes(events, e.Config.TopBrands)
	log.Info("export: analytics built", "brands", t.Len(), "columns", len(t.Columns))
	return report.Single(runID, report.AnalyticsSheet, t), nil
}
