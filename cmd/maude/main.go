package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"maude/internal/config"
	"maude/internal/datasource"
	"maude/internal/datasource/file"
	"maude/internal/export"
	"maude/internal/ingest"
	"maude/internal/logger"
	"maude/internal/metrics"
	"maude/internal/metrics/datadog"
	"maude/internal/metrics/prompush"
	jsonparser "maude/internal/parser/json"
	"maude/internal/report"
	"maude/internal/sink/csvsink"
	"maude/internal/storage"

	// register all backends with the storage factory.
	_ "maude/internal/storage/all"
)

const usage = `usage: maude <command> [flags]

commands:
  ingest     load event JSON files (.json, .json.gz, .zip) into the store
  export     write the curated workbook (-raw for every leaf)
  analytics  write the brand by event type cross tab
  counts     print row counts per table
  clear      delete every stored event
  validate   lint the configuration and exit
`

// lookupEnv is a test seam for the environment.
var lookupEnv = os.LookupEnv

// main dispatches to a subcommand. Exit codes: 0 ok, 1 failure, 2 usage.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// commonFlags are accepted by every subcommand. Precedence is flag, then
// environment, then config file, then built-in default.
type commonFlags struct {
	cfgPath        string
	storageKind    string
	dsn            string
	metricsBackend string
	pushgatewayURL string
	logMode        string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.cfgPath, "config", "", "config file (.json, .yaml); defaults are built in")
	fs.StringVar(&c.storageKind, "storage", "", "storage backend: sqlite, postgres, mysql, mssql, mongo (env MAUDE_STORAGE)")
	fs.StringVar(&c.dsn, "dsn", "", "storage DSN or URI (env MAUDE_DSN)")
	fs.StringVar(&c.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway, datadog (env METRICS_BACKEND)")
	fs.StringVar(&c.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	fs.StringVar(&c.logMode, "log", "", "log mode: dev or prod")
}

func (c *commonFlags) resolve(lookup func(string) (string, bool)) (config.Config, error) {
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return cfg, err
	}
	config.ApplyEnv(&cfg, lookup)
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Storage.Kind, c.storageKind)
	set(&cfg.Storage.DSN, c.dsn)
	set(&cfg.Metrics.Backend, c.metricsBackend)
	set(&cfg.Metrics.PushgatewayURL, c.pushgatewayURL)
	set(&cfg.Log.Mode, c.logMode)
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, args := args[0], args[1:]

	fs := flag.NewFlagSet("maude "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)

	var (
		listPath  string
		batchSize int
		raw       bool
		outDir    string
	)
	switch cmd {
	case "ingest":
		fs.StringVar(&listPath, "list", "", "file listing input paths, one per line")
		fs.IntVar(&batchSize, "batch", 0, "documents per insert transaction (default from config)")
	case "export":
		fs.BoolVar(&raw, "raw", false, "full-fidelity flatten of every leaf instead of the curated workbook")
		fs.StringVar(&outDir, "out", "", "output directory (default from config)")
	case "analytics":
		fs.StringVar(&outDir, "out", "", "output directory (default from config)")
	case "counts", "clear", "validate":
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := common.resolve(lookupEnv)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	if batchSize > 0 {
		cfg.Ingest.BatchSize = batchSize
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintln(stderr, "configuration is invalid")
		return 1
	}
	if cmd == "validate" {
		fmt.Fprintln(stdout, "configuration is valid")
		return 0
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}
	defer log.Sync()
	log = log.With("job", cfg.Job, "command", cmd)

	defer setupMetrics(cfg, log)()

	store, err := storage.New(ctx, storage.Config{
		Kind:    cfg.Storage.Kind,
		DSN:     cfg.Storage.DSN,
		Options: cfg.Storage.Options,
	})
	if err != nil {
		log.Error("storage: open failed", "kind", cfg.Storage.Kind, "err", err)
		return 1
	}
	defer store.Close()

	switch cmd {
	case "ingest":
		err = runIngest(ctx, cfg, store, listPath, fs.Args(), stdout, log)
	case "export":
		err = runExport(ctx, cfg, store, raw, stdout, log)
	case "analytics":
		err = runAnalytics(ctx, cfg, store, stdout, log)
	case "counts":
		err = runCounts(ctx, store, stdout)
	case "clear":
		err = store.Clear(ctx)
		if err == nil {
			log.Info("store cleared", "kind", cfg.Storage.Kind)
		}
	}
	if errors.Is(err, export.ErrNoData) {
		fmt.Fprintln(stderr, "no records in the store; run ingest first")
		return 1
	}
	if err != nil {
		log.Error(cmd+" failed", "err", err)
		return 1
	}
	return 0
}

// setupMetrics installs the configured backend and returns the deferred
// flush. Backend failures only disable metrics.
func setupMetrics(cfg config.Config, log *logger.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.FromConfig(cfg.Metrics, cfg.Job))
	case "", "none":
		log.Debug("metrics: disabled")
		return func() {}
	default:
		log.Warn("metrics: unknown backend; metrics disabled", "backend", cfg.Metrics.Backend)
		return func() {}
	}
	if err != nil {
		log.Warn("metrics: init failed; using nop", "backend", cfg.Metrics.Backend, "err", err)
		return func() {}
	}
	log.Info("metrics: enabled", "backend", cfg.Metrics.Backend)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush error", "err", err)
		}
	}
}

// inputs joins the paths named in listPath with positional paths.
func inputs(listPath string, paths []string) ([]datasource.Source, error) {
	var all []string
	if listPath != "" {
		listed, err := file.ReadList(listPath)
		if err != nil {
			return nil, fmt.Errorf("read list %s: %w", listPath, err)
		}
		all = append(all, listed...)
	}
	all = append(all, paths...)
	if len(all) == 0 {
		return nil, errors.New("no input files; pass paths or -list")
	}
	srcs := make([]datasource.Source, len(all))
	for i, p := range all {
		srcs[i] = file.NewLocal(p)
	}
	return srcs, nil
}

func runIngest(ctx context.Context, cfg config.Config, store storage.Store, listPath string, paths []string, stdout io.Writer, log *logger.Logger) error {
	srcs, err := inputs(listPath, paths)
	if err != nil {
		return err
	}
	p := jsonparser.Parser{Options: jsonparser.Options{EnvelopeKey: cfg.Ingest.EnvelopeKey}}
	res, err := ingest.Run(ctx, store, srcs, p, ingest.Options{
		BatchSize: cfg.Ingest.BatchSize,
		Buffer:    cfg.Ingest.Buffer,
		Job:       cfg.Job,
	}, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ingested %d files: %d inserted, %d duplicates\n", res.Sources, res.Inserted, res.Duplicates)
	return nil
}

func runExport(ctx context.Context, cfg config.Config, store storage.Store, raw bool, stdout io.Writer, log *logger.Logger) error {
	e := export.New(store, cfg.Export, cfg.Job, log)
	var (
		wb  *report.Workbook
		err error
	)
	if raw {
		wb, err = e.Raw(ctx)
	} else {
		wb, err = e.Curated(ctx)
	}
	if err != nil {
		return err
	}
	return write(ctx, cfg, wb, stdout, log)
}

func runAnalytics(ctx context.Context, cfg config.Config, store storage.Store, stdout io.Writer, log *logger.Logger) error {
	wb, err := export.New(store, cfg.Export, cfg.Job, log).Analytics(ctx)
	if err != nil {
		return err
	}
	return write(ctx, cfg, wb, stdout, log)
}

func write(ctx context.Context, cfg config.Config, wb *report.Workbook, stdout io.Writer, log *logger.Logger) error {
	s := csvsink.New(cfg.Output.Dir, log)
	if err := s.Write(ctx, wb); err != nil {
		return err
	}
	fmt.Fprintln(stdout, s.Path(wb.RunID))
	return nil
}

func runCounts(ctx context.Context, store storage.Store, stdout io.Writer) error {
	c, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
