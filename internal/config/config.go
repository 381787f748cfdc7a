// Package config defines the configuration model for the MAUDE export tool.
//
// Everything the engine consumes (the curated field list, column labels and
// priority, code translation tables, date columns and aggregation groupings)
// is static data built once by Default and optionally overlaid from a JSON or
// YAML file. The resulting Config is passed explicitly to each component and
// never mutated after startup.
//
// Example overlay (trimmed):
//
//	{
//	  "job": "maude_nightly",
//	  "storage": { "kind": "postgres", "dsn": "postgresql://..." },
//	  "metrics": { "backend": "pushgateway", "pushgateway_url": "http://pg:9091" },
//	  "export":  { "top_brands": 5 }
//	}
//
// When overlaying, lists replace the defaults while maps are merged key by key.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	// Job names the run for logs and metrics.
	Job     string  `json:"job" yaml:"job"`
	Log     Log     `json:"log" yaml:"log"`
	Storage Storage `json:"storage" yaml:"storage"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
	Output  Output  `json:"output" yaml:"output"`
	Ingest  Ingest  `json:"ingest" yaml:"ingest"`
	Export  Export  `json:"export" yaml:"export"`
}

// Log configures the zap logger.
type Log struct {
	// Mode is "dev" (console, debug level) or "prod" (JSON, info level).
	Mode string `json:"mode" yaml:"mode"`
}

// Storage selects the record store backend.
type Storage struct {
	// Kind is one of "sqlite", "postgres", "mysql", "mssql", "mongo".
	Kind string `json:"kind" yaml:"kind"`
	DSN  string `json:"dsn" yaml:"dsn"`
	// Options carries backend-specific knobs, e.g. "database" for mongo.
	Options Options `json:"options" yaml:"options"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string   `json:"backend" yaml:"backend"`
	PushgatewayURL string   `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string   `json:"datadog_addr" yaml:"datadog_addr"`
	Namespace      string   `json:"namespace" yaml:"namespace"`
	Tags           []string `json:"tags" yaml:"tags"`
}

// Output configures where workbooks are written.
type Output struct {
	Dir string `json:"dir" yaml:"dir"`
}

// Ingest configures loading event JSON into the store.
type Ingest struct {
	// BatchSize is the number of documents inserted per transaction.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
	// Buffer bounds the channel between the parser and the loader.
	Buffer int `json:"buffer" yaml:"buffer"`
	// EnvelopeKey names the array holding events inside an API response
	// object ("results" for openFDA).
	EnvelopeKey string `json:"envelope_key" yaml:"envelope_key"`
}

// Export is the engine configuration.
type Export struct {
	// Fields is the curated field list: bare top-level names or
	// device./patient./mdr_text. prefixed names.
	Fields   []string `json:"fields" yaml:"fields"`
	LinkBase string   `json:"link_base" yaml:"link_base"`

	// Labels maps raw base column keys to human labels.
	Labels map[string]string `json:"labels" yaml:"labels"`
	// Collapsed maps raw base keys to the label used for their doubly nested
	// (first occurrence) columns.
	Collapsed map[string]string `json:"collapsed" yaml:"collapsed"`
	// Priority lists base labels in leading column order.
	Priority []string `json:"priority" yaml:"priority"`

	Translations []TranslationRule `json:"translations" yaml:"translations"`
	DatePrefixes []string          `json:"date_prefixes" yaml:"date_prefixes"`
	Groupings    Groupings         `json:"groupings" yaml:"groupings"`

	// IncludeRaw adds a Raw_Events sheet (the projected rows before labeling)
	// to the curated workbook.
	IncludeRaw     bool `json:"include_raw" yaml:"include_raw"`
	ChunkSize      int  `json:"chunk_size" yaml:"chunk_size"`
	ChunkThreshold int  `json:"chunk_threshold" yaml:"chunk_threshold"`
	TopBrands      int  `json:"top_brands" yaml:"top_brands"`
}

// TranslationRule maps coded cell values to readable text for every column
// whose label contains Match. Rules are tried in order; the first match wins.
type TranslationRule struct {
	Match string            `json:"match" yaml:"match"`
	Codes map[string]string `json:"codes" yaml:"codes"`
	// Multi marks ";"-delimited cells translated token by token.
	Multi bool `json:"multi" yaml:"multi"`
}

// Grouping pools every column whose key equals, or starts with, one of
// Prefixes followed by "_".
type Grouping struct {
	Label    string   `json:"label" yaml:"label"`
	Prefixes []string `json:"prefixes" yaml:"prefixes"`
}

// Groupings drives the Summary sheet.
type Groupings struct {
	Age            Grouping   `json:"age" yaml:"age"`
	Weight         Grouping   `json:"weight" yaml:"weight"`
	Sex            Grouping   `json:"sex" yaml:"sex"`
	Ethnicity      Grouping   `json:"ethnicity" yaml:"ethnicity"`
	Race           Grouping   `json:"race" yaml:"race"`
	Tables         []Grouping `json:"tables" yaml:"tables"`
	DeviceProblem  Grouping   `json:"device_problem" yaml:"device_problem"`
	PatientProblem Grouping   `json:"patient_problem" yaml:"patient_problem"`
	Brand          Grouping   `json:"brand" yaml:"brand"`
	EventType      Grouping   `json:"event_type" yaml:"event_type"`
}

// Load returns Default overlaid with the file at path. The format follows
// the extension: .yaml/.yml for YAML, anything else JSON. An empty path
// returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Decode(b, filepath.Ext(path), &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode overlays b onto cfg. ext selects the format (".yaml", ".yml" or
// JSON otherwise).
func Decode(b []byte, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	}
	return nil
}

// Env names consulted by ApplyEnv.
const (
	EnvDSN            = "MAUDE_DSN"
	EnvStorage        = "MAUDE_STORAGE"
	EnvMetricsBackend = "METRICS_BACKEND"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
	EnvDatadogAddr    = "DD_AGENT_ADDR"
)

// ApplyEnv overrides settings with the non-empty environment variables
// above. lookup is usually os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&cfg.Storage.DSN, EnvDSN)
	set(&cfg.Storage.Kind, EnvStorage)
	set(&cfg.Metrics.Backend, EnvMetricsBackend)
	set(&cfg.Metrics.PushgatewayURL, EnvPushgatewayURL)
	set(&cfg.Metrics.DatadogAddr, EnvDatadogAddr)
}

// Options is a small helper to fetch typed values from a free-form map. It
// returns the provided default when a key is absent or of another type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers arrive as float64,
// YAML integers as int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// UnmarshalJSON makes a missing or null options object decode to an empty,
// non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
