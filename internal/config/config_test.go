package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Default must be self-consistent: every label referenced by a translation
// rule or the priority list is produced by the label table.
func TestDefault_Consistent(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Empty(t, Validate(cfg))

	labels := map[string]bool{}
	for _, l := range cfg.Export.Labels {
		labels[l] = true
	}
	for _, p := range cfg.Export.Priority {
		assert.True(t, labels[p], "priority label %q has no source key", p)
	}
	for raw, l := range cfg.Export.Collapsed {
		assert.Contains(t, cfg.Export.Labels, raw)
		assert.True(t, labels[l])
	}
	require.NotEmpty(t, cfg.Export.Translations)
	assert.True(t, cfg.Export.Translations[0].Multi)
	assert.Equal(t, "Patient Outcome", cfg.Export.Translations[0].Match)
	assert.Len(t, cfg.Export.Groupings.Tables, 10)
}

func TestDefault_FreshCopies(t *testing.T) {
	t.Parallel()

	a := Default()
	a.Export.Labels["event_id"] = "changed"
	a.Export.Fields[0] = "changed"

	b := Default()
	assert.Equal(t, "Event ID", b.Export.Labels["event_id"])
	assert.Equal(t, "adverse_event_flag", b.Export.Fields[0])
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_JSONOverlay(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "cfg.json", `{
	  "job": "nightly",
	  "storage": {"kind": "mongo", "dsn": "mongodb://localhost:27017", "options": {"database": "maude"}},
	  "export": {
	    "fields": ["report_number", "device.brand_name"],
	    "labels": {"report_number": "Report #"},
	    "top_brands": 3
	  }
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "nightly", cfg.Job)
	assert.Equal(t, "mongo", cfg.Storage.Kind)
	assert.Equal(t, "maude", cfg.Storage.Options.String("database", ""))
	assert.Equal(t, []string{"report_number", "device.brand_name"}, cfg.Export.Fields, "lists replace")
	assert.Equal(t, "Report #", cfg.Export.Labels["report_number"])
	assert.Equal(t, "Event ID", cfg.Export.Labels["event_id"], "maps merge")
	assert.Equal(t, 3, cfg.Export.TopBrands)
	assert.Equal(t, 1000, cfg.Export.ChunkSize, "untouched defaults survive")
}

func TestLoad_YAMLOverlay(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "cfg.yaml", `
job: weekly
log:
  mode: dev
metrics:
  backend: datadog
  datadog_addr: 127.0.0.1:8125
  tags: ["env:test"]
export:
  date_prefixes: [date_received]
  translations:
    - match: Event Type
      codes: {D: Death}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "weekly", cfg.Job)
	assert.Equal(t, "dev", cfg.Log.Mode)
	assert.Equal(t, "datadog", cfg.Metrics.Backend)
	assert.Equal(t, []string{"env:test"}, cfg.Metrics.Tags)
	assert.Equal(t, []string{"date_received"}, cfg.Export.DatePrefixes)
	require.Len(t, cfg.Export.Translations, 1)
	assert.Equal(t, "Death", cfg.Export.Translations[0].Codes["D"])
	assert.Empty(t, Validate(cfg))
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "bad.json", `{"jobb": "typo"}`))
	require.Error(t, err)

	_, err = Load(writeFile(t, "bad.yml", "export:\n  nope: 1\n"))
	require.Error(t, err)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Job, cfg.Job)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvDSN:            "postgresql://env",
		EnvStorage:        "postgres",
		EnvMetricsBackend: "pushgateway",
		EnvPushgatewayURL: "http://gw:9091",
		EnvDatadogAddr:    " ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Config{Storage: Storage{Kind: "sqlite"}, Metrics: Metrics{DatadogAddr: "127.0.0.1:8125"}}
	ApplyEnv(&cfg, lookup)

	assert.Equal(t, "postgres", cfg.Storage.Kind, "environment overrides the file")
	assert.Equal(t, "postgresql://env", cfg.Storage.DSN)
	assert.Equal(t, "pushgateway", cfg.Metrics.Backend)
	assert.Equal(t, "http://gw:9091", cfg.Metrics.PushgatewayURL)
	assert.Equal(t, "127.0.0.1:8125", cfg.Metrics.DatadogAddr, "blank values are ignored")
}

func TestOptions(t *testing.T) {
	t.Parallel()

	o := Options{"s": "x", "b": true, "f": float64(3), "i": 4}
	assert.Equal(t, "x", o.String("s", "d"))
	assert.Equal(t, "d", o.String("b", "d"))
	assert.True(t, o.Bool("b", false))
	assert.Equal(t, 3, o.Int("f", 0))
	assert.Equal(t, 4, o.Int("i", 0))
	assert.Equal(t, 9, o.Int("missing", 9))

	var empty Options
	require.NoError(t, empty.UnmarshalJSON([]byte("null")))
	assert.NotNil(t, empty)
}
