package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func findIssue(issues []Issue, path string) (Issue, bool) {
	for _, iss := range issues {
		if iss.Path == path {
			return iss, true
		}
	}
	return Issue{}, false
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Config)
		path     string
		severity IssueSeverity
	}{
		{"empty_job", func(c *Config) { c.Job = " " }, "job", SeverityError},
		{"unknown_storage", func(c *Config) { c.Storage.Kind = "oracle" }, "storage.kind", SeverityError},
		{"missing_kind", func(c *Config) { c.Storage.Kind = "" }, "storage.kind", SeverityError},
		{"missing_dsn", func(c *Config) { c.Storage.DSN = "" }, "storage.dsn", SeverityError},
		{"pushgateway_no_url", func(c *Config) { c.Metrics.Backend = "pushgateway" }, "metrics.pushgateway_url", SeverityError},
		{"datadog_no_addr", func(c *Config) { c.Metrics.Backend = "datadog" }, "metrics.datadog_addr", SeverityError},
		{"unknown_metrics", func(c *Config) { c.Metrics.Backend = "graphite" }, "metrics.backend", SeverityWarning},
		{"log_mode", func(c *Config) { c.Log.Mode = "loud" }, "log.mode", SeverityWarning},
		{"no_fields", func(c *Config) { c.Export.Fields = nil }, "export.fields", SeverityError},
		{"bad_prefix", func(c *Config) { c.Export.Fields = []string{"vehicle.vin"} }, "export.fields[0]", SeverityWarning},
		{"spaces", func(c *Config) { c.Export.Fields = []string{"device name"} }, "export.fields[0]", SeverityWarning},
		{"duplicate_field", func(c *Config) { c.Export.Fields = []string{"a", "a"} }, "export.fields[1]", SeverityWarning},
		{"duplicate_priority", func(c *Config) { c.Export.Priority = []string{"X", "X"} }, "export.priority[1]", SeverityWarning},
		{"empty_match", func(c *Config) {
			c.Export.Translations = []TranslationRule{{Codes: map[string]string{"Y": "Yes"}}}
		}, "export.translations[0].match", SeverityError},
		{"no_codes", func(c *Config) {
			c.Export.Translations = []TranslationRule{{Match: "Flag"}}
		}, "export.translations[0].codes", SeverityWarning},
		{"batch_size", func(c *Config) { c.Ingest.BatchSize = 0 }, "ingest.batch_size", SeverityError},
		{"envelope_key", func(c *Config) { c.Ingest.EnvelopeKey = "" }, "ingest.envelope_key", SeverityWarning},
		{"chunk_size", func(c *Config) { c.Export.ChunkSize = 0 }, "export.chunk_size", SeverityError},
		{"top_brands", func(c *Config) { c.Export.TopBrands = 0 }, "export.top_brands", SeverityWarning},
		{"empty_grouping", func(c *Config) { c.Export.Groupings.Race.Prefixes = nil }, "export.groupings.race", SeverityWarning},
		{"empty_table_grouping", func(c *Config) { c.Export.Groupings.Tables[2].Prefixes = nil }, "export.groupings.tables[2]", SeverityWarning},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(&cfg)

			issues := Validate(cfg)
			iss, ok := findIssue(issues, tc.path)
			if assert.True(t, ok, "want issue at %s, got %v", tc.path, issues) {
				assert.Equal(t, tc.severity, iss.Severity)
				assert.Equal(t, tc.severity == SeverityError, HasErrors(issues))
			}
		})
	}
}

func TestIssueError(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "storage.dsn", Message: "must not be empty"}
	assert.Equal(t, "error at storage.dsn: must not be empty", iss.Error())
}
