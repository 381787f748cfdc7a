// Package config provides configuration models and helpers.
//
// This file adds a lightweight linter for Config values. It performs static
// checks and returns a list of issues (errors and warnings) that callers can
// surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a problem worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "export.translations[2].match"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// StorageKinds are the record store backends compiled into the binary.
var StorageKinds = []string{"sqlite", "postgres", "mysql", "mssql", "mongo"}

// Validate lints cfg without mutating it.
func Validate(cfg Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(cfg.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	switch cfg.Log.Mode {
	case "", "dev", "prod":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "log.mode",
			Message:  fmt.Sprintf("unknown log mode %q; falling back to prod", cfg.Log.Mode),
		})
	}
	issues = append(issues, validateStorage(cfg.Storage)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	issues = append(issues, validateIngest(cfg.Ingest)...)
	issues = append(issues, validateExport(cfg.Export)...)
	return issues
}

func validateIngest(in Ingest) []Issue {
	var issues []Issue
	if in.BatchSize <= 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "ingest.batch_size", Message: "batch_size must be > 0"})
	}
	if in.Buffer < 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "ingest.buffer", Message: "buffer must be >= 0"})
	}
	if strings.TrimSpace(in.EnvelopeKey) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "ingest.envelope_key",
			Message:  "no envelope key; API response objects will be stored as single events",
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	}
	known := false
	for _, k := range StorageKinds {
		if s.Kind == k {
			known = true
			break
		}
	}
	if !known {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; want one of %s", s.Kind, strings.Join(StorageKinds, ", ")),
		})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires an agent address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		})
	}
	return issues
}

func validateExport(e Export) []Issue {
	var issues []Issue

	if len(e.Fields) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "export.fields",
			Message:  "field list must not be empty",
		})
	}
	seen := make(map[string]int, len(e.Fields))
	for i, f := range e.Fields {
		path := fmt.Sprintf("export.fields[%d]", i)
		name := strings.TrimSpace(f)
		if name == "" {
			issues = append(issues, Issue{Severity: SeverityWarning, Path: path, Message: "empty field is ignored"})
			continue
		}
		if strings.ContainsAny(name, " \t") {
			issues = append(issues, Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf("field %q contains whitespace and will never match", name)})
		}
		if prefix, _, ok := strings.Cut(name, "."); ok {
			switch prefix {
			case "device", "patient", "mdr_text":
			default:
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     path,
					Message:  fmt.Sprintf("unknown sub-record prefix %q; field will not be projected", prefix),
				})
			}
		}
		if j, dup := seen[name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("field %q duplicates export.fields[%d]", name, j),
			})
		} else {
			seen[name] = i
		}
	}

	prio := make(map[string]bool, len(e.Priority))
	for i, p := range e.Priority {
		if prio[p] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("export.priority[%d]", i),
				Message:  fmt.Sprintf("label %q listed twice", p),
			})
		}
		prio[p] = true
	}

	for i, r := range e.Translations {
		path := fmt.Sprintf("export.translations[%d]", i)
		if strings.TrimSpace(r.Match) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".match", Message: "match must not be empty"})
		}
		if len(r.Codes) == 0 {
			issues = append(issues, Issue{Severity: SeverityWarning, Path: path + ".codes", Message: "rule has no codes and only shadows later rules"})
		}
	}

	if e.ChunkSize <= 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "export.chunk_size", Message: "chunk_size must be > 0"})
	}
	if e.ChunkThreshold < 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "export.chunk_threshold", Message: "chunk_threshold must be >= 0"})
	}
	if e.TopBrands <= 0 {
		issues = append(issues, Issue{Severity: SeverityWarning, Path: "export.top_brands", Message: "top_brands <= 0 yields an empty analytics sheet"})
	}

	g := e.Groupings
	named := []struct {
		path string
		g    Grouping
	}{
		{"age", g.Age}, {"weight", g.Weight}, {"sex", g.Sex}, {"ethnicity", g.Ethnicity},
		{"race", g.Race}, {"device_problem", g.DeviceProblem}, {"patient_problem", g.PatientProblem},
		{"brand", g.Brand}, {"event_type", g.EventType},
	}
	for i, t := range g.Tables {
		named = append(named, struct {
			path string
			g    Grouping
		}{fmt.Sprintf("tables[%d]", i), t})
	}
	for _, n := range named {
		if len(n.g.Prefixes) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "export.groupings." + n.path,
				Message:  "grouping has no prefixes; its table will always be empty",
			})
		}
	}

	return issues
}
