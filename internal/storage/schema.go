package storage

import (
	"fmt"
	"strings"
)

// Types names the column types and idempotent CREATE forms of a dialect.
type Types struct {
	// ID is the full definition of an auto-increment primary key column.
	ID string
	// Text holds short scalar fields, Long holds JSON documents and narrative.
	Text string
	Long string
	// Hash must be indexable; MySQL rejects unique TEXT columns.
	Hash string
	// CreateTable wraps a column list in an idempotent CREATE TABLE.
	CreateTable func(table, body string) string
	// CreateIndex returns an idempotent CREATE INDEX, or "" when the dialect
	// indexes foreign keys itself.
	CreateIndex func(name, table, column string) string
	// InlineIndex declares the event_id index inside CREATE TABLE instead.
	InlineIndex bool
}

// IfNotExists is the CREATE TABLE form shared by SQLite, Postgres and MySQL.
func IfNotExists(table, body string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", table, body)
}

// IndexIfNotExists is the CREATE INDEX form shared by SQLite and Postgres.
func IndexIfNotExists(name, table, column string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", name, table, column)
}

// Schema renders the statements creating events, devices, patients and
// mdr_texts with t's types.
func Schema(t Types) []string {
	if t.CreateTable == nil {
		t.CreateTable = IfNotExists
	}
	ref := "event_id BIGINT NOT NULL REFERENCES events(id)"
	tables := []struct {
		name string
		cols []string
	}{
		{"events", []string{
			t.ID,
			"report_number " + t.Text,
			"mdr_report_key " + t.Text,
			"event_type " + t.Text,
			"date_received " + t.Text,
			"raw_hash " + t.Hash + " NOT NULL UNIQUE",
			"raw_json " + t.Long + " NOT NULL",
		}},
		{"devices", []string{
			t.ID, ref,
			"device_sequence_number " + t.Text,
			"brand_name " + t.Text,
			"generic_name " + t.Text,
			"manufacturer_d_name " + t.Text,
			"model_number " + t.Text,
			"device_report_product_code " + t.Text,
			"raw_json " + t.Long,
		}},
		{"patients", []string{
			t.ID, ref,
			"patient_sequence_number " + t.Text,
			"patient_age " + t.Text,
			"patient_sex " + t.Text,
			"raw_json " + t.Long,
		}},
		{"mdr_texts", []string{
			t.ID, ref,
			"text_type_code " + t.Text,
			"patient_sequence_number " + t.Text,
			"text " + t.Long,
			"mdr_text_key " + t.Text,
		}},
	}
	var out []string
	for i, tb := range tables {
		if i > 0 && t.InlineIndex {
			tb.cols = append(tb.cols, "INDEX idx_"+tb.name+"_event_id (event_id)")
		}
		out = append(out, t.CreateTable(tb.name, "  "+strings.Join(tb.cols, ",\n  ")))
	}
	if t.CreateIndex != nil {
		for _, tb := range tables[1:] {
			if s := t.CreateIndex("idx_"+tb.name+"_event_id", tb.name, "event_id"); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
