// Package domain holds the adverse-event business objects shared by the
// flattening, aggregation and storage layers.
package domain

import (
	"fmt"
	"strings"

	"maude/internal/value"
)

// Sub-record array names inside an event document.
const (
	DeviceKey  = "device"
	PatientKey = "patient"
	TextKey    = "mdr_text"
)

// Record is one adverse-event document. ID is assigned by the record store and
// never changes; Doc is never mutated after load.
type Record struct {
	ID  int64
	Doc value.Value
}

// Field returns a top-level field, or value.Absent.
func (r Record) Field(name string) value.Value { return r.Doc.Get(name) }

// Devices returns the device sub-records in document order.
func (r Record) Devices() []value.Value { return r.Doc.Get(DeviceKey).Items() }

// Patients returns the patient sub-records in document order.
func (r Record) Patients() []value.Value { return r.Doc.Get(PatientKey).Items() }

// Texts returns the narrative (mdr_text) sub-records in document order.
func (r Record) Texts() []value.Value { return r.Doc.Get(TextKey).Items() }

func (r Record) ReportNumber() string { return r.Doc.Get("report_number").Text() }

func (r Record) MDRReportKey() string { return r.Doc.Get("mdr_report_key").Text() }

// Validate reports structural problems that prevent projection: a document
// that is not an object, or a sub-record field that is present but is not an
// array of objects. Absent or null sub-record fields are fine (zero
// occurrences).
func (r Record) Validate() error {
	if r.Doc.Kind() != value.KindObject {
		return fmt.Errorf("record %d: document is %s, want object", r.ID, r.Doc.Kind())
	}
	for _, name := range []string{DeviceKey, PatientKey, TextKey} {
		sub := r.Doc.Get(name)
		switch sub.Kind() {
		case value.KindAbsent, value.KindNull:
			continue
		case value.KindArray:
		default:
			return fmt.Errorf("record %d: %s is %s, want array", r.ID, name, sub.Kind())
		}
		for i, it := range sub.Items() {
			if it.Kind() != value.KindObject {
				return fmt.Errorf("record %d: %s[%d] is %s, want object", r.ID, name, i, it.Kind())
			}
		}
	}
	return nil
}

// FieldPath designates a configured field: either a bare top-level name
// ("report_number") or a name inside a sub-record array ("device.brand_name").
type FieldPath struct {
	Prefix string // "" for top-level fields
	Name   string
}

// ParseFieldPath splits a dotted configuration entry. Only the first dot is
// significant.
func ParseFieldPath(s string) FieldPath {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return FieldPath{Prefix: s[:i], Name: s[i+1:]}
	}
	return FieldPath{Name: s}
}

// ParseFieldPaths parses a list, dropping empty entries.
func ParseFieldPaths(list []string) []FieldPath {
	out := make([]FieldPath, 0, len(list))
	for _, s := range list {
		fp := ParseFieldPath(s)
		if fp.Name == "" {
			continue
		}
		out = append(out, fp)
	}
	return out
}

func (p FieldPath) String() string {
	if p.Prefix == "" {
		return p.Name
	}
	return p.Prefix + "." + p.Name
}

// TopLevel reports whether the path names a field on the event itself.
func (p FieldPath) TopLevel() bool { return p.Prefix == "" }

// MissingPatient identifies an event stored without any patient sub-record.
type MissingPatient struct {
	EventID      int64
	ReportNumber string
}
