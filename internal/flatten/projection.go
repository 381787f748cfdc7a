package flatten

import (
	"fmt"

	"maude/internal/colkey"
	"maude/internal/domain"
	"maude/internal/value"
)

// Projector builds the curated row for a record from a fixed field list.
//
// Top-level fields land at their bare name; fields inside the device and
// patient sub-record arrays land at <prefix>_<field>_<i> with i counting the
// occurrence from 1. An array value additionally expands into one column per
// element, with a blank cell left at the parent key:
//
//	product_problems: ["A", "B"]        -> product_problems="", product_problems_1="A", product_problems_2="B"
//	patient[0].patient_problems: ["P"]  -> patient_patient_problems_1="", patient_patient_problems_1_1="P"
type Projector struct {
	LinkBase string
	// Sanitize, when set, is applied to every string cell.
	Sanitize func(string) string

	top    []domain.FieldPath
	nested map[string][]domain.FieldPath
}

// projectedPrefixes are the sub-record arrays expanded into the curated row,
// in output order. mdr_text paths feed the narrative table instead.
var projectedPrefixes = []string{domain.DeviceKey, domain.PatientKey}

// NewProjector groups fields by sub-record prefix, keeping configured order.
func NewProjector(fields []domain.FieldPath, linkBase string) *Projector {
	p := &Projector{LinkBase: linkBase, nested: make(map[string][]domain.FieldPath)}
	for _, f := range fields {
		if f.TopLevel() {
			p.top = append(p.top, f)
			continue
		}
		p.nested[f.Prefix] = append(p.nested[f.Prefix], f)
	}
	return p
}

// Project flattens one record. It fails only when the record's sub-record
// structure is malformed; callers substitute ErrorRow.
func (p *Projector) Project(rec domain.Record) (*Row, error) {
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("flatten: project: %w", err)
	}
	row := NewRow(rec.ID)

	for _, f := range p.top {
		p.put(row, colkey.New(f.Name), value.Extract(rec.Doc, f.Name))
	}

	for _, prefix := range projectedPrefixes {
		fields := p.nested[prefix]
		if len(fields) == 0 {
			continue
		}
		for i, occ := range rec.Doc.Get(prefix).Items() {
			for _, f := range fields {
				p.put(row, colkey.New(prefix, f.Name).With(i+1), value.Extract(occ, f.Name))
			}
		}
	}

	row.Set(colkey.New(LinkKey), value.String(ReportLink(p.LinkBase, rec)))
	return row, nil
}

// put stores v at k, expanding one level of array elements.
func (p *Projector) put(row *Row, k colkey.Key, v value.Value) {
	if !value.IsSequence(v) {
		row.Set(k, p.cell(v))
		return
	}
	row.Set(k, value.String(""))
	for j, el := range v.Items() {
		row.Set(k.With(j+1), p.cell(el))
	}
}

// cell reduces v to something a spreadsheet cell can hold. Nested containers
// are kept as their JSON text.
func (p *Projector) cell(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindString:
		if p.Sanitize != nil {
			s, _ := v.Str()
			return value.String(p.Sanitize(s))
		}
		return v
	case value.KindArray, value.KindObject:
		return value.String(v.Text())
	}
	return v
}
