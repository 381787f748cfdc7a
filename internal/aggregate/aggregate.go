// Package aggregate rolls the labeled Events table up into the Summary
// tables: totals, patient demographics, per-field frequency tables and the
// missing-patient diagnostic.
//
// Groupings select columns by structured key rather than label, so every
// numbered occurrence of a field ("device_brand_name_1", "_2", ...) pools into
// one sequence of values.
package aggregate

import (
	"strings"

	"maude/internal/config"
	"maude/internal/domain"
	"maude/internal/table"
	"maude/internal/value"
)

// Fixed headers of the Summary tables.
const (
	SummaryHeader      = "Summary"
	ValueHeader        = "Value"
	FrequencyHeader    = "Frequency"
	PercentageHeader   = "Percentage"
	DemographicsHeader = "Patient Demographics"
	TotalReports       = "Total Reports"
	MissingTitle       = "Events Missing Patient Data"
)

// Pool returns the non-blank cells of every column whose key equals one of
// prefixes or starts with a prefix followed by "_", row by row.
func Pool(t *table.Table, prefixes []string) []value.Value {
	cols := matching(t, prefixes)
	if len(cols) == 0 {
		return nil
	}
	var out []value.Value
	for _, row := range t.Rows {
		for _, c := range cols {
			if c < len(row) && !row[c].IsBlank() {
				out = append(out, row[c])
			}
		}
	}
	return out
}

func matching(t *table.Table, prefixes []string) []int {
	var cols []int
	for i, col := range t.Columns {
		k := col.Key.String()
		for _, p := range prefixes {
			if p != "" && (k == p || strings.HasPrefix(k, p+"_")) {
				cols = append(cols, i)
				break
			}
		}
	}
	return cols
}

// Summary is the ordered set of tables behind the Summary sheet. Optional
// tables are nil when their grouping has no values.
type Summary struct {
	Totals          *table.Table
	Demographics    *table.Table
	Characteristics []*table.Table
	DeviceProblems  *table.Table
	PatientProblems *table.Table
	// Missing holds a title block followed by the listing, or nothing.
	Missing []*table.Table
}

// Aggregator builds Summary tables from a labeled Events table.
type Aggregator struct {
	Groupings config.Groupings
}

// Summarize computes every Summary table. missing comes from the record
// store, not from the flattened columns.
func (a Aggregator) Summarize(events *table.Table, missing []domain.MissingPatient) Summary {
	s := Summary{
		Totals:       Totals(events.Len()),
		Demographics: a.Demographics(events),
		Missing:      MissingPatients(missing),
	}
	for _, g := range a.Groupings.Tables {
		if ft := FrequencyTable(g, events); ft != nil {
			s.Characteristics = append(s.Characteristics, ft)
		}
	}
	s.DeviceProblems = FrequencyTable(a.Groupings.DeviceProblem, events)
	s.PatientProblems = FrequencyTable(a.Groupings.PatientProblem, events)
	return s
}

// Totals is the single-row "Total Reports" table.
func Totals(n int) *table.Table {
	t := table.New(TotalReports, SummaryHeader, ValueHeader)
	t.Append(value.String(TotalReports), value.Int(int64(n)))
	return t
}

// Demographics lays out age and weight as "median (range)" rows, then the
// sex, ethnicity and race frequencies. Each category's label appears on its
// first row only.
func (a Aggregator) Demographics(t *table.Table) *table.Table {
	g := a.Groupings
	out := table.New(DemographicsHeader, DemographicsHeader, ValueHeader, FrequencyHeader, PercentageHeader)
	out.AppendText(g.Age.Label, Numeric(Pool(t, g.Age.Prefixes)).Format(0))
	out.AppendText(g.Weight.Label, Numeric(Pool(t, g.Weight.Prefixes)).Format(1))
	for _, cat := range []config.Grouping{g.Sex, g.Ethnicity, g.Race} {
		for i, f := range Frequency(Pool(t, cat.Prefixes)) {
			label := ""
			if i == 0 {
				label = cat.Label
			}
			out.Append(text(label), value.String(f.Value), value.Int(int64(f.Count)), value.String(f.PercentText()))
		}
	}
	return out
}

// FrequencyTable pools g's columns into a [label, Frequency, Percentage]
// table named after g.Label. It returns nil when there are no values.
func FrequencyTable(g config.Grouping, t *table.Table) *table.Table {
	freqs := Frequency(Pool(t, g.Prefixes))
	if len(freqs) == 0 {
		return nil
	}
	out := table.New(g.Label, g.Label, FrequencyHeader, PercentageHeader)
	for _, f := range freqs {
		out.Append(value.String(f.Value), value.Int(int64(f.Count)), value.String(f.PercentText()))
	}
	return out
}

// MissingPatients renders the diagnostic as a title block plus an
// [Event ID, Report Number] listing, or nil when every event has a patient.
func MissingPatients(rows []domain.MissingPatient) []*table.Table {
	if len(rows) == 0 {
		return nil
	}
	title := table.New(MissingTitle, SummaryHeader)
	title.AppendText(MissingTitle)
	list := table.New(MissingTitle+" List", "Event ID", "Report Number")
	for _, r := range rows {
		list.Append(value.Int(r.EventID), text(r.ReportNumber))
	}
	return []*table.Table{title, list}
}

func text(s string) value.Value {
	if s == "" {
		return value.Absent()
	}
	return value.String(s)
}
