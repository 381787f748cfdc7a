// Package report arranges finished tables into a workbook: named sheets made
// of positioned blocks, plus style and chart hints a sink can render without
// re-scanning the data.
package report

import (
	"maude/internal/aggregate"
	"maude/internal/table"
)

// Sheet names.
const (
	EventsSheet    = "Events"
	TextsSheet     = "MDR_Texts"
	SummarySheet   = "Summary"
	RawSheet       = "Raw_Events"
	AnalyticsSheet = "Analytics"
)

// Tab colors per sheet.
var TabColors = map[string]string{
	EventsSheet:  "1072BA",
	TextsSheet:   "E67E22",
	SummarySheet: "27AE60",
}

// Palette cycles across Summary block headers.
var Palette = []string{"34495E", "27AE60", "E67E22", "8E44AD", "2980B9"}

// Block is one table placed on a sheet. StartRow is the 0-based row of the
// block's header.
type Block struct {
	Table       *table.Table
	StartRow    int
	HeaderColor string
}

// EndRow is the 0-based row of the block's last data row (the header row for
// an empty table).
func (b Block) EndRow() int { return b.StartRow + b.Table.Len() }

type Sheet struct {
	Name     string
	TabColor string
	Blocks   []Block
}

// ChartHint asks the sink for a bar chart over a block's data rows. Rows are
// 0-based sheet rows, inclusive. Columns are 1-based like spreadsheet column
// numbers.
type ChartHint struct {
	Sheet          string `json:"sheet"`
	Table          string `json:"table"`
	Title          string `json:"title"`
	StartRow       int    `json:"start_row"`
	EndRow         int    `json:"end_row"`
	CategoryColumn int    `json:"category_column"`
	ValueColumn    int    `json:"value_column"`
}

// Workbook is the assembled output of one export run.
type Workbook struct {
	RunID  string
	Sheets []*Sheet
	Charts []ChartHint
}

// Sheet returns the named sheet or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Single wraps one table as a one-sheet workbook.
func Single(runID, sheet string, t *table.Table) *Workbook {
	return &Workbook{RunID: runID, Sheets: []*Sheet{single(sheet, t)}}
}

func single(name string, t *table.Table) *Sheet {
	return &Sheet{Name: name, TabColor: TabColors[name], Blocks: []Block{{Table: t}}}
}

// Input carries the tables of a curated export.
type Input struct {
	RunID   string
	Events  *table.Table
	Texts   *table.Table
	Summary aggregate.Summary
	// Raw is the projected table before labeling; nil omits the sheet.
	Raw *table.Table
}

// Assemble lays out the curated workbook: Events, MDR_Texts and Summary, then
// Raw_Events when present.
func Assemble(in Input) *Workbook {
	w := &Workbook{RunID: in.RunID}
	w.Sheets = append(w.Sheets, single(EventsSheet, in.Events))
	if in.Texts != nil {
		w.Sheets = append(w.Sheets, single(TextsSheet, in.Texts))
	}
	summary, charts := Summary(in.Summary)
	w.Sheets = append(w.Sheets, summary)
	w.Charts = append(w.Charts, charts...)
	if in.Raw != nil {
		w.Sheets = append(w.Sheets, single(RawSheet, in.Raw))
	}
	return w
}

// Summary stacks the Summary tables top to bottom in their fixed order. Each
// block is followed by one empty row, and device and patient problem blocks
// with at least two data rows get a chart hint.
func Summary(s aggregate.Summary) (*Sheet, []ChartHint) {
	var tables []*table.Table
	add := func(ts ...*table.Table) {
		for _, t := range ts {
			if t != nil {
				tables = append(tables, t)
			}
		}
	}
	add(s.Totals, s.Demographics)
	add(s.Characteristics...)
	add(s.DeviceProblems, s.PatientProblems)
	add(s.Missing...)

	sheet := &Sheet{Name: SummarySheet, TabColor: TabColors[SummarySheet]}
	var charts []ChartHint
	row := 0
	for i, t := range tables {
		b := Block{Table: t, StartRow: row, HeaderColor: Palette[i%len(Palette)]}
		sheet.Blocks = append(sheet.Blocks, b)
		if (t == s.DeviceProblems || t == s.PatientProblems) && t.Len() >= 2 {
			charts = append(charts, ChartHint{
				Sheet:          SummarySheet,
				Table:          t.Name,
				Title:          t.Name,
				StartRow:       b.StartRow + 1,
				EndRow:         b.EndRow(),
				CategoryColumn: 1,
				ValueColumn:    2,
			})
		}
		row += t.Len() + 2
	}
	return sheet, charts
}
