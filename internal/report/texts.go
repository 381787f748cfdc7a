package report

import (
	"sort"

	"maude/internal/domain"
	"maude/internal/flatten"
	"maude/internal/table"
	"maude/internal/transformer"
	"maude/internal/transformer/builtin"
	"maude/internal/value"
)

// MDR_Texts columns.
const (
	TextTypeKey = "text_type_code"
	TextKey     = "text"
)

type textRow struct {
	eventID int64
	link    string
	kind    string
	text    value.Value
}

// Texts lists every narrative sub-record, one row per text, ordered by event
// id and then text type. Strings are sanitized, dates in date columns are
// reformatted, and runs of the same event, link or text type show only their
// first value.
func Texts(recs []domain.Record, linkBase string, datePrefixes []string) *table.Table {
	var rows []textRow
	for _, rec := range recs {
		if rec.Validate() != nil {
			continue
		}
		link := flatten.ReportLink(linkBase, rec)
		for _, txt := range rec.Texts() {
			rows = append(rows, textRow{
				eventID: rec.ID,
				link:    link,
				kind:    txt.Get(TextTypeKey).Text(),
				text:    txt.Get(TextKey),
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].eventID != rows[j].eventID {
			return rows[i].eventID < rows[j].eventID
		}
		return rows[i].kind < rows[j].kind
	})

	t := table.New(TextsSheet, flatten.EventIDKey, flatten.LinkKey, TextTypeKey, TextKey)
	for _, r := range rows {
		cells := []value.Value{value.Int(r.eventID), value.Absent(), value.Absent(), value.Absent()}
		if r.link != "" {
			cells[1] = value.String(r.link)
		}
		if r.kind != "" {
			cells[2] = value.String(r.kind)
		}
		if r.text.IsScalar() {
			cells[3] = r.text
		}
		t.Append(cells...)
	}
	transformer.Chain{
		builtin.Sanitize{},
		builtin.FormatDates{Prefixes: datePrefixes},
		builtin.BlankRepeats{Keys: []string{flatten.EventIDKey, flatten.LinkKey, TextTypeKey}},
	}.Apply(t)
	return t
}
