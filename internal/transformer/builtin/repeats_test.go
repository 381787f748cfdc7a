package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"maude/internal/table"
)

func TestBlankRepeats(t *testing.T) {
	t.Parallel()

	tbl := table.New("MDR_Texts", "event_id", "maude_report_link", "text_type_code", "text")
	tbl.AppendText("1", "L1", "Description", "a")
	tbl.AppendText("1", "L1", "Manufacturer Narrative", "b")
	tbl.AppendText("2", "L2", "Manufacturer Narrative", "b")
	tbl.AppendText("2", "L2", "Description", "c")

	BlankRepeats{Keys: []string{"event_id", "maude_report_link", "text_type_code", "missing"}}.Apply(tbl)

	got := make([][]string, tbl.Len())
	for r := range tbl.Rows {
		for c := range tbl.Columns {
			got[r] = append(got[r], tbl.Cell(r, c).Text())
		}
	}
	assert.Equal(t, [][]string{
		{"1", "L1", "Description", "a"},
		{"", "", "Manufacturer Narrative", "b"},
		{"2", "L2", "", "b"},
		{"", "", "Description", "c"},
	}, got)
}
