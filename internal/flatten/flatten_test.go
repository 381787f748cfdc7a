package flatten

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maude/internal/domain"
	"maude/internal/value"
)

func record(t *testing.T, id int64, doc string) domain.Record {
	t.Helper()
	v, err := value.Parse([]byte(doc))
	require.NoError(t, err)
	return domain.Record{ID: id, Doc: v}
}

func keys(r *Row) []string {
	out := make([]string, 0, r.Len())
	for _, k := range r.Keys() {
		out = append(out, k.String())
	}
	return out
}

func TestProject_ScenarioA(t *testing.T) {
	t.Parallel()

	rec := record(t, 7, `{
		"device": [{"brand_name": "AcmeStent"}],
		"patient": [{"patient_age": "45 YR", "patient_sex": "F"}],
		"mdr_report_key": "1234"
	}`)
	p := NewProjector(domain.ParseFieldPaths([]string{
		"device.brand_name", "patient.patient_age", "patient.patient_sex",
	}), "")

	row, err := p.Project(rec)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"event_id",
		"device_brand_name_1",
		"patient_patient_age_1",
		"patient_patient_sex_1",
		"maude_report_link",
	}, keys(row))
	assert.Equal(t, "7", row.Get("event_id").Text())
	assert.Equal(t, "AcmeStent", row.Get("device_brand_name_1").Text())
	assert.Equal(t, "45 YR", row.Get("patient_patient_age_1").Text())
	assert.Equal(t, "F", row.Get("patient_patient_sex_1").Text())
	assert.Equal(t, DefaultLinkBase+"?mdrfoi__id=1234", row.Get("maude_report_link").Text())
}

func TestProject_ArraysAndContiguity(t *testing.T) {
	t.Parallel()

	rec := record(t, 3, `{
		"product_problems": ["Break", "Leak"],
		"device": [{"lot_number": "L1"}, {}, {"lot_number": "L3"}],
		"patient": [{"patient_problems": ["Pain", "Fever"], "sequence_number_outcome": "H"}]
	}`)
	p := NewProjector(domain.ParseFieldPaths([]string{
		"product_problems", "report_number",
		"device.lot_number",
		"patient.patient_problems", "patient.sequence_number_outcome",
		"mdr_text.text",
	}), "")

	row, err := p.Project(rec)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"event_id",
		"product_problems", "product_problems_1", "product_problems_2",
		"report_number",
		"device_lot_number_1", "device_lot_number_2", "device_lot_number_3",
		"patient_patient_problems_1", "patient_patient_problems_1_1", "patient_patient_problems_1_2",
		"patient_sequence_number_outcome_1",
		"maude_report_link",
	}, keys(row))

	assert.True(t, row.Get("product_problems").IsBlank())
	assert.Equal(t, "Leak", row.Get("product_problems_2").Text())
	assert.True(t, row.Get("report_number").IsBlank())
	assert.True(t, row.Get("device_lot_number_2").IsBlank(), "missing field in an occurrence keeps its slot")
	assert.Equal(t, "L3", row.Get("device_lot_number_3").Text())
	assert.Equal(t, "Fever", row.Get("patient_patient_problems_1_2").Text())
	assert.True(t, row.Get("maude_report_link").IsBlank())
}

func TestProject_MalformedRecord(t *testing.T) {
	t.Parallel()

	rec := record(t, 9, `{"device": "not-an-array"}`)
	_, err := NewProjector(nil, "").Project(rec)
	require.Error(t, err)

	row := ErrorRow(rec.ID, err)
	assert.True(t, row.Failed())
	assert.Equal(t, []string{"event_id", "error"}, keys(row))
	assert.Contains(t, row.Get("error").Text(), "device is string")
}

func TestProject_SanitizesStrings(t *testing.T) {
	t.Parallel()

	rec := record(t, 1, `{"event_type": "x\u0007y"}`)
	p := NewProjector(domain.ParseFieldPaths([]string{"event_type"}), "")
	p.Sanitize = func(s string) string { return strings.ReplaceAll(s, "\a", "") }

	row, err := p.Project(rec)
	require.NoError(t, err)
	assert.Equal(t, "xy", row.Get("event_type").Text())
}

func TestProject_Deterministic(t *testing.T) {
	t.Parallel()

	doc := `{"z":"1","device":[{"b":"x","a":["p","q"]}],"patient":[{"c":"y"}]}`
	p := NewProjector(domain.ParseFieldPaths([]string{"z", "device.a", "device.b", "patient.c"}), "")

	r1, err := p.Project(record(t, 5, doc))
	require.NoError(t, err)
	r2, err := p.Project(record(t, 5, doc))
	require.NoError(t, err)

	assert.Equal(t, keys(r1), keys(r2))
	for i, v := range r1.Values() {
		assert.True(t, v.Equal(r2.Values()[i]))
	}
}

func TestReportLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no_key", `{"device":[{"device_report_product_code":"DQY","device_sequence_number":"1"}]}`, ""},
		{"key_only", `{"mdr_report_key":"55"}`, DefaultLinkBase + "?mdrfoi__id=55"},
		{"full", `{"mdr_report_key":"55","device":[{"device_report_product_code":"DQY","device_sequence_number":"1"}]}`,
			DefaultLinkBase + "?mdrfoi__id=55&pc=DQY&device_sequence_no=1"},
		{"missing_seq", `{"mdr_report_key":"55","device":[{"device_report_product_code":"DQY"}]}`,
			DefaultLinkBase + "?mdrfoi__id=55"},
		{"second_device_ignored", `{"mdr_report_key":"55","device":[{},{"device_report_product_code":"DQY","device_sequence_number":"2"}]}`,
			DefaultLinkBase + "?mdrfoi__id=55"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ReportLink("", record(t, 1, tc.doc)))
		})
	}
}

func TestFlatten_LeafCompleteness(t *testing.T) {
	t.Parallel()

	doc := `{
		"report_number": "R1",
		"type_of_report": ["Initial submission"],
		"device": [{"brand_name": "A", "openfda": {"device_class": "2", "fei_number": ["1", "2"]}}],
		"matrix": [[1, 2], [3]],
		"empty": {},
		"none": [],
		"flag": false,
		"gone": null
	}`
	rec := record(t, 11, doc)

	row, err := Flattener{}.Flatten(rec)
	require.NoError(t, err)

	assert.Equal(t, LeafCount(rec.Doc)+1, row.Len())
	assert.Equal(t, []string{
		"event_id",
		"report_number",
		"type_of_report_1",
		"device_1_brand_name",
		"device_1_openfda_device_class",
		"device_1_openfda_fei_number_1",
		"device_1_openfda_fei_number_2",
		"matrix_1_1",
		"matrix_1_2",
		"matrix_2_1",
		"flag",
		"gone",
	}, keys(row))
	assert.Equal(t, "false", row.Get("flag").Text())
	assert.True(t, row.Get("gone").IsBlank())
	assert.Equal(t, "3", row.Get("matrix_2_1").Text())
}

func TestFlatten_CollisionsKeepEveryLeaf(t *testing.T) {
	t.Parallel()

	rec := record(t, 2, `{"a_b": "flat", "a": {"b": "nested"}, "event_id": "doc"}`)
	row, err := Flattener{}.Flatten(rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"event_id", "a_b", "a_b~2", "event_id~2"}, keys(row))
	assert.Equal(t, "2", row.Get("event_id").Text())
	assert.Equal(t, "nested", row.Get("a_b~2").Text())
	assert.Equal(t, "doc", row.Get("event_id~2").Text())
}

func TestFlatten_CustomSepAndNonObject(t *testing.T) {
	t.Parallel()

	row, err := Flattener{Sep: "."}.Flatten(record(t, 1, `{"a":{"b":[true]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"event_id", "a.b.1"}, keys(row))

	_, err = Flattener{}.Flatten(record(t, 1, `[1]`))
	require.Error(t, err)
}

func TestCollector_ChunkingDoesNotChangeOutput(t *testing.T) {
	t.Parallel()

	var rows []*Row
	for i := 1; i <= 25; i++ {
		doc := fmt.Sprintf(`{"a":"%d"}`, i)
		if i%7 == 0 {
			doc = fmt.Sprintf(`{"a":"%d","extra_%d":"x"}`, i, i)
		}
		r, err := Flattener{}.Flatten(record(t, int64(i), doc))
		require.NoError(t, err)
		rows = append(rows, r)
	}
	rows = append(rows, ErrorRow(99, errors.New("bad")))

	whole := NewCollector("raw", len(rows), 4, 1000)
	chunked := NewCollector("raw", len(rows), 4, 10)
	var calls int
	chunked.OnChunk = func(chunk, n int) { calls++ }
	require.False(t, whole.Chunked())
	require.True(t, chunked.Chunked())

	for _, r := range rows {
		whole.Add(r)
		chunked.Add(r)
	}
	a, b := whole.Table(), chunked.Table()

	assert.Equal(t, a.Headers(), b.Headers())
	assert.Equal(t, []string{"event_id", "a", "extra_7", "extra_14", "extra_21", "error"}, a.Headers())
	require.Equal(t, len(a.Rows), len(b.Rows))
	for i := range a.Rows {
		require.Len(t, b.Rows[i], len(a.Columns))
		for j := range a.Rows[i] {
			assert.True(t, a.Rows[i][j].Equal(b.Rows[i][j]), "row %d col %d", i, j)
		}
	}
	assert.Equal(t, 1, chunked.Failed())
	assert.Equal(t, 26, chunked.Rows())
	assert.Equal(t, 7, calls)
}
