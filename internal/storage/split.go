package storage

import (
	"fmt"

	"maude/internal/domain"
	"maude/internal/value"
)

// Column lists of the normalized tables, in insert order.
var (
	EventColumns   = []string{"report_number", "mdr_report_key", "event_type", "date_received", "raw_hash", "raw_json"}
	DeviceColumns  = []string{"event_id", "device_sequence_number", "brand_name", "generic_name", "manufacturer_d_name", "model_number", "device_report_product_code", "raw_json"}
	PatientColumns = []string{"event_id", "patient_sequence_number", "patient_age", "patient_sex", "raw_json"}
	TextColumns    = []string{"event_id", "text_type_code", "patient_sequence_number", "text", "mdr_text_key"}
)

// Split is an event document broken into the values of its normalized rows.
// Sub-record rows leave event_id (their first column) unset; the store fills
// it once the event id is known.
type Split struct {
	Hash     string
	Event    []any
	Devices  [][]any
	Patients [][]any
	Texts    [][]any
}

// SplitDoc canonicalizes doc and extracts the row values for every table.
// Scalar fields are stored as text; missing fields become NULL.
func SplitDoc(doc value.Value) (Split, error) {
	if doc.Kind() != value.KindObject {
		return Split{}, fmt.Errorf("storage: document is %s, want object", doc.Kind())
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		return Split{}, fmt.Errorf("storage: encode: %w", err)
	}
	rec := domain.Record{Doc: doc}
	s := Split{Hash: ContentHash(raw)}
	s.Event = []any{
		nullable(doc.Get("report_number")),
		nullable(doc.Get("mdr_report_key")),
		nullable(doc.Get("event_type")),
		nullable(doc.Get("date_received")),
		s.Hash,
		string(raw),
	}
	for _, d := range objects(rec.Devices()) {
		s.Devices = append(s.Devices, []any{
			nil,
			nullable(d.Get("device_sequence_number")),
			nullable(d.Get("brand_name")),
			nullable(d.Get("generic_name")),
			nullable(d.Get("manufacturer_d_name")),
			nullable(d.Get("model_number")),
			nullable(d.Get("device_report_product_code")),
			jsonText(d),
		})
	}
	for _, p := range objects(rec.Patients()) {
		s.Patients = append(s.Patients, []any{
			nil,
			nullable(p.Get("patient_sequence_number")),
			nullable(p.Get("patient_age")),
			nullable(p.Get("patient_sex")),
			jsonText(p),
		})
	}
	for _, t := range objects(rec.Texts()) {
		s.Texts = append(s.Texts, []any{
			nil,
			nullable(t.Get("text_type_code")),
			nullable(t.Get("patient_sequence_number")),
			nullable(t.Get("text")),
			nullable(t.Get("mdr_text_key")),
		})
	}
	return s, nil
}

func objects(vs []value.Value) []value.Value {
	out := vs[:0:0]
	for _, v := range vs {
		if v.Kind() == value.KindObject {
			out = append(out, v)
		}
	}
	return out
}

func nullable(v value.Value) any {
	if v.IsAbsent() || v.Kind() == value.KindNull {
		return nil
	}
	return v.Text()
}

func jsonText(v value.Value) string {
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}
