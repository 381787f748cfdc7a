package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maude/internal/value"
)

func TestRecordAccessors(t *testing.T) {
	t.Parallel()

	doc, err := value.Parse([]byte(`{
		"report_number": "3001234-2023-00001",
		"mdr_report_key": 1234,
		"device": [{"brand_name": "AcmeStent"}, {"brand_name": "Other"}],
		"patient": [{"patient_sex": "F"}],
		"mdr_text": null
	}`))
	require.NoError(t, err)

	r := Record{ID: 7, Doc: doc}
	require.NoError(t, r.Validate())

	assert.Equal(t, "3001234-2023-00001", r.ReportNumber())
	assert.Equal(t, "1234", r.MDRReportKey())
	assert.Len(t, r.Devices(), 2)
	assert.Len(t, r.Patients(), 1)
	assert.Empty(t, r.Texts())
	assert.Equal(t, "Other", r.Devices()[1].Get("brand_name").Text())
}

func TestRecordValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"minimal", `{}`, ""},
		{"not_object", `[1,2]`, "document is array"},
		{"device_scalar", `{"device":"x"}`, "device is string"},
		{"patient_object", `{"patient":{"patient_age":"1"}}`, "patient is object"},
		{"text_element", `{"mdr_text":[{"text":"ok"}, 3]}`, "mdr_text[1] is number"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc, err := value.Parse([]byte(tc.doc))
			require.NoError(t, err)

			err = Record{ID: 1, Doc: doc}.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseFieldPaths(t *testing.T) {
	t.Parallel()

	got := ParseFieldPaths([]string{"report_number", " device.brand_name ", "", "patient.patient_problems", "a.b.c"})
	require.Len(t, got, 4)

	assert.Equal(t, FieldPath{Name: "report_number"}, got[0])
	assert.True(t, got[0].TopLevel())
	assert.Equal(t, FieldPath{Prefix: "device", Name: "brand_name"}, got[1])
	assert.Equal(t, "patient.patient_problems", got[2].String())
	assert.Equal(t, FieldPath{Prefix: "a", Name: "b.c"}, got[3])
}
