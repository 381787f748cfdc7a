// Package storagetest holds a conformance suite run against every
// storage.Store backend. Backends that need a live server gate it on an
// environment DSN.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maude/internal/storage"
	"maude/internal/value"
)

// Docs parses each JSON literal into a document.
func Docs(tb testing.TB, raws ...string) []value.Value {
	tb.Helper()
	out := make([]value.Value, 0, len(raws))
	for _, s := range raws {
		v, err := value.Parse([]byte(s))
		require.NoError(tb, err)
		out = append(out, v)
	}
	return out
}

const (
	withPatient = `{"report_number":"S-1","event_type":"Injury",
	  "device":[{"brand_name":"Pump"}],
	  "patient":[{"patient_sequence_number":"1","patient_sex":"Female"}],
	  "mdr_text":[{"text_type_code":"Description of Event or Problem","text":"leak"}]}`
	withoutPatient = `{"report_number":"S-2","event_type":"Malfunction","device":[{"brand_name":"Valve"}]}`
)

// Run clears s, then checks insert, dedup, scan order, missing patients,
// counts and clear.
func Run(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Clear(ctx))
	t.Cleanup(func() { _ = s.Clear(context.Background()) })

	res, err := s.Insert(ctx, Docs(t, withPatient, withoutPatient, withPatient))
	require.NoError(t, err)
	assert.Equal(t, storage.InsertResult{Inserted: 2, Duplicates: 1}, res)

	var reports []string
	var last int64
	require.NoError(t, s.Scan(ctx, func(raw storage.Raw) error {
		rec, err := raw.Record()
		if err != nil {
			return err
		}
		assert.Greater(t, raw.ID, last, "ids increase")
		last = raw.ID
		reports = append(reports, rec.ReportNumber())
		return nil
	}))
	assert.Equal(t, []string{"S-1", "S-2"}, reports)

	missing, err := s.MissingPatients(ctx)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "S-2", missing[0].ReportNumber)
	assert.Equal(t, last, missing[0].EventID)

	c, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.Counts{Events: 2, Devices: 2, Patients: 1, Texts: 1}, c)

	require.NoError(t, s.Clear(ctx))
	c, err = s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.Counts{}, c)
}
