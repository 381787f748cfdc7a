package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maude/internal/value"
)

func TestSplitDoc(t *testing.T) {
	t.Parallel()

	doc, err := value.Parse([]byte(`{
	  "report_number": "R-1", "mdr_report_key": 42, "event_type": null,
	  "device": [{"brand_name": "Pump", "device_sequence_number": "1"}, "junk"],
	  "patient": [{"patient_sequence_number": 1, "patient_age": "37 YR"}],
	  "mdr_text": [{"text_type_code": "Description of Event or Problem", "text": "leak"}]
	}`))
	require.NoError(t, err)

	s, err := SplitDoc(doc)
	require.NoError(t, err)

	require.Len(t, s.Event, len(EventColumns))
	assert.Equal(t, "R-1", s.Event[0])
	assert.Equal(t, "42", s.Event[1])
	assert.Nil(t, s.Event[2], "null stays NULL")
	assert.Nil(t, s.Event[3], "absent stays NULL")
	assert.Equal(t, s.Hash, s.Event[4])
	assert.False(t, strings.ContainsAny(s.Event[5].(string), "\n\t"), "raw json is compact")

	require.Len(t, s.Devices, 1, "non-object entries are skipped")
	assert.Len(t, s.Devices[0], len(DeviceColumns))
	assert.Nil(t, s.Devices[0][0], "event_id left for the store")
	assert.Equal(t, "Pump", s.Devices[0][2])

	require.Len(t, s.Patients, 1)
	assert.Equal(t, "1", s.Patients[0][1])
	assert.Equal(t, "37 YR", s.Patients[0][2])

	require.Len(t, s.Texts, 1)
	assert.Equal(t, "leak", s.Texts[0][3])
}

func TestSplitDoc_NotObject(t *testing.T) {
	t.Parallel()

	_, err := SplitDoc(value.Array(value.Int(1)))
	require.Error(t, err)
}

func TestContentHash(t *testing.T) {
	t.Parallel()

	a := ContentHash([]byte(`{"a":1}`))
	assert.Len(t, a, 32)
	assert.Equal(t, a, ContentHash([]byte(`{"a":1}`)))
	assert.NotEqual(t, a, ContentHash([]byte(`{"a":2}`)))
}

func TestSchema(t *testing.T) {
	t.Parallel()

	stmts := Schema(Types{
		ID: "id INTEGER PRIMARY KEY", Text: "TEXT", Long: "TEXT", Hash: "TEXT",
		CreateIndex: IndexIfNotExists,
	})
	require.Len(t, stmts, 7)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS events ("))
	assert.Contains(t, stmts[0], "raw_hash TEXT NOT NULL UNIQUE")
	assert.Contains(t, stmts[3], "text TEXT")
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS idx_patients_event_id ON patients (event_id)", stmts[5])

	inline := Schema(Types{ID: "id BIGINT", Text: "T", Long: "L", Hash: "H", InlineIndex: true})
	require.Len(t, inline, 4)
	assert.Contains(t, inline[1], "INDEX idx_devices_event_id (event_id)")
}

func TestSQLStoreStatements(t *testing.T) {
	t.Parallel()

	s := NewSQLStore(nil, Dialect{Name: "x", Bind: func(n int) string { return "$" + string(rune('0'+n)) }, Returning: "RETURNING id"})
	assert.Equal(t, "INSERT INTO events (report_number, mdr_report_key, event_type, date_received, raw_hash, raw_json) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id", s.insertEvent)
	assert.Equal(t, "SELECT id FROM events WHERE raw_hash = $1", s.findHash)

	o := NewSQLStore(nil, Dialect{Name: "y", Output: "OUTPUT INSERTED.id"})
	assert.Contains(t, o.insertEvent, ") OUTPUT INSERTED.id VALUES (?, ?")
}
