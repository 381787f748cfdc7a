// Package flatten turns nested adverse-event documents into flat rows keyed by
// structured column keys. Two extractors live here: the Projector, restricted
// to a configured field list, and the Flattener, which keeps every leaf.
package flatten

import (
	"maude/internal/colkey"
	"maude/internal/value"
)

// Reserved column keys.
const (
	EventIDKey = "event_id"
	ErrorKey   = "error"
	LinkKey    = "maude_report_link"
)

// Row is one flattened record: an insertion-ordered mapping from column key to
// scalar cell. event_id is always the first key.
type Row struct {
	EventID int64
	// Err is set when the record could not be flattened; the row then holds
	// only event_id and error.
	Err error

	keys []colkey.Key
	vals []value.Value
	pos  map[string]int
}

// NewRow starts a row for the given record id.
func NewRow(id int64) *Row {
	r := &Row{EventID: id, pos: make(map[string]int)}
	r.Set(colkey.New(EventIDKey), value.Int(id))
	return r
}

// ErrorRow is the substitute row for a record that failed to flatten.
func ErrorRow(id int64, err error) *Row {
	r := NewRow(id)
	r.Err = err
	r.Set(colkey.New(ErrorKey), value.String(err.Error()))
	return r
}

// Set stores v under k. An existing key keeps its position.
func (r *Row) Set(k colkey.Key, v value.Value) {
	s := k.String()
	if i, ok := r.pos[s]; ok {
		r.vals[i] = v
		return
	}
	r.pos[s] = len(r.keys)
	r.keys = append(r.keys, k)
	r.vals = append(r.vals, v)
}

// Has reports whether the rendered key is present.
func (r *Row) Has(key string) bool {
	_, ok := r.pos[key]
	return ok
}

// Get returns the cell stored under the rendered key, or Absent.
func (r *Row) Get(key string) value.Value {
	if i, ok := r.pos[key]; ok {
		return r.vals[i]
	}
	return value.Absent()
}

// Keys returns the column keys in insertion order.
func (r *Row) Keys() []colkey.Key { return r.keys }

// Values returns the cells aligned with Keys.
func (r *Row) Values() []value.Value { return r.vals }

func (r *Row) Len() int { return len(r.keys) }

// Failed reports whether the row is an error marker.
func (r *Row) Failed() bool { return r.Err != nil }
