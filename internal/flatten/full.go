package flatten

import (
	"fmt"
	"strconv"

	"maude/internal/colkey"
	"maude/internal/domain"
	"maude/internal/value"
)

// DefaultSep joins path segments in full-fidelity keys.
const DefaultSep = "_"

// Flattener keeps every scalar leaf of a document, at any depth, under a key
// made of its path segments. Object members append their name; array elements
// append their 1-based position:
//
//	{"device":[{"openfda":{"device_class":"2"}}]} -> device_1_openfda_device_class="2"
//
// Two different leaves can render to the same key (for example "a_b" next to
// {"a":{"b":...}}); the later one is stored under "<key>~2", "<key>~3" and so
// on, so nothing is overwritten.
type Flattener struct {
	Sep      string
	Sanitize func(string) string
}

// Flatten returns the full-fidelity row for rec. A document that is not an
// object has no named leaves and is reported as an error.
func (f Flattener) Flatten(rec domain.Record) (*Row, error) {
	if rec.Doc.Kind() != value.KindObject {
		return nil, fmt.Errorf("flatten: record %d: document is %s, want object", rec.ID, rec.Doc.Kind())
	}
	sep := f.Sep
	if sep == "" {
		sep = DefaultSep
	}
	row := NewRow(rec.ID)
	for _, fld := range rec.Doc.Fields() {
		f.walk(row, sep, fld.Key, fld.Value)
	}
	return row, nil
}

func (f Flattener) walk(row *Row, sep, path string, v value.Value) {
	switch v.Kind() {
	case value.KindObject:
		for _, fld := range v.Fields() {
			f.walk(row, sep, path+sep+fld.Key, fld.Value)
		}
	case value.KindArray:
		for i, el := range v.Items() {
			f.walk(row, sep, path+sep+strconv.Itoa(i+1), el)
		}
	case value.KindString:
		s, _ := v.Str()
		if f.Sanitize != nil {
			s = f.Sanitize(s)
		}
		f.emit(row, path, value.String(s))
	case value.KindNull:
		f.emit(row, path, value.Null())
	default:
		f.emit(row, path, v)
	}
}

func (f Flattener) emit(row *Row, path string, v value.Value) {
	key := path
	for n := 2; row.Has(key); n++ {
		key = path + "~" + strconv.Itoa(n)
	}
	row.Set(colkey.Parse(key), v)
}

// LeafCount counts the scalar leaves (nulls included) reachable from v.
func LeafCount(v value.Value) int {
	switch v.Kind() {
	case value.KindObject:
		n := 0
		for _, f := range v.Fields() {
			n += LeafCount(f.Value)
		}
		return n
	case value.KindArray:
		n := 0
		for _, el := range v.Items() {
			n += LeafCount(el)
		}
		return n
	case value.KindAbsent:
		return 0
	}
	return 1
}
