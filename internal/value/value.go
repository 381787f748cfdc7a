// Package value provides the tagged-variant document model used for adverse
// event records.
//
// A Value is one of Absent, Null, String, Number, Bool, Array, or Object.
// Objects keep their source key order so that anything derived from a record
// (column keys, column order) is reproducible across runs. Lookups never
// panic: asking a non-object for a key, or an object for a missing key, yields
// Absent rather than an error or a zero value that could be confused with
// real data.
package value

import (
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Field is one key/value member of an Object.
type Field struct {
	Key   string
	Value Value
}

// Value is an immutable JSON-like value. The zero Value is Absent.
type Value struct {
	kind   Kind
	s      string // string payload, or the decimal text of a number
	b      bool
	items  []Value
	fields []Field
}

// Absent returns the "not present" marker.
func Absent() Value { return Value{} }

// Null returns an explicit JSON null.
func Null() Value { return Value{kind: KindNull} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number wraps the decimal text of a number. The text is kept verbatim so
// large identifiers do not lose precision.
func Number(text string) Value { return Value{kind: KindNumber, s: text} }

// Int wraps an integer.
func Int(n int64) Value { return Number(strconv.FormatInt(n, 10)) }

// Float wraps a float using the shortest round-trip representation.
func Float(f float64) Value { return Number(strconv.FormatFloat(f, 'f', -1, 64)) }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Array builds an array from items. The slice is retained.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}

// Object builds an object from fields, in the given order. The slice is
// retained.
func Object(fields ...Field) Value {
	if fields == nil {
		fields = []Field{}
	}
	return Value{kind: KindObject, fields: fields}
}

// F is shorthand for constructing an object Field.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsScalar reports whether v is a leaf: string, number, bool or null.
func (v Value) IsScalar() bool {
	switch v.kind {
	case KindString, KindNumber, KindBool, KindNull:
		return true
	}
	return false
}

// IsBlank reports whether v carries no data: absent, null, or a string that is
// empty after trimming whitespace. Containers are never blank.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindAbsent, KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.s) == ""
	}
	return false
}

// Text renders a scalar as a string. Absent and Null render as "". Containers
// render as their compact JSON encoding.
func (v Value) Text() string {
	switch v.kind {
	case KindAbsent, KindNull:
		return ""
	case KindString, KindNumber:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

// Str returns the string payload and true when v is a String.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Float64 returns the numeric value of a Number.
func (v Value) Float64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Items returns the elements of an Array, or nil.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.items
}

// Fields returns the members of an Object in source order, or nil.
func (v Value) Fields() []Field {
	if v.kind != KindObject {
		return nil
	}
	return v.fields
}

// Len returns the number of array elements or object members.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.fields)
	}
	return 0
}

// Get returns the value stored under key in an Object. Duplicate keys resolve
// to the last occurrence, matching encoding/json. Non-objects and missing keys
// yield Absent.
func (v Value) Get(key string) Value {
	if v.kind != KindObject {
		return Absent()
	}
	for i := len(v.fields) - 1; i >= 0; i-- {
		if v.fields[i].Key == key {
			return v.fields[i].Value
		}
	}
	return Absent()
}

// Index returns the i-th element of an Array, or Absent when out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Absent()
	}
	return v.items[i]
}

// Equal reports deep equality. Object member order is significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindAbsent, KindNull:
		return true
	case KindString, KindNumber:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindArray:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Key != o.fields[i].Key || !v.fields[i].Value.Equal(o.fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) GoString() string {
	if v.kind == KindAbsent {
		return "value.Absent()"
	}
	return "value." + v.kind.String() + "(" + v.Text() + ")"
}
