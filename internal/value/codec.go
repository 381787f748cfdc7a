package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// Parse decodes a single JSON document from b, preserving object key order.
func Parse(b []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	v, err := Read(dec)
	if err != nil {
		return Absent(), err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Absent(), fmt.Errorf("value: trailing data after JSON document")
	}
	return v, nil
}

// Decoder reads a stream of whitespace-separated JSON values (NDJSON or
// concatenated documents).
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	d := json.NewDecoder(r)
	d.UseNumber()
	return &Decoder{dec: d}
}

// Next returns the next value, or io.EOF at the end of the stream.
func (d *Decoder) Next() (Value, error) {
	return Read(d.dec)
}

// JSON exposes the underlying token decoder so callers can walk an envelope
// (e.g. step into a top-level array) before reading elements with Read.
func (d *Decoder) JSON() *json.Decoder { return d.dec }

// Read decodes the next complete JSON value from dec. The decoder should have
// UseNumber enabled; plain float64 tokens are accepted as well.
func Read(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Absent(), err
	}
	return FromToken(dec, tok)
}

// FromToken finishes decoding a value whose first token has already been
// consumed from dec.
func FromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			fields := []Field{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Absent(), unexpectedEOF(err)
				}
				key, ok := kt.(string)
				if !ok {
					return Absent(), fmt.Errorf("value: object key is %T, want string", kt)
				}
				v, err := Read(dec)
				if err != nil {
					return Absent(), unexpectedEOF(err)
				}
				fields = append(fields, Field{Key: key, Value: v})
			}
			if _, err := dec.Token(); err != nil {
				return Absent(), unexpectedEOF(err)
			}
			return Object(fields...), nil
		case '[':
			items := []Value{}
			for dec.More() {
				v, err := Read(dec)
				if err != nil {
					return Absent(), unexpectedEOF(err)
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil {
				return Absent(), unexpectedEOF(err)
			}
			return Array(items...), nil
		}
		return Absent(), fmt.Errorf("value: unexpected delimiter %q", t)
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case float64:
		return Float(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return Absent(), fmt.Errorf("value: unexpected token %T", tok)
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// MarshalJSON encodes v preserving object member order. Absent encodes as
// null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes b into v preserving object member order.
func (v *Value) UnmarshalJSON(b []byte) error {
	parsed, err := Parse(b)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindAbsent, KindNull:
		buf.WriteString("null")
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindNumber:
		if !json.Valid([]byte(v.s)) {
			return fmt.Errorf("value: invalid number %q", v.s)
		}
		buf.WriteString(v.s)
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindArray:
		buf.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := f.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("value: cannot encode kind %s", v.kind)
	}
	return nil
}

// FromAny converts the generic shapes produced by encoding/json (or built by
// hand in Go) into a Value. Map keys are sorted, since Go maps carry no order.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case int32:
		return Int(int64(t)), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Absent(), fmt.Errorf("value: non-finite number %v", t)
		}
		return Float(t), nil
	case []any:
		items := make([]Value, 0, len(t))
		for i, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Absent(), fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, v)
		}
		return Array(items...), nil
	case []string:
		items := make([]Value, 0, len(t))
		for _, s := range t {
			items = append(items, String(s))
		}
		return Array(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(t))
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return Absent(), fmt.Errorf("%s: %w", k, err)
			}
			fields = append(fields, Field{Key: k, Value: v})
		}
		return Object(fields...), nil
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(t))
		for _, k := range keys {
			fields = append(fields, Field{Key: k, Value: String(t[k])})
		}
		return Object(fields...), nil
	}
	return Absent(), fmt.Errorf("value: unsupported Go type %T", x)
}

// MustFromAny is FromAny for literals in tests and static configuration.
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}
