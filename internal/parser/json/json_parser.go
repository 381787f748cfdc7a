// Package json decodes adverse-event documents from JSON input.
//
// Three shapes are accepted, and may be mixed in one stream:
//
//   - an openFDA envelope: {"meta": {...}, "results": [ {...}, {...} ]}
//   - a top-level array of objects: [ {...}, {...} ]
//   - newline-delimited or concatenated objects: {...}\n{...}
//
// Objects keep their key order. Non-object array elements are skipped and
// counted.
package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"maude/internal/config"
	"maude/internal/value"
)

// DefaultEnvelopeKey is the openFDA results field.
const DefaultEnvelopeKey = "results"

// Options configures the decoder.
type Options struct {
	// EnvelopeKey names the array field of an envelope object. An object is
	// treated as an envelope only when this field holds an array.
	EnvelopeKey string
}

// FromConfigOptions builds Options from a generic options map. Recognized key:
// "envelope_key" (string).
func FromConfigOptions(o config.Options) Options {
	return Options{EnvelopeKey: o.String("envelope_key", DefaultEnvelopeKey)}
}

// Decoder yields documents one at a time.
type Decoder struct {
	dec     *value.Decoder
	opt     Options
	inArray bool
	queue   []value.Value
	skipped int
}

// NewDecoder constructs a Decoder reading r.
func NewDecoder(r io.Reader, opt Options) *Decoder {
	if opt.EnvelopeKey == "" {
		opt.EnvelopeKey = DefaultEnvelopeKey
	}
	return &Decoder{dec: value.NewDecoder(r), opt: opt}
}

// Skipped reports how many non-object elements were dropped so far.
func (d *Decoder) Skipped() int { return d.skipped }

// Next returns the next document, or io.EOF when the stream is exhausted.
func (d *Decoder) Next() (value.Value, error) {
	for {
		if len(d.queue) > 0 {
			v := d.queue[0]
			d.queue = d.queue[1:]
			if v.Kind() != value.KindObject {
				d.skipped++
				continue
			}
			return v, nil
		}

		js := d.dec.JSON()
		if d.inArray {
			if js.More() {
				v, err := value.Read(js)
				if err != nil {
					return value.Absent(), fmt.Errorf("json parser: decode element: %w", err)
				}
				if v.Kind() != value.KindObject {
					d.skipped++
					continue
				}
				return v, nil
			}
			if _, err := js.Token(); err != nil {
				if errors.Is(err, io.EOF) {
					err = io.ErrUnexpectedEOF
				}
				return value.Absent(), fmt.Errorf("json parser: close array: %w", err)
			}
			d.inArray = false
			continue
		}

		tok, err := js.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return value.Absent(), io.EOF
			}
			return value.Absent(), fmt.Errorf("json parser: decode: %w", err)
		}
		if delim, ok := tok.(json.Delim); ok && delim == '[' {
			d.inArray = true
			continue
		}
		v, err := value.FromToken(js, tok)
		if err != nil {
			return value.Absent(), fmt.Errorf("json parser: decode: %w", err)
		}
		switch {
		case v.Kind() != value.KindObject:
			d.skipped++
		case v.Get(d.opt.EnvelopeKey).Kind() == value.KindArray:
			d.queue = append(d.queue, v.Get(d.opt.EnvelopeKey).Items()...)
		default:
			return v, nil
		}
	}
}

// Parser implements parser.Parser for JSON input.
type Parser struct {
	Options Options
}

// Parse streams every document of r into out.
func (p Parser) Parse(ctx context.Context, r io.Reader, out chan<- value.Value) error {
	d := NewDecoder(r, p.Options)
	for {
		v, err := d.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		select {
		case out <- v:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// DecodeAll is a helper for non-streaming use (tests, small inputs).
func DecodeAll(r io.Reader, opt Options) ([]value.Value, error) {
	d := NewDecoder(r, opt)
	var out []value.Value
	for {
		v, err := d.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}
