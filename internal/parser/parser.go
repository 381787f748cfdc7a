// Package parser defines the contract for turning an input stream into event
// documents.
package parser

import (
	"context"
	"io"

	"maude/internal/value"
)

// Parser streams documents decoded from r into out. It returns when the input
// is exhausted, on the first decode error, or when ctx is done. Parse never
// closes out.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, out chan<- value.Value) error
}
