// Package datasource defines where raw event JSON comes from.
package datasource

import (
	"context"
	"io"
)

// Source opens a byte stream of event JSON. Callers close the reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
