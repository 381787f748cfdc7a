// Package file implements a local filesystem-backed data source.
//
// openFDA bulk downloads ship as "*.json.zip" archives; those and gzip files
// are decompressed transparently, so a Local reads the same JSON whether or
// not the download was unpacked.
package file

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local is a filesystem data source that opens files from the local disk.
type Local struct{ path string }

// NewLocal returns a Local data source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured path.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading.
//
// Behavior:
//   - If ctx is already done, Open returns its error without touching the
//     filesystem.
//   - ".zip" archives yield the concatenation of their ".json" members in
//     archive order, separated by newlines.
//   - ".gz" files are gunzipped.
//   - Filesystem errors are wrapped with the path and still match
//     errors.Is(err, os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".zip":
		return openZip(l.path)
	case ".gz":
		f, err := os.Open(l.path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", l.path, err)
		}
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("gunzip %s: %w", l.path, err)
		}
		return &multiCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

func openZip(path string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	mc := &multiCloser{closers: []io.Closer{zr}}
	var readers []io.Reader
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".json") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			_ = mc.Close()
			return nil, fmt.Errorf("open %s!%s: %w", path, f.Name, err)
		}
		mc.closers = append(mc.closers, rc)
		readers = append(readers, rc, strings.NewReader("\n"))
	}
	if len(readers) == 0 {
		_ = mc.Close()
		return nil, fmt.Errorf("open %s: archive has no .json members", path)
	}
	mc.Reader = io.MultiReader(readers...)
	return mc, nil
}

// multiCloser closes every underlying closer, in order, returning the first
// error.
type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
