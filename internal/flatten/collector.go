package flatten

import (
	"maude/internal/colkey"
	"maude/internal/table"
	"maude/internal/value"
)

// Chunking defaults for large full-fidelity exports.
const (
	DefaultChunkSize      = 1000
	DefaultChunkThreshold = 5000
)

// Collector folds rows into one dense table. Columns appear in first-seen
// order across all rows.
//
// When the expected row count exceeds Threshold, pending rows are folded every
// ChunkSize rows so sparse per-row maps do not accumulate; otherwise they are
// folded once in Table. Both paths produce the same table.
type Collector struct {
	ChunkSize int
	Threshold int
	// OnChunk, when set, is called after each chunk is folded with the chunk
	// number (from 1) and the number of rows folded so far.
	OnChunk func(chunk, rows int)

	tbl     *table.Table
	index   map[string]int
	pending []*Row
	chunked bool
	chunks  int
	failed  int
}

// NewCollector prepares a collector for roughly total rows.
func NewCollector(name string, total, chunkSize, threshold int) *Collector {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if threshold <= 0 {
		threshold = DefaultChunkThreshold
	}
	return &Collector{
		ChunkSize: chunkSize,
		Threshold: threshold,
		tbl:       &table.Table{Name: name},
		index:     make(map[string]int),
		chunked:   total > threshold,
	}
}

// Chunked reports whether rows are being folded in chunks.
func (c *Collector) Chunked() bool { return c.chunked }

// Add queues a row.
func (c *Collector) Add(r *Row) {
	if r.Failed() {
		c.failed++
	}
	c.pending = append(c.pending, r)
	if c.chunked && len(c.pending) >= c.ChunkSize {
		c.fold()
	}
}

// Failed is the number of error rows added so far.
func (c *Collector) Failed() int { return c.failed }

// Rows is the number of rows added so far.
func (c *Collector) Rows() int { return len(c.tbl.Rows) + len(c.pending) }

// Table folds anything pending and returns the dense table. Rows shorter than
// the final column set are padded with blanks.
func (c *Collector) Table() *table.Table {
	c.fold()
	width := len(c.tbl.Columns)
	for i, row := range c.tbl.Rows {
		if len(row) < width {
			padded := make([]value.Value, width)
			copy(padded, row)
			c.tbl.Rows[i] = padded
		}
	}
	return c.tbl
}

func (c *Collector) fold() {
	if len(c.pending) == 0 {
		return
	}
	for _, r := range c.pending {
		keys, vals := r.Keys(), r.Values()
		for _, k := range keys {
			c.column(k)
		}
		dense := make([]value.Value, len(c.tbl.Columns))
		for i, k := range keys {
			dense[c.index[k.String()]] = vals[i]
		}
		c.tbl.Rows = append(c.tbl.Rows, dense)
	}
	clear(c.pending)
	c.pending = c.pending[:0]
	if c.chunked {
		c.chunks++
		if c.OnChunk != nil {
			c.OnChunk(c.chunks, len(c.tbl.Rows))
		}
	}
}

func (c *Collector) column(k colkey.Key) {
	s := k.String()
	if _, ok := c.index[s]; ok {
		return
	}
	c.index[s] = len(c.tbl.Columns)
	c.tbl.Columns = append(c.tbl.Columns, table.Column{Key: k})
}
