// Package transformer defines in-place table rewrites applied between
// collection and assembly.
package transformer

import "maude/internal/table"

// Transformer rewrites a table in place.
type Transformer interface{ Apply(*table.Table) }

// Func adapts a plain function to Transformer.
type Func func(*table.Table)

func (f Func) Apply(t *table.Table) { f(t) }

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(t *table.Table) {
	for _, tr := range c {
		tr.Apply(t)
	}
}
