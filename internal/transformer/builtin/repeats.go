package builtin

import (
	"maude/internal/table"
	"maude/internal/value"
)

// BlankRepeats clears a cell when it equals the last value kept in the same
// column, so runs of repeated keys show only their first occurrence. Each
// listed column is processed independently; unknown keys are ignored.
type BlankRepeats struct {
	Keys []string
}

func (b BlankRepeats) Apply(t *table.Table) {
	for _, k := range b.Keys {
		c := t.Index(k)
		if c < 0 {
			continue
		}
		var prev value.Value
		first := true
		t.Map(c, func(v value.Value) value.Value {
			if !first && v.Equal(prev) {
				return value.Absent()
			}
			first = false
			prev = v
			return v
		})
	}
}
