package aggregate

import (
	"fmt"
	"sort"

	"maude/internal/value"
)

// Freq is one row of a frequency table.
type Freq struct {
	Value   string
	Count   int
	Percent float64
}

// PercentText renders the percentage with one decimal, e.g. "66.7%".
func (f Freq) PercentText() string { return FormatPercent(f.Percent) }

func FormatPercent(p float64) string { return fmt.Sprintf("%.1f%%", p) }

// Frequency counts distinct values by their text. Rows are ordered by
// descending count; equal counts keep first-seen order. Blank values are
// skipped and do not count toward the total.
func Frequency(vals []value.Value) []Freq {
	index := map[string]int{}
	var out []Freq
	total := 0
	for _, v := range vals {
		if v.IsBlank() {
			continue
		}
		total++
		k := v.Text()
		if i, ok := index[k]; ok {
			out[i].Count++
			continue
		}
		index[k] = len(out)
		out = append(out, Freq{Value: k, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	for i := range out {
		out[i].Percent = 100 * float64(out[i].Count) / float64(total)
	}
	return out
}
