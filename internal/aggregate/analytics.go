package aggregate

import (
	"sort"

	"maude/internal/table"
	"maude/internal/value"
)

// BrandEventTypes cross-tabulates event types for the topN brands. Every
// (brand, event type) pair of non-blank cells within a row counts once.
// Brands are ranked by pair count with ties in first-seen order; event type
// columns follow first-seen order. It returns a table with only the brand
// column when no pairs exist.
func (a Aggregator) BrandEventTypes(t *table.Table, topN int) *table.Table {
	brandCols := matching(t, a.Groupings.Brand.Prefixes)
	typeCols := matching(t, a.Groupings.EventType.Prefixes)

	type pair struct{ brand, kind string }
	var (
		pairs      []pair
		brandOrder []string
		brandCount = map[string]int{}
		kinds      []string
		seenKind   = map[string]bool{}
	)
	for _, row := range t.Rows {
		brands := nonBlank(row, brandCols)
		types := nonBlank(row, typeCols)
		for _, b := range brands {
			for _, k := range types {
				pairs = append(pairs, pair{b, k})
				if _, ok := brandCount[b]; !ok {
					brandOrder = append(brandOrder, b)
				}
				brandCount[b]++
				if !seenKind[k] {
					seenKind[k] = true
					kinds = append(kinds, k)
				}
			}
		}
	}

	sort.SliceStable(brandOrder, func(i, j int) bool {
		return brandCount[brandOrder[i]] > brandCount[brandOrder[j]]
	})
	if topN < 0 {
		topN = 0
	}
	if len(brandOrder) > topN {
		brandOrder = brandOrder[:topN]
	}

	rank := make(map[string]int, len(brandOrder))
	for i, b := range brandOrder {
		rank[b] = i
	}
	col := make(map[string]int, len(kinds))
	for i, k := range kinds {
		col[k] = i
	}
	counts := make([][]int64, len(brandOrder))
	for i := range counts {
		counts[i] = make([]int64, len(kinds))
	}
	used := make([]bool, len(kinds))
	for _, p := range pairs {
		r, ok := rank[p.brand]
		if !ok {
			continue
		}
		counts[r][col[p.kind]]++
		used[col[p.kind]] = true
	}

	headers := []string{a.Groupings.Brand.Label}
	var keep []int
	for i, k := range kinds {
		if used[i] {
			headers = append(headers, k)
			keep = append(keep, i)
		}
	}
	out := table.New("Analytics", headers...)
	for r, b := range brandOrder {
		cells := []value.Value{value.String(b)}
		for _, i := range keep {
			cells = append(cells, value.Int(counts[r][i]))
		}
		out.Append(cells...)
	}
	return out
}

func nonBlank(row []value.Value, cols []int) []string {
	var out []string
	for _, c := range cols {
		if c < len(row) && !row[c].IsBlank() {
			out = append(out, row[c].Text())
		}
	}
	return out
}
