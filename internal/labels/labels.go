// Package labels names and orders curated export columns.
//
// A column key such as patient_patient_age_1 is labelled by looking up its
// base (patient_patient_age -> "Patient Age") and re-appending the occurrence
// number ("Patient Age 1"). Keys nested two levels under the first occurrence
// (patient_patient_problems_1_3) use the collapsed label when one exists
// ("Patient Problem 3"). Everything else is title-cased mechanically.
package labels

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"maude/internal/colkey"
	"maude/internal/table"
)

// Label is the human name of one column. Base and Ordinals drive ordering:
// Base is the label without numbers, Ordinals the positional suffixes of the
// key it was derived from.
type Label struct {
	Text     string
	Base     string
	Ordinals []int
}

// Namer labels and orders columns. It is immutable after New and safe for
// concurrent use.
type Namer struct {
	labels    map[string]string
	collapsed map[string]string
	priority  []string
	title     cases.Caser
}

// New builds a Namer. labels maps raw base keys to labels, collapsed maps raw
// base keys to the label used for their (1, j) nested columns, and priority
// lists base labels in the order they should lead the table.
func New(labels, collapsed map[string]string, priority []string) *Namer {
	return &Namer{
		labels:    labels,
		collapsed: collapsed,
		priority:  priority,
		title:     cases.Title(language.Und),
	}
}

// Label names one column key.
func (n *Namer) Label(k colkey.Key) Label {
	raw := k.String()
	if l, ok := n.labels[raw]; ok {
		return Label{Text: l, Base: l}
	}

	base := k.BaseString()
	suf := k.Suffixes
	if len(suf) == 0 && strings.Contains(raw, colkey.Sep) {
		p := colkey.Parse(raw)
		base, suf = p.BaseString(), p.Suffixes
	}

	switch len(suf) {
	case 1:
		if l, ok := n.labels[base]; ok {
			return Label{Text: l + " " + strconv.Itoa(suf[0]), Base: l, Ordinals: suf}
		}
	case 2:
		if suf[0] != 1 {
			break
		}
		if l, ok := n.collapsed[base]; ok {
			return Label{Text: l + " " + strconv.Itoa(suf[1]), Base: l, Ordinals: suf}
		}
		if l, ok := n.labels[base]; ok {
			return Label{Text: l + " " + strconv.Itoa(suf[1]), Base: l, Ordinals: suf}
		}
	}

	t := n.Mechanical(raw)
	return Label{Text: t, Base: t}
}

// Mechanical title-cases a raw key with "_" and "." read as spaces.
func (n *Namer) Mechanical(raw string) string {
	s := strings.NewReplacer("_", " ", ".", " ").Replace(raw)
	return n.title.String(s)
}

// Prune drops every column whose cells are all blank.
func Prune(t *table.Table) []table.Column {
	var keep []int
	var dropped []table.Column
	for c := range t.Columns {
		blank := true
		for _, row := range t.Rows {
			if c < len(row) && !row[c].IsBlank() {
				blank = false
				break
			}
		}
		if blank {
			dropped = append(dropped, t.Columns[c])
			continue
		}
		keep = append(keep, c)
	}
	if len(dropped) > 0 {
		t.Select(keep)
	}
	return dropped
}

// Order returns a permutation of cols: for each priority label, the
// unnumbered column, then single-ordinal columns ascending, then two-ordinal
// columns row-major; remaining columns follow in their current order.
func (n *Namer) Order(cols []table.Column) []int {
	lbls := make([]Label, len(cols))
	byBase := make(map[string][]int)
	for i, c := range cols {
		lbls[i] = n.Label(c.Key)
		byBase[lbls[i].Base] = append(byBase[lbls[i].Base], i)
	}

	used := make([]bool, len(cols))
	out := make([]int, 0, len(cols))
	for _, p := range n.priority {
		group := byBase[p]
		if len(group) == 0 {
			continue
		}
		members := make([]int, 0, len(group))
		for _, i := range group {
			if !used[i] {
				members = append(members, i)
			}
		}
		sort.SliceStable(members, func(a, b int) bool {
			return ordinalLess(lbls[members[a]].Ordinals, lbls[members[b]].Ordinals)
		})
		for _, i := range members {
			used[i] = true
			out = append(out, i)
		}
	}
	for i := range cols {
		if !used[i] {
			out = append(out, i)
		}
	}
	return out
}

func ordinalLess(a, b []int) bool {
	return colkey.Less(colkey.Key{Suffixes: a}, colkey.Key{Suffixes: b})
}

// Apply prunes blank columns, labels the rest and puts them in priority
// order, in place. It returns the pruned columns.
func (n *Namer) Apply(t *table.Table) []table.Column {
	dropped := Prune(t)
	for i := range t.Columns {
		t.Columns[i].Label = n.Label(t.Columns[i].Key).Text
	}
	t.Select(n.Order(t.Columns))
	return dropped
}
