// Package colkey models flattened column identifiers as structured values
// instead of ad hoc strings, so ordering and labeling can reason about the
// base field and its positional suffixes without re-parsing.
//
// A Key renders as the base segments joined by "_" followed by one "_<n>"
// per positional suffix:
//
//	Key{Base: []string{"device", "brand_name"}, Suffixes: []int{1}}
//	  -> "device_brand_name_1"
//	Key{Base: []string{"patient", "patient_problems"}, Suffixes: []int{1, 2}}
//	  -> "patient_patient_problems_1_2"
package colkey

import (
	"strconv"
	"strings"
)

// Sep joins base segments and suffixes.
const Sep = "_"

// MaxSuffixes is the deepest positional nesting produced by the projection
// extractor (sub-record occurrence, then array element).
const MaxSuffixes = 2

// Key is a structured column identifier.
type Key struct {
	Base     []string
	Suffixes []int
}

// New builds a Key from base segments with no suffixes.
func New(base ...string) Key { return Key{Base: base} }

// With returns a copy of k with n appended to its suffixes.
func (k Key) With(n int) Key {
	s := make([]int, len(k.Suffixes), len(k.Suffixes)+1)
	copy(s, k.Suffixes)
	return Key{Base: k.Base, Suffixes: append(s, n)}
}

// BaseString renders only the base segments.
func (k Key) BaseString() string { return strings.Join(k.Base, Sep) }

// String renders the full column key.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.BaseString())
	for _, n := range k.Suffixes {
		b.WriteString(Sep)
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// Parse recovers a Key from its rendered form. Up to MaxSuffixes trailing
// all-digit segments become suffixes; the remainder is a single base segment.
// Parse(k.String()) reproduces k's rendering (not necessarily its Base
// segmentation).
func Parse(s string) Key {
	parts := strings.Split(s, Sep)
	var suffixes []int
	for len(parts) > 1 && len(suffixes) < MaxSuffixes {
		last := parts[len(parts)-1]
		n, ok := positive(last)
		if !ok {
			break
		}
		suffixes = append([]int{n}, suffixes...)
		parts = parts[:len(parts)-1]
	}
	return Key{Base: []string{strings.Join(parts, Sep)}, Suffixes: suffixes}
}

func positive(s string) (int, bool) {
	// "01" must stay part of the base or rendering would not round-trip.
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Less orders keys by suffix depth first, then suffixes lexicographically.
// Keys with equal bases therefore sort as: unsuffixed, 1..K, (1,1)..(i,j).
func Less(a, b Key) bool {
	if len(a.Suffixes) != len(b.Suffixes) {
		return len(a.Suffixes) < len(b.Suffixes)
	}
	for i := range a.Suffixes {
		if a.Suffixes[i] != b.Suffixes[i] {
			return a.Suffixes[i] < b.Suffixes[i]
		}
	}
	return false
}
