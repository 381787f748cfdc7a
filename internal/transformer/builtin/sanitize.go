// Package builtin contains the table transformers used by the exports.
package builtin

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"maude/internal/table"
	"maude/internal/value"
)

// MaxCellRunes is the longest string kept intact in a cell; longer strings
// are cut and suffixed with "...".
const MaxCellRunes = 32000

var (
	dropControls = runes.Remove(runes.Predicate(isControl))
	foldPunct    = runes.Map(func(r rune) rune {
		switch r {
		case '“', '”':
			return '"'
		case '‘', '’':
			return '\''
		case '–', '—':
			return '-'
		}
		return r
	})
	ellipsis = strings.NewReplacer("…", "...")
)

// C0 and C1 controls, including tab and newline.
func isControl(r rune) bool {
	return r <= 0x1f || (r >= 0x7f && r <= 0x9f)
}

// SanitizeText makes s safe for a spreadsheet cell: control characters are
// removed, typographic quotes and dashes fold to ASCII, and overlong text is
// truncated.
func SanitizeText(s string) string {
	if plainASCII(s) {
		return truncate(s)
	}
	if out, _, err := transform.String(dropControls, s); err == nil {
		s = out
	}
	if out, _, err := transform.String(foldPunct, s); err == nil {
		s = out
	}
	return truncate(ellipsis.Replace(s))
}

func plainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c >= 0x7f {
			return false
		}
	}
	return true
}

func truncate(s string) string {
	if len(s) <= MaxCellRunes || utf8.RuneCountInString(s) <= MaxCellRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxCellRunes {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// Sanitize applies SanitizeText to every string cell.
type Sanitize struct{}

func (Sanitize) Apply(t *table.Table) {
	for _, row := range t.Rows {
		for i, v := range row {
			if s, ok := v.Str(); ok {
				if c := SanitizeText(s); c != s {
					row[i] = value.String(c)
				}
			}
		}
	}
}
