package builtin

import (
	"strings"

	"maude/internal/config"
	"maude/internal/table"
	"maude/internal/value"
)

// MultiSep separates codes in multi-valued cells such as patient outcome.
const MultiSep = ";"

// Translate replaces coded cell values with readable text. A rule applies to
// every column whose header contains its Match; the first matching rule wins,
// so a translation follows a label across all of its numbered columns.
//
// Only string cells are rewritten. Unmapped codes are kept, which makes
// translating already readable text a no-op.
type Translate struct {
	Rules []config.TranslationRule
}

func (tr Translate) Apply(t *table.Table) {
	for c, col := range t.Columns {
		rule, ok := tr.ruleFor(col.Header())
		if !ok {
			continue
		}
		t.Map(c, func(v value.Value) value.Value { return TranslateCell(rule, v) })
	}
}

func (tr Translate) ruleFor(header string) (config.TranslationRule, bool) {
	for _, r := range tr.Rules {
		if r.Match != "" && strings.Contains(header, r.Match) {
			return r, true
		}
	}
	return config.TranslationRule{}, false
}

// TranslateCell applies one rule to one cell.
func TranslateCell(rule config.TranslationRule, v value.Value) value.Value {
	s, ok := v.Str()
	if !ok || s == "" {
		return v
	}
	if !rule.Multi {
		if out, ok := rule.Codes[s]; ok {
			return value.String(out)
		}
		return v
	}
	parts := strings.Split(s, MultiSep)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if out, ok := rule.Codes[p]; ok {
			p = out
		}
		parts[i] = p
	}
	return value.String(strings.Join(parts, MultiSep+" "))
}
