package builtin

import (
	"regexp"
	"strings"
	"time"

	"maude/internal/table"
	"maude/internal/value"
)

const (
	sourceDateLayout  = "20060102"
	displayDateLayout = "01/02/2006"
)

var eightDigits = regexp.MustCompile(`^\d{8}$`)

// FormatDates rewrites YYYYMMDD strings as MM/DD/YYYY in every column whose key
// equals one of Prefixes or starts with a prefix followed by "_". Anything
// that does not parse is left alone.
type FormatDates struct {
	Prefixes []string
}

func (f FormatDates) Apply(t *table.Table) {
	for c, col := range t.Columns {
		if f.matches(col.Key.String()) {
			t.Map(c, FormatDate)
		}
	}
}

func (f FormatDates) matches(key string) bool {
	for _, p := range f.Prefixes {
		if key == p || strings.HasPrefix(key, p+"_") {
			return true
		}
	}
	return false
}

// FormatDate converts a single cell.
func FormatDate(v value.Value) value.Value {
	s, ok := v.Str()
	if !ok || !eightDigits.MatchString(s) {
		return v
	}
	d, err := time.Parse(sourceDateLayout, s)
	if err != nil {
		return v
	}
	return value.String(d.Format(displayDateLayout))
}
