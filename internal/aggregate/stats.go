package aggregate

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"maude/internal/value"
)

// NotAvailable is reported for a numeric grouping with no numeric values.
const NotAvailable = "N/A"

var numberToken = regexp.MustCompile(`\d+(\.\d+)?`)

// ExtractNumber returns the first unsigned decimal token in the cell's text,
// ignoring units and surrounding words ("45 YR" -> 45).
func ExtractNumber(v value.Value) (float64, bool) {
	tok := numberToken.FindString(v.Text())
	if tok == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Stat summarizes a numeric grouping.
type Stat struct {
	N                int
	Median, Min, Max float64
}

// Numeric extracts a number from every value that has one and returns the
// median and range. The median of an even count averages the middle pair.
func Numeric(vals []value.Value) Stat {
	nums := make([]float64, 0, len(vals))
	for _, v := range vals {
		if f, ok := ExtractNumber(v); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return Stat{}
	}
	sort.Float64s(nums)
	n := len(nums)
	med := nums[n/2]
	if n%2 == 0 {
		med = (nums[n/2-1] + nums[n/2]) / 2
	}
	return Stat{N: n, Median: med, Min: nums[0], Max: nums[n-1]}
}

// Format renders "median (min-max)". With zero decimals each figure is
// truncated toward zero; otherwise it is rounded to the given precision.
func (s Stat) Format(decimals int) string {
	if s.N == 0 {
		return NotAvailable
	}
	if decimals <= 0 {
		return fmt.Sprintf("%d (%d-%d)", int64(s.Median), int64(s.Min), int64(s.Max))
	}
	return fmt.Sprintf("%.*f (%.*f-%.*f)", decimals, s.Median, decimals, s.Min, decimals, s.Max)
}
