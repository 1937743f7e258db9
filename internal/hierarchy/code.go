package hierarchy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NotApplicable is the code of a hierarchy level that does not apply to a row.
const NotApplicable = "00"

// FormatCode renders a raw spreadsheet ordinal as a two digit code.
//
// Blank, non-numeric and negative inputs yield NotApplicable. Integral floats
// ("4.0", as produced by spreadsheet type coercion) are accepted. Values of 100
// and above are rendered wider rather than truncated.
func FormatCode(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NotApplicable
	}
	if n, err := strconv.Atoi(s); err == nil {
		return FormatInt(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt32 {
		return NotApplicable
	}
	return FormatInt(int(f))
}

// FormatInt renders n as a zero padded two digit code.
func FormatInt(n int) string {
	if n < 0 {
		return NotApplicable
	}
	return fmt.Sprintf("%02d", n)
}
