package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	nonNumeric    = regexp.MustCompile(`[^0-9.\-]`)
	leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

// parseLeadingFloat reads the longest decimal prefix of s after leading
// whitespace, so "12 months" is 12 and "1-2" is 1. Non-finite results and
// text without a numeric prefix report false.
func parseLeadingFloat(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimLeft(s, " \t\r\n\u00a0"))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseMoney strips everything except digits, '.' and '-' before parsing,
// so "$1,234.50" is 1234.5.
func parseMoney(s string) (float64, bool) {
	return parseLeadingFloat(nonNumeric.ReplaceAllString(s, ""))
}
