// Package money normalizes free-text monetary input.
package money

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Parse converts user-entered text into a non-negative amount.
// Accepted forms: "2500", "2 500", "2500,50", "2.500,75", "2к"/"2k".
// When both comma and dot are present, the rightmost one is the decimal
// separator and all other occurrences are thousands separators.
// Returns false for anything that does not resolve to a finite value >= 0.
// Total over all inputs, never panics.
func Parse(text string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, false
	}

	s = stripSpaces(s)

	mult := 1.0
	if strings.HasSuffix(s, "к") || strings.HasSuffix(s, "k") {
		mult = 1000.0
		s = strings.TrimSuffix(strings.TrimSuffix(s, "к"), "k")
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		decPos := strings.LastIndexAny(s, ",.")
		intPart := stripSeparators(s[:decPos])
		fracPart := stripSeparators(s[decPos+1:])
		s = intPart + "." + fracPart
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	s = keepNumeric(s)

	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	val *= mult
	if val < 0 {
		return 0, false
	}
	return math.Round(val*100) / 100, true
}

func stripSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, ".", "")
}

func keepNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
