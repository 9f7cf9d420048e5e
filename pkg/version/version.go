// Package version implements the loose version ordering used to classify
// dependencies as outdated.
//
// The ordering is deliberately not semver. Versions are compared by their
// dotted numeric segments with non-digit characters stripped, and ties are
// broken by plain lexical comparison of the original strings. This keeps the
// comparison total over arbitrary registry input ("1.0.0-beta", "v2",
// "2020.4.1") at the cost of pre-release precedence, which npm metadata
// rarely needs for an "is there something newer" check.
package version

import (
	"strconv"
	"strings"
)

// rangeOperators are the spec prefix characters stripped by Normalize,
// covering the common npm range forms (~1.2.3, ^1.2.3, >=1.2.3, *).
const rangeOperators = "~^><=* \t"

// Compare orders two version strings, returning -1 if a < b, 0 if they are
// equal, and 1 if a > b.
//
// Each input is split on "." and every segment is reduced to its digits
// before numeric comparison ("10-beta" compares as 10). A missing segment
// counts as zero, so "1.2" and "1.2.0" are numerically equal. When all
// numeric segments match, the original strings are compared lexically so
// that distinct inputs still order deterministically.
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := range max(len(as), len(bs)) {
		av := segmentValue(as, i)
		bv := segmentValue(bs, i)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return strings.Compare(a, b)
}

// segmentValue returns the numeric value of segment i, or 0 when the segment
// is missing, empty after stripping, or too large to represent.
func segmentValue(segments []string, i int) int {
	if i >= len(segments) {
		return 0
	}
	var digits strings.Builder
	for _, r := range segments[i] {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

// Normalize strips a leading run of range operators and surrounding
// whitespace from a version spec ("^1.2.3" becomes "1.2.3"). The boolean
// reports whether anything usable remains: an empty or all-operator spec
// returns ("", false) so callers can tell "no version" apart from a literal
// zero version. Normalize is idempotent.
func Normalize(spec string) (string, bool) {
	v := strings.TrimLeft(strings.TrimSpace(spec), rangeOperators)
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

// IsOutdated reports whether latest describes a newer version than current.
// Both inputs are normalized first; if either has no usable version the
// answer is false, since there is nothing meaningful to compare.
func IsOutdated(current, latest string) bool {
	cur, ok := Normalize(current)
	if !ok {
		return false
	}
	lat, ok := Normalize(latest)
	if !ok {
		return false
	}
	return Compare(lat, cur) > 0
}
