// Package compare provides comparer functions for deterministic ordering.
//
// A comparer has the shape func(a, b T) int and follows the cmp.Compare
// contract: negative when a sorts before b, zero when equal, positive when
// after. Comparers compose with Reverse, By and Chain and plug straight into
// slices.SortFunc.
//
// Usage:
//
//	ids := []string{"zone-10", "zone-2", "zone-1"}
//	slices.SortFunc(ids, compare.Natural)
//	// zone-1, zone-2, zone-10
package compare

import (
	"cmp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Func is a three-way comparer.
type Func[T any] func(a, b T) int

// Ordered compares any ordered type using its natural ordering.
func Ordered[T cmp.Ordered](a, b T) int {
	return cmp.Compare(a, b)
}

// Reverse inverts the ordering of c.
func Reverse[T any](c Func[T]) Func[T] {
	return func(a, b T) int {
		return c(b, a)
	}
}

// By orders values by a derived key.
//
// Example:
//
//	byName := compare.By(func(d Definition) string { return d.Name }, compare.FoldCase)
func By[T, K any](key func(T) K, c Func[K]) Func[T] {
	return func(a, b T) int {
		return c(key(a), key(b))
	}
}

// Chain returns a comparer that consults each comparer in turn and returns
// the first non-zero result.
func Chain[T any](comparers ...Func[T]) Func[T] {
	return func(a, b T) int {
		for _, c := range comparers {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// FoldCase compares strings ignoring Unicode case. Strings that differ only
// in case are then ordered by their raw bytes so the result stays total.
func FoldCase(a, b string) int {
	for a != "" && b != "" {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		la, lb := unicode.ToLower(ra), unicode.ToLower(rb)
		if la != lb {
			return cmp.Compare(la, lb)
		}
		a, b = a[na:], b[nb:]
	}
	return cmp.Compare(len(a), len(b))
}

// FoldCaseStable is FoldCase with a byte-wise tie-break, so "A" and "a" are
// never reported equal.
func FoldCaseStable(a, b string) int {
	if r := FoldCase(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// Natural compares strings so that embedded runs of decimal digits are
// ordered by numeric value: "1/2/9" < "1/2/10", "dimmer-2" < "dimmer-10".
//
// Digit runs with equal value but different leading zeros ("007" vs "7")
// fall back to a byte-wise comparison of the whole string.
func Natural(a, b string) int {
	x, y := a, b
	for x != "" && y != "" {
		dx, dy := isDigit(x[0]), isDigit(y[0])
		switch {
		case dx && dy:
			nx, restX := splitDigits(x)
			ny, restY := splitDigits(y)
			if r := compareDigitRuns(nx, ny); r != 0 {
				return r
			}
			x, y = restX, restY
		case dx != dy:
			// Digits sort before letters, as in plain ASCII.
			if dx {
				return -1
			}
			return 1
		default:
			tx, restX := splitText(x)
			ty, restY := splitText(y)
			if r := strings.Compare(tx, ty); r != 0 {
				return r
			}
			x, y = restX, restY
		}
	}

	if r := cmp.Compare(len(x), len(y)); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// compareDigitRuns compares two decimal strings by numeric value without
// parsing, so runs longer than uint64 still compare correctly.
func compareDigitRuns(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if r := cmp.Compare(len(a), len(b)); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

func splitDigits(s string) (run, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func splitText(s string) (run, rest string) {
	i := 0
	for i < len(s) && !isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
