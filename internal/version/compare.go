// Package version orders release versions the way PEAR installers do.
package version

import (
	"sort"
	"strconv"
	"strings"
)

// special forms and their rank; matched as prefixes in this order
var specialForms = []struct {
	prefix string
	rank   int
}{
	{"dev", 0},
	{"alpha", 1},
	{"a", 1},
	{"beta", 2},
	{"b", 2},
	{"RC", 3},
	{"rc", 3},
	{"#", 4},
	{"pl", 5},
	{"p", 5},
}

// numberForm stands in for a numeric part compared against a word
const numberForm = "#N#"

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// canonicalize splits digit and non-digit runs with '.' and maps any other
// separator to '.', e.g. "1.0.0beta1" -> "1.0.0.beta.1".
func canonicalize(v string) string {
	if v == "" {
		return ""
	}
	var b strings.Builder
	b.WriteByte(v[0])
	last := v[0]
	lastOut := v[0]
	for i := 1; i < len(v); i++ {
		c := v[i]
		switch {
		case c == '-' || c == '_' || c == '+':
			if lastOut != '.' {
				b.WriteByte('.')
				lastOut = '.'
			}
		case (isNonDigit(last) && isDigit(c)) || (isDigit(last) && isNonDigit(c)):
			if lastOut != '.' {
				b.WriteByte('.')
			}
			b.WriteByte(c)
			lastOut = c
		case !isAlnum(c):
			if lastOut != '.' {
				b.WriteByte('.')
				lastOut = '.'
			}
		default:
			b.WriteByte(c)
			lastOut = c
		}
		last = c
	}
	return b.String()
}

func isNonDigit(c byte) bool {
	return !isDigit(c) && c != '.'
}

func parts(v string) []string {
	return strings.FieldsFunc(canonicalize(v), func(r rune) bool { return r == '.' })
}

func rank(form string) int {
	for _, f := range specialForms {
		if strings.HasPrefix(form, f.prefix) {
			return f.rank
		}
	}
	return -6
}

func compareForms(a, b string) int {
	return sign(rank(a) - rank(b))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func compareNumbers(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA != nil || errB != nil {
		// out of range: compare by magnitude as text
		a = strings.TrimLeft(a, "0")
		b = strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return sign(len(a) - len(b))
		}
		return strings.Compare(a, b)
	}
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// Compare returns -1, 0 or 1 as a orders before, equal to or after b.
// Ordering is numeric-component aware and places pre-release words
// (dev, alpha, beta, RC) below the plain release: "1.0.0beta1" < "1.0.0".
func Compare(a, b string) int {
	pa, pb := parts(a), parts(b)
	if len(pa) == 0 || len(pb) == 0 {
		return sign(len(pa) - len(pb))
	}

	i := 0
	for ; i < len(pa) && i < len(pb); i++ {
		x, y := pa[i], pb[i]
		var c int
		switch dx, dy := isDigit(x[0]), isDigit(y[0]); {
		case dx && dy:
			c = compareNumbers(x, y)
		case !dx && !dy:
			c = compareForms(x, y)
		case dx:
			c = compareForms(numberForm, y)
		default:
			c = compareForms(x, numberForm)
		}
		if c != 0 {
			return c
		}
	}

	switch {
	case i < len(pa):
		if isDigit(pa[i][0]) {
			return 1
		}
		return Compare(strings.Join(pa[i:], "."), numberForm)
	case i < len(pb):
		if isDigit(pb[i][0]) {
			return -1
		}
		return Compare(numberForm, strings.Join(pb[i:], "."))
	}
	return 0
}

// Less reports whether a orders strictly before b
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// SortDescending sorts versions newest first. Equal versions keep their order.
func SortDescending(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) > 0
	})
}
