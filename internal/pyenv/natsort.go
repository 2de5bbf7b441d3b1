package pyenv

import (
	"sort"
	"strings"
)

// NaturalSort sorts names so that digit runs compare numerically and the
// rest compares case-insensitively: 3.9.1 sorts before 3.10.0.
func NaturalSort(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return naturalLess(names[i], names[j])
	})
}

func naturalLess(a, b string) bool {
	ca, cb := chunks(a), chunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		x, y := ca[i], cb[i]
		if x == y {
			continue
		}
		xd, yd := isDigits(x), isDigits(y)
		switch {
		case xd && yd:
			if c := compareDigits(x, y); c != 0 {
				return c < 0
			}
		case xd != yd:
			// 数字段排在文本段之前
			return xd
		default:
			if lx, ly := strings.ToLower(x), strings.ToLower(y); lx != ly {
				return lx < ly
			}
		}
	}
	if len(ca) != len(cb) {
		return len(ca) < len(cb)
	}
	return a < b
}

// chunks splits s into alternating runs of digits and non-digits.
func chunks(s string) []string {
	var out []string
	start := 0
	for i := 1; i < len(s); i++ {
		if isDigit(s[i]) != isDigit(s[i-1]) {
			out = append(out, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isDigits(s string) bool {
	return s != "" && isDigit(s[0])
}

// compareDigits compares two digit runs by numeric value without parsing,
// so arbitrarily long runs never overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
