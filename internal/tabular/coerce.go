package tabular

import (
	"strconv"
	"strings"
)

// Coerce converts a raw cell into int64, float64 or leaves it as the original string.
//
// The rules are deliberately naive: only unsigned decimal digits become integers and
// only digits around exactly one '.' become floats. Signs, exponents and thousands
// separators are left as strings. Empty cells stay empty strings.
func Coerce(value string) any {
	if value == "" {
		return value
	}

	if isDigits(value) {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return value
		}
		return n
	}

	if strings.Count(value, ".") == 1 && isDigits(strings.Replace(value, ".", "", 1)) {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return value
		}
		return f
	}

	return value
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
