package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ToNumeric converts a raw cell or match into a float.
// Strings may carry whitespace, thousands separators and a trailing percent sign.
// NaN and anything unparsable are reported as absent.
func ToNumeric(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		return parseNumeric(n)
	case []byte:
		return parseNumeric(string(n))
	case fmt.Stringer:
		return parseNumeric(n.String())
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ToInteger is ToNumeric truncated toward zero.
func ToInteger(v any) (int64, bool) {
	f, ok := ToNumeric(v)
	if !ok || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(math.Trunc(f)), true
}

func parseNumeric(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func textValue(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return "", false
	}
	return s, true
}
