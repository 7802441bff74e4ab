// Package vitals turns loosely typed patient fields into validated vital
// signs and scores them against the clinical risk rubric. Nothing here
// returns an error: malformed input is always reported as "not valid".
package vitals

import (
	"math"
	"strings"
)

type BloodPressure struct {
	Systolic  int
	Diastolic int
}

// ParseBloodPressure accepts only a string of the form "S/D" with exactly one
// separator. Each side is read like a lenient integer parse: leading
// whitespace and a sign are allowed and anything after the digits is ignored,
// so "120abc/80" is 120/80 but "/80" and "abc/80" are invalid.
func ParseBloodPressure(raw any) (BloodPressure, bool) {
	s, ok := raw.(string)
	if !ok || strings.Count(s, "/") != 1 {
		return BloodPressure{}, false
	}

	sysStr, diaStr, _ := strings.Cut(s, "/")
	sys, ok := leadingInt(sysStr)
	if !ok {
		return BloodPressure{}, false
	}
	dia, ok := leadingInt(diaStr)
	if !ok {
		return BloodPressure{}, false
	}
	return BloodPressure{Systolic: sys, Diastolic: dia}, true
}

// ParseTemperature is valid only for values that are already numeric.
// "99.6" as a string is invalid.
func ParseTemperature(raw any) (float64, bool) {
	return number(raw)
}

// ParseAge follows the same strict rule as ParseTemperature.
func ParseAge(raw any) (float64, bool) {
	return number(raw)
}

func number(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		if n > (math.MaxInt32-int(c-'0'))/10 {
			// Absurdly long readings saturate instead of overflowing.
			n = math.MaxInt32
		} else {
			n = n*10 + int(c-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
