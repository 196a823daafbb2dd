package utils

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	RefNormal  = "NORMAL"
	RefLow     = "LOW"
	RefHigh    = "HIGH"
	RefUnknown = "UNKNOWN"
)

var (
	rangeBetween = regexp.MustCompile(`^(-?\d+(?:[.,]\d+)?)\s*(?:-|–|a|to|até)\s*(-?\d+(?:[.,]\d+)?)`)
	rangeBound   = regexp.MustCompile(`^(<=|>=|<|>|≤|≥|até|acima de|abaixo de|inferior a|superior a)\s*(-?\d+(?:[.,]\d+)?)`)
)

// ParseReferenceRange understands "70-99", "70 a 99", "< 200", "> 40",
// "até 150" and comma decimals. Missing bounds are nil.
func ParseReferenceRange(s string) (lo, hi *float64, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil, false
	}
	if m := rangeBetween.FindStringSubmatch(s); m != nil {
		a, err1 := parseDecimal(m[1])
		b, err2 := parseDecimal(m[2])
		if err1 != nil || err2 != nil || a > b {
			return nil, nil, false
		}
		return &a, &b, true
	}
	if m := rangeBound.FindStringSubmatch(s); m != nil {
		v, err := parseDecimal(m[2])
		if err != nil {
			return nil, nil, false
		}
		switch m[1] {
		case "<", "<=", "≤", "até", "abaixo de", "inferior a":
			return nil, &v, true
		default:
			return &v, nil, true
		}
	}
	return nil, nil, false
}

// ClassifyReference places value against a textual reference range.
func ClassifyReference(value *float64, reference string) string {
	if value == nil {
		return RefUnknown
	}
	lo, hi, ok := ParseReferenceRange(reference)
	if !ok {
		return RefUnknown
	}
	return ClassifyBounds(*value, lo, hi)
}

func ClassifyBounds(v float64, lo, hi *float64) string {
	if lo == nil && hi == nil {
		return RefUnknown
	}
	if lo != nil && v < *lo {
		return RefLow
	}
	if hi != nil && v > *hi {
		return RefHigh
	}
	return RefNormal
}

func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}
