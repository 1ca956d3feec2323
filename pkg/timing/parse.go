// Package timing contains the pure derivations over stage and split times.
package timing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aarondl/opt/null"
	"github.com/shopspring/decimal"
)

// Round1 rounds to one decimal
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// ParseTime converts "h:mm:ss.t", "mm:ss.t" or "ss.t" (optionally prefixed
// with + or -) into seconds rounded to one decimal.
// Invalid input yields 0 if missingAsZero is set, otherwise a null value.
func ParseTime(s string, missingAsZero bool) null.Val[float64] {
	invalid := func() null.Val[float64] {
		if missingAsZero {
			return null.From(0.0)
		}
		return null.Val[float64]{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return invalid()
	}
	sign := 1.0
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1.0
		s = s[1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return invalid()
	}
	total := 0.0
	for i, p := range parts {
		if p == "" {
			return invalid()
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 || math.IsInf(v, 0) {
			return invalid()
		}
		// only the last component may carry a fraction
		if i < len(parts)-1 && v != math.Trunc(v) {
			return invalid()
		}
		total = total*60 + v
	}
	return null.From(Round1(sign * total))
}

// MsToSeconds converts store milliseconds into seconds rounded to one decimal
func MsToSeconds(ms int64) float64 {
	return decimal.New(ms, -3).Round(1).InexactFloat64()
}

// SecondsToMs converts seconds into store milliseconds
func SecondsToMs(v float64) int64 {
	return decimal.NewFromFloat(v).Shift(3).Round(0).IntPart()
}

// FormatSeconds is the inverse of ParseTime.
// With signed set positive values are prefixed with "+".
func FormatSeconds(v float64, signed bool) string {
	d := decimal.NewFromFloat(v).Round(1)
	prefix := ""
	switch {
	case d.IsNegative():
		prefix = "-"
		d = d.Neg()
	case signed:
		prefix = "+"
	}
	tenths := d.Shift(1).IntPart()
	h := tenths / 36000
	m := (tenths / 600) % 60
	sec := (tenths / 10) % 60
	frac := tenths % 10
	switch {
	case h > 0:
		return fmt.Sprintf("%s%d:%02d:%02d.%d", prefix, h, m, sec, frac)
	case m > 0:
		return fmt.Sprintf("%s%d:%02d.%d", prefix, m, sec, frac)
	default:
		return fmt.Sprintf("%s%d.%d", prefix, sec, frac)
	}
}
