// Package coerce narrows host numbers (float64) to Go integer kinds.
package coerce

import "math"

// MaxSafeInteger is the largest integer a float64 holds exactly (2^53-1).
const MaxSafeInteger = 1<<53 - 1

// Integral reports whether f is finite and has no fractional part.
func Integral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

// Uint32 narrows f to uint32.
func Uint32(f float64) (uint32, bool) {
	if !Integral(f) || f < 0 || f > math.MaxUint32 {
		return 0, false
	}
	return uint32(f), true
}

// Int32 narrows f to int32.
func Int32(f float64) (int32, bool) {
	if !Integral(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int32(f), true
}

// Int64 narrows f to int64 within the safe integer range.
func Int64(f float64) (int64, bool) {
	if !Integral(f) || f < -MaxSafeInteger || f > MaxSafeInteger {
		return 0, false
	}
	return int64(f), true
}

// SafeInt64 reports whether v converts to float64 and back unchanged.
func SafeInt64(v int64) bool {
	return v >= -MaxSafeInteger && v <= MaxSafeInteger
}

// UTF16Len returns the number of UTF-16 code units needed for s.
// Invalid UTF-8 bytes count as one unit each.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
