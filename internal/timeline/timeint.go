// Package timeline defines the logical time axes chunks are indexed by:
// TimeInt, a saturating integer time value with STATIC/MIN/MAX sentinels,
// and Timeline, a named axis carrying a TimeType.
package timeline

import (
	"fmt"
	"math"
)

// TimeInt is a saturating i64 time value. Arithmetic never overflows or
// wraps: it clamps to [Min, Max]. Static is reserved strictly below every
// temporal value and is only ever produced for static (timeless) data.
type TimeInt int64

const (
	// Static sorts before every temporal value. It is the logical time of
	// rows in a static chunk (spec I4).
	Static TimeInt = math.MinInt64

	// Min is the smallest possible temporal time value.
	Min TimeInt = math.MinInt64 + 1

	// Max is the largest possible temporal time value.
	Max TimeInt = math.MaxInt64
)

// FromNanos builds a TimeInt from a raw nanosecond count, saturating into
// the valid temporal range.
func FromNanos(ns int64) TimeInt {
	if ns < int64(Min) {
		return Min
	}
	return TimeInt(ns)
}

// FromSeconds builds a TimeInt from a floating point second count,
// rejecting NaN (saturating to Min) and saturating infinities to Min/Max.
// This is the single helper spec §9 requires wall-clock conversions funnel
// through.
func FromSeconds(sec float64) TimeInt {
	switch {
	case math.IsNaN(sec):
		return Min
	case math.IsInf(sec, -1):
		return Min
	case math.IsInf(sec, 1):
		return Max
	}
	ns := sec * 1e9
	if ns >= float64(math.MaxInt64) {
		return Max
	}
	if ns <= float64(Min) {
		return Min
	}
	return TimeInt(int64(ns))
}

// Add returns t+delta, saturating at Min/Max. Static is left untouched by
// Add (it never represents a temporal instant that can be shifted).
func (t TimeInt) Add(delta int64) TimeInt {
	if t == Static {
		return Static
	}
	sum := int64(t) + delta
	// Overflow check: if delta > 0 the sum must be >= t; if delta < 0 the
	// sum must be <= t.
	if delta > 0 && sum < int64(t) {
		return Max
	}
	if delta < 0 && sum > int64(t) {
		return Min
	}
	if sum < int64(Min) {
		return Min
	}
	if TimeInt(sum) > Max {
		return Max
	}
	return TimeInt(sum)
}

// IsStatic reports whether t is the Static sentinel.
func (t TimeInt) IsStatic() bool { return t == Static }

// Min2 returns the smaller of a and b.
func Min2(a, b TimeInt) TimeInt {
	if a < b {
		return a
	}
	return b
}

// Max2 returns the larger of a and b.
func Max2(a, b TimeInt) TimeInt {
	if a > b {
		return a
	}
	return b
}

func (t TimeInt) String() string {
	switch t {
	case Static:
		return "static"
	case Min:
		return "-inf"
	case Max:
		return "+inf"
	default:
		return fmt.Sprintf("%d", int64(t))
	}
}
