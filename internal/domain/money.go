// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"math"
)

// Cents is a monetary amount in minor currency units (e.g. euro cents).
// It is a distinct type rather than a bare int64 so that minor-unit and
// major-unit values cannot be mixed silently.
type Cents int64

// CentsFromMajor converts a major-unit amount (e.g. euros) to Cents,
// rounding half away from zero.
func CentsFromMajor(amount float64) Cents {
	return Cents(math.Round(amount * 100))
}

// Major returns the amount in major currency units.
func (c Cents) Major() float64 {
	return float64(c) / 100
}

// MulRatio scales the amount by a float ratio, rounding half away from zero.
// This is the single place where money meets floating point, so all
// multiplier-chain rounding behaves identically.
func (c Cents) MulRatio(ratio float64) Cents {
	return Cents(math.Round(float64(c) * ratio))
}

// Percent returns pct% of the amount, rounded.
func (c Cents) Percent(pct float64) Cents {
	return c.MulRatio(pct / 100)
}

// Clamp bounds the amount to [lo, hi].
func (c Cents) Clamp(lo, hi Cents) Cents {
	if c < lo {
		return lo
	}
	if c > hi {
		return hi
	}
	return c
}

// String formats the amount as a major-unit decimal, e.g. "149.99".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
