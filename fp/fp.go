// Package fp provides Q32.32 fixed-point arithmetic on int64.
// All simulation state flows through this representation so that a step
// produces bit-identical results on every platform; float conversion is
// reserved for setup and display boundaries.
package fp

import (
	"math"
	"math/bits"
)

// Q32.32 fixed point constants
const (
	Shift = 32
	Scale = 1 << Shift
	Half  = 1 << (Shift - 1)
	One   = Scale
)

// Scalar is a Q32.32 fixed-point signed value
type Scalar = int64

func FromInt(i int) Scalar { return int64(i) << Shift }
func ToInt(f Scalar) int   { return int(f >> Shift) }

// FromFloat is a one-way lossy boundary conversion; never call it inside
// the solve loop
func FromFloat(f float64) Scalar { return int64(f * Scale) }
func ToFloat(f Scalar) float64   { return float64(f) / Scale }

func Mul(a, b Scalar) Scalar {
	if a == 0 || b == 0 {
		return 0
	}
	negative := (a < 0) != (b < 0)
	ua, ub := uint64(a), uint64(b)
	if a < 0 {
		ua = uint64(-a)
	}
	if b < 0 {
		ub = uint64(-b)
	}

	hi, lo := bits.Mul64(ua, ub)
	// Q32.32 * Q32.32 = Q64.64, shift right 32 for Q32.32
	result := int64((hi << 32) | (lo >> 32))

	if negative {
		return -result
	}
	return result
}

func Div(a, b Scalar) Scalar {
	if b == 0 {
		return 0
	}
	negative := (a < 0) != (b < 0)
	ua, ub := uint64(a), uint64(b)
	if a < 0 {
		ua = uint64(-a)
	}
	if b < 0 {
		ub = uint64(-b)
	}

	// a << 32 as 128-bit: hi = a >> 32, lo = a << 32
	hi := ua >> 32
	lo := ua << 32

	// Quotient will not fit in 64 bits when hi >= ub; saturate
	if hi >= ub {
		if negative {
			return math.MinInt64
		}
		return math.MaxInt64
	}

	quo, _ := bits.Div64(hi, lo, ub)

	if quo > math.MaxInt64 {
		if negative {
			return math.MinInt64
		}
		return math.MaxInt64
	}

	if negative {
		return -int64(quo)
	}
	return int64(quo)
}

// MulDiv computes (a * b) / c with 128-bit intermediate
// Useful for ratio calculations without precision loss
func MulDiv(a, b, c Scalar) Scalar {
	if c == 0 {
		return 0
	}
	neg := ((a < 0) != (b < 0)) != (c < 0)
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if c < 0 {
		c = -c
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	q, _ := bits.Div64(hi, lo, uint64(c))
	r := int64(q)
	if neg {
		return -r
	}
	return r
}

// Abs returns absolute value
func Abs(x Scalar) Scalar {
	if x < 0 {
		return -x
	}
	return x
}

// Sign returns -One, 0, or One
func Sign(x Scalar) Scalar {
	if x < 0 {
		return -One
	}
	if x > 0 {
		return One
	}
	return 0
}

func Min(a, b Scalar) Scalar {
	if a < b {
		return a
	}
	return b
}

func Max(a, b Scalar) Scalar {
	if a > b {
		return a
	}
	return b
}

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi Scalar) Scalar {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Sqrt returns the Q32.32 square root using Newton-Raphson iteration.
// Pure integer path: the result depends only on the input bit pattern
func Sqrt(x Scalar) Scalar {
	if x <= 0 {
		return 0
	}

	// Initial guess from the highest set bit
	guess := x
	if guess > Scale {
		guess = Scale
		for guess < x>>1 {
			guess <<= 1
		}
	} else {
		guess = x >> 1
		if guess == 0 {
			guess = 1
		}
	}

	// 12 iterations covers Q32.32 precision across the solver's ranges
	for i := 0; i < 12; i++ {
		if guess == 0 {
			return 0
		}
		guess = (guess + Div(x, guess)) >> 1
	}
	return guess
}
