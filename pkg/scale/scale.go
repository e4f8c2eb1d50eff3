// Package scale maps numeric domains onto numeric ranges.
package scale

import "math"

// Degenerate selects the output of a scale whose domain has zero width.
type Degenerate int

const (
	// DegenerateMax maps every input to the end of the range.
	DegenerateMax Degenerate = iota
	// DegenerateMid maps every input to the middle of the range.
	DegenerateMid
	// DegenerateMin maps every input to the start of the range.
	DegenerateMin
)

// Continuous is a pow-family scale. Exponent 1 is linear, 0.5 is sqrt.
type Continuous struct {
	exponent   float64
	domain     [2]float64
	rng        [2]float64
	degenerate Degenerate
}

// Linear returns a linear scale over [0,1] -> [0,1].
func Linear() *Continuous {
	return Pow(1)
}

// Sqrt returns a square-root scale, used for area-proportional encodings.
func Sqrt() *Continuous {
	return Pow(0.5)
}

// Pow returns a scale applying a sign-preserving power transform.
func Pow(exponent float64) *Continuous {
	return &Continuous{
		exponent: exponent,
		domain:   [2]float64{0, 1},
		rng:      [2]float64{0, 1},
	}
}

// Domain sets the input extent.
func (c *Continuous) Domain(lo, hi float64) *Continuous {
	c.domain = [2]float64{lo, hi}

	return c
}

// Range sets the output extent.
func (c *Continuous) Range(lo, hi float64) *Continuous {
	c.rng = [2]float64{lo, hi}

	return c
}

// OnDegenerate sets the policy for zero-width domains.
func (c *Continuous) OnDegenerate(d Degenerate) *Continuous {
	c.degenerate = d

	return c
}

// DomainExtent returns the input extent.
func (c *Continuous) DomainExtent() (lo, hi float64) {
	return c.domain[0], c.domain[1]
}

// RangeExtent returns the output extent.
func (c *Continuous) RangeExtent() (lo, hi float64) {
	return c.rng[0], c.rng[1]
}

// Map returns the range value for v. Inputs outside the domain extrapolate.
// The result is always finite when domain and range are finite.
func (c *Continuous) Map(v float64) float64 {
	lo, hi := c.transform(c.domain[0]), c.transform(c.domain[1])
	width := hi - lo

	if width == 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return c.fallback()
	}

	t := (c.transform(v) - lo) / width
	if math.IsNaN(t) {
		return c.fallback()
	}

	return c.rng[0] + t*(c.rng[1]-c.rng[0])
}

func (c *Continuous) fallback() float64 {
	switch c.degenerate {
	case DegenerateMin:
		return c.rng[0]
	case DegenerateMid:
		return (c.rng[0] + c.rng[1]) / 2
	default:
		return c.rng[1]
	}
}

func (c *Continuous) transform(v float64) float64 {
	if c.exponent == 1 {
		return v
	}

	if v < 0 {
		return -math.Pow(-v, c.exponent)
	}

	return math.Pow(v, c.exponent)
}
