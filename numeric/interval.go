package numeric

import "math"

// Interval is a closed real interval [Min, Max]. The zero value is the
// degenerate point interval {0, 0}; use Unbounded() for (-inf, +inf).
type Interval struct {
	Min, Max float64
}

// Point returns the degenerate interval [v, v].
func Point(v float64) Interval { return Interval{Min: v, Max: v} }

// Unbounded returns (-inf, +inf), the initial interval for every control
// variable before any condition constrains it (§4.5).
func Unbounded() Interval { return Interval{Min: math.Inf(-1), Max: math.Inf(1)} }

// Empty reports whether the interval is infeasible (Min > Max).
func (iv Interval) Empty() bool { return iv.Min > iv.Max }

// Contains reports whether v lies within the interval.
func (iv Interval) Contains(v float64) bool { return v >= iv.Min && v <= iv.Max }

// Intersect returns the tightest interval consistent with both iv and other.
func (iv Interval) Intersect(other Interval) Interval {
	return Interval{Min: math.Max(iv.Min, other.Min), Max: math.Min(iv.Max, other.Max)}
}

// Add, Sub, Mul, Div implement sign-respecting interval arithmetic (§4.5).
func (iv Interval) Add(other Interval) Interval {
	return Interval{Min: iv.Min + other.Min, Max: iv.Max + other.Max}
}

func (iv Interval) Sub(other Interval) Interval {
	return Interval{Min: iv.Min - other.Max, Max: iv.Max - other.Min}
}

func (iv Interval) Neg() Interval { return Interval{Min: -iv.Max, Max: -iv.Min} }

func (iv Interval) Mul(other Interval) Interval {
	candidates := [4]float64{
		iv.Min * other.Min, iv.Min * other.Max,
		iv.Max * other.Min, iv.Max * other.Max,
	}
	return minMax(candidates[:])
}

// Div implements interval division. Per the Open Question in §9, division
// by an interval that straddles (or sits at) zero is underspecified in the
// source; this yields Unbounded() and reports undefined=true so the caller
// can flag the owning action as validator-required.
func (iv Interval) Div(other Interval) (result Interval, undefined bool) {
	if other.Min <= 0 && other.Max >= 0 {
		return Unbounded(), true
	}
	candidates := [4]float64{
		iv.Min / other.Min, iv.Min / other.Max,
		iv.Max / other.Min, iv.Max / other.Max,
	}
	return minMax(candidates[:]), false
}

func minMax(vs []float64) Interval {
	out := Interval{Min: vs[0], Max: vs[0]}
	for _, v := range vs[1:] {
		if v < out.Min {
			out.Min = v
		}
		if v > out.Max {
			out.Max = v
		}
	}
	return out
}

// Satisfies reports whether cmp holds for *some* (min,max) pairing admitted
// by the two intervals — i.e. whether the comparison is satisfiable, not
// whether it necessarily holds. Used by condition checks in the RPG and
// successor generator, which both treat "possibly true" as "applicable"
// under delete relaxation / optimistic interval tracking.
func Satisfies(cmp Comparator, left, right Interval) bool {
	switch cmp {
	case Eq:
		return !left.Intersect(right).Empty()
	case Neq:
		return !(left.Min == left.Max && right.Min == right.Max && left.Min == right.Min)
	case Lt:
		return left.Min < right.Max
	case Le:
		return left.Min <= right.Max
	case Gt:
		return left.Max > right.Min
	case Ge:
		return left.Max >= right.Min
	}
	return false
}
