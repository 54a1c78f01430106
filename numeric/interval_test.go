package numeric

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalArithmeticProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	bounded := gen.Float64Range(-1e6, 1e6)

	properties.Property("Add is commutative over point intervals", prop.ForAll(
		func(a, b float64) bool {
			x, y := Point(a), Point(b)
			return x.Add(y) == y.Add(x)
		},
		bounded, bounded,
	))

	properties.Property("point interval Sub of itself is zero", prop.ForAll(
		func(a float64) bool {
			x := Point(a)
			r := x.Sub(x)
			return math.Abs(r.Min) < 1e-9 && math.Abs(r.Max) < 1e-9
		},
		bounded,
	))

	properties.Property("Mul of a non-empty interval by [0,0] is [0,0]", prop.ForAll(
		func(lo, hi float64) bool {
			if lo > hi {
				lo, hi = hi, lo
			}
			iv := Interval{Min: lo, Max: hi}
			r := iv.Mul(Point(0))
			return r.Min == 0 && r.Max == 0
		},
		bounded, bounded,
	))

	properties.Property("Div by an interval straddling zero is undefined", prop.ForAll(
		func(lo, hi float64) bool {
			straddling := Interval{Min: -1, Max: 1}
			iv := Interval{Min: lo, Max: hi}
			if iv.Empty() {
				return true
			}
			_, undefined := iv.Div(straddling)
			return undefined
		},
		bounded, bounded,
	))

	properties.Property("Intersect with Unbounded is identity", prop.ForAll(
		func(lo, hi float64) bool {
			if lo > hi {
				lo, hi = hi, lo
			}
			iv := Interval{Min: lo, Max: hi}
			return iv.Intersect(Unbounded()) == iv
		},
		bounded, bounded,
	))

	properties.TestingRun(t)
}

func TestDivStrictlyPositiveDivisor(t *testing.T) {
	iv := Interval{Min: 10, Max: 20}
	divisor := Interval{Min: 2, Max: 4}
	result, undefined := iv.Div(divisor)
	require.False(t, undefined)
	assert.Equal(t, Interval{Min: 2.5, Max: 10}, result)
}

func TestDivZeroAtBoundaryIsUndefined(t *testing.T) {
	iv := Point(5)
	divisor := Interval{Min: 0, Max: 3}
	_, undefined := iv.Div(divisor)
	assert.True(t, undefined)
}

func TestSatisfiesEquality(t *testing.T) {
	assert.True(t, Satisfies(Eq, Point(3), Interval{Min: 2, Max: 4}))
	assert.False(t, Satisfies(Eq, Point(1), Interval{Min: 2, Max: 4}))
}

func TestSatisfiesOrdering(t *testing.T) {
	assert.True(t, Satisfies(Lt, Point(1), Point(2)))
	assert.False(t, Satisfies(Lt, Point(2), Point(2)))
	assert.True(t, Satisfies(Le, Point(2), Point(2)))
	assert.True(t, Satisfies(Ge, Interval{Min: 0, Max: 5}, Point(5)))
}
