package numeric

// FluentIntervalSource supplies the current interval of a ground numeric
// variable. The numeric RPG's per-layer state and a plan node's frontier
// state both implement it, letting Evaluate stay agnostic to which one is
// asking.
type FluentIntervalSource interface {
	Interval(id VarID) Interval
}

// Frame bundles the context Evaluate needs beyond the fluent source: the
// control-variable bindings in scope (by index, per operator.ControlVars)
// and the #t / ?duration intervals, which only make sense while evaluating
// a specific action instance (§4.5).
type Frame struct {
	Fluents     FluentIntervalSource
	ControlVars []Interval
	SharpT      Interval
	Duration    Interval
}

// Evaluate computes the interval value of a ground numeric expression under
// frame f. Division by a divisor interval straddling zero yields Unbounded
// and sets undefined, matching Interval.Div's contract; the caller
// propagates undefined upward so the owning action can be flagged
// validator-required instead of rejected outright.
func Evaluate(e Expr, f Frame) (Interval, bool) {
	switch v := e.(type) {
	case Const:
		return Point(v.Value), false
	case Var:
		return f.Fluents.Interval(v.ID), false
	case ControlVar:
		if v.Index < 0 || v.Index >= len(f.ControlVars) {
			return Unbounded(), true
		}
		return f.ControlVars[v.Index], false
	case SharpT:
		return f.SharpT, false
	case Duration:
		return f.Duration, false
	case Add:
		l, lu := Evaluate(v.Left, f)
		r, ru := Evaluate(v.Right, f)
		return l.Add(r), lu || ru
	case Sub:
		l, lu := Evaluate(v.Left, f)
		r, ru := Evaluate(v.Right, f)
		return l.Sub(r), lu || ru
	case Mul:
		l, lu := Evaluate(v.Left, f)
		r, ru := Evaluate(v.Right, f)
		return l.Mul(r), lu || ru
	case Div:
		l, lu := Evaluate(v.Left, f)
		r, ru := Evaluate(v.Right, f)
		result, divUndefined := l.Div(r)
		return result, lu || ru || divUndefined
	}
	return Unbounded(), true
}

// CheckCondition evaluates a ground numeric condition for possible
// satisfaction under frame f. Like Interval.Satisfies, this is an
// optimistic ("may hold") check: callers applying delete relaxation treat it
// as applicability, while the successor generator additionally consults the
// validator before committing.
func CheckCondition(c Condition, f Frame) (ok bool, undefined bool) {
	l, lu := Evaluate(c.Left, f)
	r, ru := Evaluate(c.Right, f)
	return Satisfies(c.Comparator, l, r), lu || ru
}

// ApplyEffect computes the new interval for a numeric effect's target
// variable given its current interval (looked up via f.Fluents) and the
// effect's assignment operator.
func ApplyEffect(eff Effect, f Frame) (Interval, bool) {
	value, undefined := Evaluate(eff.Value, f)
	switch eff.Op {
	case Set:
		return value, undefined
	case Increase:
		cur := f.Fluents.Interval(eff.Target)
		return cur.Add(value), undefined
	case Decrease:
		cur := f.Fluents.Interval(eff.Target)
		return cur.Sub(value), undefined
	case ScaleUp:
		cur := f.Fluents.Interval(eff.Target)
		return cur.Mul(value), undefined
	case ScaleDown:
		cur := f.Fluents.Interval(eff.Target)
		result, divUndefined := cur.Div(value)
		return result, undefined || divUndefined
	}
	return Unbounded(), true
}
