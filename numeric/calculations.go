package numeric

// DurationConstraint bounds a ground action's duration, grounded on
// SASAction's duration expressions in the source's sasTask.h.
type DurationConstraint struct {
	Comparator Comparator
	Expr       Expr
}

// ConditionalNumericEffect is a conditional effect's numeric half: the
// condition bucket gating the effect bucket, both already split into
// at-start/at-end by the translator.
type ConditionalNumericEffect struct {
	AtStartCond []Condition
	AtEndCond   []Condition
	AtStartEff  []Effect
	AtEndEff    []Effect
}

// ActionNumericSpec is the ground numeric shape of a SAS action: everything
// IntervalCalculations needs and nothing else, so this package stays
// independent of how the SAS layer represents the rest of the action.
type ActionNumericSpec struct {
	ControlVarCount     int
	DurationConstraints []DurationConstraint
	AtStartCond         []Condition
	AtEndCond           []Condition
	AtStartEff          []Effect
	AtEndEff            []Effect
	ConditionalEffects  []ConditionalNumericEffect
}

// NumVarChange records the new interval of a fluent touched by an
// effect application, so the successor generator can fold the change into
// the child node's frontier state without recomputing every variable.
type NumVarChange struct {
	Var VarID
	New Interval
}

// IntervalCalculations performs the per-action numeric bookkeeping the
// successor generator runs each time it schedules a ground action:
// deriving feasible control-variable and duration intervals from the
// action's conditions, then propagating effects.
type IntervalCalculations struct {
	action   *ActionNumericSpec
	fluents  FluentIntervalSource
	duration Interval
	cvars    []Interval
	undef    bool
}

// NewIntervalCalculations computes the action's control-variable and
// duration intervals from its own conditions, mirroring the constructor in
// the source, which runs calculateControlVarIntervals then
// calculateDuration before any condition or effect check.
func NewIntervalCalculations(action *ActionNumericSpec, fluents FluentIntervalSource) *IntervalCalculations {
	ic := &IntervalCalculations{
		action:  action,
		fluents: fluents,
		cvars:   make([]Interval, action.ControlVarCount),
	}
	for i := range ic.cvars {
		ic.cvars[i] = Unbounded()
	}
	ic.calculateControlVarIntervals()
	ic.calculateDuration()
	return ic
}

func (ic *IntervalCalculations) frame() Frame {
	return Frame{Fluents: ic.fluents, ControlVars: ic.cvars, SharpT: Unbounded(), Duration: ic.duration}
}

// calculateControlVarIntervals narrows each control variable's interval
// using the at-start and at-end conditions that reference it directly,
// the one-sided form (cvar) cmp (expr) or (expr) cmp (cvar). Conditions
// that only bound a control variable transitively through an arithmetic
// expression are left unnarrowed; the validator is the final arbiter of
// any binding the search commits to.
func (ic *IntervalCalculations) calculateControlVarIntervals() {
	narrow := func(conds []Condition) {
		for _, c := range conds {
			ic.constrainControlVar(c)
		}
	}
	narrow(ic.action.AtStartCond)
	narrow(ic.action.AtEndCond)
}

func (ic *IntervalCalculations) constrainControlVar(c Condition) {
	if cv, ok := c.Left.(ControlVar); ok {
		ic.narrowOne(cv.Index, c.Comparator, c.Right)
		return
	}
	if cv, ok := c.Right.(ControlVar); ok {
		ic.narrowOne(cv.Index, flip(c.Comparator), c.Left)
	}
}

// flip reverses a comparator's operands: (expr) cmp (cvar) becomes
// (cvar) flip(cmp) (expr).
func flip(cmp Comparator) Comparator {
	switch cmp {
	case Lt:
		return Gt
	case Le:
		return Ge
	case Gt:
		return Lt
	case Ge:
		return Le
	default:
		return cmp
	}
}

func (ic *IntervalCalculations) narrowOne(index int, cmp Comparator, bound Expr) {
	if index < 0 || index >= len(ic.cvars) {
		return
	}
	b, undefined := Evaluate(bound, ic.frame())
	ic.undef = ic.undef || undefined
	cur := ic.cvars[index]
	switch cmp {
	case Eq:
		ic.cvars[index] = cur.Intersect(b)
	case Le:
		ic.cvars[index] = cur.Intersect(Interval{Min: negInf, Max: b.Max})
	case Lt:
		ic.cvars[index] = cur.Intersect(Interval{Min: negInf, Max: b.Max})
	case Ge:
		ic.cvars[index] = cur.Intersect(Interval{Min: b.Min, Max: posInf})
	case Gt:
		ic.cvars[index] = cur.Intersect(Interval{Min: b.Min, Max: posInf})
	}
}

// calculateDuration evaluates every duration constraint and intersects
// their bounds into a single feasible duration interval, starting from
// Unbounded (an instantaneous action never reaches here since the SAS
// translator gives it a fixed zero duration instead).
func (ic *IntervalCalculations) calculateDuration() {
	d := Unbounded()
	for _, dc := range ic.action.DurationConstraints {
		b, undefined := Evaluate(dc.Expr, ic.frame())
		ic.undef = ic.undef || undefined
		switch dc.Comparator {
		case Eq:
			d = d.Intersect(b)
		case Le, Lt:
			d = d.Intersect(Interval{Min: negInf, Max: b.Max})
		case Ge, Gt:
			d = d.Intersect(Interval{Min: b.Min, Max: posInf})
		}
	}
	ic.duration = d
}

// Duration returns the action's feasible duration interval.
func (ic *IntervalCalculations) Duration() Interval { return ic.duration }

// ControlVars returns the action's feasible control-variable intervals, by
// index into the operator's control-variable list.
func (ic *IntervalCalculations) ControlVars() []Interval { return ic.cvars }

// Undefined reports whether any evaluation along the way hit a
// division-by-zero-straddling interval, per the division Open Question;
// the caller should flag the resulting plan node validator-required rather
// than reject it outright.
func (ic *IntervalCalculations) Undefined() bool { return ic.undef }

// SupportedNumericStartConditions reports whether every at-start numeric
// condition is possibly satisfied, and narrows holdCondEff[i] to false for
// any conditional effect whose at-start condition cannot hold so the
// successor generator skips firing it.
func (ic *IntervalCalculations) SupportedNumericStartConditions(holdCondEff []bool) bool {
	for _, c := range ic.action.AtStartCond {
		ok, undefined := CheckCondition(c, ic.frame())
		ic.undef = ic.undef || undefined
		if !ok {
			return false
		}
	}
	for i, ce := range ic.action.ConditionalEffects {
		if i >= len(holdCondEff) || !holdCondEff[i] {
			continue
		}
		for _, c := range ce.AtStartCond {
			ok, undefined := CheckCondition(c, ic.frame())
			ic.undef = ic.undef || undefined
			if !ok {
				holdCondEff[i] = false
				break
			}
		}
	}
	return true
}

// SupportedNumericEndConditions is the at-end counterpart of
// SupportedNumericStartConditions, run once the action's end time point is
// scheduled and its post-start effects have been folded into the frontier
// state.
func (ic *IntervalCalculations) SupportedNumericEndConditions(holdCondEff []bool) bool {
	for _, c := range ic.action.AtEndCond {
		ok, undefined := CheckCondition(c, ic.frame())
		ic.undef = ic.undef || undefined
		if !ok {
			return false
		}
	}
	for i, ce := range ic.action.ConditionalEffects {
		if i >= len(holdCondEff) || !holdCondEff[i] {
			continue
		}
		for _, c := range ce.AtEndCond {
			ok, undefined := CheckCondition(c, ic.frame())
			ic.undef = ic.undef || undefined
			if !ok {
				holdCondEff[i] = false
				break
			}
		}
	}
	return true
}

// ApplyStartEffects evaluates the action's at-start numeric effects (plus
// any still-enabled conditional effect's at-start effects) against the
// current frame, returning one NumVarChange per affected variable in
// effect order.
func (ic *IntervalCalculations) ApplyStartEffects(holdCondEff []bool) []NumVarChange {
	var changes []NumVarChange
	for _, e := range ic.action.AtStartEff {
		changes = append(changes, ic.apply(e))
	}
	for i, ce := range ic.action.ConditionalEffects {
		if i < len(holdCondEff) && holdCondEff[i] {
			for _, e := range ce.AtStartEff {
				changes = append(changes, ic.apply(e))
			}
		}
	}
	return changes
}

// ApplyEndEffects is the at-end counterpart of ApplyStartEffects.
func (ic *IntervalCalculations) ApplyEndEffects(holdCondEff []bool) []NumVarChange {
	var changes []NumVarChange
	for _, e := range ic.action.AtEndEff {
		changes = append(changes, ic.apply(e))
	}
	for i, ce := range ic.action.ConditionalEffects {
		if i < len(holdCondEff) && holdCondEff[i] {
			for _, e := range ce.AtEndEff {
				changes = append(changes, ic.apply(e))
			}
		}
	}
	return changes
}

func (ic *IntervalCalculations) apply(e Effect) NumVarChange {
	v, undefined := ApplyEffect(e, ic.frame())
	ic.undef = ic.undef || undefined
	return NumVarChange{Var: e.Target, New: v}
}

var (
	negInf = Unbounded().Min
	posInf = Unbounded().Max
)
