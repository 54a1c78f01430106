package task

// GroundFact is a true boolean fluent in the initial state.
type GroundFact struct {
	Function int
	Args     []string // ground object names
}

// GroundNumericFact is a numeric function's initial value.
type GroundNumericFact struct {
	Function int
	Args     []string
	Value    float64
}

// TimedLiteral is a timed initial literal (TIL): a fact that becomes true
// (or, if Negated, false) at an absolute time, independent of any action.
type TimedLiteral struct {
	Time    float64
	Fact    GroundFact
	Negated bool
}

// Problem is the object-dependent part of a planning task: the object
// universe, initial state, and goal.
type Problem struct {
	Name       string
	DomainName string
	Objects    []Object

	InitFacts    []GroundFact
	InitNumeric  []GroundNumericFact
	InitTimed    []TimedLiteral

	Goal        GoalDescription
	Preferences []Preference
	Constraints []Constraint
	Metric      *Metric
}

// ObjectsOfType returns every object satisfying t, directly or via a
// supertype, in declaration order. Used by the grounder's binding engine and
// by ground.ExpandADL for quantifier expansion.
func ObjectsOfType(g *TypeGraph, objects []Object, t Type) []Object {
	var out []Object
	for _, o := range objects {
		if o.HasType(g, t) {
			out = append(out, o)
		}
	}
	return out
}
