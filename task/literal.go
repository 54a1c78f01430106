package task

// Literal is a ground or schematic predicate application: function applied
// to argument terms, possibly negated.
type Literal struct {
	Function int // task.Function.ID, Kind == Predicate
	Args     []Term
	Negated  bool
}

// NumericCondition compares Left with Right using Comparator, evaluated at
// a fixed time (§3 condition buckets).
type NumericCondition struct {
	Comparator Comparator
	Left       NumericExpr
	Right      NumericExpr
}

// Time identifies which of a durative action's three condition/effect
// buckets a construct belongs to.
type Time int

const (
	AtStart Time = iota
	OverAll
	AtEnd
)

// ConditionSet groups a condition bucket's boolean and numeric parts.
type ConditionSet struct {
	Literals []Literal
	Numeric  []NumericCondition
}

// Effect is a boolean assignment: the literal becomes true (Negated=false)
// or false (Negated=true) at the effect's time point.
type Effect struct {
	Literal Literal
}

// NumericEffect assigns or updates a numeric function.
type NumericEffect struct {
	Target Term // numeric function application, encoded as a FluentExpr-shaped term pair
	Function int
	Args     []Term
	Op       AssignOp
	Value    NumericExpr
}

// ConditionalEffect is a miniature action nested inside an operator: its own
// at-start/at-end conditions gate its own at-start/at-end effects. Evaluated
// against the state at its trigger time (at-start conditions against the
// at-start state, at-end against the at-end state), per invariant 4.
type ConditionalEffect struct {
	AtStartCond ConditionSet
	AtEndCond   ConditionSet
	AtStartEff  EffectSet
	AtEndEff    EffectSet
}

// EffectSet groups an effect bucket's boolean and numeric parts.
type EffectSet struct {
	Literals []Effect
	Numeric  []NumericEffect
}
