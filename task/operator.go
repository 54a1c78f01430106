package task

// ParamConstraint filters candidate parameter bindings during grounding:
// equality or inequality between two of an operator's parameters.
type ParamConstraint struct {
	A, B  int // parameter indexes
	Equal bool
}

// DurationConstraint bounds a durative operator's duration: Comparator
// relates an expression over control variables/state fluents to the actual
// duration. A non-durative (instantaneous) operator has no constraints.
type DurationConstraint struct {
	Comparator Comparator
	Expr       NumericExpr
}

// Operator is a schematic action: durative or instantaneous, with explicit
// conditional effects and flattened conjunctive effects, per §4.1's
// preprocessor contract.
type Operator struct {
	Name       string
	Parameters []TypedParameter

	// ControlVars are free numeric parameters (unbound by Parameters) whose
	// values the validator ultimately assigns.
	ControlVars []TypedParameter

	ParamConstraints []ParamConstraint

	Instantaneous bool
	Durations     []DurationConstraint

	AtStartCond ConditionSet
	OverAllCond ConditionSet
	AtEndCond   ConditionSet

	AtStartEff EffectSet
	AtEndEff   EffectSet

	ConditionalEffects []ConditionalEffect

	// Cost, if non-nil, is evaluated to produce the SAS action's g-increment
	// instead of the default cost of 1 (§4.6 step 8).
	Cost NumericExpr
}

// Domain is the static, object-independent part of a planning task: types,
// functions (predicates and numeric/object functions), and operators.
type Domain struct {
	Name      string
	Types     *TypeGraph
	Functions []Function
	Operators []Operator
	Constants []Object
}

// FunctionByName returns the Function named n, or false if undeclared.
func (d *Domain) FunctionByName(n string) (Function, bool) {
	for _, f := range d.Functions {
		if f.Name == n {
			return f, true
		}
	}
	return Function{}, false
}
