// Package ground implements a forward-chaining grounder: it turns a
// schematic task.Domain + task.Problem into the set of ground actions
// reachable from the initial state, plus the ground fluents they touch,
// via a binding-search loop over candidate parameter assignments.
package ground

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dsic-upv/nextflap-go/task"
)

// argSeparator joins a Fact's arguments; it cannot appear in an object name.
const argSeparator = "\x1f"

// Fact is a ground boolean fluent key: function id plus argument objects.
type Fact struct {
	Function int
	Args     string // Args joined by argSeparator
}

func factKey(function int, args []string) Fact {
	return Fact{Function: function, Args: strings.Join(args, argSeparator)}
}

// FactKey builds a Fact from a function id and its ground arguments; other
// packages (the SAS translator's numeric renumbering pass) use it to stay
// consistent with how facts are keyed internally.
func FactKey(function int, args []string) Fact { return factKey(function, args) }

// ArgList splits f's Args back into the individual ground object names, for
// callers (pddlio's emitters) that need to render a Fact as readable text.
func (f Fact) ArgList() []string {
	if f.Args == "" {
		return nil
	}
	return strings.Split(f.Args, argSeparator)
}

// Action is a ground action: one consistent parameter binding of a
// task.Operator, with every Term resolved to a ground object name.
type Action struct {
	Operator *task.Operator
	Args     []string

	Instantaneous bool
	Durations     []DurationConstraint

	AtStartCond ConditionSet
	OverAllCond ConditionSet
	AtEndCond   ConditionSet

	AtStartEff EffectSet
	AtEndEff   EffectSet

	ConditionalEffects []ConditionalEffect

	Cost task.NumericExpr
}

// Name renders the action in the conventional "(op arg1 arg2 ...)" form.
func (a *Action) Name() string {
	return fmt.Sprintf("(%s %s)", a.Operator.Name, strings.Join(a.Args, " "))
}

type DurationConstraint struct {
	Comparator task.Comparator
	Expr       task.NumericExpr
}

type Literal struct {
	Fact    Fact
	Negated bool
}

type ConditionSet struct {
	Literals []Literal
	Numeric  []task.NumericCondition
}

type Effect struct {
	Fact    Fact
	Negated bool
}

type NumericEffect struct {
	Target Fact
	Op     task.AssignOp
	Value  task.NumericExpr
}

type EffectSet struct {
	Literals []Effect
	Numeric  []NumericEffect
}

type ConditionalEffect struct {
	AtStartCond ConditionSet
	AtEndCond   ConditionSet
	AtStartEff  EffectSet
	AtEndEff    EffectSet
}

// Task is the grounder's output: every reachable ground action, the
// initial truth/value of every ground fluent they reference, and the goal
// in ground form.
type Task struct {
	Actions []*Action
	// Goal, Preferences and Constraints are ground, ADL-expanded formulas;
	// the SAS translator (§4.2) is responsible for synthesizing the at-end
	// goal action these feed into.
	Goal        task.GoalDescription
	Preferences []GroundPreference
	Constraints []GroundConstraint

	InitFacts   map[Fact]bool
	InitNumeric map[Fact]float64
	// StaticFacts holds facts never touched by any reached action's effects;
	// their value never changes past the initial state.
	StaticFacts map[Fact]bool
}

// GroundPreference is a ground copy of task.Preference.
type GroundPreference struct {
	Name string
	Goal task.GoalDescription
}

// GroundConstraint is a ground copy of task.Constraint.
type GroundConstraint struct {
	Kind        task.ConstraintKind
	Goal        task.GoalDescription
	TriggerGoal task.GoalDescription
	Preference  string
}

// substitute resolves a schematic Term against a parameter binding.
func substitute(t task.Term, binding []string) string {
	if t.IsParameter {
		return binding[t.ParamIndex]
	}
	return t.Object
}

func groundFact(function int, args []task.Term, binding []string) Fact {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = substitute(a, binding)
	}
	return factKey(function, out)
}

func groundLiteral(lit task.Literal, binding []string) Literal {
	return Literal{Fact: groundFact(lit.Function, lit.Args, binding), Negated: lit.Negated}
}

func groundConditionSet(cs task.ConditionSet, binding []string) ConditionSet {
	out := ConditionSet{Numeric: make([]task.NumericCondition, len(cs.Numeric))}
	for _, l := range cs.Literals {
		out.Literals = append(out.Literals, groundLiteral(l, binding))
	}
	for i, n := range cs.Numeric {
		out.Numeric[i] = task.NumericCondition{
			Comparator: n.Comparator,
			Left:       groundNumericExpr(n.Left, binding),
			Right:      groundNumericExpr(n.Right, binding),
		}
	}
	return out
}

// groundNumericExpr substitutes object bindings into every FluentExpr's
// argument terms, leaving ControlVarExpr and the pseudo-variables untouched
// since those are resolved later, per action instance, by the numeric
// package's interval calculations.
func groundNumericExpr(e task.NumericExpr, binding []string) task.NumericExpr {
	switch v := e.(type) {
	case nil:
		return nil
	case task.NumberExpr, task.ControlVarExpr, task.SharpTExpr, task.DurationExpr, task.ObjectExpr, task.UndefinedExpr:
		return v
	case task.FluentExpr:
		args := make([]task.Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = task.ObjectTerm(substitute(a, binding))
		}
		return task.FluentExpr{Function: v.Function, Args: args}
	case task.SumExpr:
		return task.SumExpr{Left: groundNumericExpr(v.Left, binding), Right: groundNumericExpr(v.Right, binding)}
	case task.SubExpr:
		return task.SubExpr{Left: groundNumericExpr(v.Left, binding), Right: groundNumericExpr(v.Right, binding)}
	case task.MulExpr:
		return task.MulExpr{Left: groundNumericExpr(v.Left, binding), Right: groundNumericExpr(v.Right, binding)}
	case task.DivExpr:
		return task.DivExpr{Left: groundNumericExpr(v.Left, binding), Right: groundNumericExpr(v.Right, binding)}
	default:
		return v
	}
}

func groundEffect(eff task.Effect, binding []string) Effect {
	return Effect{Fact: groundFact(eff.Literal.Function, eff.Literal.Args, binding), Negated: eff.Literal.Negated}
}

func groundNumericEffect(eff task.NumericEffect, binding []string) NumericEffect {
	return NumericEffect{
		Target: groundFact(eff.Function, eff.Args, binding),
		Op:     eff.Op,
		Value:  groundNumericExpr(eff.Value, binding),
	}
}

func groundEffectSet(es task.EffectSet, binding []string) EffectSet {
	out := EffectSet{Numeric: make([]NumericEffect, len(es.Numeric))}
	for _, l := range es.Literals {
		out.Literals = append(out.Literals, groundEffect(l, binding))
	}
	for i, n := range es.Numeric {
		out.Numeric[i] = groundNumericEffect(n, binding)
	}
	return out
}

func groundConditionalEffect(ce task.ConditionalEffect, binding []string) ConditionalEffect {
	return ConditionalEffect{
		AtStartCond: groundConditionSet(ce.AtStartCond, binding),
		AtEndCond:   groundConditionSet(ce.AtEndCond, binding),
		AtStartEff:  groundEffectSet(ce.AtStartEff, binding),
		AtEndEff:    groundEffectSet(ce.AtEndEff, binding),
	}
}

func groundDurations(ds []task.DurationConstraint, binding []string) []DurationConstraint {
	out := make([]DurationConstraint, len(ds))
	for i, d := range ds {
		out[i] = DurationConstraint{Comparator: d.Comparator, Expr: groundNumericExpr(d.Expr, binding)}
	}
	return out
}

func instantiate(op *task.Operator, binding []string) *Action {
	return &Action{
		Operator:           op,
		Args:               append([]string(nil), binding...),
		Instantaneous:      op.Instantaneous,
		Durations:          groundDurations(op.Durations, binding),
		AtStartCond:        groundConditionSet(op.AtStartCond, binding),
		OverAllCond:        groundConditionSet(op.OverAllCond, binding),
		AtEndCond:          groundConditionSet(op.AtEndCond, binding),
		AtStartEff:         groundEffectSet(op.AtStartEff, binding),
		AtEndEff:           groundEffectSet(op.AtEndEff, binding),
		ConditionalEffects: groundConditionalEffectList(op.ConditionalEffects, binding),
		Cost:               groundNumericExpr(op.Cost, binding),
	}
}

func groundConditionalEffectList(ces []task.ConditionalEffect, binding []string) []ConditionalEffect {
	out := make([]ConditionalEffect, len(ces))
	for i, ce := range ces {
		out[i] = groundConditionalEffect(ce, binding)
	}
	return out
}

// satisfiesParamConstraints reports whether a partial binding (covering at
// least every index referenced in cs) respects op's equality/inequality
// parameter constraints.
func satisfiesParamConstraints(cs []task.ParamConstraint, binding []string) bool {
	for _, c := range cs {
		eq := binding[c.A] == binding[c.B]
		if eq != c.Equal {
			return false
		}
	}
	return true
}

// literalHolds reports whether lit is true (or, if Negated, false) under
// knownFacts. Negative preconditions are checked against the known set
// under a closed-world assumption that is only final once saturation
// completes; an action grounded on an early, later-contradicted guess is
// filtered out for real at successor-generation time, which consults the
// actual frontier state rather than this reachability approximation.
func literalHolds(lit task.Literal, binding []string, known map[Fact]bool) bool {
	f := groundFact(lit.Function, lit.Args, binding)
	return known[f] != lit.Negated
}

// Ground runs the forward-chaining grounder over domain and problem,
// returning the reachable ground task.
// Ground instantiates every operator of domain against problem's object
// universe, folding static facts into their consuming actions' conditions
// unless keepStatic is true (CLI flag -static), in which case StaticFacts is
// still populated but no action's condition literals are filtered.
func Ground(domain *task.Domain, problem *task.Problem, keepStatic bool) (*Task, error) {
	known := map[Fact]bool{}
	numeric := map[Fact]float64{}
	for _, f := range problem.InitFacts {
		known[factKey(f.Function, f.Args)] = true
	}
	for _, f := range problem.InitNumeric {
		numeric[factKey(f.Function, f.Args)] = f.Value
	}
	for _, til := range problem.InitTimed {
		f := factKey(til.Fact.Function, til.Fact.Args)
		known[f] = !til.Negated
	}

	byType := objectsByType(domain, problem.Objects)

	actions := map[string]*Action{}
	effectTouched := map[Fact]bool{}

	for changed := true; changed; {
		changed = false
		for i := range domain.Operators {
			op := &domain.Operators[i]
			for _, binding := range candidateBindings(op, byType) {
				if !satisfiesParamConstraints(op.ParamConstraints, binding) {
					continue
				}
				if !operatorApplicable(op, binding, known) {
					continue
				}
				a := instantiate(op, binding)
				key := a.Name()
				if _, ok := actions[key]; ok {
					continue
				}
				actions[key] = a
				changed = true
				recordEffects(a, known, effectTouched)
			}
		}
	}

	static := map[Fact]bool{}
	for f := range known {
		if !effectTouched[f] {
			static[f] = true
		}
	}
	if !keepStatic {
		for _, a := range actions {
			foldStatic(a, known, static)
		}
	}

	ordered := make([]*Action, 0, len(actions))
	for _, a := range actions {
		ordered = append(ordered, a)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name() < ordered[j].Name() })

	objects := problem.Objects
	goal := ExpandADL(domain.Types, objects, problem.Goal)

	prefs := make([]GroundPreference, len(problem.Preferences))
	for i, p := range problem.Preferences {
		prefs[i] = GroundPreference{Name: p.Name, Goal: ExpandADL(domain.Types, objects, p.Goal)}
	}

	cons := make([]GroundConstraint, len(problem.Constraints))
	for i, c := range problem.Constraints {
		gc := GroundConstraint{Kind: c.Kind, Preference: c.Preference}
		gc.Goal = ExpandADL(domain.Types, objects, c.Goal)
		if c.TriggerGoal != nil {
			gc.TriggerGoal = ExpandADL(domain.Types, objects, c.TriggerGoal)
		}
		cons[i] = gc
	}

	if len(problem.InitFacts) == 0 && len(problem.Objects) > 0 {
		// An empty initial state with a declared object universe is almost
		// always a parse-level mistake rather than a genuine empty-world
		// problem; surface it early instead of silently grounding nothing.
		return nil, fmt.Errorf("ground: problem %q declares objects but has no initial facts", problem.Name)
	}

	return &Task{
		Actions:     ordered,
		Goal:        goal,
		Preferences: prefs,
		Constraints: cons,
		InitFacts:   known,
		InitNumeric: numeric,
		StaticFacts: static,
	}, nil
}

func operatorApplicable(op *task.Operator, binding []string, known map[Fact]bool) bool {
	for _, l := range op.AtStartCond.Literals {
		if !literalHolds(l, binding, known) {
			return false
		}
	}
	for _, l := range op.OverAllCond.Literals {
		if !literalHolds(l, binding, known) {
			return false
		}
	}
	for _, l := range op.AtEndCond.Literals {
		if !literalHolds(l, binding, known) {
			return false
		}
	}
	return true
}

func recordEffects(a *Action, known map[Fact]bool, touched map[Fact]bool) {
	apply := func(es EffectSet) {
		for _, e := range es.Literals {
			touched[e.Fact] = true
			if !e.Negated {
				known[e.Fact] = true
			}
		}
	}
	apply(a.AtStartEff)
	apply(a.AtEndEff)
	for _, ce := range a.ConditionalEffects {
		apply(ce.AtStartEff)
		apply(ce.AtEndEff)
	}
}

// foldStatic drops conditions on facts that never change after the initial
// state, per §4.1's constant-folding step: a static fact's truth value is
// decided once, for good, at grounding time.
func foldStatic(a *Action, known map[Fact]bool, static map[Fact]bool) {
	a.AtStartCond.Literals = filterStatic(a.AtStartCond.Literals, known, static)
	a.OverAllCond.Literals = filterStatic(a.OverAllCond.Literals, known, static)
	a.AtEndCond.Literals = filterStatic(a.AtEndCond.Literals, known, static)
	for i := range a.ConditionalEffects {
		a.ConditionalEffects[i].AtStartCond.Literals = filterStatic(a.ConditionalEffects[i].AtStartCond.Literals, known, static)
		a.ConditionalEffects[i].AtEndCond.Literals = filterStatic(a.ConditionalEffects[i].AtEndCond.Literals, known, static)
	}
}

func filterStatic(lits []Literal, known map[Fact]bool, static map[Fact]bool) []Literal {
	var out []Literal
	for _, l := range lits {
		if static[l.Fact] {
			// A static fact that holds (per Negated) is always satisfied;
			// a static fact this literal requires not to hold and which is
			// in fact absent is likewise always satisfied. Either way it
			// contributes nothing to the action's support obligations.
			if known[l.Fact] != l.Negated {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

func objectsByType(domain *task.Domain, objects []task.Object) map[task.Type][]string {
	cache := map[task.Type][]string{}
	seen := map[task.Type]bool{}
	var types []task.Type
	for t := range domain.Types.Parents {
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	types = append(types, task.UniversalType)
	for _, t := range types {
		for _, o := range task.ObjectsOfType(domain.Types, objects, t) {
			cache[t] = append(cache[t], o.Name)
		}
	}
	return cache
}

// candidateBindings enumerates every parameter binding consistent with each
// parameter's declared type, as the cross product of per-parameter object
// lists. Parameter constraints are filtered afterward; the grounder relies
// on the finite, typically small per-type object lists typical of PDDL
// benchmarks rather than incremental join optimization.
func candidateBindings(op *task.Operator, byType map[task.Type][]string) [][]string {
	if len(op.Parameters) == 0 {
		return [][]string{{}}
	}
	lists := make([][]string, len(op.Parameters))
	for i, p := range op.Parameters {
		lists[i] = byType[p.Type]
	}
	var out [][]string
	var rec func(i int, cur []string)
	rec = func(i int, cur []string) {
		if i == len(lists) {
			out = append(out, append([]string(nil), cur...))
			return
		}
		for _, o := range lists[i] {
			rec(i+1, append(cur, o))
		}
	}
	rec(0, nil)
	return out
}
