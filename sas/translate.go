// Package sas implements the SAS+ translator: mutex-graph-based variable
// inference and the rewriting of ground actions into the multi-valued-
// variable form the relaxed planning graphs, landmarks, and search all
// operate on.
package sas

import (
	"fmt"
	"sort"

	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/numeric"
	"github.com/dsic-upv/nextflap-go/sas/mutexgraph"
	"github.com/dsic-upv/nextflap-go/task"
)

// Atom is a (variable, value) pair: one SAS state component.
type Atom struct {
	Var   int
	Value Value
}

// Condition is a ground SAS precondition: v = k (Negated=false) or v ≠ k
// (Negated=true).
type Condition struct {
	Var     int
	Value   Value
	Negated bool
}

// Holds reports whether Condition is satisfied by the variable's current
// value cur.
func (c Condition) Holds(cur Value) bool {
	return (cur == c.Value) != c.Negated
}

// Effect assigns v := k, with every other value of v implicitly false.
type Effect struct {
	Var   int
	Value Value
}

// ConditionalEffect mirrors ground.ConditionalEffect in SAS form.
type ConditionalEffect struct {
	AtStartCond    []Condition
	AtEndCond      []Condition
	AtStartNumCond []numeric.Condition
	AtEndNumCond   []numeric.Condition
	AtStartEff     []Effect
	AtEndEff       []Effect
	AtStartNumEff  []numeric.Effect
	AtEndNumEff    []numeric.Effect
}

// Action is a ground action rewritten over SAS variables and ground
// numeric variables.
type Action struct {
	Name          string
	Instantaneous bool
	ControlVars   int
	Durations     []numeric.DurationConstraint

	AtStartCond []Condition
	OverAllCond []Condition
	AtEndCond   []Condition

	AtStartNumCond []numeric.Condition
	OverAllNumCond []numeric.Condition
	AtEndNumCond   []numeric.Condition

	AtStartEff []Effect
	AtEndEff   []Effect

	AtStartNumEff []numeric.Effect
	AtEndNumEff   []numeric.Effect

	ConditionalEffects []ConditionalEffect

	// Cost is nil for the default unit cost; otherwise it is evaluated
	// (with no control variables / #t / duration in scope) to produce the
	// action's g-increment.
	Cost numeric.Expr
}

// Task is the SAS+ translation of a ground.Task.
type Task struct {
	Variables []Variable
	InitValue []Value // InitValue[var.ID]

	NumericVars map[ground.Fact]numeric.VarID
	InitNumeric map[numeric.VarID]float64

	Actions    []*Action
	GoalAction *Action

	Mutex *mutexgraph.Graph

	// Producers[var][value] lists actions (by index into Actions, or -1 for
	// the implicit initial-state assignment) able to set var to value.
	Producers map[int]map[Value][]int
	// Requirers[var][value] lists actions that read var = value as a
	// condition (boolean equality or inequality alike).
	Requirers map[int]map[Value][]int
}

func (t *Task) fact2atom(f ground.Fact) (Atom, bool) {
	for _, v := range t.Variables {
		if k, ok := v.ValueOf(f); ok {
			return Atom{Var: v.ID, Value: k}, true
		}
	}
	return Atom{}, false
}

// Translate builds the SAS+ task from a grounded task. When skipMerge is
// true (CLI flag -nsas) every ground fluent keeps its own boolean variable
// instead of being merged into a multi-valued clique, so actions remain
// over booleans; the mutex graph is still built and attached to Task.Mutex
// either way.
func Translate(gt *ground.Task, skipMerge bool) (*Task, error) {
	facts := collectFacts(gt)
	mutex := mutexgraph.Build(gt)
	vars := inferVariables(facts, gt.InitFacts, mutex, skipMerge)

	t := &Task{
		Variables:   vars,
		NumericVars: map[ground.Fact]numeric.VarID{},
		InitNumeric: map[numeric.VarID]float64{},
		Mutex:       mutex,
		Producers:   map[int]map[Value][]int{},
		Requirers:   map[int]map[Value][]int{},
	}

	t.InitValue = make([]Value, len(vars))
	for _, v := range vars {
		anyTrue := false
		for k, f := range v.Facts {
			if gt.InitFacts[f] {
				t.InitValue[v.ID] = Value(k)
				anyTrue = true
				break
			}
		}
		if !anyTrue {
			if !v.NoneOfThose {
				return nil, fmt.Errorf("sas: variable %d has no initial value and no none-of-those", v.ID)
			}
			t.InitValue[v.ID] = v.NoneValue()
		}
	}

	collectNumericFact(gt, t.NumericVars)
	for f, id := range t.NumericVars {
		t.InitNumeric[id] = gt.InitNumeric[f]
	}

	actions := make([]*Action, len(gt.Actions))
	for i, a := range gt.Actions {
		sa, err := t.rewriteAction(a)
		if err != nil {
			return nil, err
		}
		actions[i] = sa
	}
	t.Actions = actions

	goalAction, err := t.synthesizeGoalAction(gt)
	if err != nil {
		return nil, err
	}
	t.GoalAction = goalAction

	t.buildIndexes()
	return t, nil
}

func collectFacts(gt *ground.Task) []ground.Fact {
	seen := map[ground.Fact]bool{}
	var out []ground.Fact
	add := func(f ground.Fact) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for f := range gt.InitFacts {
		add(f)
	}
	addLits := func(ls []ground.Literal) {
		for _, l := range ls {
			add(l.Fact)
		}
	}
	addEffs := func(es []ground.Effect) {
		for _, e := range es {
			add(e.Fact)
		}
	}
	for _, a := range gt.Actions {
		addLits(a.AtStartCond.Literals)
		addLits(a.OverAllCond.Literals)
		addLits(a.AtEndCond.Literals)
		addEffs(a.AtStartEff.Literals)
		addEffs(a.AtEndEff.Literals)
		for _, ce := range a.ConditionalEffects {
			addLits(ce.AtStartCond.Literals)
			addLits(ce.AtEndCond.Literals)
			addEffs(ce.AtStartEff.Literals)
			addEffs(ce.AtEndEff.Literals)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Function != out[j].Function {
			return out[i].Function < out[j].Function
		}
		return out[i].Args < out[j].Args
	})
	return out
}

// collectNumericFact assigns a stable numeric.VarID to every distinct
// ground numeric fluent referenced by any action's numeric conditions or
// effects, or by the initial numeric state.
func collectNumericFact(gt *ground.Task, index map[ground.Fact]numeric.VarID) {
	assign := func(f ground.Fact) {
		if _, ok := index[f]; !ok {
			index[f] = numeric.VarID(len(index))
		}
	}
	for f := range gt.InitNumeric {
		assign(f)
	}
	walkNumExpr := func(e task.NumericExpr) {
		walkFluents(e, assign)
	}
	walkConds := func(cs []task.NumericCondition) {
		for _, c := range cs {
			walkNumExpr(c.Left)
			walkNumExpr(c.Right)
		}
	}
	walkEffs := func(es []ground.NumericEffect) {
		for _, e := range es {
			assign(e.Target)
			walkNumExpr(e.Value)
		}
	}
	for _, a := range gt.Actions {
		walkConds(a.AtStartCond.Numeric)
		walkConds(a.OverAllCond.Numeric)
		walkConds(a.AtEndCond.Numeric)
		walkEffs(a.AtStartEff.Numeric)
		walkEffs(a.AtEndEff.Numeric)
		walkNumExpr(a.Cost)
		for _, d := range a.Durations {
			walkNumExpr(d.Expr)
		}
		for _, ce := range a.ConditionalEffects {
			walkConds(ce.AtStartCond.Numeric)
			walkConds(ce.AtEndCond.Numeric)
			walkEffs(ce.AtStartEff.Numeric)
			walkEffs(ce.AtEndEff.Numeric)
		}
	}
}

func walkFluents(e task.NumericExpr, assign func(ground.Fact)) {
	switch v := e.(type) {
	case nil:
		return
	case task.FluentExpr:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = a.Object
		}
		assign(ground.FactKey(v.Function, args))
	case task.SumExpr:
		walkFluents(v.Left, assign)
		walkFluents(v.Right, assign)
	case task.SubExpr:
		walkFluents(v.Left, assign)
		walkFluents(v.Right, assign)
	case task.MulExpr:
		walkFluents(v.Left, assign)
		walkFluents(v.Right, assign)
	case task.DivExpr:
		walkFluents(v.Left, assign)
		walkFluents(v.Right, assign)
	}
}
