package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dsic-upv/nextflap-go/task"
)

// opCtx resolves variable references while parsing one operator's body: a
// '?'-prefixed name is either a bound parameter (becomes a ParamTerm /
// ObjectTerm depending on position) or, if its declared type is #number or
// #integer, a control variable (becomes a ControlVarExpr). Parameters of
// numeric type are deliberately excluded from Parameters and routed to
// ControlVars during operator construction (see splitParameters), since no
// ground object ever has numeric type; this is the only syntactic signal
// available to tell a bound object parameter from a free numeric unknown.
type opCtx struct {
	domain *task.Domain
	params map[string]int
	cvars  map[string]int
	// pcs accumulates parameter equality/inequality constraints found
	// while parsing this operator's conditions; task.Operator keeps these
	// separate from ConditionSet (ParamConstraints), since the grounder
	// filters candidate bindings on them before any state lookup.
	pcs []task.ParamConstraint
}

// tryParamConstraint recognizes "(= ?x ?y)" and "(not (= ?x ?y))" between
// two of the operator's own parameters and records it as a ParamConstraint
// instead of a numeric comparison; reports whether s matched this shape.
func (ctx *opCtx) tryParamConstraint(s sexpr) (bool, error) {
	negated := false
	eq := s
	if s.head() == "not" {
		if tail := s.tail(); len(tail) == 1 {
			eq, negated = tail[0], true
		}
	}
	if eq.head() != "=" {
		return false, nil
	}
	tail := eq.tail()
	if len(tail) != 2 || !tail[0].isAtom() || !tail[1].isAtom() {
		return false, nil
	}
	if !strings.HasPrefix(tail[0].Atom, "?") || !strings.HasPrefix(tail[1].Atom, "?") {
		return false, nil
	}
	a, aok := ctx.params[stripVar(tail[0].Atom)]
	b, bok := ctx.params[stripVar(tail[1].Atom)]
	if !aok || !bok {
		return false, nil
	}
	ctx.pcs = append(ctx.pcs, task.ParamConstraint{A: a, B: b, Equal: !negated})
	return true, nil
}

func isComparator(head string) (task.Comparator, bool) {
	switch head {
	case "=":
		return task.CmpEq, true
	case "!=":
		return task.CmpNeq, true
	case "<":
		return task.CmpLt, true
	case "<=":
		return task.CmpLe, true
	case ">":
		return task.CmpGt, true
	case ">=":
		return task.CmpGe, true
	default:
		return 0, false
	}
}

func (ctx *opCtx) term(a sexpr) (task.Term, error) {
	if !a.isAtom() {
		return task.Term{}, fmt.Errorf("pddl: expected an object or variable, got a list")
	}
	if strings.HasPrefix(a.Atom, "?") {
		name := stripVar(a.Atom)
		if idx, ok := ctx.params[name]; ok {
			return task.ParamTerm(idx), nil
		}
		return task.Term{}, fmt.Errorf("pddl: undeclared parameter %q", a.Atom)
	}
	return task.ObjectTerm(a.Atom), nil
}

func (ctx *opCtx) terms(items []sexpr) ([]task.Term, error) {
	out := make([]task.Term, len(items))
	for i, it := range items {
		t, err := ctx.term(it)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// numericExpr parses a numeric expression within an operator body.
func (ctx *opCtx) numericExpr(s sexpr) (task.NumericExpr, error) {
	if s.isAtom() {
		switch {
		case s.Atom == "#t":
			return task.SharpTExpr{}, nil
		case s.Atom == "?duration":
			return task.DurationExpr{}, nil
		case strings.HasPrefix(s.Atom, "?"):
			name := stripVar(s.Atom)
			if idx, ok := ctx.cvars[name]; ok {
				return task.ControlVarExpr{Index: idx}, nil
			}
			return nil, fmt.Errorf("pddl: %q is not a numeric (control) variable", s.Atom)
		default:
			if v, err := strconv.ParseFloat(s.Atom, 64); err == nil {
				return task.NumberExpr{Value: v}, nil
			}
			f, ok := ctx.domain.FunctionByName(s.Atom)
			if !ok {
				return nil, fmt.Errorf("pddl: undeclared function %q", s.Atom)
			}
			return task.FluentExpr{Function: f.ID}, nil
		}
	}

	head := s.head()
	args := s.tail()
	switch head {
	case "+", "-", "*", "/":
		if len(args) == 0 {
			return nil, fmt.Errorf("pddl: %q needs at least one operand", head)
		}
		first, err := ctx.numericExpr(args[0])
		if err != nil {
			return nil, err
		}
		if head == "-" && len(args) == 1 {
			return task.SubExpr{Left: task.NumberExpr{Value: 0}, Right: first}, nil
		}
		acc := first
		for _, a := range args[1:] {
			rhs, err := ctx.numericExpr(a)
			if err != nil {
				return nil, err
			}
			switch head {
			case "+":
				acc = task.SumExpr{Left: acc, Right: rhs}
			case "-":
				acc = task.SubExpr{Left: acc, Right: rhs}
			case "*":
				acc = task.MulExpr{Left: acc, Right: rhs}
			case "/":
				acc = task.DivExpr{Left: acc, Right: rhs}
			}
		}
		return acc, nil
	default:
		f, ok := ctx.domain.FunctionByName(head)
		if !ok {
			return nil, fmt.Errorf("pddl: undeclared function %q", head)
		}
		fargs, err := ctx.terms(args)
		if err != nil {
			return nil, err
		}
		return task.FluentExpr{Function: f.ID, Args: fargs}, nil
	}
}

func (ctx *opCtx) literal(s sexpr) (task.Literal, error) {
	negated := false
	lit := s
	if s.head() == "not" {
		negated = true
		tail := s.tail()
		if len(tail) != 1 {
			return task.Literal{}, fmt.Errorf("pddl: (not ...) takes exactly one argument")
		}
		lit = tail[0]
	}
	f, ok := ctx.domain.FunctionByName(lit.head())
	if !ok {
		return task.Literal{}, fmt.Errorf("pddl: undeclared predicate %q", lit.head())
	}
	args, err := ctx.terms(lit.tail())
	if err != nil {
		return task.Literal{}, err
	}
	return task.Literal{Function: f.ID, Args: args, Negated: negated}, nil
}

// conditionSet flattens a conjunction of literals and numeric comparisons
// (the normal form an operator's preconditions arrive in, per §4.1).
func (ctx *opCtx) conditionSet(s sexpr) (task.ConditionSet, error) {
	var out task.ConditionSet
	if err := ctx.collectConditions(s, &out); err != nil {
		return task.ConditionSet{}, err
	}
	return out, nil
}

func (ctx *opCtx) collectConditions(s sexpr, out *task.ConditionSet) error {
	if s.isAtom() {
		if s.Atom == "" {
			return nil
		}
		return fmt.Errorf("pddl: unexpected atom %q in condition", s.Atom)
	}
	if len(s.List) == 0 {
		return nil
	}
	if handled, err := ctx.tryParamConstraint(s); err != nil || handled {
		return err
	}
	if cmp, ok := isComparator(s.head()); ok {
		tail := s.tail()
		if len(tail) != 2 {
			return fmt.Errorf("pddl: %q needs exactly two operands", s.head())
		}
		left, err := ctx.numericExpr(tail[0])
		if err != nil {
			return err
		}
		right, err := ctx.numericExpr(tail[1])
		if err != nil {
			return err
		}
		out.Numeric = append(out.Numeric, task.NumericCondition{Comparator: cmp, Left: left, Right: right})
		return nil
	}
	if s.head() == "and" {
		for _, c := range s.tail() {
			if err := ctx.collectConditions(c, out); err != nil {
				return err
			}
		}
		return nil
	}
	lit, err := ctx.literal(s)
	if err != nil {
		return err
	}
	out.Literals = append(out.Literals, lit)
	return nil
}

func assignOpOf(head string) (task.AssignOp, bool) {
	switch head {
	case "assign":
		return task.AssignSet, true
	case "increase":
		return task.AssignIncrease, true
	case "decrease":
		return task.AssignDecrease, true
	case "scale-up":
		return task.AssignScaleUp, true
	case "scale-down":
		return task.AssignScaleDown, true
	default:
		return 0, false
	}
}

// effectList flattens a conjunction of boolean/numeric effects and (when
// ...) conditional effects into lits/nums/conds, all evaluated at a single
// time point (the shape instantaneous actions use, and the shape a single
// at-start/at-end bucket of a durative action uses once timing wrappers
// have already been stripped by collectDurativeEffect).
func (ctx *opCtx) effectList(s sexpr, lits *[]task.Effect, nums *[]task.NumericEffect, conds *[]task.ConditionalEffect) error {
	if s.isAtom() {
		if s.Atom == "" {
			return nil
		}
		return fmt.Errorf("pddl: unexpected atom %q in effect", s.Atom)
	}
	if len(s.List) == 0 {
		return nil
	}
	switch s.head() {
	case "and":
		for _, c := range s.tail() {
			if err := ctx.effectList(c, lits, nums, conds); err != nil {
				return err
			}
		}
		return nil
	case "when":
		tail := s.tail()
		if len(tail) != 2 {
			return fmt.Errorf("pddl: (when cond eff) needs exactly two arguments")
		}
		cond, err := ctx.conditionSet(tail[0])
		if err != nil {
			return err
		}
		var ce task.ConditionalEffect
		ce.AtStartCond = cond
		if err := ctx.effectList(tail[1], &ce.AtStartEff.Literals, &ce.AtStartEff.Numeric, nil); err != nil {
			return err
		}
		*conds = append(*conds, ce)
		return nil
	}
	if op, ok := assignOpOf(s.head()); ok {
		tail := s.tail()
		if len(tail) != 2 {
			return fmt.Errorf("pddl: %q needs exactly two arguments", s.head())
		}
		target, err := ctx.numericExpr(tail[0])
		if err != nil {
			return err
		}
		tf, ok := target.(task.FluentExpr)
		if !ok {
			return fmt.Errorf("pddl: %q target must be a function application", s.head())
		}
		value, err := ctx.numericExpr(tail[1])
		if err != nil {
			return err
		}
		*nums = append(*nums, task.NumericEffect{Function: tf.Function, Args: tf.Args, Op: op, Value: value})
		return nil
	}
	lit, err := ctx.literal(s)
	if err != nil {
		return err
	}
	*lits = append(*lits, task.Effect{Literal: lit})
	return nil
}

// collectDurativeCondition buckets a durative action's :condition formula
// into at-start/over-all/at-end, per the (at start ...)/(over all
// ...)/(at end ...) wrappers PDDL 2.1 requires around each sub-formula.
func (ctx *opCtx) collectDurativeCondition(s sexpr, atStart, overAll, atEnd *task.ConditionSet) error {
	if s.head() == "and" {
		for _, c := range s.tail() {
			if err := ctx.collectDurativeCondition(c, atStart, overAll, atEnd); err != nil {
				return err
			}
		}
		return nil
	}
	if s.head() == "at" {
		tail := s.tail()
		if len(tail) != 2 || !tail[0].isAtom() {
			return fmt.Errorf("pddl: malformed (at start|end ...) condition")
		}
		cs, err := ctx.conditionSet(tail[1])
		if err != nil {
			return err
		}
		switch tail[0].Atom {
		case "start":
			mergeConditions(atStart, cs)
		case "end":
			mergeConditions(atEnd, cs)
		default:
			return fmt.Errorf("pddl: unknown timing marker %q", tail[0].Atom)
		}
		return nil
	}
	if s.head() == "over" {
		tail := s.tail()
		if len(tail) != 2 {
			return fmt.Errorf("pddl: malformed (over all ...) condition")
		}
		cs, err := ctx.conditionSet(tail[1])
		if err != nil {
			return err
		}
		mergeConditions(overAll, cs)
		return nil
	}
	// A bare condition with no timing wrapper: treat as holding throughout
	// the action's execution, the conservative reading.
	cs, err := ctx.conditionSet(s)
	if err != nil {
		return err
	}
	mergeConditions(overAll, cs)
	return nil
}

func mergeConditions(dst *task.ConditionSet, src task.ConditionSet) {
	dst.Literals = append(dst.Literals, src.Literals...)
	dst.Numeric = append(dst.Numeric, src.Numeric...)
}

// collectDurativeEffect buckets a durative action's :effect formula into
// at-start/at-end, peeling off (when ...) conditional effects (themselves
// internally (at start/end)-wrapped on both sides) as they are found.
func (ctx *opCtx) collectDurativeEffect(s sexpr, atStart, atEnd *task.EffectSet, conds *[]task.ConditionalEffect) error {
	switch s.head() {
	case "and":
		for _, c := range s.tail() {
			if err := ctx.collectDurativeEffect(c, atStart, atEnd, conds); err != nil {
				return err
			}
		}
		return nil
	case "when":
		tail := s.tail()
		if len(tail) != 2 {
			return fmt.Errorf("pddl: (when cond eff) needs exactly two arguments")
		}
		var ce task.ConditionalEffect
		var dummyOverAll task.ConditionSet
		if err := ctx.collectDurativeCondition(tail[0], &ce.AtStartCond, &dummyOverAll, &ce.AtEndCond); err != nil {
			return err
		}
		if err := ctx.collectDurativeEffect(tail[1], &ce.AtStartEff, &ce.AtEndEff, nil); err != nil {
			return err
		}
		*conds = append(*conds, ce)
		return nil
	case "at":
		tail := s.tail()
		if len(tail) != 2 || !tail[0].isAtom() {
			return fmt.Errorf("pddl: malformed (at start|end ...) effect")
		}
		var lits []task.Effect
		var nums []task.NumericEffect
		var nested []task.ConditionalEffect
		if err := ctx.effectList(tail[1], &lits, &nums, &nested); err != nil {
			return err
		}
		if len(nested) > 0 {
			return fmt.Errorf("pddl: (when ...) nested inside an (at start|end ...) effect is not supported")
		}
		switch tail[0].Atom {
		case "start":
			atStart.Literals = append(atStart.Literals, lits...)
			atStart.Numeric = append(atStart.Numeric, nums...)
		case "end":
			atEnd.Literals = append(atEnd.Literals, lits...)
			atEnd.Numeric = append(atEnd.Numeric, nums...)
		default:
			return fmt.Errorf("pddl: unknown timing marker %q", tail[0].Atom)
		}
		return nil
	default:
		return fmt.Errorf("pddl: durative effect %q requires an (at start ...)/(at end ...) wrapper", s.head())
	}
}
