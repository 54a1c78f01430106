package main

import (
	"fmt"
	"strconv"

	"github.com/dsic-upv/nextflap-go/task"
)

// goalCtx parses goal/preference/constraint formulas: object-position terms
// are always object-shaped (a ground object name, or a quantified
// variable's name pending ground.ExpandADL's substitution), never
// ParamTerm — goals carry no parameter list of their own.
type goalCtx struct {
	domain      *task.Domain
	preferences []task.Preference
}

func goalTerm(a sexpr) (task.Term, error) {
	if !a.isAtom() {
		return task.Term{}, fmt.Errorf("pddl: expected an object or variable, got a list")
	}
	return task.ObjectTerm(stripVar(a.Atom)), nil
}

func (gc *goalCtx) terms(items []sexpr) ([]task.Term, error) {
	out := make([]task.Term, len(items))
	for i, it := range items {
		t, err := goalTerm(it)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (gc *goalCtx) numericExpr(s sexpr) (task.NumericExpr, error) {
	if s.isAtom() {
		switch {
		case s.Atom == "#t":
			return task.SharpTExpr{}, nil
		case s.Atom == "?duration" || s.Atom == "total-time":
			return task.DurationExpr{}, nil
		default:
			if v, err := strconv.ParseFloat(s.Atom, 64); err == nil {
				return task.NumberExpr{Value: v}, nil
			}
			f, ok := gc.domain.FunctionByName(s.Atom)
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
		acc, err := gc.numericExpr(args[0])
		if err != nil {
			return nil, err
		}
		if head == "-" && len(args) == 1 {
			return task.SubExpr{Left: task.NumberExpr{Value: 0}, Right: acc}, nil
		}
		for _, a := range args[1:] {
			rhs, err := gc.numericExpr(a)
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
		f, ok := gc.domain.FunctionByName(head)
		if !ok {
			return nil, fmt.Errorf("pddl: undeclared function %q", head)
		}
		fargs, err := gc.terms(args)
		if err != nil {
			return nil, err
		}
		return task.FluentExpr{Function: f.ID, Args: fargs}, nil
	}
}

func (gc *goalCtx) literal(s sexpr) (task.Literal, error) {
	negated := false
	lit := s
	if s.head() == "not" {
		tail := s.tail()
		if len(tail) != 1 {
			return task.Literal{}, fmt.Errorf("pddl: (not ...) takes exactly one argument")
		}
		negated, lit = true, tail[0]
	}
	f, ok := gc.domain.FunctionByName(lit.head())
	if !ok {
		return task.Literal{}, fmt.Errorf("pddl: undeclared predicate %q", lit.head())
	}
	args, err := gc.terms(lit.tail())
	if err != nil {
		return task.Literal{}, err
	}
	return task.Literal{Function: f.ID, Args: args, Negated: negated}, nil
}

// formula parses a (possibly quantified, possibly preference-wrapped) goal
// description. Preferences are collected into gc.preferences and replaced
// in place by their bare condition, matching how most planners treat a
// named preference as "this condition, plus please also count it."
func (gc *goalCtx) formula(s sexpr) (task.GoalDescription, error) {
	switch s.head() {
	case "and":
		parts := make([]task.GoalDescription, 0, len(s.tail()))
		for _, c := range s.tail() {
			p, err := gc.formula(c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		}
		return task.AndGoal{Parts: parts}, nil
	case "or":
		parts := make([]task.GoalDescription, 0, len(s.tail()))
		for _, c := range s.tail() {
			p, err := gc.formula(c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		}
		return task.OrGoal{Parts: parts}, nil
	case "not":
		tail := s.tail()
		if len(tail) != 1 {
			return nil, fmt.Errorf("pddl: (not ...) takes exactly one argument")
		}
		if cmp, ok := isComparator(tail[0].head()); ok {
			cond, err := gc.numericCondition(cmp, tail[0])
			if err != nil {
				return nil, err
			}
			return task.NotGoal{Part: task.NumericGoal{Condition: cond}}, nil
		}
		lit, err := gc.literal(s)
		if err == nil {
			return task.LiteralGoal{Literal: lit}, nil
		}
		inner, err := gc.formula(tail[0])
		if err != nil {
			return nil, err
		}
		return task.NotGoal{Part: inner}, nil
	case "forall", "exists":
		tail := s.tail()
		if len(tail) != 2 {
			return nil, fmt.Errorf("pddl: (%s (vars) body) needs exactly two arguments", s.head())
		}
		vars := parseTypedParameters(tail[0].List)
		if len(vars) != 1 {
			return nil, fmt.Errorf("pddl: multi-variable quantifiers are not supported, declare one per nested quantifier")
		}
		body, err := gc.formula(tail[1])
		if err != nil {
			return nil, err
		}
		if s.head() == "forall" {
			return task.ForAllGoal{Var: vars[0], Body: body}, nil
		}
		return task.ExistsGoal{Var: vars[0], Body: body}, nil
	case "at":
		tail := s.tail()
		if len(tail) == 2 && tail[0].isAtom() && tail[0].Atom == "end" {
			body, err := gc.formula(tail[1])
			if err != nil {
				return nil, err
			}
			return task.AtEndGoal{Body: body}, nil
		}
		return nil, fmt.Errorf("pddl: unsupported (at ...) goal form")
	case "preference":
		tail := s.tail()
		name, cond := "", tail[0]
		if len(tail) == 2 && tail[0].isAtom() {
			name, cond = tail[0].Atom, tail[1]
		}
		body, err := gc.formula(cond)
		if err != nil {
			return nil, err
		}
		gc.preferences = append(gc.preferences, task.Preference{Name: name, Goal: body})
		return body, nil
	}
	if cmp, ok := isComparator(s.head()); ok {
		cond, err := gc.numericCondition(cmp, s)
		if err != nil {
			return nil, err
		}
		return task.NumericGoal{Condition: cond}, nil
	}
	lit, err := gc.literal(s)
	if err != nil {
		return nil, err
	}
	return task.LiteralGoal{Literal: lit}, nil
}

func (gc *goalCtx) numericCondition(cmp task.Comparator, s sexpr) (task.NumericCondition, error) {
	tail := s.tail()
	if len(tail) != 2 {
		return task.NumericCondition{}, fmt.Errorf("pddl: %q needs exactly two operands", s.head())
	}
	left, err := gc.numericExpr(tail[0])
	if err != nil {
		return task.NumericCondition{}, err
	}
	right, err := gc.numericExpr(tail[1])
	if err != nil {
		return task.NumericCondition{}, err
	}
	return task.NumericCondition{Comparator: cmp, Left: left, Right: right}, nil
}

func parseFloatAtom(a string) (float64, bool) {
	v, err := strconv.ParseFloat(a, 64)
	return v, err == nil
}
