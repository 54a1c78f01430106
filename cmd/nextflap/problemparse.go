package main

import (
	"fmt"

	"github.com/dsic-upv/nextflap-go/task"
)

// parseProblem builds a task.Problem from PDDL problem-file text, resolving
// predicate/function names against domain. It shares parseDomain's scope:
// the practical subset of PDDL 2.1+/PDDL3 this engine's fixtures use.
func parseProblem(src string, domain *task.Domain) (*task.Problem, error) {
	forms, err := parseAll(src)
	if err != nil {
		return nil, err
	}
	define, ok := find(forms, "define")
	if !ok {
		return nil, fmt.Errorf("pddl: problem file has no (define ...) form")
	}
	items := define.tail()
	if len(items) == 0 || items[0].head() != "problem" {
		return nil, fmt.Errorf("pddl: (define ...) must open with (problem NAME)")
	}
	nameParts := items[0].tail()
	if len(nameParts) != 1 || !nameParts[0].isAtom() {
		return nil, fmt.Errorf("pddl: malformed problem name")
	}

	problem := &task.Problem{Name: nameParts[0].Atom, DomainName: domain.Name}

	if objects, ok := find(items, ":objects"); ok {
		problem.Objects = parseTypedObjects(objects.tail())
	}

	gc := &goalCtx{domain: domain}

	if init, ok := find(items, ":init"); ok {
		facts, numeric, timed, err := parseInit(gc, init.tail())
		if err != nil {
			return nil, err
		}
		problem.InitFacts, problem.InitNumeric, problem.InitTimed = facts, numeric, timed
	}

	if goal, ok := find(items, ":goal"); ok {
		tail := goal.tail()
		if len(tail) != 1 {
			return nil, fmt.Errorf("pddl: (:goal ...) takes exactly one formula")
		}
		g, err := gc.formula(tail[0])
		if err != nil {
			return nil, fmt.Errorf("pddl: goal: %w", err)
		}
		problem.Goal = g
	}

	if constraints, ok := find(items, ":constraints"); ok {
		tail := constraints.tail()
		if len(tail) == 1 {
			cs, err := parseConstraints(gc, tail[0])
			if err != nil {
				return nil, fmt.Errorf("pddl: constraints: %w", err)
			}
			problem.Constraints = cs
		}
	}

	if metric, ok := find(items, ":metric"); ok {
		m, err := parseMetric(gc, metric.tail())
		if err != nil {
			return nil, fmt.Errorf("pddl: metric: %w", err)
		}
		problem.Metric = m
	}

	problem.Preferences = gc.preferences
	return problem, nil
}

// parseInit splits (:init ...) into its three shapes: ground boolean facts,
// ground numeric assignments, and timed initial literals (at <time> <lit>).
func parseInit(gc *goalCtx, items []sexpr) ([]task.GroundFact, []task.GroundNumericFact, []task.TimedLiteral, error) {
	var facts []task.GroundFact
	var numeric []task.GroundNumericFact
	var timed []task.TimedLiteral

	for _, it := range items {
		switch it.head() {
		case "at":
			tail := it.tail()
			if len(tail) != 2 || !tail[0].isAtom() {
				return nil, nil, nil, fmt.Errorf("pddl: malformed timed initial literal %v", it)
			}
			t, ok := parseFloatAtom(tail[0].Atom)
			if !ok {
				return nil, nil, nil, fmt.Errorf("pddl: malformed timed initial literal timestamp %q", tail[0].Atom)
			}
			negated := false
			lit := tail[1]
			if lit.head() == "not" {
				inner := lit.tail()
				if len(inner) != 1 {
					return nil, nil, nil, fmt.Errorf("pddl: (not ...) takes exactly one argument")
				}
				negated, lit = true, inner[0]
			}
			f, ok := gc.domain.FunctionByName(lit.head())
			if !ok {
				return nil, nil, nil, fmt.Errorf("pddl: undeclared predicate %q", lit.head())
			}
			timed = append(timed, task.TimedLiteral{
				Time:    t,
				Fact:    task.GroundFact{Function: f.ID, Args: atomsOf(lit.tail())},
				Negated: negated,
			})
		case "=":
			tail := it.tail()
			if len(tail) != 2 {
				return nil, nil, nil, fmt.Errorf("pddl: malformed numeric init fact %v", it)
			}
			f, ok := gc.domain.FunctionByName(tail[0].head())
			if !ok {
				return nil, nil, nil, fmt.Errorf("pddl: undeclared function %q", tail[0].head())
			}
			v, ok := parseFloatAtom(tail[1].Atom)
			if !ok {
				return nil, nil, nil, fmt.Errorf("pddl: malformed numeric init value %v", tail[1])
			}
			numeric = append(numeric, task.GroundNumericFact{
				Function: f.ID,
				Args:     atomsOf(tail[0].tail()),
				Value:    v,
			})
		default:
			f, ok := gc.domain.FunctionByName(it.head())
			if !ok {
				return nil, nil, nil, fmt.Errorf("pddl: undeclared predicate %q", it.head())
			}
			facts = append(facts, task.GroundFact{Function: f.ID, Args: atomsOf(it.tail())})
		}
	}
	return facts, numeric, timed, nil
}

// parseConstraints parses a (PDDL3) (:constraints ...) body into flat
// Constraints, recursing through a leading (and ...) wrapper the way
// parseDurationConstraints does for durations.
func parseConstraints(gc *goalCtx, s sexpr) ([]task.Constraint, error) {
	if s.head() == "and" {
		var out []task.Constraint
		for _, c := range s.tail() {
			cs, err := parseConstraints(gc, c)
			if err != nil {
				return nil, err
			}
			out = append(out, cs...)
		}
		return out, nil
	}
	name := ""
	body := s
	if s.head() == "preference" {
		tail := s.tail()
		if len(tail) == 2 && tail[0].isAtom() {
			name, body = tail[0].Atom, tail[1]
		} else if len(tail) == 1 {
			body = tail[0]
		}
	}
	switch body.head() {
	case "always":
		g, err := constraintGoal(gc, body)
		return []task.Constraint{{Kind: task.ConstraintAlways, Goal: g, Preference: name}}, err
	case "sometime":
		g, err := constraintGoal(gc, body)
		return []task.Constraint{{Kind: task.ConstraintSometime, Goal: g, Preference: name}}, err
	case "at-most-once":
		g, err := constraintGoal(gc, body)
		return []task.Constraint{{Kind: task.ConstraintAtMostOnce, Goal: g, Preference: name}}, err
	case "sometime-before":
		g, trigger, err := constraintGoalPair(gc, body)
		return []task.Constraint{{Kind: task.ConstraintSometimeBefore, Goal: g, TriggerGoal: trigger, Preference: name}}, err
	case "sometime-after":
		g, trigger, err := constraintGoalPair(gc, body)
		return []task.Constraint{{Kind: task.ConstraintSometimeAfter, Goal: g, TriggerGoal: trigger, Preference: name}}, err
	default:
		return nil, fmt.Errorf("pddl: unsupported constraint form %q", body.head())
	}
}

func constraintGoal(gc *goalCtx, s sexpr) (task.GoalDescription, error) {
	tail := s.tail()
	if len(tail) != 1 {
		return nil, fmt.Errorf("pddl: (%s ...) takes exactly one formula", s.head())
	}
	return gc.formula(tail[0])
}

func constraintGoalPair(gc *goalCtx, s sexpr) (task.GoalDescription, task.GoalDescription, error) {
	tail := s.tail()
	if len(tail) != 2 {
		return nil, nil, fmt.Errorf("pddl: (%s ...) takes exactly two formulas", s.head())
	}
	g, err := gc.formula(tail[0])
	if err != nil {
		return nil, nil, err
	}
	trigger, err := gc.formula(tail[1])
	if err != nil {
		return nil, nil, err
	}
	return g, trigger, nil
}

func parseMetric(gc *goalCtx, items []sexpr) (*task.Metric, error) {
	if len(items) != 2 || !items[0].isAtom() {
		return nil, fmt.Errorf("pddl: malformed (:metric direction expr)")
	}
	var dir task.MetricDirection
	switch items[0].Atom {
	case "minimize":
		dir = task.Minimize
	case "maximize":
		dir = task.Maximize
	default:
		return nil, fmt.Errorf("pddl: unknown metric direction %q", items[0].Atom)
	}
	expr, err := gc.numericExpr(items[1])
	if err != nil {
		return nil, err
	}
	return &task.Metric{Direction: dir, Expr: expr}, nil
}
