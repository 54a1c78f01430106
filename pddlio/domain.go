package pddlio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/task"
)

// WriteDomain renders gt as a grounded PDDL domain: one zero-parameter
// :action per ground.Action, named after Action.Name so the emitted file
// round-trips against the plan printer's action names. Predicate and
// function declarations are written by name only, without their parameter
// lists.
func WriteDomain(w io.Writer, domain *task.Domain, gt *ground.Task) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "(define (domain %s-ground)\n", domain.Name)
	fmt.Fprintln(bw, "  (:requirements :typing :durative-actions :numeric-fluents :fluents)")

	fmt.Fprintln(bw, "  (:predicates")
	for _, f := range domain.Functions {
		if f.Kind != task.Predicate {
			continue
		}
		fmt.Fprintf(bw, "    (%s)\n", f.Name)
	}
	fmt.Fprintln(bw, "  )")

	if hasNumericFunction(domain) {
		fmt.Fprintln(bw, "  (:functions")
		for _, f := range domain.Functions {
			if f.Kind != task.NumericFunction {
				continue
			}
			fmt.Fprintf(bw, "    (%s) - number\n", f.Name)
		}
		fmt.Fprintln(bw, "  )")
	}

	for _, a := range gt.Actions {
		writeGroundAction(bw, domain, a)
	}

	fmt.Fprintln(bw, ")")
	return bw.Flush()
}

func hasNumericFunction(domain *task.Domain) bool {
	for _, f := range domain.Functions {
		if f.Kind == task.NumericFunction {
			return true
		}
	}
	return false
}

func actionID(name string) string {
	// name is already "(op arg1 arg2)"; strip the parens and join with
	// hyphens so it can serve as a bare PDDL action identifier.
	trimmed := strings.Trim(name, "()")
	return strings.ReplaceAll(trimmed, " ", "-")
}

func writeGroundAction(w *bufio.Writer, domain *task.Domain, a *ground.Action) {
	name := actionID(a.Name())
	if a.Instantaneous {
		fmt.Fprintf(w, "  (:action %s\n    :parameters ()\n", name)
		writeConditionSet(w, domain, "precondition", a.AtStartCond)
		writeEffectSet(w, domain, "effect", a.AtStartEff)
		fmt.Fprintln(w, "  )")
		return
	}

	fmt.Fprintf(w, "  (:durative-action %s\n    :parameters ()\n", name)
	writeDurations(w, domain, a.Durations)

	fmt.Fprintln(w, "    :condition (and")
	writeTimedLiterals(w, domain, "at start", a.AtStartCond.Literals)
	writeTimedNumeric(w, domain, "at start", a.AtStartCond.Numeric)
	writeTimedLiterals(w, domain, "over all", a.OverAllCond.Literals)
	writeTimedNumeric(w, domain, "over all", a.OverAllCond.Numeric)
	writeTimedLiterals(w, domain, "at end", a.AtEndCond.Literals)
	writeTimedNumeric(w, domain, "at end", a.AtEndCond.Numeric)
	fmt.Fprintln(w, "    )")

	fmt.Fprintln(w, "    :effect (and")
	writeTimedEffects(w, domain, "at start", a.AtStartEff)
	writeTimedEffects(w, domain, "at end", a.AtEndEff)
	for _, ce := range a.ConditionalEffects {
		writeConditionalEffect(w, domain, ce)
	}
	fmt.Fprintln(w, "    )")
	fmt.Fprintln(w, "  )")
}

func writeDurations(w *bufio.Writer, domain *task.Domain, ds []ground.DurationConstraint) {
	if len(ds) == 0 {
		return
	}
	if len(ds) == 1 {
		fmt.Fprintf(w, "    :duration (%s ?duration %s)\n", comparatorSymbol(ds[0].Comparator), renderNumericExpr(domain, ds[0].Expr))
		return
	}
	fmt.Fprintln(w, "    :duration (and")
	for _, d := range ds {
		fmt.Fprintf(w, "      (%s ?duration %s)\n", comparatorSymbol(d.Comparator), renderNumericExpr(domain, d.Expr))
	}
	fmt.Fprintln(w, "    )")
}

func writeConditionSet(w *bufio.Writer, domain *task.Domain, keyword string, cs ground.ConditionSet) {
	if len(cs.Literals) == 0 && len(cs.Numeric) == 0 {
		fmt.Fprintf(w, "    :%s (and)\n", keyword)
		return
	}
	fmt.Fprintf(w, "    :%s (and\n", keyword)
	for _, l := range cs.Literals {
		fmt.Fprintf(w, "      %s\n", renderLiteral(domain, l))
	}
	for _, n := range cs.Numeric {
		fmt.Fprintf(w, "      (%s %s %s)\n", comparatorSymbol(n.Comparator), renderNumericExpr(domain, n.Left), renderNumericExpr(domain, n.Right))
	}
	fmt.Fprintln(w, "    )")
}

func writeEffectSet(w *bufio.Writer, domain *task.Domain, keyword string, es ground.EffectSet) {
	if len(es.Literals) == 0 && len(es.Numeric) == 0 {
		fmt.Fprintf(w, "    :%s (and)\n", keyword)
		return
	}
	fmt.Fprintf(w, "    :%s (and\n", keyword)
	for _, e := range es.Literals {
		fmt.Fprintf(w, "      %s\n", renderLiteral(domain, ground.Literal{Fact: e.Fact, Negated: e.Negated}))
	}
	for _, n := range es.Numeric {
		fmt.Fprintf(w, "      (%s %s %s)\n", assignOpSymbol(n.Op), renderFact(domain, n.Target), renderNumericExpr(domain, n.Value))
	}
	fmt.Fprintln(w, "    )")
}

func writeTimedLiterals(w *bufio.Writer, domain *task.Domain, when string, lits []ground.Literal) {
	for _, l := range lits {
		fmt.Fprintf(w, "      (%s %s)\n", when, renderLiteral(domain, l))
	}
}

func writeTimedNumeric(w *bufio.Writer, domain *task.Domain, when string, conds []task.NumericCondition) {
	for _, n := range conds {
		fmt.Fprintf(w, "      (%s (%s %s %s))\n", when, comparatorSymbol(n.Comparator), renderNumericExpr(domain, n.Left), renderNumericExpr(domain, n.Right))
	}
}

func writeTimedEffects(w *bufio.Writer, domain *task.Domain, when string, es ground.EffectSet) {
	for _, e := range es.Literals {
		fmt.Fprintf(w, "      (%s %s)\n", when, renderLiteral(domain, ground.Literal{Fact: e.Fact, Negated: e.Negated}))
	}
	for _, n := range es.Numeric {
		fmt.Fprintf(w, "      (%s (%s %s %s))\n", when, assignOpSymbol(n.Op), renderFact(domain, n.Target), renderNumericExpr(domain, n.Value))
	}
}

func writeConditionalEffect(w *bufio.Writer, domain *task.Domain, ce ground.ConditionalEffect) {
	fmt.Fprintln(w, "      (when (and")
	writeTimedLiterals(w, domain, "at start", ce.AtStartCond.Literals)
	writeTimedLiterals(w, domain, "at end", ce.AtEndCond.Literals)
	fmt.Fprintln(w, "      ) (and")
	writeTimedEffects(w, domain, "at start", ce.AtStartEff)
	writeTimedEffects(w, domain, "at end", ce.AtEndEff)
	fmt.Fprintln(w, "      ))")
}
