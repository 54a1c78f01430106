package pddlio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/task"
)

// WriteProblem renders problem as a grounded PDDL problem file, consulting
// domain to name the predicates and functions the problem references.
func WriteProblem(w io.Writer, domain *task.Domain, problem *task.Problem) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "(define (problem %s)\n", problem.Name)
	fmt.Fprintf(bw, "  (:domain %s-ground)\n", problem.DomainName)

	fmt.Fprintln(bw, "  (:objects")
	for _, o := range problem.Objects {
		fmt.Fprintf(bw, "    %s\n", o.Name)
	}
	fmt.Fprintln(bw, "  )")

	fmt.Fprintln(bw, "  (:init")
	for _, f := range problem.InitFacts {
		fmt.Fprintf(bw, "    (%s %s)\n", functionName(domain, f.Function), joinArgs(f.Args))
	}
	for _, f := range problem.InitNumeric {
		fmt.Fprintf(bw, "    (= (%s %s) %g)\n", functionName(domain, f.Function), joinArgs(f.Args), f.Value)
	}
	for _, til := range problem.InitTimed {
		fact := fmt.Sprintf("(%s %s)", functionName(domain, til.Fact.Function), joinArgs(til.Fact.Args))
		if til.Negated {
			fact = fmt.Sprintf("(not %s)", fact)
		}
		fmt.Fprintf(bw, "    (at %g %s)\n", til.Time, fact)
	}
	fmt.Fprintln(bw, "  )")

	fmt.Fprintln(bw, "  (:goal")
	writeGoal(bw, domain, problem.Goal, 2)
	fmt.Fprintln(bw, "  )")

	if problem.Metric != nil {
		dir := "minimize"
		if problem.Metric.Direction == task.Maximize {
			dir = "maximize"
		}
		fmt.Fprintf(bw, "  (:metric %s %s)\n", dir, renderNumericExpr(domain, problem.Metric.Expr))
	}

	fmt.Fprintln(bw, ")")
	return bw.Flush()
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}

func writeGoal(w *bufio.Writer, domain *task.Domain, g task.GoalDescription, indent int) {
	pad := func() string { return fmt.Sprintf("%*s", indent, "") }
	switch v := g.(type) {
	case nil:
		return
	case task.LiteralGoal:
		fmt.Fprintf(w, "%s%s\n", pad(), renderLiteral(domain, literalOf(v.Literal)))
	case task.NumericGoal:
		fmt.Fprintf(w, "%s(%s %s %s)\n", pad(), comparatorSymbol(v.Condition.Comparator),
			renderNumericExpr(domain, v.Condition.Left), renderNumericExpr(domain, v.Condition.Right))
	case task.AndGoal:
		fmt.Fprintf(w, "%s(and\n", pad())
		for _, p := range v.Parts {
			writeGoal(w, domain, p, indent+2)
		}
		fmt.Fprintf(w, "%s)\n", pad())
	case task.OrGoal:
		fmt.Fprintf(w, "%s(or\n", pad())
		for _, p := range v.Parts {
			writeGoal(w, domain, p, indent+2)
		}
		fmt.Fprintf(w, "%s)\n", pad())
	case task.NotGoal:
		fmt.Fprintf(w, "%s(not\n", pad())
		writeGoal(w, domain, v.Part, indent+2)
		fmt.Fprintf(w, "%s)\n", pad())
	case task.AtEndGoal:
		fmt.Fprintf(w, "%s(at end\n", pad())
		writeGoal(w, domain, v.Body, indent+2)
		fmt.Fprintf(w, "%s)\n", pad())
	default:
		// ForAllGoal/ExistsGoal never survive grounding: ground.ExpandADL
		// folds every quantifier into And/Or before a Task reaches pddlio.
		fmt.Fprintf(w, "%s; unexpanded quantified goal\n", pad())
	}
}

// literalOf adapts a task.Literal (ground form, Args already resolved
// objects) into the ground.Literal shape renderLiteral expects.
func literalOf(l task.Literal) ground.Literal {
	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		args[i] = a.Object
	}
	return ground.Literal{Fact: ground.FactKey(l.Function, args), Negated: l.Negated}
}
