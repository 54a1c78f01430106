// Package pddlio renders grounded planning artifacts back to text: the
// grounded domain/problem (CLI flag -ground), the static mutex graph (CLI
// flag -mutex), and a solved plan in the conventional temporal PDDL plan
// format. Every writer takes an io.Writer and returns the first write
// error rather than building strings in memory.
package pddlio

import (
	"fmt"
	"strings"

	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/task"
)

// functionName looks up a declared function's PDDL name by id, falling back
// to a synthetic name if the grounder ever hands back an id the domain does
// not declare (should not happen outside of a malformed input).
func functionName(domain *task.Domain, id int) string {
	for _, f := range domain.Functions {
		if f.ID == id {
			return f.Name
		}
	}
	return fmt.Sprintf("fn%d", id)
}

// renderFact renders a ground fluent as "(name arg1 arg2)".
func renderFact(domain *task.Domain, f ground.Fact) string {
	name := functionName(domain, f.Function)
	args := f.ArgList()
	if len(args) == 0 {
		return fmt.Sprintf("(%s)", name)
	}
	return fmt.Sprintf("(%s %s)", name, strings.Join(args, " "))
}

// renderLiteral renders a ground.Literal, negating with "not" when required.
func renderLiteral(domain *task.Domain, l ground.Literal) string {
	body := renderFact(domain, l.Fact)
	if l.Negated {
		return fmt.Sprintf("(not %s)", body)
	}
	return body
}

func comparatorSymbol(c task.Comparator) string {
	switch c {
	case task.CmpEq:
		return "="
	case task.CmpNeq:
		return "!="
	case task.CmpLt:
		return "<"
	case task.CmpLe:
		return "<="
	case task.CmpGt:
		return ">"
	case task.CmpGe:
		return ">="
	default:
		return "?"
	}
}

func assignOpSymbol(op task.AssignOp) string {
	switch op {
	case task.AssignSet:
		return "assign"
	case task.AssignIncrease:
		return "increase"
	case task.AssignDecrease:
		return "decrease"
	case task.AssignScaleUp:
		return "scale-up"
	case task.AssignScaleDown:
		return "scale-down"
	default:
		return "assign"
	}
}

// renderNumericExpr renders a post-grounding task.NumericExpr, where every
// FluentExpr argument is already a ground object term.
func renderNumericExpr(domain *task.Domain, e task.NumericExpr) string {
	switch v := e.(type) {
	case nil:
		return "undefined"
	case task.NumberExpr:
		return fmt.Sprintf("%g", v.Value)
	case task.FluentExpr:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = a.Object
		}
		name := functionName(domain, v.Function)
		if len(args) == 0 {
			return fmt.Sprintf("(%s)", name)
		}
		return fmt.Sprintf("(%s %s)", name, strings.Join(args, " "))
	case task.ControlVarExpr:
		return fmt.Sprintf("?cv%d", v.Index)
	case task.SumExpr:
		return fmt.Sprintf("(+ %s %s)", renderNumericExpr(domain, v.Left), renderNumericExpr(domain, v.Right))
	case task.SubExpr:
		return fmt.Sprintf("(- %s %s)", renderNumericExpr(domain, v.Left), renderNumericExpr(domain, v.Right))
	case task.MulExpr:
		return fmt.Sprintf("(* %s %s)", renderNumericExpr(domain, v.Left), renderNumericExpr(domain, v.Right))
	case task.DivExpr:
		return fmt.Sprintf("(/ %s %s)", renderNumericExpr(domain, v.Left), renderNumericExpr(domain, v.Right))
	case task.SharpTExpr:
		return "#t"
	case task.DurationExpr:
		return "?duration"
	case task.ObjectExpr:
		return v.Name
	case task.UndefinedExpr:
		return "undefined"
	default:
		return "undefined"
	}
}
