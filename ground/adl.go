package ground

import "github.com/dsic-upv/nextflap-go/task"

// ExpandADL folds ForAllGoal/ExistsGoal into ground And/Or trees over the
// objects satisfying the quantified variable's type, per §4.1's edge-case
// rule for preferences and constraints. Terms elsewhere in the formula are
// left as-is: a ForAllGoal/ExistsGoal parameter is resolved by substituting
// a literal ObjectTerm into every Literal/NumericCondition beneath it, not
// by renumbering operator parameters (goals don't have any).
func ExpandADL(types *task.TypeGraph, objects []task.Object, g task.GoalDescription) task.GoalDescription {
	return expand(types, objects, g, map[string]string{})
}

// expand carries a binding from quantified-variable name to the ground
// object substituted for it in the current scope.
func expand(types *task.TypeGraph, objects []task.Object, g task.GoalDescription, bound map[string]string) task.GoalDescription {
	switch v := g.(type) {
	case nil:
		return nil
	case task.LiteralGoal:
		return task.LiteralGoal{Literal: substituteLiteral(v.Literal, bound)}
	case task.NumericGoal:
		return task.NumericGoal{Condition: substituteNumericCondition(v.Condition, bound)}
	case task.AndGoal:
		parts := make([]task.GoalDescription, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = expand(types, objects, p, bound)
		}
		return task.AndGoal{Parts: parts}
	case task.OrGoal:
		parts := make([]task.GoalDescription, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = expand(types, objects, p, bound)
		}
		return task.OrGoal{Parts: parts}
	case task.NotGoal:
		return task.NotGoal{Part: expand(types, objects, v.Part, bound)}
	case task.AtEndGoal:
		return task.AtEndGoal{Body: expand(types, objects, v.Body, bound)}
	case task.ForAllGoal:
		var parts []task.GoalDescription
		for _, o := range task.ObjectsOfType(types, objects, v.Var.Type) {
			child := cloneBound(bound)
			child[v.Var.Name] = o.Name
			parts = append(parts, expand(types, objects, v.Body, child))
		}
		return task.AndGoal{Parts: parts}
	case task.ExistsGoal:
		var parts []task.GoalDescription
		for _, o := range task.ObjectsOfType(types, objects, v.Var.Type) {
			child := cloneBound(bound)
			child[v.Var.Name] = o.Name
			parts = append(parts, expand(types, objects, v.Body, child))
		}
		return task.OrGoal{Parts: parts}
	default:
		return g
	}
}

func cloneBound(b map[string]string) map[string]string {
	out := make(map[string]string, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

// substituteLiteral resolves a quantified-variable reference stashed in
// Term.Object (quantified goal terms are parsed as object-shaped terms
// named after the bound variable, since a GoalDescription carries no
// parameter list of its own) against bound, leaving ordinary ground terms
// untouched.
func substituteLiteral(lit task.Literal, bound map[string]string) task.Literal {
	args := make([]task.Term, len(lit.Args))
	for i, a := range lit.Args {
		args[i] = substituteGoalTerm(a, bound)
	}
	return task.Literal{Function: lit.Function, Args: args, Negated: lit.Negated}
}

func substituteGoalTerm(t task.Term, bound map[string]string) task.Term {
	if t.IsParameter {
		return t
	}
	if obj, ok := bound[t.Object]; ok {
		return task.ObjectTerm(obj)
	}
	return t
}

func substituteNumericCondition(c task.NumericCondition, bound map[string]string) task.NumericCondition {
	return task.NumericCondition{
		Comparator: c.Comparator,
		Left:       substituteNumericExpr(c.Left, bound),
		Right:      substituteNumericExpr(c.Right, bound),
	}
}

func substituteNumericExpr(e task.NumericExpr, bound map[string]string) task.NumericExpr {
	switch v := e.(type) {
	case nil:
		return nil
	case task.FluentExpr:
		args := make([]task.Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = substituteGoalTerm(a, bound)
		}
		return task.FluentExpr{Function: v.Function, Args: args}
	case task.SumExpr:
		return task.SumExpr{Left: substituteNumericExpr(v.Left, bound), Right: substituteNumericExpr(v.Right, bound)}
	case task.SubExpr:
		return task.SubExpr{Left: substituteNumericExpr(v.Left, bound), Right: substituteNumericExpr(v.Right, bound)}
	case task.MulExpr:
		return task.MulExpr{Left: substituteNumericExpr(v.Left, bound), Right: substituteNumericExpr(v.Right, bound)}
	case task.DivExpr:
		return task.DivExpr{Left: substituteNumericExpr(v.Left, bound), Right: substituteNumericExpr(v.Right, bound)}
	default:
		return v
	}
}
