package main

import (
	"fmt"

	"github.com/dsic-upv/nextflap-go/task"
)

// parseDomain builds a task.Domain from PDDL domain-file text. It covers
// the practical subset of PDDL 2.1+ this engine's test fixtures and the
// bundled benchmarks use, not the full grammar.
func parseDomain(src string) (*task.Domain, error) {
	forms, err := parseAll(src)
	if err != nil {
		return nil, err
	}
	define, ok := find(forms, "define")
	if !ok {
		return nil, fmt.Errorf("pddl: domain file has no (define ...) form")
	}
	items := define.tail()
	if len(items) == 0 || items[0].head() != "domain" {
		return nil, fmt.Errorf("pddl: (define ...) must open with (domain NAME)")
	}
	nameParts := items[0].tail()
	if len(nameParts) != 1 || !nameParts[0].isAtom() {
		return nil, fmt.Errorf("pddl: malformed domain name")
	}

	domain := &task.Domain{
		Name:  nameParts[0].Atom,
		Types: task.NewTypeGraph(),
	}

	if types, ok := find(items, ":types"); ok {
		for _, g := range typedAtomGroups(atomsOf(types.tail())) {
			for _, n := range g.Names {
				domain.Types.Add(task.Type(n), g.Type)
			}
		}
	}

	if constants, ok := find(items, ":constants"); ok {
		domain.Constants = parseTypedObjects(constants.tail())
	}

	nextID := 0
	if predicates, ok := find(items, ":predicates"); ok {
		for _, decl := range predicates.tail() {
			domain.Functions = append(domain.Functions, task.Function{
				ID:         nextID,
				Name:       decl.head(),
				ParamTypes: paramTypesOf(decl.tail()),
				ValueType:  task.BooleanType,
				Kind:       task.Predicate,
			})
			nextID++
		}
	}

	if functions, ok := find(items, ":functions"); ok {
		domain.Functions = append(domain.Functions, parseFunctionsSection(functions.tail(), &nextID)...)
	}

	for _, it := range items {
		switch it.head() {
		case ":action":
			op, err := parseAction(domain, it.tail())
			if err != nil {
				return nil, fmt.Errorf("pddl: action %v: %w", it.tail(), err)
			}
			domain.Operators = append(domain.Operators, op)
		case ":durative-action":
			op, err := parseDurativeAction(domain, it.tail())
			if err != nil {
				return nil, fmt.Errorf("pddl: durative-action %v: %w", it.tail(), err)
			}
			domain.Operators = append(domain.Operators, op)
		}
	}

	return domain, nil
}

func paramTypesOf(items []sexpr) []task.Type {
	var out []task.Type
	for _, g := range typedAtomGroups(atomsOf(items)) {
		for range g.Names {
			out = append(out, g.Type)
		}
	}
	return out
}

// parseFunctionsSection groups consecutive function declarations sharing a
// trailing "- type" marker, PDDL's typed-list syntax applied at the
// declaration level rather than the parameter level.
func parseFunctionsSection(items []sexpr, nextID *int) []task.Function {
	var out []task.Function
	var pending []sexpr
	flush := func(valueType task.Type) {
		kind := task.NumericFunction
		if valueType != task.NumberType && valueType != task.IntegerType {
			kind = task.ObjectFunction
		}
		for _, decl := range pending {
			out = append(out, task.Function{
				ID:         *nextID,
				Name:       decl.head(),
				ParamTypes: paramTypesOf(decl.tail()),
				ValueType:  valueType,
				Kind:       kind,
			})
			*nextID++
		}
		pending = nil
	}
	i := 0
	for i < len(items) {
		it := items[i]
		if it.isAtom() {
			if it.Atom == "-" && i+1 < len(items) && items[i+1].isAtom() {
				flush(task.Type(items[i+1].Atom))
				i += 2
				continue
			}
			i++
			continue
		}
		pending = append(pending, it)
		i++
	}
	flush(task.NumberType)
	return out
}

// splitParameters routes numeric-typed parameters to ControlVars (no ground
// object has #number/#integer type, so a parameter declared with one can
// only be a free numeric unknown) and builds the name->index maps formula
// parsing uses.
func splitParameters(all []task.TypedParameter) (params, cvars []task.TypedParameter, paramIdx, cvarIdx map[string]int) {
	paramIdx, cvarIdx = map[string]int{}, map[string]int{}
	for _, p := range all {
		if p.Type == task.NumberType || p.Type == task.IntegerType {
			cvarIdx[p.Name] = len(cvars)
			cvars = append(cvars, p)
			continue
		}
		paramIdx[p.Name] = len(params)
		params = append(params, p)
	}
	return params, cvars, paramIdx, cvarIdx
}

func parseAction(domain *task.Domain, items []sexpr) (task.Operator, error) {
	if len(items) == 0 || !items[0].isAtom() {
		return task.Operator{}, fmt.Errorf("missing action name")
	}
	op := task.Operator{Name: items[0].Atom, Instantaneous: true}

	paramsSexpr, _ := find(items, ":parameters")
	all := parseTypedParameters(paramsSexpr.tail())
	params, cvars, paramIdx, cvarIdx := splitParameters(all)
	op.Parameters, op.ControlVars = params, cvars
	ctx := &opCtx{domain: domain, params: paramIdx, cvars: cvarIdx}

	if precond, ok := find(items, ":precondition"); ok && len(precond.tail()) == 1 {
		cs, err := ctx.conditionSet(precond.tail()[0])
		if err != nil {
			return task.Operator{}, err
		}
		op.AtStartCond = cs
	}

	if effect, ok := find(items, ":effect"); ok && len(effect.tail()) == 1 {
		var lits []task.Effect
		var nums []task.NumericEffect
		var conds []task.ConditionalEffect
		if err := ctx.effectList(effect.tail()[0], &lits, &nums, &conds); err != nil {
			return task.Operator{}, err
		}
		op.AtStartEff = task.EffectSet{Literals: lits, Numeric: nums}
		op.ConditionalEffects = conds
	}

	op.ParamConstraints = ctx.pcs
	return op, nil
}

func parseDurativeAction(domain *task.Domain, items []sexpr) (task.Operator, error) {
	if len(items) == 0 || !items[0].isAtom() {
		return task.Operator{}, fmt.Errorf("missing durative-action name")
	}
	op := task.Operator{Name: items[0].Atom, Instantaneous: false}

	paramsSexpr, _ := find(items, ":parameters")
	all := parseTypedParameters(paramsSexpr.tail())
	params, cvars, paramIdx, cvarIdx := splitParameters(all)
	op.Parameters, op.ControlVars = params, cvars
	ctx := &opCtx{domain: domain, params: paramIdx, cvars: cvarIdx}

	if durSexpr, ok := find(items, ":duration"); ok && len(durSexpr.tail()) == 1 {
		ds, err := parseDurationConstraints(ctx, durSexpr.tail()[0])
		if err != nil {
			return task.Operator{}, err
		}
		op.Durations = ds
	}

	if cond, ok := find(items, ":condition"); ok && len(cond.tail()) == 1 {
		if err := ctx.collectDurativeCondition(cond.tail()[0], &op.AtStartCond, &op.OverAllCond, &op.AtEndCond); err != nil {
			return task.Operator{}, err
		}
	}

	if effect, ok := find(items, ":effect"); ok && len(effect.tail()) == 1 {
		if err := ctx.collectDurativeEffect(effect.tail()[0], &op.AtStartEff, &op.AtEndEff, &op.ConditionalEffects); err != nil {
			return task.Operator{}, err
		}
	}

	op.ParamConstraints = ctx.pcs
	return op, nil
}

func parseDurationConstraints(ctx *opCtx, s sexpr) ([]task.DurationConstraint, error) {
	if s.head() == "and" {
		var out []task.DurationConstraint
		for _, c := range s.tail() {
			ds, err := parseDurationConstraints(ctx, c)
			if err != nil {
				return nil, err
			}
			out = append(out, ds...)
		}
		return out, nil
	}
	cmp, ok := isComparator(s.head())
	if !ok {
		return nil, fmt.Errorf("pddl: malformed duration constraint %v", s)
	}
	tail := s.tail()
	if len(tail) != 2 {
		return nil, fmt.Errorf("pddl: duration constraint needs exactly two operands")
	}
	// tail[0] is conventionally the literal atom "?duration"; the
	// constraint's interesting content is always the expression on the
	// other side.
	expr, err := ctx.numericExpr(tail[1])
	if err != nil {
		return nil, err
	}
	return []task.DurationConstraint{{Comparator: cmp, Expr: expr}}, nil
}
