package sas

import (
	"sort"

	"github.com/dsic-upv/nextflap-go/ground"
)

// Value indexes one of a Variable's possible values.
type Value int

// Variable is one SAS+ multi-valued state variable: a clique of mutually
// exclusive ground fluents, plus an implicit "none-of-those" value when no
// clique member need hold.
type Variable struct {
	ID int
	// Facts[k] is the ground fluent that value k represents. len(Facts) is
	// the variable's arity excluding NoneOfThose.
	Facts []ground.Fact
	// NoneOfThose is true if no Facts member holds in the initial state, or
	// if the variable has a single fact (so it has a false value); a
	// synthetic extra value then represents "none of these".
	NoneOfThose bool
}

// Domain returns the variable's value count, including the synthetic
// none-of-those value if present.
func (v Variable) Domain() int {
	if v.NoneOfThose {
		return len(v.Facts) + 1
	}
	return len(v.Facts)
}

// NoneValue is the value index representing "none of these", valid only
// when NoneOfThose is true.
func (v Variable) NoneValue() Value { return Value(len(v.Facts)) }

// ValueOf returns the value index representing f, and true if f is one of
// this variable's clique members.
func (v Variable) ValueOf(f ground.Fact) (Value, bool) {
	for i, m := range v.Facts {
		if m == f {
			return Value(i), true
		}
	}
	return 0, false
}

// inferVariables covers the fact set with cliques from the mutex graph,
// grouping candidates by function (§4.2: "cliques restricted to fluents
// sharing the same function, or structurally similar groups") and greedily
// growing a clique from each still-uncovered fact. Single-fluent variables
// fall out naturally as size-1 cliques and are boolean ({true, false} via
// NoneOfThose).
func inferVariables(facts []ground.Fact, initTrue map[ground.Fact]bool, mutex mutexOracle, skipMerge bool) []Variable {
	byFunction := map[int][]ground.Fact{}
	for _, f := range facts {
		byFunction[f.Function] = append(byFunction[f.Function], f)
	}

	var functionIDs []int
	for fn := range byFunction {
		functionIDs = append(functionIDs, fn)
	}
	sort.Ints(functionIDs)

	var vars []Variable
	for _, fn := range functionIDs {
		group := byFunction[fn]
		sort.Slice(group, func(i, j int) bool { return group[i].Args < group[j].Args })
		covered := map[ground.Fact]bool{}
		for _, f := range group {
			if covered[f] {
				continue
			}
			clique := []ground.Fact{f}
			covered[f] = true
			if !skipMerge {
				for _, cand := range group {
					if covered[cand] {
						continue
					}
					if allMutex(mutex, clique, cand) {
						clique = append(clique, cand)
						covered[cand] = true
					}
				}
			}
			anyInitTrue := false
			for _, m := range clique {
				if initTrue[m] {
					anyInitTrue = true
					break
				}
			}
			vars = append(vars, Variable{
				ID:          len(vars),
				Facts:       clique,
				NoneOfThose: !anyInitTrue || len(clique) == 1,
			})
		}
	}
	return vars
}

type mutexOracle interface {
	Mutex(p, q ground.Fact) bool
}

func allMutex(m mutexOracle, clique []ground.Fact, cand ground.Fact) bool {
	for _, c := range clique {
		if !m.Mutex(c, cand) {
			return false
		}
	}
	return true
}
