// Package rpg implements three relaxed-planning-graph variants:
// propositional (FF-style), temporal, and numeric (NRPG). All three share
// the same delete-relaxation discipline (effects never unset a value) and
// layered forward reachability; they differ in what a "layer" is (an
// integer, a time, or a per-variable interval).
package rpg

import (
	"sort"

	"github.com/dsic-upv/nextflap-go/sas"
)

// State is a complete SAS assignment: variable id to value.
type State map[int]sas.Value

// Clone returns an independent copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

const unreachable = -1

// propositionalGraph holds the layered reachability result: the first
// layer at which each atom was achieved, and which action achieved it.
type propositionalGraph struct {
	task       *sas.Task
	firstLayer map[sas.Atom]int
	producedBy map[sas.Atom]int // action index into task.Actions, or -1 for "already true"
}

// negationSatisfied reports whether a negative condition v ≠ k is
// satisfiable under delete relaxation: true once some value other than k
// has been achieved for v (values accumulate and never disappear in the
// relaxed model, so any two distinct reached values can be assumed to
// coexist).
func (g *propositionalGraph) negationSatisfied(varID int, notValue sas.Value, layer int) bool {
	variable := g.task.Variables[varID]
	for k := 0; k < variable.Domain(); k++ {
		if sas.Value(k) == notValue {
			continue
		}
		if l, ok := g.firstLayer[sas.Atom{Var: varID, Value: sas.Value(k)}]; ok && l <= layer {
			return true
		}
	}
	return false
}

func (g *propositionalGraph) conditionHolds(c sas.Condition, layer int) bool {
	if !c.Negated {
		l, ok := g.firstLayer[sas.Atom{Var: c.Var, Value: c.Value}]
		return ok && l <= layer
	}
	return g.negationSatisfied(c.Var, c.Value, layer)
}

func (g *propositionalGraph) conditionsHold(cs []sas.Condition, layer int) bool {
	for _, c := range cs {
		if !g.conditionHolds(c, layer) {
			return false
		}
	}
	return true
}

// build runs forward layering from state until saturation (no new atom
// discovered in a full pass over every action).
func build(t *sas.Task, state State) *propositionalGraph {
	g := &propositionalGraph{task: t, firstLayer: map[sas.Atom]int{}, producedBy: map[sas.Atom]int{}}
	for v, val := range state {
		atom := sas.Atom{Var: v, Value: val}
		g.firstLayer[atom] = 0
		g.producedBy[atom] = -1
	}
	layer := 0
	for {
		grew := false
		for ai, a := range t.Actions {
			if !g.conditionsHold(a.AtStartCond, layer) ||
				!g.conditionsHold(a.OverAllCond, layer) ||
				!g.conditionsHold(a.AtEndCond, layer) {
				continue
			}
			for _, e := range a.AtStartEff {
				grew = g.achieve(sas.Atom{Var: e.Var, Value: e.Value}, layer+1, ai) || grew
			}
			for _, e := range a.AtEndEff {
				grew = g.achieve(sas.Atom{Var: e.Var, Value: e.Value}, layer+1, ai) || grew
			}
			for _, ce := range a.ConditionalEffects {
				if !g.conditionsHold(ce.AtStartCond, layer) || !g.conditionsHold(ce.AtEndCond, layer) {
					continue
				}
				for _, e := range ce.AtStartEff {
					grew = g.achieve(sas.Atom{Var: e.Var, Value: e.Value}, layer+1, ai) || grew
				}
				for _, e := range ce.AtEndEff {
					grew = g.achieve(sas.Atom{Var: e.Var, Value: e.Value}, layer+1, ai) || grew
				}
			}
		}
		if !grew {
			return g
		}
		layer++
	}
}

func (g *propositionalGraph) achieve(atom sas.Atom, layer int, action int) bool {
	if _, ok := g.firstLayer[atom]; ok {
		return false
	}
	g.firstLayer[atom] = layer
	g.producedBy[atom] = action
	return true
}

func (g *propositionalGraph) lastLayer() int {
	max := 0
	for _, l := range g.firstLayer {
		if l > max {
			max = l
		}
	}
	return max
}

// Heuristic computes the FF-style relaxed plan size from state to the
// conditions in goal, or reports unreachable (math: +inf, returned as
// (0, false)) if some subgoal never appears.
func Heuristic(t *sas.Task, state State, goal []sas.Condition) (int, bool) {
	g := build(t, state)
	if !g.conditionsHold(goal, g.lastLayer()) {
		return 0, false
	}

	selected := map[int]bool{} // action indices already counted
	visited := map[sas.Atom]bool{}
	count := 0

	type pending struct {
		atom  sas.Atom
		layer int
	}
	var queue []pending
	pushGoal := func(c sas.Condition) {
		if !c.Negated {
			queue = append(queue, pending{atom: sas.Atom{Var: c.Var, Value: c.Value}, layer: g.firstLayer[sas.Atom{Var: c.Var, Value: c.Value}]})
			return
		}
		// pick the lowest-layer alternative value as the concrete subgoal.
		variable := t.Variables[c.Var]
		best := -1
		bestLayer := 1 << 30
		for k := 0; k < variable.Domain(); k++ {
			if sas.Value(k) == c.Value {
				continue
			}
			atom := sas.Atom{Var: c.Var, Value: sas.Value(k)}
			if l, ok := g.firstLayer[atom]; ok && l < bestLayer {
				best, bestLayer = k, l
			}
		}
		if best >= 0 {
			queue = append(queue, pending{atom: sas.Atom{Var: c.Var, Value: sas.Value(best)}, layer: bestLayer})
		}
	}
	for _, c := range goal {
		pushGoal(c)
	}

	for len(queue) > 0 {
		sort.Slice(queue, func(i, j int) bool { return queue[i].layer > queue[j].layer })
		p := queue[0]
		queue = queue[1:]
		if visited[p.atom] || p.layer == 0 {
			continue
		}
		visited[p.atom] = true
		ai := g.producedBy[p.atom]
		if ai < 0 || selected[ai] {
			continue
		}
		selected[ai] = true
		count++
		a := t.Actions[ai]
		for _, c := range a.AtStartCond {
			pushGoal(c)
		}
		for _, c := range a.OverAllCond {
			pushGoal(c)
		}
		for _, c := range a.AtEndCond {
			pushGoal(c)
		}
	}
	return count, true
}
