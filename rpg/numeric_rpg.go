package rpg

import (
	"github.com/dsic-upv/nextflap-go/numeric"
	"github.com/dsic-upv/nextflap-go/sas"
)

// numericFluents adapts a per-layer interval map to numeric.FluentIntervalSource.
type numericFluents map[numeric.VarID]numeric.Interval

func (f numericFluents) Interval(id numeric.VarID) numeric.Interval {
	if iv, ok := f[id]; ok {
		return iv
	}
	return numeric.Unbounded()
}

func (f numericFluents) clone() numericFluents {
	out := make(numericFluents, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func frame(nf numericFluents, controlVars int) numeric.Frame {
	cv := make([]numeric.Interval, controlVars)
	for i := range cv {
		cv[i] = numeric.Unbounded()
	}
	return numeric.Frame{Fluents: nf, ControlVars: cv, SharpT: numeric.Unbounded(), Duration: numeric.Unbounded()}
}

// numericGraph is the numeric analogue of propositionalGraph: it embeds the
// boolean atom reachability and additionally keeps the per-layer
// numeric-fluent snapshot history plus which actions fired while checking
// each layer, so backward subgoal extraction can ask "at which layer did
// this numeric condition first become satisfiable, and which action's
// effect caused it", the same question propositionalGraph.producedBy
// answers for boolean atoms.
type numericGraph struct {
	*propositionalGraph
	history      []numericFluents // history[l] is the fluent snapshot used to check layer l
	firedInLayer map[int][]int    // layer -> action indices that fired while checking that layer, in task order
	explored     int              // last layer index actually explored, always <= cutoff
}

// buildNumeric runs forward layering from state/init until saturation or
// cutoff, recording enough history to later walk the result backward.
// Cutoff bounds the number of layers explored: the loop breaks as soon as
// it has finished checking layer cutoff, rather than running one pass past
// it and only then discovering the budget was exceeded.
func buildNumeric(t *sas.Task, state State, init map[numeric.VarID]float64, cutoff int) *numericGraph {
	boolGraph := &propositionalGraph{task: t, firstLayer: map[sas.Atom]int{}, producedBy: map[sas.Atom]int{}}
	for v, val := range state {
		atom := sas.Atom{Var: v, Value: val}
		boolGraph.firstLayer[atom] = 0
		boolGraph.producedBy[atom] = -1
	}

	nf := numericFluents{}
	for id, v := range init {
		nf[id] = numeric.Point(v)
	}

	g := &numericGraph{
		propositionalGraph: boolGraph,
		history:            []numericFluents{nf.clone()},
		firedInLayer:       map[int][]int{},
	}

	actionFired := map[int]bool{}
	layer := 0
	for {
		grew := false
		nextNF := nf.clone()
		for ai, a := range t.Actions {
			if actionFired[ai] {
				continue
			}
			if !boolGraph.conditionsHold(a.AtStartCond, layer) ||
				!boolGraph.conditionsHold(a.OverAllCond, layer) ||
				!boolGraph.conditionsHold(a.AtEndCond, layer) {
				continue
			}
			if !numericConditionsHold(a.AtStartNumCond, nf, a.ControlVars) ||
				!numericConditionsHold(a.OverAllNumCond, nf, a.ControlVars) ||
				!numericConditionsHold(a.AtEndNumCond, nf, a.ControlVars) {
				continue
			}
			actionFired[ai] = true
			grew = true
			g.firedInLayer[layer] = append(g.firedInLayer[layer], ai)
			for _, e := range a.AtStartEff {
				if boolGraph.achieve(sas.Atom{Var: e.Var, Value: e.Value}, layer+1, ai) {
					grew = true
				}
			}
			for _, e := range a.AtEndEff {
				if boolGraph.achieve(sas.Atom{Var: e.Var, Value: e.Value}, layer+1, ai) {
					grew = true
				}
			}
			applyNumericEffects(a.AtStartNumEff, nf, nextNF, a.ControlVars)
			applyNumericEffects(a.AtEndNumEff, nf, nextNF, a.ControlVars)
		}
		nf = nextNF
		g.history = append(g.history, nf.clone())
		if !grew {
			break
		}
		if layer == cutoff {
			break
		}
		layer++
	}
	g.explored = layer
	return g
}

// firstNumericLayer returns the earliest explored layer at which c is
// satisfiable, evaluated against the snapshot actually recorded for that
// layer (history[l] for a check made "at layer l" carries every effect
// applied while checking layers 0..l-1, matching how boolGraph.firstLayer
// is indexed).
func (g *numericGraph) firstNumericLayer(c numeric.Condition, controlVars int) (int, bool) {
	for l := 0; l <= g.explored; l++ {
		if ok, _ := numeric.CheckCondition(c, frame(g.history[l], controlVars)); ok {
			return l, true
		}
	}
	return 0, false
}

// NumericHeuristic extends the propositional relaxed-plan count with the
// NRPG: numeric conditions must be satisfiable under a monotonically
// widening per-layer interval (initialized from init), and each applicable
// action's numeric effects widen the next layer's intervals via
// numeric.ApplyEffect.
//
// Once the goal is confirmed reachable, the heuristic value is extracted by
// walking backward from the goal the same way rpg.Heuristic does for the
// purely propositional case: each boolean subgoal is resolved to the action
// that first produced it, and each numeric subgoal is resolved to the
// first action, in task order, fired in the preceding layer whose numeric
// effects target a variable the subgoal reads; which interval side (min or
// max) that effect moved is not considered. Only
// actions actually selected this way are counted, so h reflects the size of
// one relaxed plan rather than the full set of actions saturation touched.
func NumericHeuristic(t *sas.Task, state State, init map[numeric.VarID]float64, goal []sas.Condition, numGoal []numeric.Condition, cutoff int) (int, bool) {
	g := buildNumeric(t, state, init, cutoff)

	if !g.conditionsHold(goal, g.explored) {
		return 0, false
	}
	finalNF := g.history[len(g.history)-1]
	for _, c := range numGoal {
		if ok, _ := numeric.CheckCondition(c, frame(finalNF, 0)); !ok {
			return 0, false
		}
	}

	selected := map[int]bool{}
	visitedAtom := map[sas.Atom]bool{}
	count := 0

	type pending struct {
		isNumeric bool
		atom      sas.Atom
		numCond   numeric.Condition
		layer     int
	}
	var queue []pending

	pushAtom := func(c sas.Condition) {
		if !c.Negated {
			atom := sas.Atom{Var: c.Var, Value: c.Value}
			queue = append(queue, pending{atom: atom, layer: g.firstLayer[atom]})
			return
		}
		variable := t.Variables[c.Var]
		best, bestLayer := -1, 1<<30
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
	pushNumeric := func(c numeric.Condition, controlVars int) {
		l, ok := g.firstNumericLayer(c, controlVars)
		if !ok {
			return
		}
		queue = append(queue, pending{isNumeric: true, numCond: c, layer: l})
	}
	pushActionConditions := func(a *sas.Action) {
		for _, c := range a.AtStartCond {
			pushAtom(c)
		}
		for _, c := range a.OverAllCond {
			pushAtom(c)
		}
		for _, c := range a.AtEndCond {
			pushAtom(c)
		}
		for _, c := range a.AtStartNumCond {
			pushNumeric(c, a.ControlVars)
		}
		for _, c := range a.OverAllNumCond {
			pushNumeric(c, a.ControlVars)
		}
		for _, c := range a.AtEndNumCond {
			pushNumeric(c, a.ControlVars)
		}
	}

	for _, c := range goal {
		pushAtom(c)
	}
	for _, c := range numGoal {
		pushNumeric(c, 0)
	}

	for len(queue) > 0 {
		best := 0
		for i := range queue {
			if queue[i].layer > queue[best].layer {
				best = i
			}
		}
		p := queue[best]
		queue = append(queue[:best], queue[best+1:]...)
		if p.layer == 0 {
			continue
		}

		if !p.isNumeric {
			if visitedAtom[p.atom] {
				continue
			}
			visitedAtom[p.atom] = true
			ai := g.producedBy[p.atom]
			if ai < 0 || selected[ai] {
				continue
			}
			selected[ai] = true
			count++
			pushActionConditions(t.Actions[ai])
			continue
		}

		vars := append(numeric.Vars(p.numCond.Left), numeric.Vars(p.numCond.Right)...)
		matched := -1
		for _, cand := range g.firedInLayer[p.layer-1] {
			a := t.Actions[cand]
			if touchesAny(a.AtStartNumEff, vars) || touchesAny(a.AtEndNumEff, vars) {
				matched = cand
				break
			}
		}
		if matched < 0 || selected[matched] {
			continue
		}
		selected[matched] = true
		count++
		pushActionConditions(t.Actions[matched])
	}

	return count, true
}

func touchesAny(effs []numeric.Effect, vars []numeric.VarID) bool {
	for _, e := range effs {
		for _, v := range vars {
			if e.Target == v {
				return true
			}
		}
	}
	return false
}

func numericConditionsHold(cs []numeric.Condition, nf numericFluents, controlVars int) bool {
	for _, c := range cs {
		ok, _ := numeric.CheckCondition(c, frame(nf, controlVars))
		if !ok {
			return false
		}
	}
	return true
}

func applyNumericEffects(effs []numeric.Effect, cur numericFluents, next numericFluents, controlVars int) {
	for _, e := range effs {
		v, _ := numeric.ApplyEffect(e, frame(cur, controlVars))
		if existing, ok := next[e.Target]; ok {
			next[e.Target] = widen(existing, v)
		} else {
			next[e.Target] = v
		}
	}
}

// widen merges two interval estimates for the same variable across
// competing producing actions by taking their union, matching the
// delete-relaxation principle that once a value becomes reachable it stays
// reachable.
func widen(a, b numeric.Interval) numeric.Interval {
	min := a.Min
	if b.Min < min {
		min = b.Min
	}
	max := a.Max
	if b.Max > max {
		max = b.Max
	}
	return numeric.Interval{Min: min, Max: max}
}
