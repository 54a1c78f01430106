package rpg

import (
	"container/heap"

	"github.com/dsic-upv/nextflap-go/numeric"
	"github.com/dsic-upv/nextflap-go/sas"
)

// epsilon separates an action's start-effects from its preconditions being
// checked, mirroring the search loop's minimum separation between
// causally-ordered time points.
const epsilon = 0.001

// arrival is one entry in the temporal RPG's priority queue: atom reached
// at time.
type arrival struct {
	atom sas.Atom
	time float64
}

type arrivalQueue []arrival

func (q arrivalQueue) Len() int            { return len(q) }
func (q arrivalQueue) Less(i, j int) bool  { return q[i].time < q[j].time }
func (q arrivalQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *arrivalQueue) Push(x interface{}) { *q = append(*q, x.(arrival)) }
func (q *arrivalQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// TemporalGraph is the temporal RPG result: the first-generation time of
// every reached atom.
type TemporalGraph struct {
	task  *sas.Task
	first map[sas.Atom]float64
}

// Time returns the first-generation time of atom, or false if unreached.
func (g *TemporalGraph) Time(atom sas.Atom) (float64, bool) {
	t, ok := g.first[atom]
	return t, ok
}

func (g *TemporalGraph) negationTime(varID int, notValue sas.Value) (float64, bool) {
	variable := g.task.Variables[varID]
	best := -1.0
	found := false
	for k := 0; k < variable.Domain(); k++ {
		if sas.Value(k) == notValue {
			continue
		}
		if t, ok := g.first[sas.Atom{Var: varID, Value: sas.Value(k)}]; ok {
			if !found || t < best {
				best, found = t, true
			}
		}
	}
	return best, found
}

func (g *TemporalGraph) conditionTime(c sas.Condition) (float64, bool) {
	if !c.Negated {
		return g.Time(sas.Atom{Var: c.Var, Value: c.Value})
	}
	return g.negationTime(c.Var, c.Value)
}

// conditionsReadyAt reports whether every condition in cs has a
// first-generation time no later than startTime, per §4.3's "conditions
// check that their level is ≤ the action's start" rule.
func (g *TemporalGraph) conditionsReadyAt(cs []sas.Condition, startTime float64) (float64, bool) {
	max := 0.0
	for _, c := range cs {
		t, ok := g.conditionTime(c)
		if !ok {
			return 0, false
		}
		if t > max {
			max = t
		}
	}
	if max > startTime {
		return max, false
	}
	return max, true
}

// durationLowerBound estimates an action's minimum duration from its
// duration constraints' constant lower bounds: zero for instantaneous
// actions, and epsilon for durative actions with no constant bound above
// epsilon; a coarse estimate is sufficient
// here since the temporal RPG only needs a monotone, admissible-ish
// ordering of arrivals, not exact scheduling (that is the successor
// generator's job, via numeric.IntervalCalculations).
func durationLowerBound(a *sas.Action) float64 {
	if a.Instantaneous {
		return 0
	}
	for _, d := range a.Durations {
		if c, ok := d.Expr.(numeric.Const); ok && c.Value > epsilon {
			return c.Value
		}
	}
	return epsilon
}

// BuildTemporal computes the temporal RPG from state, using a priority
// queue of pending atom arrivals ordered by time (§4.3).
func BuildTemporal(t *sas.Task, state State) *TemporalGraph {
	g := &TemporalGraph{task: t, first: map[sas.Atom]float64{}}
	pq := &arrivalQueue{}
	heap.Init(pq)
	for v, val := range state {
		atom := sas.Atom{Var: v, Value: val}
		g.first[atom] = 0
		heap.Push(pq, arrival{atom: atom, time: 0})
	}

	appliedStart := map[int]bool{}
	appliedEnd := map[int]bool{}

	for pq.Len() > 0 {
		top := heap.Pop(pq).(arrival)
		if existing, ok := g.first[top.atom]; ok && existing < top.time {
			continue
		}
		for ai, a := range t.Actions {
			startTime := top.time + epsilon
			if !appliedStart[ai] {
				if _, ok := g.conditionsReadyAt(a.AtStartCond, top.time); ok {
					if _, okOverAll := g.conditionsReadyAt(a.OverAllCond, top.time); okOverAll {
						appliedStart[ai] = true
						for _, e := range a.AtStartEff {
							g.schedule(pq, sas.Atom{Var: e.Var, Value: e.Value}, startTime)
						}
						endTime := startTime + durationLowerBound(a)
						if !appliedEnd[ai] {
							if _, okEnd := g.conditionsReadyAt(a.AtEndCond, endTime); okEnd {
								appliedEnd[ai] = true
								for _, e := range a.AtEndEff {
									g.schedule(pq, sas.Atom{Var: e.Var, Value: e.Value}, endTime)
								}
							}
						}
					}
				}
			}
		}
	}
	return g
}

func (g *TemporalGraph) schedule(pq *arrivalQueue, atom sas.Atom, t float64) {
	if existing, ok := g.first[atom]; ok && existing <= t {
		return
	}
	g.first[atom] = t
	heap.Push(pq, arrival{atom: atom, time: t})
}
