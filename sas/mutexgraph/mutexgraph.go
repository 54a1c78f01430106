// Package mutexgraph computes the static mutex graph over ground fluents:
// pairs that provably never hold simultaneously in any reachable state,
// via fixpoint propagation over the grounded actions' effects.
package mutexgraph

import "github.com/dsic-upv/nextflap-go/ground"

// Graph is an undirected mutex relation over ground.Fact.
type Graph struct {
	edges map[ground.Fact]map[ground.Fact]bool
}

func newGraph() *Graph {
	return &Graph{edges: map[ground.Fact]map[ground.Fact]bool{}}
}

// Mutex reports whether p and q are proven mutually exclusive.
func (g *Graph) Mutex(p, q ground.Fact) bool {
	if p == q {
		return false
	}
	return g.edges[p][q]
}

// Neighbors returns every fact proven mutex with f.
func (g *Graph) Neighbors(f ground.Fact) []ground.Fact {
	out := make([]ground.Fact, 0, len(g.edges[f]))
	for n := range g.edges[f] {
		out = append(out, n)
	}
	return out
}

// Pair is one proven-mutex fact pair, reported once regardless of which
// side was visited first.
type Pair struct {
	A, B ground.Fact
}

// Pairs enumerates every proven-mutex pair exactly once, for callers (the
// mutex.txt writer) that need the whole graph rather than one fact's
// neighborhood.
func (g *Graph) Pairs() []Pair {
	var out []Pair
	seen := map[ground.Fact]bool{}
	for p, neighbors := range g.edges {
		for q := range neighbors {
			if seen[q] {
				continue
			}
			out = append(out, Pair{A: p, B: q})
		}
		seen[p] = true
	}
	return out
}

func (g *Graph) add(p, q ground.Fact) {
	if p == q {
		return
	}
	if g.edges[p] == nil {
		g.edges[p] = map[ground.Fact]bool{}
	}
	if g.edges[q] == nil {
		g.edges[q] = map[ground.Fact]bool{}
	}
	g.edges[p][q] = true
	g.edges[q][p] = true
}

func (g *Graph) remove(p, q ground.Fact) {
	delete(g.edges[p], q)
	delete(g.edges[q], p)
}

// allFacts collects every fact mentioned anywhere in the ground task: the
// initial state, and every action's conditions and effects.
func allFacts(gt *ground.Task) map[ground.Fact]bool {
	facts := map[ground.Fact]bool{}
	for f := range gt.InitFacts {
		facts[f] = true
	}
	addLits := func(ls []ground.Literal) {
		for _, l := range ls {
			facts[l.Fact] = true
		}
	}
	addEffs := func(es []ground.Effect) {
		for _, e := range es {
			facts[e.Fact] = true
		}
	}
	for _, a := range gt.Actions {
		addLits(a.AtStartCond.Literals)
		addLits(a.OverAllCond.Literals)
		addLits(a.AtEndCond.Literals)
		addEffs(a.AtStartEff.Literals)
		addEffs(a.AtEndEff.Literals)
		for _, ce := range a.ConditionalEffects {
			addLits(ce.AtStartCond.Literals)
			addLits(ce.AtEndCond.Literals)
			addEffs(ce.AtStartEff.Literals)
			addEffs(ce.AtEndEff.Literals)
		}
	}
	return facts
}

// Build computes the mutex graph over every fact touched by gt.
//
// (a) Initial-state exclusion: any two facts that are not both true in the
// initial state start out as a mutex candidate pair (restricted to facts
// sharing a function, since cross-function pairs are vacuously never
// proven mutex by this analysis and would otherwise dominate the output).
// (b) For every reachable action, if it can add p while some candidate
// pair (p, q) has the action also adding q or leaving q true without
// deleting it, the pair is falsified. (c) Repeat to a fixpoint.
func Build(gt *ground.Task) *Graph {
	facts := allFacts(gt)
	byFunction := map[int][]ground.Fact{}
	for f := range facts {
		byFunction[f.Function] = append(byFunction[f.Function], f)
	}

	g := newGraph()
	for _, group := range byFunction {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				p, q := group[i], group[j]
				if !(gt.InitFacts[p] && gt.InitFacts[q]) {
					g.add(p, q)
				}
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, a := range gt.Actions {
			adds, deletes := actionEffectFacts(a)
			negPreconds := negativePreconditions(a)
			for p := range adds {
				for _, q := range g.Neighbors(p) {
					if q == p {
						continue
					}
					if adds[q] {
						g.remove(p, q)
						changed = true
						continue
					}
					if deletes[q] || negPreconds[q] {
						// the action guarantees q is false when it adds p,
						// so the pair survives this action.
						continue
					}
					// the action can add p without ruling out q: no longer
					// provably mutex.
					g.remove(p, q)
					changed = true
				}
			}
		}
	}
	return g
}

// negativePreconditions collects the facts a's at-start/over-all
// conditions require to be false.
func negativePreconditions(a *ground.Action) map[ground.Fact]bool {
	out := map[ground.Fact]bool{}
	collect := func(ls []ground.Literal) {
		for _, l := range ls {
			if l.Negated {
				out[l.Fact] = true
			}
		}
	}
	collect(a.AtStartCond.Literals)
	collect(a.OverAllCond.Literals)
	return out
}

func actionEffectFacts(a *ground.Action) (adds, deletes map[ground.Fact]bool) {
	adds, deletes = map[ground.Fact]bool{}, map[ground.Fact]bool{}
	record := func(es []ground.Effect) {
		for _, e := range es {
			if e.Negated {
				deletes[e.Fact] = true
			} else {
				adds[e.Fact] = true
			}
		}
	}
	record(a.AtStartEff.Literals)
	record(a.AtEndEff.Literals)
	for _, ce := range a.ConditionalEffects {
		record(ce.AtStartEff.Literals)
		record(ce.AtEndEff.Literals)
	}
	return adds, deletes
}
