// Package landmarks derives necessary subgoals: fluents, or disjunctions
// of fluents, that every plan from a state to the goal must make true at
// some point, found by walking the SAS task's producer index backward from
// the goal and checked with rpg.Heuristic reachability.
package landmarks

import (
	"github.com/dsic-upv/nextflap-go/rpg"
	"github.com/dsic-upv/nextflap-go/sas"
)

// Landmark is a single-fact landmark (a disjunctive landmark is the slice
// form DisjunctiveLandmark below); Informative marks it as countable by
// the heuristic (single-fact, not a goal atom itself per §4.4).
type Landmark struct {
	Atom        sas.Atom
	Informative bool
}

// DisjunctiveLandmark is a set of atoms, at least one of which every plan
// must make true.
type DisjunctiveLandmark struct {
	Atoms []sas.Atom
}

// Graph is the derived landmark set plus their necessary orderings.
type Graph struct {
	Landmarks     []Landmark
	Disjunctive   []DisjunctiveLandmark
	Orders        []Order // l.From ≺ l.To
}

// Order is a necessary ordering constraint between two single-fact
// landmarks.
type Order struct {
	From, To sas.Atom
}

// Derive builds the landmark graph for reaching goal from the initial
// state. It walks the task's producer index backward from the goal (no
// temporal RPG is built): a fluent atom is a necessary landmark if it is a
// precondition common to every currently-known producer of some
// already-established landmark (starting from the goal's own atoms),
// confirmed by checking that the goal becomes unreachable once the
// candidate's producers are removed.
func Derive(t *sas.Task, initState rpg.State, goal []sas.Condition) *Graph {
	g := &Graph{}
	seen := map[sas.Atom]bool{}

	var frontier []sas.Atom
	for _, c := range goal {
		if c.Negated {
			continue
		}
		frontier = append(frontier, sas.Atom{Var: c.Var, Value: c.Value})
	}

	for len(frontier) > 0 {
		atom := frontier[0]
		frontier = frontier[1:]
		if seen[atom] {
			continue
		}
		seen[atom] = true

		producers := t.Producers[atom.Var][atom.Value]
		if len(producers) == 0 {
			continue
		}
		isGoalAtom := isGoal(goal, atom)
		if !isGoalAtom {
			if verify(t, initState, goal, atom) {
				g.Landmarks = append(g.Landmarks, Landmark{Atom: atom, Informative: true})
			} else {
				continue
			}
		}

		common := commonPreconditions(t, producers)
		for _, pre := range common {
			if !seen[pre] {
				frontier = append(frontier, pre)
				g.Orders = append(g.Orders, Order{From: pre, To: atom})
			}
		}

		if disj := disjunctiveCandidate(t, producers); disj != nil {
			g.Disjunctive = append(g.Disjunctive, *disj)
		}
	}

	collapseCycles(g)
	reduceTransitively(g)
	return g
}

func isGoal(goal []sas.Condition, atom sas.Atom) bool {
	for _, c := range goal {
		if !c.Negated && c.Var == atom.Var && c.Value == atom.Value {
			return true
		}
	}
	return false
}

// verify re-runs propositional reachability with atom's producing actions
// excluded and reports whether the goal is still reachable; if not, atom
// is confirmed necessary.
func verify(t *sas.Task, initState rpg.State, goal []sas.Condition, atom sas.Atom) bool {
	restricted := withoutProducers(t, atom)
	_, reachable := rpg.Heuristic(restricted, initState, goal)
	return !reachable
}

// withoutProducers returns a shallow copy of t with every action able to
// set atom removed, for landmark verification only.
func withoutProducers(t *sas.Task, atom sas.Atom) *sas.Task {
	forbidden := map[int]bool{}
	for _, ai := range t.Producers[atom.Var][atom.Value] {
		if ai >= 0 {
			forbidden[ai] = true
		}
	}
	if len(forbidden) == 0 {
		return t
	}
	filtered := make([]*sas.Action, 0, len(t.Actions))
	for i, a := range t.Actions {
		if !forbidden[i] {
			filtered = append(filtered, a)
		}
	}
	clone := *t
	clone.Actions = filtered
	return &clone
}

// commonPreconditions returns the preconditions shared by every action in
// producers: a precondition appearing in every producer is a necessary
// landmark for the atom they all produce.
func commonPreconditions(t *sas.Task, producers []int) []sas.Atom {
	var real []int
	for _, ai := range producers {
		if ai >= 0 {
			real = append(real, ai)
		}
	}
	if len(real) == 0 {
		return nil
	}
	counts := map[sas.Atom]int{}
	for _, ai := range real {
		a := t.Actions[ai]
		for _, atom := range distinctPreconditionAtoms(a) {
			counts[atom]++
		}
	}
	var out []sas.Atom
	for atom, c := range counts {
		if c == len(real) {
			out = append(out, atom)
		}
	}
	return out
}

func distinctPreconditionAtoms(a *sas.Action) []sas.Atom {
	seen := map[sas.Atom]bool{}
	var out []sas.Atom
	add := func(cs []sas.Condition) {
		for _, c := range cs {
			if c.Negated {
				continue
			}
			atom := sas.Atom{Var: c.Var, Value: c.Value}
			if !seen[atom] {
				seen[atom] = true
				out = append(out, atom)
			}
		}
	}
	add(a.AtStartCond)
	add(a.OverAllCond)
	add(a.AtEndCond)
	return out
}

// disjunctiveCandidate builds a disjunctive landmark from the union of
// preconditions across producers when no single fact is common to all of
// them but the union still "covers" every producer (each producer has at
// least one atom in the union among its own preconditions).
func disjunctiveCandidate(t *sas.Task, producers []int) *DisjunctiveLandmark {
	var real []int
	for _, ai := range producers {
		if ai >= 0 {
			real = append(real, ai)
		}
	}
	if len(real) < 2 {
		return nil
	}
	union := map[sas.Atom]int{}
	perAction := make([][]sas.Atom, len(real))
	for i, ai := range real {
		perAction[i] = distinctPreconditionAtoms(t.Actions[ai])
		for _, atom := range perAction[i] {
			union[atom]++
		}
	}
	for _, atoms := range perAction {
		if len(atoms) == 0 {
			return nil
		}
	}
	for _, n := range union {
		if n == len(real) {
			return nil // a fact common to every producer covers them alone
		}
	}
	var atoms []sas.Atom
	for atom := range union {
		atoms = append(atoms, atom)
	}
	if len(atoms) <= 1 {
		return nil // a singleton union is already a necessary landmark, not disjunctive
	}
	return &DisjunctiveLandmark{Atoms: atoms}
}

// reduceTransitively drops an ordering l≺g if some other path already
// implies it, per §4.4's transitive-reduction rule.
func reduceTransitively(g *Graph) {
	reach := map[sas.Atom]map[sas.Atom]bool{}
	for _, o := range g.Orders {
		if reach[o.From] == nil {
			reach[o.From] = map[sas.Atom]bool{}
		}
		reach[o.From][o.To] = true
	}
	// transitive closure via Floyd-Warshall over the small landmark set.
	var atoms []sas.Atom
	seen := map[sas.Atom]bool{}
	for _, o := range g.Orders {
		for _, a := range []sas.Atom{o.From, o.To} {
			if !seen[a] {
				seen[a] = true
				atoms = append(atoms, a)
			}
		}
	}
	for _, k := range atoms {
		for _, i := range atoms {
			if !reach[i][k] {
				continue
			}
			for _, j := range atoms {
				if reach[k][j] {
					if reach[i] == nil {
						reach[i] = map[sas.Atom]bool{}
					}
					reach[i][j] = true
				}
			}
		}
	}
	var kept []Order
	for _, o := range g.Orders {
		redundant := false
		for _, mid := range atoms {
			if mid == o.From || mid == o.To {
				continue
			}
			if reach[o.From][mid] && reach[mid][o.To] {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, o)
		}
	}
	g.Orders = kept
}
