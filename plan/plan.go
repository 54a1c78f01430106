// Package plan implements the partial plan: a DAG of time points built
// incrementally by the successor generator and scored by the heuristic
// evaluator. Nodes live in an append-only arena and are addressed by
// small integer ids rather than pointers.
package plan

import (
	"sort"

	"github.com/dsic-upv/nextflap-go/numeric"
	"github.com/dsic-upv/nextflap-go/sas"
)

// TimePoint identifies one vertex of a plan's time-point DAG. Even indexes
// are an action's start, odd indexes its end, per §3.
type TimePoint uint32

// InitTimePoint is the artificial time point representing the initial
// state; every condition without a real producer may be supported here.
const InitTimePoint TimePoint = 0

// CausalLink records that the time point at SupportedAt has its precondition
// (Var, Value) satisfied by the effect written at Producer.
type CausalLink struct {
	Producer    TimePoint
	SupportedAt TimePoint
	Var         int
	Value       sas.Value
}

// NumericCausalLink is CausalLink's numeric-variable analogue (§3: "numeric
// causal links (supporting-time-point, numeric-variable)").
type NumericCausalLink struct {
	Producer    TimePoint
	SupportedAt TimePoint
	Var         numeric.VarID
}

// Ordering is a necessary precedence edge Earlier ≺ Later between two time
// points, independent of any causal link (e.g. added by threat resolution).
type Ordering struct {
	Earlier, Later TimePoint
}

// NumericAssignment records the interval a time point's effects bind onto a
// numeric variable.
type NumericAssignment struct {
	Var      numeric.VarID
	Interval numeric.Interval
}

// Node is one partial plan: the action appended at this step plus a
// reference to the parent node it extends. A plan's effective contents are
// reconstructed by walking the parent chain (§3).
type Node struct {
	ID     uint32
	Parent *Node

	Action *sas.Action // nil only for the synthetic root node

	Start, End TimePoint

	CausalLinks        []CausalLink
	NumericCausalLinks []NumericCausalLink
	NewOrderings       []Ordering

	NumericEffects []NumericAssignment

	// ScheduledStart/ScheduledEnd are the times assigned when this step was
	// added; UpdatedStart/UpdatedEnd hold the latest values after bump
	// propagation from later steps (§4.6 step 6).
	ScheduledStart, ScheduledEnd float64
	UpdatedStart, UpdatedEnd     float64

	ControlVars   []numeric.Interval
	DurationBound numeric.Interval

	// TriggeredConditionalEffects records, index-aligned with
	// Action.ConditionalEffects, which conditional effects this node asserts
	// as firing (§4.5's tri-state collapsed to a fixed choice per node).
	TriggeredConditionalEffects []bool

	H         int
	HLand     int
	G         int
	Validated bool
	Invalid   bool

	frontier      State
	frontierValid bool
}

// State is a plan's frontier state: a total map from SAS variable to value,
// plus a total map from numeric variable to its current real value.
type State struct {
	Values  map[int]sas.Value
	Numeric map[numeric.VarID]float64
}

// cloneState returns a deep-enough copy for a child node to extend without
// aliasing the parent's maps.
func cloneState(s State) State {
	values := make(map[int]sas.Value, len(s.Values))
	for k, v := range s.Values {
		values[k] = v
	}
	nums := make(map[numeric.VarID]float64, len(s.Numeric))
	for k, v := range s.Numeric {
		nums[k] = v
	}
	return State{Values: values, Numeric: nums}
}

// Arena allocates plan nodes with stable, small integer ids (§9 Design
// Note: append-only arena, 32-bit ids) instead of churning garbage-collected
// pointers across a potentially large search.
type Arena struct {
	nodes []*Node
}

// NewArena returns an empty arena with a synthetic root node representing
// the initial state (no action, no parent).
func NewArena() *Arena {
	a := &Arena{}
	root := &Node{ID: 0}
	a.nodes = append(a.nodes, root)
	return a
}

// Root returns the arena's synthetic initial-state node.
func (a *Arena) Root() *Node { return a.nodes[0] }

// Alloc appends a new node to the arena and assigns it the next id. The
// caller fills in every remaining field before using the node.
func (a *Arena) Alloc(parent *Node) *Node {
	n := &Node{ID: uint32(len(a.nodes)), Parent: parent}
	a.nodes = append(a.nodes, n)
	return n
}

// Get returns the node with the given id.
func (a *Arena) Get(id uint32) *Node { return a.nodes[id] }

// Len reports how many nodes the arena has allocated, including the root.
func (a *Arena) Len() int { return len(a.nodes) }

// Chain walks from n back to the root, returning nodes root-first.
func Chain(n *Node) []*Node {
	var rev []*Node
	for cur := n; cur != nil; cur = cur.Parent {
		rev = append(rev, cur)
	}
	out := make([]*Node, len(rev))
	for i, node := range rev {
		out[len(rev)-1-i] = node
	}
	return out
}

// Linearize returns the nodes on n's parent chain ordered consistently with
// every causal link and explicit ordering added along the way, breaking
// ties by time-point index (§5: "stable tie-break (smaller time-point index
// first)"). Two linearizations of the same plan agree on relative order of
// any two time points connected (directly or transitively) by an ordering.
func Linearize(n *Node) []*Node {
	chain := Chain(n)

	order := map[TimePoint]int{}
	for _, node := range chain {
		if node.Action == nil {
			continue
		}
		order[node.Start] = 0
		order[node.End] = 0
	}

	edges := map[TimePoint][]TimePoint{}
	addEdge := func(from, to TimePoint) {
		edges[from] = append(edges[from], to)
	}
	for _, node := range chain {
		if node.Action == nil {
			continue
		}
		// Start always precedes End, even for an instantaneous action: §8's
		// boundary behavior schedules end = start + ε rather than treating
		// the two as literally simultaneous.
		addEdge(node.Start, node.End)
		for _, l := range node.CausalLinks {
			addEdge(l.Producer, l.SupportedAt)
		}
		for _, l := range node.NumericCausalLinks {
			addEdge(l.Producer, l.SupportedAt)
		}
		for _, o := range node.NewOrderings {
			addEdge(o.Earlier, o.Later)
		}
	}

	// rank each time point by its longest path from the initial time point;
	// this is a valid topological rank since edges only ever point forward
	// in a well-formed plan.
	rank := map[TimePoint]int{}
	var allTPs []TimePoint
	for tp := range order {
		allTPs = append(allTPs, tp)
	}
	sort.Slice(allTPs, func(i, j int) bool { return allTPs[i] < allTPs[j] })
	for _, tp := range allTPs {
		rank[tp] = longestPathFrom(InitTimePoint, tp, edges)
	}

	sort.SliceStable(chain, func(i, j int) bool {
		ni, nj := chain[i], chain[j]
		if ni.Action == nil {
			return true
		}
		if nj.Action == nil {
			return false
		}
		ri, rj := rank[ni.Start], rank[nj.Start]
		if ri != rj {
			return ri < rj
		}
		return ni.Start < nj.Start
	})

	return chain
}

// longestPathFrom returns the length of the longest path from src to dst in
// edges, or -1 if dst is unreachable from src. The plan DAGs involved are
// small (one node per search step), so a direct DFS with memoization is
// plenty fast and keeps the linearization deterministic.
func longestPathFrom(src, dst TimePoint, edges map[TimePoint][]TimePoint) int {
	memo := map[TimePoint]int{}
	var dfs func(tp TimePoint) int
	visiting := map[TimePoint]bool{}
	dfs = func(tp TimePoint) int {
		if tp == dst {
			return 0
		}
		if v, ok := memo[tp]; ok {
			return v
		}
		if visiting[tp] {
			return -1
		}
		visiting[tp] = true
		best := -1
		for _, next := range edges[tp] {
			if d := dfs(next); d >= 0 && d+1 > best {
				best = d + 1
			}
		}
		visiting[tp] = false
		memo[tp] = best
		return best
	}
	d := dfs(src)
	if d < 0 {
		return 0
	}
	return d
}

// Frontier computes n's frontier state (§3): the state obtained by
// executing, along a consistent linearization, every effect whose
// producing time point precedes the frontier. Results are cached on the
// node since frontier computation is pure given the plan's DAG.
func Frontier(n *Node, init State) State {
	if n.frontierValid {
		return n.frontier
	}
	if n.Parent == nil {
		n.frontier = cloneState(init)
		n.frontierValid = true
		return n.frontier
	}

	linear := Linearize(n)
	state := cloneState(init)
	for _, node := range linear {
		if node.Action == nil {
			continue
		}
		applyNodeEffects(node, &state)
	}
	n.frontier = state
	n.frontierValid = true
	return state
}

func applyNodeEffects(n *Node, state *State) {
	if n.Action == nil {
		return
	}
	for _, e := range n.Action.AtStartEff {
		state.Values[e.Var] = e.Value
	}
	for _, e := range n.Action.AtEndEff {
		state.Values[e.Var] = e.Value
	}
	for i, ce := range n.Action.ConditionalEffects {
		if i >= len(n.TriggeredConditionalEffects) || !n.TriggeredConditionalEffects[i] {
			continue
		}
		for _, e := range ce.AtStartEff {
			state.Values[e.Var] = e.Value
		}
		for _, e := range ce.AtEndEff {
			state.Values[e.Var] = e.Value
		}
	}
	for _, na := range n.NumericEffects {
		state.Numeric[na.Var] = na.Interval.Max
	}
}

// InitialState builds the root frontier state from a SAS task's declared
// initial values.
func InitialState(t *sas.Task) State {
	values := make(map[int]sas.Value, len(t.Variables))
	for _, v := range t.Variables {
		values[v.ID] = t.InitValue[v.ID]
	}
	nums := make(map[numeric.VarID]float64, len(t.InitNumeric))
	for k, v := range t.InitNumeric {
		nums[k] = v
	}
	return State{Values: values, Numeric: nums}
}

// IsGoal reports whether state satisfies every condition of t's synthetic
// goal action.
func IsGoal(t *sas.Task, state State) bool {
	for _, c := range t.GoalAction.AtEndCond {
		cur, ok := state.Values[c.Var]
		if !ok || !c.Holds(cur) {
			return false
		}
	}
	for _, c := range t.GoalAction.AtEndNumCond {
		f := frameFromState(state)
		ok, _ := numeric.CheckCondition(c, f)
		if !ok {
			return false
		}
	}
	return true
}

func frameFromState(state State) numeric.Frame {
	fluents := pointFluents(state.Numeric)
	return numeric.Frame{Fluents: fluents, SharpT: numeric.Unbounded(), Duration: numeric.Unbounded()}
}

type pointFluents map[numeric.VarID]float64

func (f pointFluents) Interval(id numeric.VarID) numeric.Interval {
	if v, ok := f[id]; ok {
		return numeric.Point(v)
	}
	return numeric.Unbounded()
}
