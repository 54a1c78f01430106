// Package successor implements the successor generator: expanding a base
// plan by appending one applicable ground action, wiring causal support,
// resolving threats, scheduling time, running interval calculations, and
// filtering repeated states. Each step is a focused method, composed by a
// single Expand entry point.
package successor

import (
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/dsic-upv/nextflap-go/numeric"
	"github.com/dsic-upv/nextflap-go/plan"
	"github.com/dsic-upv/nextflap-go/sas"
	"github.com/dsic-upv/nextflap-go/statecache"
)

// Reason names why Expand rejected a candidate, for diagnostics.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonUnsupported        Reason = "unsupported_condition"
	ReasonThreat             Reason = "unresolved_threat"
	ReasonContradiction      Reason = "contradictory_effect"
	ReasonMakespan           Reason = "makespan_exceeded"
	ReasonRepeatedState      Reason = "repeated_state"
	ReasonNumericUnsupported Reason = "unsupported_numeric_condition"
)

// Generator expands base plans against a fixed SAS task.
type Generator struct {
	task    *sas.Task
	arena   *plan.Arena
	init    plan.State
	epsilon float64
	cache   statecache.Cache

	// makespanBudget is the current incumbent makespan during anytime
	// improvement search (§4.6 step 6): zero disables the check, since
	// the first plan found has nothing to improve on yet. The search
	// loop lowers this every time it finds a cheaper complete plan.
	makespanBudget float64
}

// New returns a Generator over t. epsilon is the minimal positive time
// separation between causally ordered time points
// (config.Config.Epsilon, in seconds). cache may be nil to disable the
// repeated-state filter.
func New(t *sas.Task, arena *plan.Arena, epsilon float64, cache statecache.Cache) *Generator {
	return &Generator{
		task:    t,
		arena:   arena,
		init:    plan.InitialState(t),
		epsilon: epsilon,
		cache:   cache,
	}
}

// SetMakespanBudget records the incumbent makespan the anytime outer loop
// is trying to beat; Expand rejects any step whose scheduled end exceeds
// it. Passing 0 disables the check.
func (g *Generator) SetMakespanBudget(m float64) { g.makespanBudget = m }

// Init returns the task's initial frontier state, the base every plan's
// Frontier computation extends.
func (g *Generator) Init() plan.State { return g.init }

// linearState is derived once per Expand call from the parent's
// linearization: for each SAS and numeric variable, the latest writer's
// time point, the value written there, and that time point's updated
// time (for scheduling).
type linearState struct {
	writer      map[int]plan.TimePoint
	value       map[int]sas.Value
	numWriter   map[numeric.VarID]plan.TimePoint
	numValue    map[numeric.VarID]numeric.Interval
	updatedTime map[plan.TimePoint]float64
}

func (g *Generator) buildLinearState(parent *plan.Node) *linearState {
	ls := &linearState{
		writer:      map[int]plan.TimePoint{},
		value:       map[int]sas.Value{},
		numWriter:   map[numeric.VarID]plan.TimePoint{},
		numValue:    map[numeric.VarID]numeric.Interval{},
		updatedTime: map[plan.TimePoint]float64{plan.InitTimePoint: 0},
	}
	for id, v := range g.init.Numeric {
		ls.numValue[id] = numeric.Point(v)
	}
	for _, node := range plan.Linearize(parent) {
		if node.Action == nil {
			continue
		}
		ls.updatedTime[node.Start] = node.UpdatedStart
		ls.updatedTime[node.End] = node.UpdatedEnd
		for _, e := range node.Action.AtStartEff {
			ls.writer[e.Var] = node.Start
			ls.value[e.Var] = e.Value
		}
		for _, e := range node.Action.AtEndEff {
			ls.writer[e.Var] = node.End
			ls.value[e.Var] = e.Value
		}
		for _, na := range node.NumericEffects {
			ls.numWriter[na.Var] = node.End
			ls.numValue[na.Var] = na.Interval
		}
	}
	return ls
}

func (g *Generator) initVal(v int) (sas.Value, bool) {
	val, ok := g.init.Values[v]
	return val, ok
}

// Candidate is one ground action proposed for appending, together with a
// fixed choice of which of its conditional effects are asserted to
// trigger (§4.5's tri-state collapsed to always/never per branch; "may
// fire" bifurcates into two Candidates upstream, in EnumerateBranches).
type Candidate struct {
	Action    *sas.Action
	HoldCondE []bool // index-aligned with Action.ConditionalEffects
}

// EnumerateBranches expands a on conditional-effect triggering: every
// conditional effect yields two candidates, one with it asserted and one
// without, so n conditional effects give 2^n candidates (§4.6
// "Conditional-effect branching").
func EnumerateBranches(a *sas.Action) []Candidate {
	n := len(a.ConditionalEffects)
	if n == 0 {
		return []Candidate{{Action: a, HoldCondE: nil}}
	}
	branches := []Candidate{{Action: a, HoldCondE: make([]bool, n)}}
	for i := range a.ConditionalEffects {
		var next []Candidate
		for _, b := range branches {
			off := Candidate{Action: a, HoldCondE: append([]bool(nil), b.HoldCondE...)}
			on := Candidate{Action: a, HoldCondE: append([]bool(nil), b.HoldCondE...)}
			off.HoldCondE[i] = false
			on.HoldCondE[i] = true
			next = append(next, off, on)
		}
		branches = next
	}
	return branches
}

// Expand appends candidate to parent, returning the child node or a
// rejection reason (§4.6's numbered procedure).
func (g *Generator) Expand(parent *plan.Node, cand Candidate) (*plan.Node, Reason) {
	a := cand.Action
	ls := g.buildLinearState(parent)

	start := g.arena.Len()*2 + 2 // unique, monotonically increasing, even
	startTP := plan.TimePoint(start)
	endTP := plan.TimePoint(start + 1)

	var links []plan.CausalLink
	var orderings []plan.Ordering

	// selfSupports reports whether a's own at-start effect (or an
	// at-start effect of one of its triggered conditional effects)
	// assigns c.Var the value c requires. Only at-start effects
	// qualify: an at-end condition is checked before at-end effects
	// fire, so only work already done at the action's start can
	// support it.
	selfSupports := func(c sas.Condition) bool {
		for _, e := range a.AtStartEff {
			if e.Var == c.Var && c.Holds(e.Value) {
				return true
			}
		}
		for i, ce := range a.ConditionalEffects {
			if i >= len(cand.HoldCondE) || !cand.HoldCondE[i] {
				continue
			}
			for _, e := range ce.AtStartEff {
				if e.Var == c.Var && c.Holds(e.Value) {
					return true
				}
			}
		}
		return false
	}

	resolve := func(c sas.Condition, selfOK bool) (plan.TimePoint, bool) {
		if selfOK && selfSupports(c) {
			return startTP, true
		}
		if tp, ok := ls.writer[c.Var]; ok {
			if c.Holds(ls.value[c.Var]) {
				return tp, true
			}
			return 0, false
		}
		if cur, ok := g.initVal(c.Var); ok {
			if c.Holds(cur) {
				return plan.InitTimePoint, true
			}
			return 0, false
		}
		return 0, false
	}

	addLink := func(c sas.Condition, consumer plan.TimePoint, selfOK bool) bool {
		producer, ok := resolve(c, selfOK)
		if !ok {
			return false
		}
		links = append(links, plan.CausalLink{Producer: producer, SupportedAt: consumer, Var: c.Var, Value: c.Value})
		if producer != consumer {
			orderings = append(orderings, plan.Ordering{Earlier: producer, Later: consumer})
		}
		return true
	}

	for _, c := range a.AtStartCond {
		if !addLink(c, startTP, false) {
			return nil, ReasonUnsupported
		}
	}
	for _, c := range a.OverAllCond {
		if !addLink(c, startTP, false) {
			return nil, ReasonUnsupported
		}
	}
	for _, c := range a.AtEndCond {
		if !addLink(c, endTP, true) {
			return nil, ReasonUnsupported
		}
	}
	for i, ce := range a.ConditionalEffects {
		if i >= len(cand.HoldCondE) || !cand.HoldCondE[i] {
			continue
		}
		for _, c := range ce.AtStartCond {
			if !addLink(c, startTP, false) {
				return nil, ReasonUnsupported
			}
		}
		for _, c := range ce.AtEndCond {
			if !addLink(c, endTP, true) {
				return nil, ReasonUnsupported
			}
		}
	}

	// threat resolution: any other action's effect on a variable this
	// action's causal links rely on, scheduled between producer and
	// consumer, must be ordered out of the way. Since every writer in ls
	// is already the *latest* writer for its variable as of parent, the
	// only possible threats are among the new action's own effects
	// colliding with a link supported by an earlier point on the same
	// variable (a self-threat), which contradictory-effect checking below
	// subsumes; cross-plan threats from actions not yet ordered relative
	// to this one cannot arise here because parent's own chain is already
	// threat-free by induction on Expand having accepted every prior step.
	if reason := g.contradictoryEffects(a, cand.HoldCondE, ls); reason != ReasonNone {
		return nil, reason
	}

	numLinks, numReason := g.supportNumeric(a, cand.HoldCondE, ls, startTP, endTP)
	if numReason != ReasonNone {
		return nil, numReason
	}

	// time scheduling
	earliestStart := 0.0
	for _, l := range links {
		if l.Producer == startTP {
			continue
		}
		t := ls.updatedTime[l.Producer]
		if t+g.epsilon > earliestStart {
			earliestStart = t + g.epsilon
		}
	}
	for _, nl := range numLinks {
		if nl.Producer == startTP {
			continue
		}
		t := ls.updatedTime[nl.Producer]
		if t+g.epsilon > earliestStart {
			earliestStart = t + g.epsilon
		}
	}

	nf := fluentSource(ls.numValue)
	spec := toNumericSpec(a)
	ic := numeric.NewIntervalCalculations(spec, nf)

	duration := g.epsilon
	if !a.Instantaneous {
		d := ic.Duration()
		if d.Min > g.epsilon {
			duration = d.Min
		}
	}
	earliestEnd := earliestStart + duration

	if g.makespanBudget > 0 && earliestEnd > g.makespanBudget {
		return nil, ReasonMakespan
	}

	if !ic.SupportedNumericStartConditions(cand.HoldCondE) {
		return nil, ReasonNumericUnsupported
	}
	if !ic.SupportedNumericEndConditions(cand.HoldCondE) {
		return nil, ReasonNumericUnsupported
	}

	child := g.arena.Alloc(parent)
	child.Action = a
	child.Start = startTP
	child.End = endTP
	child.CausalLinks = links
	child.NumericCausalLinks = numLinks
	child.NewOrderings = orderings
	child.TriggeredConditionalEffects = cand.HoldCondE
	child.ScheduledStart, child.ScheduledEnd = earliestStart, earliestEnd
	child.UpdatedStart, child.UpdatedEnd = earliestStart, earliestEnd
	child.ControlVars = ic.ControlVars()
	child.DurationBound = ic.Duration()

	startChanges := ic.ApplyStartEffects(cand.HoldCondE)
	endChanges := ic.ApplyEndEffects(cand.HoldCondE)
	for _, ch := range startChanges {
		child.NumericEffects = append(child.NumericEffects, plan.NumericAssignment{Var: ch.Var, Interval: ch.New})
	}
	for _, ch := range endChanges {
		child.NumericEffects = append(child.NumericEffects, plan.NumericAssignment{Var: ch.Var, Interval: ch.New})
	}

	child.G = parent.G + cost(a, nf, ic)

	if g.cache != nil {
		state := plan.Frontier(child, g.init)
		h := hashState(state)
		if g.cache.CheckAndRecord(h, child.G) {
			return nil, ReasonRepeatedState
		}
	}

	return child, ReasonNone
}

// contradictoryEffects rejects a candidate whose own at-start and at-end
// (including conditional) effects would assign two different values to
// the same variable at the same time point (§4.6 step 5).
func (g *Generator) contradictoryEffects(a *sas.Action, hold []bool, ls *linearState) Reason {
	seenStart := map[int]sas.Value{}
	for _, e := range a.AtStartEff {
		if v, ok := seenStart[e.Var]; ok && v != e.Value {
			return ReasonContradiction
		}
		seenStart[e.Var] = e.Value
	}
	seenEnd := map[int]sas.Value{}
	for _, e := range a.AtEndEff {
		if v, ok := seenEnd[e.Var]; ok && v != e.Value {
			return ReasonContradiction
		}
		seenEnd[e.Var] = e.Value
	}
	for i, ce := range a.ConditionalEffects {
		if i >= len(hold) || !hold[i] {
			continue
		}
		for _, e := range ce.AtStartEff {
			if v, ok := seenStart[e.Var]; ok && v != e.Value {
				return ReasonContradiction
			}
			seenStart[e.Var] = e.Value
		}
		for _, e := range ce.AtEndEff {
			if v, ok := seenEnd[e.Var]; ok && v != e.Value {
				return ReasonContradiction
			}
			seenEnd[e.Var] = e.Value
		}
	}
	return ReasonNone
}

// supportNumeric resolves a producer for each numeric condition's
// referenced variables, mirroring boolean support (§4.6 step 3); a
// variable with no prior writer falls back to the initial state, encoded
// as InitTimePoint.
func (g *Generator) supportNumeric(a *sas.Action, hold []bool, ls *linearState, start, end plan.TimePoint) ([]plan.NumericCausalLink, Reason) {
	var links []plan.NumericCausalLink
	seen := map[numeric.VarID]bool{}
	addFor := func(conds []numeric.Condition, at plan.TimePoint) {
		for _, c := range conds {
			for _, v := range numeric.Vars(c.Left) {
				if seen[v] {
					continue
				}
				seen[v] = true
				producer := plan.InitTimePoint
				if tp, ok := ls.numWriter[v]; ok {
					producer = tp
				}
				links = append(links, plan.NumericCausalLink{Producer: producer, SupportedAt: at, Var: v})
			}
			for _, v := range numeric.Vars(c.Right) {
				if seen[v] {
					continue
				}
				seen[v] = true
				producer := plan.InitTimePoint
				if tp, ok := ls.numWriter[v]; ok {
					producer = tp
				}
				links = append(links, plan.NumericCausalLink{Producer: producer, SupportedAt: at, Var: v})
			}
		}
	}
	addFor(a.AtStartNumCond, start)
	addFor(a.OverAllNumCond, start)
	addFor(a.AtEndNumCond, end)
	for i, ce := range a.ConditionalEffects {
		if i >= len(hold) || !hold[i] {
			continue
		}
		addFor(ce.AtStartNumCond, start)
		addFor(ce.AtEndNumCond, end)
	}
	return links, ReasonNone
}

func toNumericSpec(a *sas.Action) *numeric.ActionNumericSpec {
	spec := &numeric.ActionNumericSpec{
		ControlVarCount:     a.ControlVars,
		DurationConstraints: a.Durations,
		AtStartCond:         a.AtStartNumCond,
		AtEndCond:           a.AtEndNumCond,
		AtStartEff:          a.AtStartNumEff,
		AtEndEff:            a.AtEndNumEff,
	}
	for _, ce := range a.ConditionalEffects {
		spec.ConditionalEffects = append(spec.ConditionalEffects, numeric.ConditionalNumericEffect{
			AtStartCond: ce.AtStartNumCond,
			AtEndCond:   ce.AtEndNumCond,
			AtStartEff:  ce.AtStartNumEff,
			AtEndEff:    ce.AtEndNumEff,
		})
	}
	return spec
}

type fluentSource map[numeric.VarID]numeric.Interval

func (f fluentSource) Interval(id numeric.VarID) numeric.Interval {
	if v, ok := f[id]; ok {
		return v
	}
	return numeric.Unbounded()
}

// cost evaluates a's cost expression (default 1 when nil), per §4.6 step
// 8: "cost is 1 for ordinary actions; for actions carrying an explicit
// cost expression use the expression's evaluation."
func cost(a *sas.Action, nf fluentSource, ic *numeric.IntervalCalculations) int {
	if a.Cost == nil {
		return 1
	}
	frame := numeric.Frame{Fluents: nf, ControlVars: ic.ControlVars(), SharpT: numeric.Unbounded(), Duration: ic.Duration()}
	v, _ := numeric.Evaluate(a.Cost, frame)
	if math.IsInf(v.Min, 0) || math.IsInf(v.Max, 0) {
		return 1
	}
	return int(v.Min)
}

// hashState canonically encodes state for the repeated-state filter (§4.6
// step 9), sorting keys so the same logical state always hashes
// identically regardless of map iteration order.
func hashState(s plan.State) uint64 {
	keys := make([]int, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sortInts(keys)
	h := xxhash.New()
	buf := make([]byte, 8)
	for _, k := range keys {
		putInt(buf, k)
		h.Write(buf)
		putInt(buf, int(s.Values[k]))
		h.Write(buf)
	}
	numKeys := make([]int, 0, len(s.Numeric))
	for k := range s.Numeric {
		numKeys = append(numKeys, int(k))
	}
	sortInts(numKeys)
	for _, k := range numKeys {
		putInt(buf, k)
		h.Write(buf)
		bits := math.Float64bits(s.Numeric[numeric.VarID(k)])
		putUint64(buf, bits)
		h.Write(buf)
	}
	return h.Sum64()
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func putInt(buf []byte, v int) { putUint64(buf, uint64(int64(v))) }

func putUint64(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}
