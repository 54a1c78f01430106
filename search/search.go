// Package search implements the best-first search loop: a priority queue
// over partial plans ordered by the heuristic package's queue formula,
// validator-gated popping, invalid-node propagation, and an anytime outer
// loop that tightens the makespan budget after every improved plan. The
// queue uses one concrete comparator, not runtime dispatch over
// heterogeneous items.
package search

import (
	"container/heap"
	"context"
	"time"

	"github.com/dsic-upv/nextflap-go/config"
	"github.com/dsic-upv/nextflap-go/heuristic"
	"github.com/dsic-upv/nextflap-go/plan"
	"github.com/dsic-upv/nextflap-go/plannererrors"
	"github.com/dsic-upv/nextflap-go/sas"
	"github.com/dsic-upv/nextflap-go/successor"
	"github.com/dsic-upv/nextflap-go/telemetry"
	"github.com/dsic-upv/nextflap-go/validator"
)

// item is one priority-queue entry: a plan node plus its queue key and
// insertion sequence, the latter breaking ties deterministically so two
// runs over the same task pop nodes in the same order (§5's "two
// expansions of the same plan return successors in a deterministic
// order").
type item struct {
	node     *plan.Node
	priority int
	seq      int
}

// priorityQueue is a concrete container/heap.Interface over item, per
// Design Note §9: a specialized comparator rather than a virtual-dispatch
// compare function.
type priorityQueue []*item

func (q priorityQueue) Len() int { return len(q) }
func (q priorityQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seq < q[j].seq
}
func (q priorityQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *priorityQueue) Push(x any)   { *q = append(*q, x.(*item)) }
func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

// Result is one search pass's outcome.
type Result struct {
	// Found is the best goal plan reached, or nil if none was found
	// before the queue emptied or the wall-clock budget expired.
	Found *plan.Node
	// Makespan is Found's makespan, meaningless if Found is nil.
	Makespan float64
	// Exhausted reports whether the queue emptied (searched to
	// completion) as opposed to stopping on the wall-clock budget.
	Exhausted bool
}

// Engine runs the anytime best-first search over one SAS task.
type Engine struct {
	task *sas.Task
	gen  *successor.Generator
	eval *heuristic.Evaluator
	val  validator.Validator
	cfg  config.Config
	diag *telemetry.DiagnosticWriter
	log  telemetry.Logger

	children map[uint32][]*plan.Node
	seq      int
}

// New returns an Engine. diag and log may be nil, in which case
// diagnostics and logging are silently dropped.
func New(t *sas.Task, gen *successor.Generator, eval *heuristic.Evaluator, val validator.Validator, cfg config.Config, diag *telemetry.DiagnosticWriter, log telemetry.Logger) *Engine {
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	if diag == nil {
		diag = telemetry.NewDiagnosticWriter(nil, log)
	}
	return &Engine{
		task:     t,
		gen:      gen,
		eval:     eval,
		val:      val,
		cfg:      cfg,
		diag:     diag,
		log:      log,
		children: map[uint32][]*plan.Node{},
	}
}

// Run drives the full anytime search (§4.7's "outer driver"): repeated
// passes with a tightening makespan budget, until a pass finds no better
// plan, the queue empties with nothing left to explore, or the overall
// wall-clock budget (config.Config.WallClockBudget) elapses.
func (e *Engine) Run(ctx context.Context, root *plan.Node) Result {
	deadline := time.Time{}
	if e.cfg.WallClockBudget > 0 {
		deadline = time.Now().Add(e.cfg.WallClockBudget)
	}

	state := plan.Frontier(root, e.gen.Init())
	if sc := e.eval.Evaluate(state.Values, state.Numeric); !sc.Reachable {
		e.diag.Printf(ctx, "no plan: goal unreachable from initial state (h=+Inf)")
		return Result{Exhausted: true}
	}
	e.score(root)

	decrement := e.cfg.Epsilon.Seconds()
	if decrement <= 0 {
		decrement = 1e-9
	}

	var best Result
	budget := 0.0
	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			e.diag.Printf(ctx, "resource exhaustion: wall-clock budget elapsed")
			return best
		}
		e.gen.SetMakespanBudget(budget)
		pass := e.runPass(ctx, root, deadline)
		if pass.Found == nil {
			if best.Found == nil {
				best.Exhausted = pass.Exhausted
			}
			return best
		}
		best = pass
		// strictly lower next time: otherwise a pass could find the same
		// plan again at an unchanged makespan and loop forever.
		budget = pass.Makespan - decrement
		e.diag.Printf(ctx, "plan found, makespan %.3f", pass.Makespan)
	}
}

// runPass runs one bounded best-first search: expand until a goal plan is
// found (recorded and returned immediately so the outer loop can tighten
// the budget), the queue empties, or the deadline passes.
func (e *Engine) runPass(ctx context.Context, root *plan.Node, deadline time.Time) Result {
	q := &priorityQueue{}
	heap.Init(q)
	e.push(q, root)

	for q.Len() > 0 {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return Result{Exhausted: false}
		}

		popped := heap.Pop(q).(*item)
		n := popped.node
		if n.Invalid {
			continue
		}

		if e.needsValidation(n) {
			res := e.val.CheckPlan(n, false)
			n.Validated = true
			if !res.Valid {
				e.rejectSubtree(ctx, n)
				continue
			}
		}

		state := plan.Frontier(n, e.gen.Init())
		if plan.IsGoal(e.task, state) {
			res := e.val.CheckPlan(n, true)
			if !res.Valid {
				e.rejectSubtree(ctx, n)
				continue
			}
			return Result{Found: n, Makespan: res.Makespan}
		}

		e.expand(q, n)
	}
	return Result{Exhausted: true}
}

// needsValidation reports whether n's action is intricate enough, and n's
// heuristic cheap enough, to warrant a validator call before committing to
// it (§4.7: "if its action has numeric conditions or conditional effects
// and h <= 1, invoke the validator").
func (e *Engine) needsValidation(n *plan.Node) bool {
	if n.Action == nil || n.Validated {
		return false
	}
	intricate := len(n.Action.AtStartNumCond) > 0 || len(n.Action.OverAllNumCond) > 0 ||
		len(n.Action.AtEndNumCond) > 0 || len(n.Action.ConditionalEffects) > 0
	return intricate && n.H <= e.cfg.ValidatorCallThreshold
}

// expand generates every applicable successor of n (across every
// conditional-effect branch) and enqueues the ones the successor
// generator accepts.
func (e *Engine) expand(q *priorityQueue, n *plan.Node) {
	for _, a := range e.task.Actions {
		for _, cand := range successor.EnumerateBranches(a) {
			child, reason := e.gen.Expand(n, cand)
			if reason != successor.ReasonNone {
				continue
			}
			e.score(child)
			e.children[n.ID] = append(e.children[n.ID], child)
			e.push(q, child)
		}
	}
}

// score runs the heuristic evaluator over n's frontier state and records
// h/hLand on the node.
func (e *Engine) score(n *plan.Node) {
	state := plan.Frontier(n, e.gen.Init())
	sc := e.eval.Evaluate(state.Values, state.Numeric)
	n.H = sc.H
	n.HLand = sc.HLand
}

func (e *Engine) push(q *priorityQueue, n *plan.Node) {
	e.seq++
	priority := heuristic.QueueOrder(n.G, heuristic.Score{H: n.H, HLand: n.HLand}, e.eval.Informative(), e.cfg.QueueHeuristicWeight, e.cfg.QueueLandmarkWeight)
	heap.Push(q, &item{node: n, priority: priority, seq: e.seq})
}

// rejectSubtree implements §7's validator-rejection propagation: mark n
// and every descendant invalid, then re-validate n's parent if it has not
// already been checked (a rejection the parent's own validation never
// saw might change its own standing).
func (e *Engine) rejectSubtree(ctx context.Context, n *plan.Node) {
	e.log.Warn(ctx, "validator rejected plan node", "action", actionName(n), "g", n.G)
	var mark func(*plan.Node)
	mark = func(x *plan.Node) {
		x.Invalid = true
		for _, c := range e.children[x.ID] {
			mark(c)
		}
	}
	mark(n)

	parent := n.Parent
	if parent != nil && parent.Action != nil && !parent.Validated {
		res := e.val.CheckPlan(parent, false)
		parent.Validated = true
		if !res.Valid {
			e.rejectSubtree(ctx, parent)
		}
	}
}

func actionName(n *plan.Node) string {
	if n.Action == nil {
		return ""
	}
	return n.Action.Name
}

// NoPlanError reports a search run exhausting its queue with no goal
// plan found (§7 "unsolvable problem"), a non-fatal, clean termination.
func NoPlanError() error {
	return plannererrors.New(plannererrors.KindUnsolvable, "no plan found")
}
