// Package validator defines the plan validator seam (§4.7, §6): an
// opaque checker that confirms a plan's temporal-numeric consistency and
// returns control-variable bindings. The real validator is an external
// collaborator (a linear-arithmetic / SMT-like solver) that this module
// does not implement; Interval provides a reference implementation
// sufficient for plans whose numeric reasoning never leaves interval
// arithmetic, used by tests and by callers with no external solver
// available.
package validator

import (
	"github.com/dsic-upv/nextflap-go/plan"
)

// ControlVarAssignment binds one ground action's control variable to a
// concrete value, keyed by the plan node that introduced it.
type ControlVarAssignment struct {
	NodeID uint32
	Index  int
	Value  float64
}

// Result is checkPlan's return (§4.7, §6): whether the plan is
// temporal-numerically consistent, its makespan if so, and a concrete
// binding for every control variable the plan's actions carry.
type Result struct {
	Valid                 bool
	Makespan              float64
	ControlVarAssignments []ControlVarAssignment
}

// Validator is the engine's seam onto the external plan checker. The
// engine treats a Validator's result as authoritative: it never
// second-guesses a rejection or overrides the bindings returned.
type Validator interface {
	CheckPlan(n *plan.Node, optimizeMakespan bool) Result
}

// Interval is a reference Validator that re-derives the same interval
// consistency the successor generator already established per step,
// rather than solving the combined linear program a full temporal-numeric
// validator would. It accepts any plan whose nodes all carry non-empty
// duration and control-variable intervals and whose scheduled times
// respect every causal link's ordering; it picks the lower bound of each
// interval as the concrete binding. This is NOT a substitute for a real
// linear-arithmetic solver: it cannot reject a plan whose individually
// consistent per-step intervals are jointly infeasible once control
// variables are shared across steps in ways this package does not track.
type Interval struct{}

// NewInterval returns the reference interval-consistency Validator.
func NewInterval() Interval { return Interval{} }

// CheckPlan implements Validator.
func (Interval) CheckPlan(n *plan.Node, optimizeMakespan bool) Result {
	chain := plan.Chain(n)
	var assignments []ControlVarAssignment
	makespan := 0.0

	for _, node := range chain {
		if node.Action == nil {
			continue
		}
		if node.DurationBound.Min > node.DurationBound.Max {
			return Result{Valid: false}
		}
		for i, cv := range node.ControlVars {
			if cv.Min > cv.Max {
				return Result{Valid: false}
			}
			assignments = append(assignments, ControlVarAssignment{NodeID: node.ID, Index: i, Value: cv.Min})
		}
		if node.UpdatedEnd > makespan {
			makespan = node.UpdatedEnd
		}
	}

	if !causalLinksRespectSchedule(chain) {
		return Result{Valid: false}
	}

	result := Result{Valid: true, ControlVarAssignments: assignments}
	if optimizeMakespan {
		result.Makespan = makespan
	}
	return result
}

// causalLinksRespectSchedule checks that every causal link's producer is
// scheduled no later than the consumer it supports, the temporal half of
// the consistency a full solver would also have to confirm.
func causalLinksRespectSchedule(chain []*plan.Node) bool {
	scheduled := map[plan.TimePoint]float64{plan.InitTimePoint: 0}
	for _, node := range chain {
		if node.Action == nil {
			continue
		}
		scheduled[node.Start] = node.UpdatedStart
		scheduled[node.End] = node.UpdatedEnd
	}
	for _, node := range chain {
		if node.Action == nil {
			continue
		}
		for _, l := range node.CausalLinks {
			if scheduled[l.Producer] > scheduled[l.SupportedAt] {
				return false
			}
		}
		for _, l := range node.NumericCausalLinks {
			if scheduled[l.Producer] > scheduled[l.SupportedAt] {
				return false
			}
		}
	}
	return true
}
