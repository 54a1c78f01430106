package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/numeric"
	"github.com/dsic-upv/nextflap-go/plan"
	"github.com/dsic-upv/nextflap-go/sas"
)

func twoStepNode(t *testing.T) *plan.Node {
	t.Helper()
	arena := plan.NewArena()
	root := arena.Root()

	move1 := &sas.Action{Name: "move-a-b", Instantaneous: true}
	n1 := arena.Alloc(root)
	n1.Action = move1
	n1.Start, n1.End = 2, 3
	n1.CausalLinks = []plan.CausalLink{{Producer: plan.InitTimePoint, SupportedAt: 2, Var: 0, Value: 0}}
	n1.UpdatedStart, n1.UpdatedEnd = 0, 0.001
	n1.DurationBound = numeric.Point(0.001)

	move2 := &sas.Action{Name: "move-b-c", Instantaneous: true}
	n2 := arena.Alloc(n1)
	n2.Action = move2
	n2.Start, n2.End = 4, 5
	n2.CausalLinks = []plan.CausalLink{{Producer: n1.End, SupportedAt: 4, Var: 0, Value: 1}}
	n2.UpdatedStart, n2.UpdatedEnd = 0.002, 0.003
	n2.DurationBound = numeric.Point(0.001)
	n2.ControlVars = []numeric.Interval{{Min: 1, Max: 1}}

	return n2
}

func TestCheckPlanAcceptsConsistentSchedule(t *testing.T) {
	n := twoStepNode(t)
	v := NewInterval()

	result := v.CheckPlan(n, true)

	require.True(t, result.Valid)
	assert.InDelta(t, 0.003, result.Makespan, 1e-9)
	require.Len(t, result.ControlVarAssignments, 1)
	assert.Equal(t, 1.0, result.ControlVarAssignments[0].Value)
}

func TestCheckPlanRejectsEmptyDurationInterval(t *testing.T) {
	n := twoStepNode(t)
	n.DurationBound = numeric.Interval{Min: 5, Max: 1}

	v := NewInterval()
	result := v.CheckPlan(n, false)

	assert.False(t, result.Valid)
}

func TestCheckPlanRejectsOutOfOrderCausalLink(t *testing.T) {
	n := twoStepNode(t)
	// force the consumer of n's own causal link to be scheduled earlier
	// than its producer.
	n.UpdatedStart = -1

	v := NewInterval()
	result := v.CheckPlan(n, false)

	assert.False(t, result.Valid)
}
