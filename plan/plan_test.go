package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/sas"
)

func twoStepTask() *sas.Task {
	return &sas.Task{
		Variables: []sas.Variable{{ID: 0, Facts: nil}},
		InitValue: []sas.Value{0},
		GoalAction: &sas.Action{
			Name:          "(reach-goal)",
			Instantaneous: true,
			AtEndCond:     []sas.Condition{{Var: 0, Value: 2}},
		},
	}
}

func moveAction(name string, from, to sas.Value) *sas.Action {
	return &sas.Action{
		Name:          name,
		Instantaneous: true,
		AtStartCond:   []sas.Condition{{Var: 0, Value: from}},
		AtStartEff:    []sas.Effect{{Var: 0, Value: to}},
	}
}

func buildChain(t *testing.T) (*Arena, *Node) {
	t.Helper()
	a := NewArena()
	root := a.Root()

	move1 := moveAction("move-a-b", 0, 1)
	n1 := a.Alloc(root)
	n1.Action = move1
	n1.Start, n1.End = 2, 3
	n1.CausalLinks = []CausalLink{{Producer: InitTimePoint, SupportedAt: n1.Start, Var: 0, Value: 0}}
	n1.G = 1

	move2 := moveAction("move-b-c", 1, 2)
	n2 := a.Alloc(n1)
	n2.Action = move2
	n2.Start, n2.End = 4, 5
	n2.CausalLinks = []CausalLink{{Producer: n1.End, SupportedAt: n2.Start, Var: 0, Value: 1}}
	n2.NewOrderings = []Ordering{{Earlier: n1.End, Later: n2.Start}}
	n2.G = 2

	return a, n2
}

func TestLinearizeOrdersByCausalChain(t *testing.T) {
	_, n2 := buildChain(t)
	linear := Linearize(n2)

	require.Len(t, linear, 3) // root + 2 actions
	assert.Nil(t, linear[0].Action)
	assert.Equal(t, "move-a-b", linear[1].Action.Name)
	assert.Equal(t, "move-b-c", linear[2].Action.Name)
}

func TestFrontierAppliesEffectsInOrder(t *testing.T) {
	task := twoStepTask()
	_, n2 := buildChain(t)

	init := InitialState(task)
	state := Frontier(n2, init)

	assert.Equal(t, sas.Value(2), state.Values[0])
	assert.True(t, IsGoal(task, state))
}

func TestFrontierIsCached(t *testing.T) {
	task := twoStepTask()
	_, n2 := buildChain(t)
	init := InitialState(task)

	first := Frontier(n2, init)
	second := Frontier(n2, init)
	assert.Equal(t, first, second)
	assert.True(t, n2.frontierValid)
}

func TestIsGoalFalseBeforeReachingTarget(t *testing.T) {
	task := twoStepTask()
	a, n2 := buildChain(t)
	init := InitialState(task)

	// the frontier just after the first step should not satisfy the goal.
	n1 := a.Get(n2.Parent.ID)
	state := Frontier(n1, init)
	assert.False(t, IsGoal(task, state))
}
