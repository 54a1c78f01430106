package successor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/plan"
	"github.com/dsic-upv/nextflap-go/sas"
	"github.com/dsic-upv/nextflap-go/statecache"
)

// chainTask is a 3-location chain (a -> b -> c) with one instantaneous
// "move" operator per edge, no numeric fluents: enough to exercise causal
// support, rejection on a missing precondition, and repeated-state
// filtering without pulling in the grounder.
func chainTask() *sas.Task {
	moveAB := &sas.Action{
		Name:          "(move a b)",
		Instantaneous: true,
		AtStartCond:   []sas.Condition{{Var: 0, Value: 0}},
		AtStartEff:    []sas.Effect{{Var: 0, Value: 1}},
	}
	moveBC := &sas.Action{
		Name:          "(move b c)",
		Instantaneous: true,
		AtStartCond:   []sas.Condition{{Var: 0, Value: 1}},
		AtStartEff:    []sas.Effect{{Var: 0, Value: 2}},
	}
	moveCA := &sas.Action{
		Name:          "(move c a)",
		Instantaneous: true,
		AtStartCond:   []sas.Condition{{Var: 0, Value: 2}},
		AtStartEff:    []sas.Effect{{Var: 0, Value: 0}},
	}
	return &sas.Task{
		Variables: []sas.Variable{{ID: 0}},
		InitValue: []sas.Value{0},
		Actions:   []*sas.Action{moveAB, moveBC, moveCA},
		GoalAction: &sas.Action{
			Name:          "(reach-goal)",
			Instantaneous: true,
			AtEndCond:     []sas.Condition{{Var: 0, Value: 2}},
		},
	}
}

func TestExpandAppendsActionWithCausalSupportFromInit(t *testing.T) {
	task := chainTask()
	arena := plan.NewArena()
	g := New(task, arena, 0.001, nil)

	child, reason := g.Expand(arena.Root(), Candidate{Action: task.Actions[0]})

	require.Equal(t, ReasonNone, reason)
	require.NotNil(t, child)
	require.Len(t, child.CausalLinks, 1)
	assert.Equal(t, plan.InitTimePoint, child.CausalLinks[0].Producer)
	assert.Equal(t, 0, child.CausalLinks[0].Var)
	assert.Equal(t, sas.Value(0), child.CausalLinks[0].Value)
	assert.Equal(t, 1, child.G)
}

func TestExpandChainsSecondActionOffFirstsEffect(t *testing.T) {
	task := chainTask()
	arena := plan.NewArena()
	g := New(task, arena, 0.001, nil)

	n1, reason := g.Expand(arena.Root(), Candidate{Action: task.Actions[0]})
	require.Equal(t, ReasonNone, reason)

	n2, reason := g.Expand(n1, Candidate{Action: task.Actions[1]})
	require.Equal(t, ReasonNone, reason)
	require.Len(t, n2.CausalLinks, 1)
	assert.Equal(t, n1.Start, n2.CausalLinks[0].Producer)
	assert.Equal(t, 2, n2.G)

	state := plan.Frontier(n2, g.init)
	assert.Equal(t, sas.Value(2), state.Values[0])
	assert.True(t, plan.IsGoal(task, state))
}

func TestExpandRejectsUnsupportedPrecondition(t *testing.T) {
	task := chainTask()
	arena := plan.NewArena()
	g := New(task, arena, 0.001, nil)

	// moveBC needs var 0 = 1, but the root state has var 0 = 0.
	child, reason := g.Expand(arena.Root(), Candidate{Action: task.Actions[1]})

	assert.Nil(t, child)
	assert.Equal(t, ReasonUnsupported, reason)
}

func TestExpandRejectsRepeatedState(t *testing.T) {
	task := chainTask()
	arena := plan.NewArena()
	cache := statecache.NewMemory()
	g := New(task, arena, 0.001, cache)

	first, reason := g.Expand(arena.Root(), Candidate{Action: task.Actions[0]})
	require.Equal(t, ReasonNone, reason)
	require.NotNil(t, first)

	// a second arena root expanded with the same action reaches the same
	// frontier state at the same g, so the cache should reject it.
	arena2 := plan.NewArena()
	g2 := New(task, arena2, 0.001, cache)
	second, reason := g2.Expand(arena2.Root(), Candidate{Action: task.Actions[0]})

	assert.Nil(t, second)
	assert.Equal(t, ReasonRepeatedState, reason)
}

func TestExpandRejectsAtEndConditionContradictedByPriorWriter(t *testing.T) {
	task := &sas.Task{
		Variables: []sas.Variable{{ID: 0}, {ID: 1}},
		InitValue: []sas.Value{0, 0},
		Actions: []*sas.Action{
			{
				Name:          "(set-zero)",
				Instantaneous: true,
				AtStartEff:    []sas.Effect{{Var: 1, Value: 0}},
			},
			{
				Name:          "(expect-one)",
				Instantaneous: true,
				AtEndCond:     []sas.Condition{{Var: 1, Value: 1}},
			},
		},
		GoalAction: &sas.Action{
			Name:          "(reach-goal)",
			Instantaneous: true,
			AtEndCond:     []sas.Condition{{Var: 0, Value: 0}},
		},
	}
	arena := plan.NewArena()
	g := New(task, arena, 0.001, nil)

	n1, reason := g.Expand(arena.Root(), Candidate{Action: task.Actions[0]})
	require.Equal(t, ReasonNone, reason)

	// expect-one's at-end condition wants var 1 = 1, but set-zero already
	// wrote var 1 = 0: a known writer contradicting the condition must
	// reject the candidate, not fall back to self-support.
	child, reason := g.Expand(n1, Candidate{Action: task.Actions[1]})

	assert.Nil(t, child)
	assert.Equal(t, ReasonUnsupported, reason)
}

func TestExpandAcceptsAtEndConditionSupportedByOwnAtStartEffect(t *testing.T) {
	task := &sas.Task{
		Variables: []sas.Variable{{ID: 0}},
		InitValue: []sas.Value{0},
		Actions: []*sas.Action{
			{
				Name:          "(flip-and-check)",
				Instantaneous: true,
				AtStartEff:    []sas.Effect{{Var: 0, Value: 1}},
				AtEndCond:     []sas.Condition{{Var: 0, Value: 1}},
			},
		},
		GoalAction: &sas.Action{
			Name:          "(reach-goal)",
			Instantaneous: true,
			AtEndCond:     []sas.Condition{{Var: 0, Value: 1}},
		},
	}
	arena := plan.NewArena()
	g := New(task, arena, 0.001, nil)

	// no writer and no matching init value exist for var 0 = 1: the
	// candidate's own at-start effect must be what supports its at-end
	// condition.
	child, reason := g.Expand(arena.Root(), Candidate{Action: task.Actions[0]})

	require.Equal(t, ReasonNone, reason)
	require.NotNil(t, child)
	require.Len(t, child.CausalLinks, 1)
	assert.Equal(t, child.Start, child.CausalLinks[0].Producer)
}

func TestEnumerateBranchesWithoutConditionalEffectsReturnsOneCandidate(t *testing.T) {
	task := chainTask()
	branches := EnumerateBranches(task.Actions[0])
	require.Len(t, branches, 1)
	assert.Nil(t, branches[0].HoldCondE)
}

func TestEnumerateBranchesBifurcatesPerConditionalEffect(t *testing.T) {
	a := &sas.Action{
		Name:          "(maybe-tip)",
		Instantaneous: true,
		ConditionalEffects: []sas.ConditionalEffect{
			{AtStartEff: []sas.Effect{{Var: 1, Value: 1}}},
			{AtStartEff: []sas.Effect{{Var: 2, Value: 1}}},
		},
	}
	branches := EnumerateBranches(a)
	require.Len(t, branches, 4)
	for _, b := range branches {
		require.Len(t, b.HoldCondE, 2)
	}
}
