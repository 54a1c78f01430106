package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/config"
	"github.com/dsic-upv/nextflap-go/heuristic"
	"github.com/dsic-upv/nextflap-go/plan"
	"github.com/dsic-upv/nextflap-go/sas"
	"github.com/dsic-upv/nextflap-go/successor"
	"github.com/dsic-upv/nextflap-go/validator"
)

// chainTask is a 3-location chain a -> b -> c, goal at(c), matching the
// fixture style used in the rpg/heuristic/successor packages.
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
	return &sas.Task{
		Variables: []sas.Variable{{ID: 0}},
		InitValue: []sas.Value{0},
		Actions:   []*sas.Action{moveAB, moveBC},
		GoalAction: &sas.Action{
			Name:          "(reach-goal)",
			Instantaneous: true,
			AtEndCond:     []sas.Condition{{Var: 0, Value: 2}},
		},
	}
}

func unreachableTask() *sas.Task {
	t := chainTask()
	t.GoalAction.AtEndCond = []sas.Condition{{Var: 0, Value: 9}}
	return t
}

func newEngine(t *sas.Task, arena *plan.Arena) *Engine {
	gen := successor.New(t, arena, 0.001, nil)
	eval := heuristic.New(t, 50)
	val := validator.NewInterval()
	cfg := config.Default()
	return New(t, gen, eval, val, cfg, nil, nil)
}

func TestRunFindsTwoActionPlan(t *testing.T) {
	task := chainTask()
	arena := plan.NewArena()
	e := newEngine(task, arena)

	result := e.Run(context.Background(), arena.Root())

	require.NotNil(t, result.Found)
	assert.Equal(t, 2, result.Found.G)

	state := plan.Frontier(result.Found, e.gen.Init())
	assert.True(t, plan.IsGoal(task, state))
}

func TestRunReportsNoPlanWhenGoalUnreachable(t *testing.T) {
	task := unreachableTask()
	arena := plan.NewArena()
	e := newEngine(task, arena)

	result := e.Run(context.Background(), arena.Root())

	assert.Nil(t, result.Found)
	assert.True(t, result.Exhausted)
}

func TestPriorityQueueOrdersByPriorityThenSequence(t *testing.T) {
	q := &priorityQueue{}
	q.Push(&item{priority: 5, seq: 1})
	q.Push(&item{priority: 1, seq: 2})
	q.Push(&item{priority: 1, seq: 0})

	assert.True(t, q.Less(2, 1)) // same priority, lower seq first
	assert.True(t, q.Less(1, 0)) // lower priority first
}
