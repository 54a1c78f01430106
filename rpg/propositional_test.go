package rpg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/sas"
	"github.com/dsic-upv/nextflap-go/task"
)

func chainTask(t *testing.T) *sas.Task {
	t.Helper()
	types := task.NewTypeGraph()
	types.Add("location")
	const fAt = 0
	const fConnected = 1
	domain := &task.Domain{
		Name:  "chain",
		Types: types,
		Functions: []task.Function{
			{ID: fAt, Name: "at", ParamTypes: []task.Type{"location"}, Kind: task.Predicate},
			{ID: fConnected, Name: "connected", ParamTypes: []task.Type{"location", "location"}, Kind: task.Predicate},
		},
		Operators: []task.Operator{{
			Name: "move",
			Parameters: []task.TypedParameter{
				{Name: "from", Type: "location"},
				{Name: "to", Type: "location"},
			},
			ParamConstraints: []task.ParamConstraint{{A: 0, B: 1, Equal: false}},
			Instantaneous:    true,
			AtStartCond: task.ConditionSet{
				Literals: []task.Literal{
					{Function: fAt, Args: []task.Term{task.ParamTerm(0)}},
					{Function: fConnected, Args: []task.Term{task.ParamTerm(0), task.ParamTerm(1)}},
				},
			},
			AtStartEff: task.EffectSet{
				Literals: []task.Effect{
					{Literal: task.Literal{Function: fAt, Args: []task.Term{task.ParamTerm(0)}, Negated: true}},
					{Literal: task.Literal{Function: fAt, Args: []task.Term{task.ParamTerm(1)}}},
				},
			},
		}},
	}
	problem := &task.Problem{
		Name: "p",
		Objects: []task.Object{
			{Name: "a", Types: []task.Type{"location"}},
			{Name: "b", Types: []task.Type{"location"}},
			{Name: "c", Types: []task.Type{"location"}},
		},
		InitFacts: []task.GroundFact{
			{Function: fAt, Args: []string{"a"}},
			{Function: fConnected, Args: []string{"a", "b"}},
			{Function: fConnected, Args: []string{"b", "c"}},
		},
		Goal:      task.LiteralGoal{Literal: task.Literal{Function: fAt, Args: []task.Term{task.ObjectTerm("c")}}},
	}
	gt, err := ground.Ground(domain, problem, false)
	require.NoError(t, err)
	st, err := sas.Translate(gt, false)
	require.NoError(t, err)
	return st
}

func TestHeuristicCountsTwoHopChain(t *testing.T) {
	st := chainTask(t)
	state := State{st.Variables[0].ID: st.InitValue[st.Variables[0].ID]}
	h, reachable := Heuristic(st, state, st.GoalAction.AtEndCond)
	require.True(t, reachable)
	assert.Equal(t, 2, h)
}

func TestHeuristicUnreachableGoal(t *testing.T) {
	st := chainTask(t)
	state := State{st.Variables[0].ID: st.InitValue[st.Variables[0].ID]}
	bogus := []sas.Condition{{Var: 999, Value: 0}}
	_, reachable := Heuristic(st, state, bogus)
	assert.False(t, reachable)
}
