package sas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/task"
)

func movementTask(t *testing.T) *ground.Task {
	t.Helper()
	types := task.NewTypeGraph()
	types.Add("location")
	const fAt = 0
	domain := &task.Domain{
		Name:  "move",
		Types: types,
		Functions: []task.Function{
			{ID: fAt, Name: "at", ParamTypes: []task.Type{"location"}, Kind: task.Predicate},
		},
		Operators: []task.Operator{
			{
				Name: "move",
				Parameters: []task.TypedParameter{
					{Name: "from", Type: "location"},
					{Name: "to", Type: "location"},
				},
				ParamConstraints: []task.ParamConstraint{{A: 0, B: 1, Equal: false}},
				Instantaneous:    true,
				AtStartCond: task.ConditionSet{
					Literals: []task.Literal{{Function: fAt, Args: []task.Term{task.ParamTerm(0)}}},
				},
				AtStartEff: task.EffectSet{
					Literals: []task.Effect{
						{Literal: task.Literal{Function: fAt, Args: []task.Term{task.ParamTerm(0)}, Negated: true}},
						{Literal: task.Literal{Function: fAt, Args: []task.Term{task.ParamTerm(1)}}},
					},
				},
			},
		},
	}
	problem := &task.Problem{
		Name: "p",
		Objects: []task.Object{
			{Name: "a", Types: []task.Type{"location"}},
			{Name: "b", Types: []task.Type{"location"}},
		},
		InitFacts: []task.GroundFact{{Function: fAt, Args: []string{"a"}}},
		Goal:      task.LiteralGoal{Literal: task.Literal{Function: fAt, Args: []task.Term{task.ObjectTerm("b")}}},
	}
	gt, err := ground.Ground(domain, problem, false)
	require.NoError(t, err)
	return gt
}

func TestTranslateProducesSingleVariableForAtPredicate(t *testing.T) {
	gt := movementTask(t)
	st, err := Translate(gt, false)
	require.NoError(t, err)

	// "at" ranges over {a, b}: since a and b are mutex (move deletes one
	// while adding the other), they should be covered by a single clique
	// variable.
	require.Len(t, st.Variables, 1)
	assert.Len(t, st.Variables[0].Facts, 2)
}

func TestTranslateInitValueMatchesInitialState(t *testing.T) {
	gt := movementTask(t)
	st, err := Translate(gt, false)
	require.NoError(t, err)
	v := st.Variables[0]
	atA, ok := v.ValueOf(ground.FactKey(0, []string{"a"}))
	require.True(t, ok)
	assert.Equal(t, atA, st.InitValue[v.ID])
}

func TestTranslateActionEffectIsSingleAssignment(t *testing.T) {
	gt := movementTask(t)
	st, err := Translate(gt, false)
	require.NoError(t, err)
	require.Len(t, st.Actions, 1)
	a := st.Actions[0]
	require.Len(t, a.AtStartEff, 1)
	v := st.Variables[0]
	atB, _ := v.ValueOf(ground.FactKey(0, []string{"b"}))
	assert.Equal(t, atB, a.AtStartEff[0].Value)
}

func TestTranslateGoalActionCondition(t *testing.T) {
	gt := movementTask(t)
	st, err := Translate(gt, false)
	require.NoError(t, err)
	require.Len(t, st.GoalAction.AtEndCond, 1)
	v := st.Variables[0]
	atB, _ := v.ValueOf(ground.FactKey(0, []string{"b"}))
	assert.Equal(t, atB, st.GoalAction.AtEndCond[0].Value)
}

func TestPermanentMutexAcrossVariableValues(t *testing.T) {
	gt := movementTask(t)
	st, err := Translate(gt, false)
	require.NoError(t, err)
	v := st.Variables[0]
	atA, _ := v.ValueOf(ground.FactKey(0, []string{"a"}))
	atB, _ := v.ValueOf(ground.FactKey(0, []string{"b"}))
	assert.True(t, st.PermanentMutex(Atom{Var: v.ID, Value: atA}, Atom{Var: v.ID, Value: atB}))
}
