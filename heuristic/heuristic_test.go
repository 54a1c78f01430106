package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/numeric"
	"github.com/dsic-upv/nextflap-go/rpg"
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

func TestEvaluateScoresInitialStateAboveGoal(t *testing.T) {
	st := chainTask(t)
	e := New(st, 50)

	state := rpg.State{st.Variables[0].ID: st.InitValue[st.Variables[0].ID]}
	score := e.Evaluate(state, map[numeric.VarID]float64{})

	require.True(t, score.Reachable)
	assert.Equal(t, 2, score.H)
}

func TestEvaluateHLandDropsOnceLandmarkHolds(t *testing.T) {
	st := chainTask(t)
	e := New(st, 50)
	if len(e.Landmarks().Landmarks) == 0 {
		t.Skip("no informative landmarks derived for this fixture")
	}

	initState := rpg.State{st.Variables[0].ID: st.InitValue[st.Variables[0].ID]}
	before := e.Evaluate(initState, map[numeric.VarID]float64{})

	landmarkAtom := e.Landmarks().Landmarks[0].Atom
	advanced := rpg.State{landmarkAtom.Var: landmarkAtom.Value}
	after := e.Evaluate(advanced, map[numeric.VarID]float64{})

	assert.LessOrEqual(t, after.HLand, before.HLand)
}

func TestQueueOrderPrefersLandmarkWeightedForm(t *testing.T) {
	s := Score{H: 4, HLand: 1, Reachable: true}
	assert.Equal(t, 9, QueueOrder(3, s, true, 2, 2))
	assert.Equal(t, 11, QueueOrder(3, s, false, 2, 2))
}
