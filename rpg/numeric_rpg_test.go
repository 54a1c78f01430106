package rpg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/numeric"
	"github.com/dsic-upv/nextflap-go/sas"
	"github.com/dsic-upv/nextflap-go/task"
)

func tankTask(t *testing.T) *sas.Task {
	t.Helper()
	types := task.NewTypeGraph()
	const fFuel = 0
	domain := &task.Domain{
		Name:  "tank",
		Types: types,
		Functions: []task.Function{
			{ID: fFuel, Name: "fuel", Kind: task.NumericFunction, ValueType: task.NumberType},
		},
		Operators: []task.Operator{{
			Name:          "burn",
			Instantaneous: true,
			AtStartCond: task.ConditionSet{
				Numeric: []task.NumericCondition{{
					Comparator: task.CmpGe,
					Left:       task.FluentExpr{Function: fFuel},
					Right:      task.NumberExpr{Value: 10},
				}},
			},
			AtStartEff: task.EffectSet{
				Numeric: []task.NumericEffect{{
					Function: fFuel,
					Op:       task.AssignDecrease,
					Value:    task.NumberExpr{Value: 10},
				}},
			},
		}},
	}
	problem := &task.Problem{
		Name:        "p",
		InitNumeric: []task.GroundNumericFact{{Function: fFuel, Value: 100}},
		Goal: task.NumericGoal{Condition: task.NumericCondition{
			Comparator: task.CmpLe,
			Left:       task.FluentExpr{Function: fFuel},
			Right:      task.NumberExpr{Value: 90},
		}},
	}
	gt, err := ground.Ground(domain, problem, false)
	require.NoError(t, err)
	st, err := sas.Translate(gt, false)
	require.NoError(t, err)
	return st
}

func TestNumericHeuristicReachesFuelGoal(t *testing.T) {
	st := tankTask(t)
	h, reachable := NumericHeuristic(st, State{}, st.InitNumeric, nil, st.GoalAction.AtEndNumCond, 10)
	require.True(t, reachable)
	assert.GreaterOrEqual(t, h, 1)
}

func TestNumericHeuristicCutoffBlocksUnreachable(t *testing.T) {
	st := tankTask(t)
	impossible := []numeric.Condition{{
		Comparator: numeric.Le,
		Left:       numeric.Var{ID: 0},
		Right:      numeric.Const{Value: -1000},
	}}
	_, reachable := NumericHeuristic(st, State{}, st.InitNumeric, nil, impossible, 3)
	assert.False(t, reachable)
}

// refuelChainTask builds a three-operator domain where only two of the three
// operators lie on any path to the goal: refuel must fire before burn can
// (burn's precondition fails until refuel has widened fuel's interval), and
// wander is unconditionally applicable but only ever touches an unrelated
// fluent. A relaxed-plan extractor that counts every action saturation
// touches would report 3; one that walks backward from the goal must report
// exactly 2.
func refuelChainTask(t *testing.T) *sas.Task {
	t.Helper()
	types := task.NewTypeGraph()
	const fFuel = 0
	const fDistance = 1
	domain := &task.Domain{
		Name:  "chain",
		Types: types,
		Functions: []task.Function{
			{ID: fFuel, Name: "fuel", Kind: task.NumericFunction, ValueType: task.NumberType},
			{ID: fDistance, Name: "distance", Kind: task.NumericFunction, ValueType: task.NumberType},
		},
		Operators: []task.Operator{
			{
				Name:          "refuel",
				Instantaneous: true,
				AtStartEff: task.EffectSet{
					Numeric: []task.NumericEffect{{
						Function: fFuel,
						Op:       task.AssignIncrease,
						Value:    task.NumberExpr{Value: 20},
					}},
				},
			},
			{
				Name:          "burn",
				Instantaneous: true,
				AtStartCond: task.ConditionSet{
					Numeric: []task.NumericCondition{{
						Comparator: task.CmpGe,
						Left:       task.FluentExpr{Function: fFuel},
						Right:      task.NumberExpr{Value: 10},
					}},
				},
				AtStartEff: task.EffectSet{
					Numeric: []task.NumericEffect{{
						Function: fFuel,
						Op:       task.AssignDecrease,
						Value:    task.NumberExpr{Value: 10},
					}},
				},
			},
			{
				Name:          "wander",
				Instantaneous: true,
				AtStartEff: task.EffectSet{
					Numeric: []task.NumericEffect{{
						Function: fDistance,
						Op:       task.AssignIncrease,
						Value:    task.NumberExpr{Value: 1},
					}},
				},
			},
		},
	}
	problem := &task.Problem{
		Name: "p",
		InitNumeric: []task.GroundNumericFact{
			{Function: fFuel, Value: 5},
			{Function: fDistance, Value: 0},
		},
		Goal: task.NumericGoal{Condition: task.NumericCondition{
			Comparator: task.CmpLe,
			Left:       task.FluentExpr{Function: fFuel},
			Right:      task.NumberExpr{Value: 0},
		}},
	}
	gt, err := ground.Ground(domain, problem, false)
	require.NoError(t, err)
	st, err := sas.Translate(gt, false)
	require.NoError(t, err)
	return st
}

func TestNumericHeuristicCountsOnlyCausallyRelevantActions(t *testing.T) {
	st := refuelChainTask(t)
	h, reachable := NumericHeuristic(st, State{}, st.InitNumeric, nil, st.GoalAction.AtEndNumCond, 10)
	require.True(t, reachable)
	// refuel then burn: wander fires during saturation too but never
	// touches fuel, so a correct extraction must not count it.
	assert.Equal(t, 2, h)
}
