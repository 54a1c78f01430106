package ground

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/task"
)

// briefcaseDomain grounds a minimal move(?from ?to) operator over two
// locations, with a static "connected" predicate restricting which moves
// are ever reachable.
func briefcaseDomain() (*task.Domain, *task.Problem) {
	types := task.NewTypeGraph()
	types.Add("location")

	const (
		fAt        = 0
		fConnected = 1
	)
	domain := &task.Domain{
		Name:  "briefcase",
		Types: types,
		Functions: []task.Function{
			{ID: fAt, Name: "at", ParamTypes: []task.Type{"location"}, Kind: task.Predicate},
			{ID: fConnected, Name: "connected", ParamTypes: []task.Type{"location", "location"}, Kind: task.Predicate},
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
			},
		},
	}

	problem := &task.Problem{
		Name:       "p1",
		DomainName: "briefcase",
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
		Goal: task.LiteralGoal{Literal: task.Literal{Function: fAt, Args: []task.Term{task.ObjectTerm("c")}}},
	}
	return domain, problem
}

func TestGroundReachesChainedMoves(t *testing.T) {
	domain, problem := briefcaseDomain()
	gt, err := Ground(domain, problem, false)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, a := range gt.Actions {
		names[a.Name()] = true
	}
	// move a->b is reachable from the initial state directly.
	assert.True(t, names["(move a b)"])
	// move b->c becomes reachable only once "at b" is known, i.e. only after
	// at least one round of saturation beyond the initial state.
	assert.True(t, names["(move b c)"])
	// move a->c is never reachable: no "connected a c" fact exists.
	assert.False(t, names["(move a c)"])
	// move a->a is excluded by the inequality parameter constraint.
	assert.False(t, names["(move a a)"])
}

func TestGroundFoldsStaticConnectedCondition(t *testing.T) {
	domain, problem := briefcaseDomain()
	gt, err := Ground(domain, problem, false)
	require.NoError(t, err)

	var moveAB *Action
	for _, a := range gt.Actions {
		if a.Name() == "(move a b)" {
			moveAB = a
		}
	}
	require.NotNil(t, moveAB)
	// "connected" is never an effect target anywhere, so it is static and
	// its precondition should have been folded away, leaving only "at".
	assert.Len(t, moveAB.AtStartCond.Literals, 1)
}

func TestGroundGoalIsPreserved(t *testing.T) {
	domain, problem := briefcaseDomain()
	gt, err := Ground(domain, problem, false)
	require.NoError(t, err)
	lit, ok := gt.Goal.(task.LiteralGoal)
	require.True(t, ok)
	assert.Equal(t, "c", lit.Literal.Args[0].Object)
}

func TestExpandADLForAll(t *testing.T) {
	types := task.NewTypeGraph()
	types.Add("location")
	objects := []task.Object{
		{Name: "a", Types: []task.Type{"location"}},
		{Name: "b", Types: []task.Type{"location"}},
	}
	goal := task.ForAllGoal{
		Var: task.TypedParameter{Name: "?l", Type: "location"},
		Body: task.LiteralGoal{Literal: task.Literal{
			Function: 0,
			Args:     []task.Term{task.ObjectTerm("?l")},
		}},
	}
	expanded := ExpandADL(types, objects, goal)
	and, ok := expanded.(task.AndGoal)
	require.True(t, ok)
	require.Len(t, and.Parts, 2)
	first := and.Parts[0].(task.LiteralGoal)
	assert.Equal(t, "a", first.Literal.Args[0].Object)
}
