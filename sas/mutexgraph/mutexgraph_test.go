package mutexgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/ground"
)

// locationTask models a single object "at location" predicate with two
// locations: a trivial "move" action deletes at(a) and adds at(b), which
// should keep at(a)/at(b) mutex (they never co-occur).
func locationTask() *ground.Task {
	const fAt = 0
	at := func(loc string) ground.Fact { return ground.Fact{Function: fAt, Args: loc} }

	move := &ground.Action{
		Operator: nil,
		AtStartCond: ground.ConditionSet{
			Literals: []ground.Literal{{Fact: at("a")}},
		},
		AtStartEff: ground.EffectSet{
			Literals: []ground.Effect{
				{Fact: at("a"), Negated: true},
				{Fact: at("b")},
			},
		},
	}

	return &ground.Task{
		Actions:   []*ground.Action{move},
		InitFacts: map[ground.Fact]bool{at("a"): true},
	}
}

func TestBuildKeepsMutexWhenDeleteAccompaniesAdd(t *testing.T) {
	gt := locationTask()
	g := Build(gt)
	const fAt = 0
	at := func(loc string) ground.Fact { return ground.Fact{Function: fAt, Args: loc} }
	assert.True(t, g.Mutex(at("a"), at("b")))
}

func TestPairsReportsEachMutexOnce(t *testing.T) {
	gt := locationTask()
	g := Build(gt)
	pairs := g.Pairs()
	require.Len(t, pairs, 1)
	at := func(loc string) ground.Fact { return ground.Fact{Function: 0, Args: loc} }
	got := map[ground.Fact]bool{pairs[0].A: true, pairs[0].B: true}
	assert.True(t, got[at("a")])
	assert.True(t, got[at("b")])
}

func TestBuildDropsMutexWithoutGuardingDelete(t *testing.T) {
	const fAt = 0
	at := func(loc string) ground.Fact { return ground.Fact{Function: fAt, Args: loc} }

	// An action that adds at(b) without deleting at(a) and without
	// requiring not-at(a) as a precondition can no longer be proven to
	// keep the two exclusive.
	sloppy := &ground.Action{
		AtStartEff: ground.EffectSet{Literals: []ground.Effect{{Fact: at("b")}}},
	}
	gt := &ground.Task{
		Actions:   []*ground.Action{sloppy},
		InitFacts: map[ground.Fact]bool{at("a"): true},
	}
	g := Build(gt)
	require.NotNil(t, g)
	assert.False(t, g.Mutex(at("a"), at("b")))
}
