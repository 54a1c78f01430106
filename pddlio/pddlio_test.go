package pddlio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/planarchive"
	"github.com/dsic-upv/nextflap-go/sas/mutexgraph"
	"github.com/dsic-upv/nextflap-go/task"
)

func testDomain() *task.Domain {
	return &task.Domain{
		Name: "rover",
		Functions: []task.Function{
			{ID: 0, Name: "at", ParamTypes: []task.Type{"location"}, Kind: task.Predicate},
			{ID: 1, Name: "fuel", ParamTypes: nil, ValueType: task.NumberType, Kind: task.NumericFunction},
		},
	}
}

func at(loc string) ground.Fact { return ground.Fact{Function: 0, Args: loc} }

func testGroundTask() *ground.Task {
	move := &ground.Action{
		Operator:      &task.Operator{Name: "move", Instantaneous: true},
		Args:          []string{"a", "b"},
		Instantaneous: true,
		AtStartCond:   ground.ConditionSet{Literals: []ground.Literal{{Fact: at("a")}}},
		AtStartEff: ground.EffectSet{Literals: []ground.Effect{
			{Fact: at("a"), Negated: true},
			{Fact: at("b")},
		}},
	}
	return &ground.Task{
		Actions:   []*ground.Action{move},
		InitFacts: map[ground.Fact]bool{at("a"): true},
	}
}

func TestWriteDomainRendersGroundAction(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDomain(&buf, testDomain(), testGroundTask())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "(define (domain rover-ground)")
	assert.Contains(t, out, "(:action move-a-b")
	assert.Contains(t, out, "(at a)")
	assert.Contains(t, out, "(not (at a))")
	assert.Contains(t, out, "(at b)")
}

func TestWriteProblemRendersInitAndGoal(t *testing.T) {
	problem := &task.Problem{
		Name:       "rover-p1",
		DomainName: "rover",
		Objects:    []task.Object{{Name: "a"}, {Name: "b"}},
		InitFacts:  []task.GroundFact{{Function: 0, Args: []string{"a"}}},
		Goal: task.LiteralGoal{Literal: task.Literal{
			Function: 0,
			Args:     []task.Term{task.ObjectTerm("b")},
		}},
	}

	var buf bytes.Buffer
	err := WriteProblem(&buf, testDomain(), problem)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "(define (problem rover-p1)")
	assert.Contains(t, out, "(:domain rover-ground)")
	assert.Contains(t, out, "(at a)")
	assert.Contains(t, out, "(at b)")
}

func TestWriteMutexWritesPairFacts(t *testing.T) {
	gt := testGroundTask()
	mutex := mutexgraph.Build(gt)

	var buf bytes.Buffer
	err := WriteMutex(&buf, testDomain(), mutex)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "(at a)")
	assert.Contains(t, buf.String(), "(at b)")
}

func TestWritePlanFormatsStartDurationLines(t *testing.T) {
	rec := planarchive.Record{
		Task:     "rover-p1",
		Makespan: 2,
		Steps: []planarchive.Step{
			{ActionName: "(move a b)", Start: 0, Duration: 1},
			{ActionName: "(move b c)", Start: 1, Duration: 1},
		},
	}

	var buf bytes.Buffer
	err := WritePlan(&buf, rec)
	require.NoError(t, err)

	assert.Equal(t, "0.000: (move a b) [1.000]\n1.000: (move b c) [1.000]\n", buf.String())
}
