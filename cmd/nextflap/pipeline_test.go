package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/sas"
	"github.com/dsic-upv/nextflap-go/task"
)

const transportDomain = `
(define (domain transport)
  (:types location vehicle)
  (:predicates (at ?v - vehicle ?l - location) (connected ?from ?to - location))
  (:functions (fuel ?v - vehicle) (distance ?from ?to - location))
  (:durative-action drive
    :parameters (?v - vehicle ?from ?to - location)
    :duration (= ?duration (distance ?from ?to))
    :condition (and (at start (at ?v ?from)) (over all (connected ?from ?to)))
    :effect (and
      (at start (not (at ?v ?from)))
      (at end (at ?v ?to))
      (at end (decrease (fuel ?v) (distance ?from ?to)))))
)`

const transportProblem = `
(define (problem transport-p1)
  (:domain transport)
  (:objects truck1 - vehicle l1 l2 - location)
  (:init
    (at truck1 l1)
    (connected l1 l2)
    (= (distance l1 l2) 10)
    (= (fuel truck1) 100))
  (:goal (at truck1 l2))
)`

func TestParseDomainBuildsDurativeOperator(t *testing.T) {
	domain, err := parseDomain(transportDomain)
	require.NoError(t, err)

	assert.Equal(t, "transport", domain.Name)
	require.Len(t, domain.Operators, 1)

	op := domain.Operators[0]
	assert.Equal(t, "drive", op.Name)
	assert.False(t, op.Instantaneous)
	require.Len(t, op.Parameters, 3)
	assert.Empty(t, op.ControlVars)
	require.Len(t, op.Durations, 1)
	assert.Equal(t, task.CmpEq, op.Durations[0].Comparator)

	require.Len(t, op.AtStartCond.Literals, 1)
	require.Len(t, op.OverAllCond.Literals, 1)
	require.Len(t, op.AtStartEff.Literals, 1)
	assert.True(t, op.AtStartEff.Literals[0].Literal.Negated)
	require.Len(t, op.AtEndEff.Literals, 1)
	require.Len(t, op.AtEndEff.Numeric, 1)
	assert.Equal(t, task.AssignDecrease, op.AtEndEff.Numeric[0].Op)
}

func TestParseProblemBuildsInitAndGoal(t *testing.T) {
	domain, err := parseDomain(transportDomain)
	require.NoError(t, err)

	problem, err := parseProblem(transportProblem, domain)
	require.NoError(t, err)

	assert.Equal(t, "transport-p1", problem.Name)
	require.Len(t, problem.Objects, 3)
	require.Len(t, problem.InitFacts, 2)
	require.Len(t, problem.InitNumeric, 2)
	require.NotNil(t, problem.Goal)

	lit, ok := problem.Goal.(task.LiteralGoal)
	require.True(t, ok)
	assert.Equal(t, []string{"truck1", "l2"}, []string{lit.Literal.Args[0].Object, lit.Literal.Args[1].Object})
}

func TestParsedDomainAndProblemGroundAndTranslate(t *testing.T) {
	domain, err := parseDomain(transportDomain)
	require.NoError(t, err)
	problem, err := parseProblem(transportProblem, domain)
	require.NoError(t, err)

	gt, err := ground.Ground(domain, problem, false)
	require.NoError(t, err)
	assert.NotEmpty(t, gt.Actions)

	st, err := sas.Translate(gt, false)
	require.NoError(t, err)
	assert.NotEmpty(t, st.Variables)
	assert.NotEmpty(t, st.Actions)
}
