package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeSplitsOnParensAndStripsComments(t *testing.T) {
	toks := tokenize("(move ?a ?b) ; comment\n(other)")
	assert.Equal(t, []string{"(", "move", "?a", "?b", ")", "(", "other", ")"}, toks)
}

func TestParseOneBuildsNestedList(t *testing.T) {
	forms, err := parseAll("(and (at a) (not (at b)))")
	require.NoError(t, err)
	require.Len(t, forms, 1)

	top := forms[0]
	assert.Equal(t, "and", top.head())
	require.Len(t, top.tail(), 2)
	assert.Equal(t, "at", top.tail()[0].head())
	assert.Equal(t, "not", top.tail()[1].head())
}

func TestParseOneRejectsUnmatchedParens(t *testing.T) {
	_, err := parseAll("(move ?a ?b")
	assert.Error(t, err)

	_, err = parseAll("move ?a ?b)")
	assert.Error(t, err)
}

func TestFindReturnsFirstMatchingChild(t *testing.T) {
	forms, err := parseAll("(define (domain d) (:types a b) (:predicates (p)))")
	require.NoError(t, err)
	items := forms[0].tail()

	types, ok := find(items, ":types")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, atomsOf(types.tail()))

	_, ok = find(items, ":functions")
	assert.False(t, ok)
}
