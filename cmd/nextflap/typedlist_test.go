package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/task"
)

func TestTypedAtomGroupsSplitsRuns(t *testing.T) {
	groups := typedAtomGroups([]string{"a", "b", "-", "animal", "c", "-", "vehicle", "d"})
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"a", "b"}, groups[0].Names)
	assert.Equal(t, task.Type("animal"), groups[0].Type)
	assert.Equal(t, []string{"c"}, groups[1].Names)
	assert.Equal(t, task.Type("vehicle"), groups[1].Type)
	assert.Equal(t, []string{"d"}, groups[2].Names)
	assert.Equal(t, task.UniversalType, groups[2].Type)
}

func TestParseTypedParametersStripsLeadingQuestionMark(t *testing.T) {
	forms, err := parseAll("(?x ?y - location ?z - vehicle)")
	require.NoError(t, err)

	params := parseTypedParameters(forms[0].List)
	require.Len(t, params, 3)
	assert.Equal(t, task.TypedParameter{Name: "x", Type: task.UniversalType}, params[0])
	assert.Equal(t, task.TypedParameter{Name: "y", Type: "location"}, params[1])
	assert.Equal(t, task.TypedParameter{Name: "z", Type: "vehicle"}, params[2])
}

func TestParseTypedObjectsAssignsDeclaredType(t *testing.T) {
	forms, err := parseAll("(a b - location c)")
	require.NoError(t, err)

	objects := parseTypedObjects(forms[0].List)
	require.Len(t, objects, 3)
	assert.Equal(t, task.Object{Name: "a", Types: []task.Type{"location"}}, objects[0])
	assert.Equal(t, task.Object{Name: "c", Types: []task.Type{task.UniversalType}}, objects[2])
}
