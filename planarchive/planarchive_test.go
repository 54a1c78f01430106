package planarchive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/plan"
	"github.com/dsic-upv/nextflap-go/sas"
)

func TestNoopSavePlanDiscardsSilently(t *testing.T) {
	err := Noop{}.SavePlan(context.Background(), Record{Task: "briefcase"})
	assert.NoError(t, err)
}

func TestFromNodeWalksChainSkippingRoot(t *testing.T) {
	arena := plan.NewArena()
	root := arena.Root()

	move := &sas.Action{Name: "(move a b)", Instantaneous: true}
	n1 := arena.Alloc(root)
	n1.Action = move
	n1.Start, n1.End = 2, 3
	n1.UpdatedStart, n1.UpdatedEnd = 0, 0.001
	n1.G = 1

	rec := FromNode("briefcase", n1)

	require.Len(t, rec.Steps, 1)
	assert.Equal(t, "(move a b)", rec.Steps[0].ActionName)
	assert.InDelta(t, 0.001, rec.Steps[0].Duration, 1e-9)
	assert.InDelta(t, 0.001, rec.Makespan, 1e-9)
	assert.Equal(t, 1, rec.Cost)
}

func TestFromRecordRoundTripsSteps(t *testing.T) {
	rec := Record{
		Task:     "briefcase",
		Makespan: 3,
		Cost:     3,
		Steps: []Step{
			{ActionName: "put-in", Start: 0, Duration: 1},
			{ActionName: "move", Start: 1, Duration: 1},
		},
	}
	doc := fromRecord(rec)

	require.Len(t, doc.Steps, 2)
	assert.Equal(t, "put-in", doc.Steps[0].ActionName)
	assert.Equal(t, rec.Makespan, doc.Makespan)
	assert.Equal(t, rec.Cost, doc.Cost)
	assert.False(t, doc.SavedAt.IsZero())
}
