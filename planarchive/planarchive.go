// Package planarchive persists solved plans beyond the lifetime of a
// single run. Noop is the default (no persistence);
// Mongo writes to MongoDB through a narrow client-wrapper shape.
package planarchive

import (
	"context"

	"github.com/dsic-upv/nextflap-go/plan"
)

// Step is one action of a solved plan in the conventional temporal
// output shape (§6: "<start-time>: (<action-name> <args…>) [<duration>]").
type Step struct {
	ActionName string
	Start      float64
	Duration   float64
}

// Record is one solved plan, ready to persist.
type Record struct {
	Task     string // the problem name or file path, for lookup
	Makespan float64
	Cost     int
	Steps    []Step
}

// FromNode builds a Record by walking n's parent chain, skipping the
// synthetic root.
func FromNode(task string, n *plan.Node) Record {
	chain := plan.Chain(n)
	rec := Record{Task: task, Cost: n.G}
	for _, node := range chain {
		if node.Action == nil {
			continue
		}
		rec.Steps = append(rec.Steps, Step{
			ActionName: node.Action.Name,
			Start:      node.UpdatedStart,
			Duration:   node.UpdatedEnd - node.UpdatedStart,
		})
		if node.UpdatedEnd > rec.Makespan {
			rec.Makespan = node.UpdatedEnd
		}
	}
	return rec
}

// Archive persists solved plans. Implementations must be safe for
// concurrent use even though the engine itself is single-threaded (§5),
// since a caller may archive while a subsequent search pass runs.
type Archive interface {
	SavePlan(ctx context.Context, rec Record) error
}

// Noop discards every plan, the default per config.PlanArchiveNone.
type Noop struct{}

// SavePlan implements Archive by discarding rec.
func (Noop) SavePlan(context.Context, Record) error { return nil }
