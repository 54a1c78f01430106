// Package heuristic combines the relaxed planning graphs (rpg) and the
// landmark graph (landmarks) into the two scores a search node needs: the
// relaxed-plan estimate h, and the landmark deficit hLand, both evaluated
// at every expanded node against the node's own frontier state.
package heuristic

import (
	"github.com/dsic-upv/nextflap-go/landmarks"
	"github.com/dsic-upv/nextflap-go/numeric"
	"github.com/dsic-upv/nextflap-go/rpg"
	"github.com/dsic-upv/nextflap-go/sas"
)

// Evaluator holds the static landmark graph derived once for a task and
// scores successive frontier states against it.
type Evaluator struct {
	task          *sas.Task
	landmarks     *landmarks.Graph
	numericCutoff int
}

// New derives the landmark graph for t (from its initial state to its
// goal action's conditions) and returns an Evaluator ready to score any
// frontier state reachable from that same task. numericCutoff bounds the
// numeric RPG's layer exploration (config.NumericReachabilityCutoff).
func New(t *sas.Task, numericCutoff int) *Evaluator {
	init := rpg.State{}
	for _, v := range t.Variables {
		init[v.ID] = t.InitValue[v.ID]
	}
	lg := landmarks.Derive(t, init, t.GoalAction.AtEndCond)
	return &Evaluator{task: t, landmarks: lg, numericCutoff: numericCutoff}
}

// Landmarks exposes the derived graph, e.g. for diagnostics output.
func (e *Evaluator) Landmarks() *landmarks.Graph { return e.landmarks }

// Informative reports whether the task's landmark graph contributes
// anything to hLand at all; if no landmark could be derived, QueueOrder's
// landmark-weighted ordering degenerates to plain g+h and the uninformative
// form should be used instead.
func (e *Evaluator) Informative() bool {
	return len(e.landmarks.Landmarks) > 0 || len(e.landmarks.Disjunctive) > 0
}

// Score is the pair of values a search node orders on: h (relaxed-plan
// size, or NumericHeuristic's count when the goal has numeric conditions)
// and hLand (count of informative single-fact landmarks and disjunctive
// landmarks not yet holding in state).
// Reachable is false if the unrelaxed goal cannot hold from state at all,
// per §4.3's "(c) if the unrelaxed goal is unreachable, the heuristic
// returns +∞" invariant.
type Score struct {
	H         int
	HLand     int
	Reachable bool
}

// Evaluate scores a frontier state. numState holds the current concrete
// value of every numeric variable relevant to the task's numeric goal
// conditions.
func (e *Evaluator) Evaluate(state rpg.State, numState map[numeric.VarID]float64) Score {
	goal := e.task.GoalAction.AtEndCond
	numGoal := e.task.GoalAction.AtEndNumCond

	var h int
	var reachable bool
	if len(numGoal) > 0 {
		h, reachable = rpg.NumericHeuristic(e.task, state, numState, goal, numGoal, e.numericCutoff)
	} else {
		h, reachable = rpg.Heuristic(e.task, state, goal)
	}
	if !reachable {
		return Score{Reachable: false}
	}

	return Score{H: h, HLand: e.residualLandmarks(state), Reachable: true}
}

// residualLandmarks counts informative single-fact landmarks not yet
// holding in state, plus every disjunctive landmark none of whose atoms
// holds; disjunctive landmarks are not filtered out of the count.
func (e *Evaluator) residualLandmarks(state rpg.State) int {
	count := 0
	for _, l := range e.landmarks.Landmarks {
		if !l.Informative {
			continue
		}
		if cur, ok := state[l.Atom.Var]; !ok || cur != l.Atom.Value {
			count++
		}
	}
	for _, d := range e.landmarks.Disjunctive {
		if !anyHolds(state, d.Atoms) {
			count++
		}
	}
	return count
}

func anyHolds(state rpg.State, atoms []sas.Atom) bool {
	for _, a := range atoms {
		if cur, ok := state[a.Var]; ok && cur == a.Value {
			return true
		}
	}
	return false
}

// QueueOrder is the best-first comparison key from §4.7: g+heuristicWeight*h
// when landmarks are uninformative (none were derivable at all), else
// g+h+landmarkWeight*hLand. The weights come from
// config.Config.QueueHeuristicWeight/QueueLandmarkWeight (§4.7 uses 2 for
// both).
func QueueOrder(g int, s Score, landmarksInformative bool, heuristicWeight, landmarkWeight int) int {
	if !landmarksInformative {
		return g + heuristicWeight*s.H
	}
	return g + s.H + landmarkWeight*s.HLand
}
