package matching

import (
	"github.com/danarpra/matchengine/pkg/trellis"
)

const invalidCost = -1.0

// computeEmissionCost converts the projection distance (meters) of a
// candidate into a non-negative cost, the negative log of the gaussian
// gps noise model with its constant term dropped.
func computeEmissionCost(obsStateDist float64) float64 {
	return 0.5 * (obsStateDist / sigmaZ) * (obsStateDist / sigmaZ)
}

// computeTransitionCost scores how much the route between two
// candidates detours from the straight line between their observations.
func computeTransitionCost(routeLength, greatCircleDistance float64) float64 {
	obsStateDiff := routeLength - greatCircleDistance
	if obsStateDiff < 0 {
		obsStateDiff = -obsStateDiff
	}
	return obsStateDiff / beta
}

type transitionKey struct {
	From trellis.StateID
	To   trellis.StateID
}

// MatcherCostModel implements trellis.CostModel over candidates.
// Emissions are computed from the candidate projection, transitions are
// looked up from the route distances precomputed per observation pair.
type MatcherCostModel struct {
	transitions map[transitionKey]float64
}

func NewMatcherCostModel() *MatcherCostModel {
	return &MatcherCostModel{
		transitions: make(map[transitionKey]float64),
	}
}

func (m *MatcherCostModel) EmissionCost(state trellis.State) float64 {
	candidate := state.(*Candidate)
	return computeEmissionCost(candidate.DistToObservation)
}

func (m *MatcherCostModel) TransitionCost(left, right trellis.State) float64 {
	if cost, ok := m.transitions[transitionKey{From: left.ID(), To: right.ID()}]; ok {
		return cost
	}
	return invalidCost
}

func (m *MatcherCostModel) CostSofar(prevCostSofar, transitionCost, emissionCost float64) float64 {
	return prevCostSofar + transitionCost + emissionCost
}

func (m *MatcherCostModel) IsInvalidCost(cost float64) bool {
	return cost < 0
}

func (m *MatcherCostModel) setTransition(from, to trellis.StateID, cost float64) {
	m.transitions[transitionKey{From: from, To: to}] = cost
}
