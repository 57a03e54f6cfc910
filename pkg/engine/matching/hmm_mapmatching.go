package matching

import (
	"errors"
	"log"

	"github.com/danarpra/matchengine/pkg/concurrent"
	"github.com/danarpra/matchengine/pkg/datastructure"
	"github.com/danarpra/matchengine/pkg/geo"
	"github.com/danarpra/matchengine/pkg/trellis"
	"github.com/danarpra/matchengine/pkg/util"
)

var (
	ErrNoObservations = errors.New("no gps observations to match")
)

// HMMMapMatching decodes a noisy gps trace into the road segments it
// was most likely driven on, using the lazy trellis search over
// candidate segments.
type HMMMapMatching struct {
	graph     *datastructure.RoadGraph
	routeAlgo RouteAlgorithm
}

func NewHMMMapMatching(graph *datastructure.RoadGraph, routeAlgo RouteAlgorithm) *HMMMapMatching {
	return &HMMMapMatching{
		graph:     graph,
		routeAlgo: routeAlgo,
	}
}

// MatchResult is the decoded trace. Path holds the matched projection
// per processed observation, Edges the matched road segment, and
// Observations the raw gps coordinate. RestartCount is the number of
// breakage restarts the search needed.
type MatchResult struct {
	Path         []datastructure.Coordinate
	Edges        []datastructure.RoadEdge
	Observations []datastructure.Coordinate
	RestartCount int
}

type transitionJob struct {
	prev           *Candidate
	curr           *Candidate
	linearDistance float64
}

type transitionWithCost struct {
	from trellis.StateID
	to   trellis.StateID
	cost float64
}

func (hmm *HMMMapMatching) MapMatch(gps []StateObservationPair) (MatchResult, error) {
	// observations without any candidate cannot enter the trellis,
	// columns must be dense in time
	observations := make([]StateObservationPair, 0, len(gps))
	for _, pair := range gps {
		if len(pair.State) == 0 {
			continue
		}
		observations = append(observations, pair)
	}
	gps = observations

	if len(gps) == 0 {
		return MatchResult{}, ErrNoObservations
	}

	hmm.projectCandidates(gps)

	model := NewMatcherCostModel()
	engine := trellis.NewViterbiSearch(model)

	stateDataMap := make(map[trellis.StateID]*Candidate)

	nextStateID := trellis.StateID(0)
	for i := range gps {
		gps[i].ObservationID = i
		for _, candidate := range gps[i].State {
			candidate.StateID = nextStateID
			candidate.ObservationID = i
			nextStateID++

			if _, err := engine.AddState(trellis.Time(i), candidate); err != nil {
				return MatchResult{}, err
			}
			stateDataMap[candidate.StateID] = candidate
		}
	}

	for i := 1; i < len(gps); i++ {
		hmm.calculateTransitionCosts(model, gps[i-1], gps[i])
	}

	lastTime := trellis.Time(len(gps) - 1)
	if _, err := engine.SearchWinner(lastTime); err != nil {
		return MatchResult{}, err
	}

	it, err := engine.SearchPath(lastTime)
	if err != nil {
		return MatchResult{}, err
	}

	restartCount := 0
	matched := make([]*Candidate, 0, len(gps))
	for ; !it.Equal(engine.PathEnd()); it = it.Next() {
		if !it.Valid() {
			// no reachable candidate at this observation
			continue
		}
		if it.Time() > 0 && engine.Predecessor(it.ID()) == trellis.InvalidStateID {
			restartCount++
		}
		matched = append(matched, stateDataMap[it.ID()])
	}
	matched = util.ReverseG(matched)

	result := MatchResult{
		Path:         make([]datastructure.Coordinate, 0, len(matched)),
		Edges:        make([]datastructure.RoadEdge, 0, len(matched)),
		Observations: make([]datastructure.Coordinate, 0, len(matched)),
		RestartCount: restartCount,
	}
	for _, candidate := range matched {
		result.Path = append(result.Path, candidate.ProjectionLoc)
		result.Edges = append(result.Edges, hmm.graph.GetOutEdge(candidate.EdgeID))
		result.Observations = append(result.Observations, gps[candidate.ObservationID].Observation)
	}

	log.Printf("viterbi restart count %v", restartCount)
	log.Printf("matched %v out of %v observations", len(matched), len(gps))

	return result, nil
}

// projectCandidates projects every observation onto its candidate edge
// geometries and picks the routing node of each candidate.
func (hmm *HMMMapMatching) projectCandidates(gps []StateObservationPair) {
	for i := range gps {
		observation := gps[i].Observation
		for _, candidate := range gps[i].State {
			edge := hmm.graph.GetOutEdge(candidate.EdgeID)

			projection, _, dist := geo.ProjectPointToEdgeGeometry(edge.PointsInBetween, observation)
			candidate.ProjectionLoc = projection
			candidate.DistToObservation = dist
			candidate.FromNodeID = edge.FromNodeID
			candidate.ToNodeID = edge.ToNodeID

			fromNode := hmm.graph.GetNode(edge.FromNodeID)
			toNode := hmm.graph.GetNode(edge.ToNodeID)
			distToSource := geo.CalculateHaversineDistance(projection.Lat, projection.Lon,
				fromNode.Lat, fromNode.Lon)
			distToTarget := geo.CalculateHaversineDistance(projection.Lat, projection.Lon,
				toNode.Lat, toNode.Lon)

			if distToSource < distToTarget {
				candidate.ProjectionID = edge.FromNodeID
			} else {
				candidate.ProjectionID = edge.ToNodeID
			}
		}
	}
}

// calculateTransitionCosts routes every candidate pair between two
// adjacent observations on the worker pool and records the resulting
// costs in the model.
func (hmm *HMMMapMatching) calculateTransitionCosts(model *MatcherCostModel,
	prevObservation, currObservation StateObservationPair) {

	linearDistance := geo.CalculateHaversineDistance(
		prevObservation.Observation.Lat, prevObservation.Observation.Lon,
		currObservation.Observation.Lat, currObservation.Observation.Lon) * 1000 // meter

	pairCount := len(prevObservation.State) * len(currObservation.State)
	workers := concurrent.NewWorkerPool[transitionJob, transitionWithCost](transitionWorkers, pairCount)

	for _, prevCandidate := range prevObservation.State {
		for _, currCandidate := range currObservation.State {
			workers.AddJob(transitionJob{
				prev:           prevCandidate,
				curr:           currCandidate,
				linearDistance: linearDistance,
			})
		}
	}

	workers.Close()
	workers.Start(hmm.calculateTransitionCost)
	workers.Wait()

	for transitionItem := range workers.CollectResults() {
		if transitionItem.cost < 0 {
			continue
		}
		model.setTransition(transitionItem.from, transitionItem.to, transitionItem.cost)
	}
}

func (hmm *HMMMapMatching) calculateTransitionCost(job transitionJob) transitionWithCost {
	result := transitionWithCost{
		from: job.prev.StateID,
		to:   job.curr.StateID,
		cost: invalidCost,
	}

	_, _, _, routeDist := hmm.routeAlgo.ShortestPath(job.prev.ProjectionID, job.curr.ProjectionID)
	if routeDist < 0 {
		return result
	}
	routeDist *= 1000 // now routeDist in meter

	obsStateDiff := routeDist - job.linearDistance
	if obsStateDiff < 0 {
		obsStateDiff = -obsStateDiff
	}
	if obsStateDiff >= maximumTransitionDistance {
		return result
	}

	result.cost = computeTransitionCost(routeDist, job.linearDistance)
	return result
}
