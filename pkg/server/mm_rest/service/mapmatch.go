package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/danarpra/matchengine/pkg/datastructure"
	"github.com/danarpra/matchengine/pkg/engine/matching"
	"github.com/danarpra/matchengine/pkg/geo"
)

var (
	ErrLocationNotCovered = errors.New("the location is not covered on the loaded map")
)

const (
	// gps noise (meters), samples closer than twice of it to their
	// predecessor carry no extra information
	sigmaZ = 4.07
)

type MapMatchingService struct {
	mapMatching Matching
	roadSnapper RoadSnapper
	kv          KVDB
	graph       Graph
}

func NewMapMatchingService(mapMatching Matching, rs RoadSnapper, kv KVDB, graph Graph) *MapMatchingService {
	return &MapMatchingService{mapMatching: mapMatching, roadSnapper: rs, kv: kv, graph: graph}
}

// MapMatch snaps a gps trace onto the road network. It returns the
// matched path as an encoded polyline plus the per-observation matched
// projection, edge and raw observation.
func (uc *MapMatchingService) MapMatch(ctx context.Context, gps []datastructure.Coordinate) (string,
	[]datastructure.Coordinate, []datastructure.RoadEdge, []datastructure.Coordinate, error) {

	if len(gps) == 0 {
		return "", nil, nil, nil, matching.ErrNoObservations
	}

	hmmPair := make([]matching.StateObservationPair, 0, len(gps))

	prevGpsPoint := gps[0]
	for i := 0; i < len(gps); i++ {
		gpsPoint := gps[i]

		// drop samples closer than 2*sigmaZ meter to the previous kept
		// sample
		if i != 0 && i != len(gps)-1 && geo.CalculateHaversineDistance(prevGpsPoint.Lat, prevGpsPoint.Lon,
			gpsPoint.Lat, gpsPoint.Lon)*1000 <= 2*sigmaZ {
			continue
		}

		candidates, err := uc.nearestCandidates(gpsPoint)
		if err != nil {
			return "", nil, nil, nil, fmt.Errorf("%w: %v", ErrLocationNotCovered, err)
		}
		if len(candidates) == 0 {
			continue
		}

		hmmPair = append(hmmPair, matching.StateObservationPair{
			Observation: gpsPoint,
			State:       candidates,
		})
		prevGpsPoint = gpsPoint
	}

	result, err := uc.mapMatching.MapMatch(hmmPair)
	if err != nil {
		return "", nil, nil, nil, err
	}

	return datastructure.RenderPath(result.Path), result.Path, result.Edges, result.Observations, nil
}

// nearestCandidates queries the rtree first and falls back to the h3
// indexed kv store when the tree finds nothing.
func (uc *MapMatchingService) nearestCandidates(gpsPoint datastructure.Coordinate) ([]*matching.Candidate, error) {
	snapped := uc.roadSnapper.SnapToRoads(datastructure.Point{Lat: gpsPoint.Lat, Lon: gpsPoint.Lon})

	candidates := make([]*matching.Candidate, 0, len(snapped))
	seenEdges := make(map[int32]struct{})
	for _, edgeObject := range snapped {
		if _, ok := seenEdges[edgeObject.EdgeID]; ok {
			continue
		}
		seenEdges[edgeObject.EdgeID] = struct{}{}
		candidates = append(candidates, &matching.Candidate{EdgeID: edgeObject.EdgeID})
	}
	if len(candidates) > 0 {
		return candidates, nil
	}

	kvEdges, err := uc.kv.GetNearestRoadSegmentsFromPointCoord(gpsPoint.Lat, gpsPoint.Lon)
	if err != nil {
		return nil, err
	}
	for _, kvEdge := range kvEdges {
		if _, ok := seenEdges[kvEdge.EdgeID]; ok {
			continue
		}
		seenEdges[kvEdge.EdgeID] = struct{}{}
		candidates = append(candidates, &matching.Candidate{EdgeID: kvEdge.EdgeID})
	}
	return candidates, nil
}

// NearestRoadSegments returns at most k road segments within the
// radius (degrees) of the point, with their distance to it in meters.
func (uc *MapMatchingService) NearestRoadSegments(ctx context.Context, lat, lon float64,
	radius float64, k int) ([]datastructure.RoadEdge, []float64, error) {

	snapped := uc.roadSnapper.SnapToRoadsWithinRadius(datastructure.Point{Lat: lat, Lon: lon}, radius, k)
	if len(snapped) == 0 {
		return nil, nil, ErrLocationNotCovered
	}

	edges := make([]datastructure.RoadEdge, 0, len(snapped))
	dists := make([]float64, 0, len(snapped))
	for _, edgeObject := range snapped {
		edge := uc.graph.GetOutEdge(edgeObject.EdgeID)
		_, _, dist := geo.ProjectPointToEdgeGeometry(edge.PointsInBetween, datastructure.NewCoordinate(lat, lon))
		edges = append(edges, edge)
		dists = append(dists, dist)
	}
	return edges, dists, nil
}
