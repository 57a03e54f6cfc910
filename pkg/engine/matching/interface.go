package matching

import "github.com/danarpra/matchengine/pkg/datastructure"

type RouteAlgorithm interface {
	ShortestPath(from, to int32) ([]datastructure.Coordinate, []datastructure.RoadEdge, float64, float64)
}
