package routing

import (
	"github.com/danarpra/matchengine/pkg/datastructure"
	"github.com/danarpra/matchengine/pkg/util"
)

const (
	// transitions between adjacent gps samples are short, bound the
	// search so a disconnected pair fails fast
	maxVisitedNodes = 4000
)

type cameFromPair struct {
	Edge   datastructure.RoadEdge
	NodeID int32
}

// RouteAlgorithm answers shortest-path queries over one road graph.
type RouteAlgorithm struct {
	graph *datastructure.RoadGraph
}

func NewRouteAlgorithm(graph *datastructure.RoadGraph) *RouteAlgorithm {
	return &RouteAlgorithm{graph: graph}
}

// ShortestPath runs dijkstra from one node to another. It returns the
// route geometry, the traversed edges, the travel time (minutes) and
// the route length (km). A negative distance means no route was found
// within the visit budget.
func (rt *RouteAlgorithm) ShortestPath(from, to int32) ([]datastructure.Coordinate, []datastructure.RoadEdge, float64, float64) {
	if from == to {
		return []datastructure.Coordinate{}, []datastructure.RoadEdge{}, 0, 0
	}

	pq := datastructure.NewMinHeap[int32]()
	pq.Insert(datastructure.PriorityQueueNode[int32]{Rank: 0, Item: from})

	costSoFar := make(map[int32]float64)
	costSoFar[from] = 0.0

	distSoFar := make(map[int32]float64)
	distSoFar[from] = 0.0

	cameFrom := make(map[int32]cameFromPair)
	cameFrom[from] = cameFromPair{datastructure.RoadEdge{}, -1}

	visited := make(map[int32]bool)
	visitedCount := 0

	for pq.Size() > 0 && visitedCount < maxVisitedNodes {
		node, _ := pq.ExtractMin()
		if visited[node.Item] {
			continue
		}
		visited[node.Item] = true
		visitedCount++

		if node.Item == to {
			return rt.unwindPath(cameFrom, from, to, costSoFar[to], distSoFar[to])
		}

		for _, edgeID := range rt.graph.GetNodeFirstOutEdges(node.Item) {
			edge := rt.graph.GetOutEdge(edgeID)
			if visited[edge.ToNodeID] {
				continue
			}

			newCost := costSoFar[node.Item] + edge.Weight
			oldCost, ok := costSoFar[edge.ToNodeID]
			if !ok || newCost < oldCost {
				costSoFar[edge.ToNodeID] = newCost
				distSoFar[edge.ToNodeID] = distSoFar[node.Item] + edge.Dist
				cameFrom[edge.ToNodeID] = cameFromPair{edge, node.Item}
				pq.Insert(datastructure.PriorityQueueNode[int32]{Rank: newCost, Item: edge.ToNodeID})
			}
		}
	}

	return []datastructure.Coordinate{}, []datastructure.RoadEdge{}, -1, -1
}

func (rt *RouteAlgorithm) unwindPath(cameFrom map[int32]cameFromPair, from, to int32,
	eta, dist float64) ([]datastructure.Coordinate, []datastructure.RoadEdge, float64, float64) {

	path := make([]datastructure.Coordinate, 0)
	edges := make([]datastructure.RoadEdge, 0)

	current := to
	for current != from {
		pair := cameFrom[current]
		edges = append(edges, pair.Edge)

		pointsInBetween := util.ReverseG(pair.Edge.PointsInBetween)
		path = append(path, pointsInBetween...)

		current = pair.NodeID
	}

	path = util.ReverseG(path)
	edges = util.ReverseG(edges)
	return path, edges, eta, dist / 1000.0
}
