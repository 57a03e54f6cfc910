package datastructure

import "fmt"

// RoadNode is one intersection or geometry split point of the road
// network.
type RoadNode struct {
	ID  int32
	Lat float64
	Lon float64
}

func NewRoadNode(id int32, lat, lon float64) RoadNode {
	return RoadNode{ID: id, Lat: lat, Lon: lon}
}

// RoadEdge is a directed road segment between two road nodes. Dist is
// the segment length in meters, Weight the travel time in minutes.
type RoadEdge struct {
	EdgeID     int32
	FromNodeID int32
	ToNodeID   int32
	Dist       float64
	Weight     float64
	StreetName int32

	// PointsInBetween is the segment geometry, from node included,
	// to node included.
	PointsInBetween []Coordinate
}

func NewRoadEdge(edgeID, fromNodeID, toNodeID int32, dist, weight float64,
	streetName int32, pointsInBetween []Coordinate) RoadEdge {
	return RoadEdge{
		EdgeID:          edgeID,
		FromNodeID:      fromNodeID,
		ToNodeID:        toNodeID,
		Dist:            dist,
		Weight:          weight,
		StreetName:      streetName,
		PointsInBetween: pointsInBetween,
	}
}

// RoadGraph is the in-memory road network: nodes, directed edges and a
// first-out adjacency index per node.
type RoadGraph struct {
	Nodes         []RoadNode
	OutEdges      []RoadEdge
	FirstOutEdges [][]int32
	StreetNames   []string
}

func NewRoadGraph() *RoadGraph {
	return &RoadGraph{}
}

func (g *RoadGraph) AddNode(node RoadNode) int32 {
	g.Nodes = append(g.Nodes, node)
	g.FirstOutEdges = append(g.FirstOutEdges, nil)
	return node.ID
}

func (g *RoadGraph) AddEdge(edge RoadEdge) int32 {
	g.OutEdges = append(g.OutEdges, edge)
	g.FirstOutEdges[edge.FromNodeID] = append(g.FirstOutEdges[edge.FromNodeID], edge.EdgeID)
	return edge.EdgeID
}

func (g *RoadGraph) GetNode(nodeID int32) RoadNode {
	return g.Nodes[nodeID]
}

func (g *RoadGraph) GetOutEdge(edgeID int32) RoadEdge {
	return g.OutEdges[edgeID]
}

func (g *RoadGraph) GetNodeFirstOutEdges(nodeID int32) []int32 {
	return g.FirstOutEdges[nodeID]
}

func (g *RoadGraph) NumNodes() int {
	return len(g.Nodes)
}

func (g *RoadGraph) NumOutEdges() int {
	return len(g.OutEdges)
}

func (g *RoadGraph) GetEdgePointsInBetween(edgeID int32) []Coordinate {
	return g.OutEdges[edgeID].PointsInBetween
}

func (g *RoadGraph) GetStreetNameFromID(streetName int32) string {
	if streetName < 0 || int(streetName) >= len(g.StreetNames) {
		return ""
	}
	return g.StreetNames[streetName]
}

func (g *RoadGraph) validate() error {
	for i, edge := range g.OutEdges {
		if edge.EdgeID != int32(i) {
			return fmt.Errorf("edge id %d stored at index %d", edge.EdgeID, i)
		}
		if int(edge.FromNodeID) >= len(g.Nodes) || int(edge.ToNodeID) >= len(g.Nodes) {
			return fmt.Errorf("edge %d references missing node", edge.EdgeID)
		}
	}
	return nil
}
