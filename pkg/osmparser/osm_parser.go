package osmparser

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/danarpra/matchengine/pkg/datastructure"
	"github.com/danarpra/matchengine/pkg/geo"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// accepted highway classes with their fallback speeds (km/h)
var roadClassSpeed = map[string]float64{
	"motorway":       95,
	"motorway_link":  50,
	"trunk":          85,
	"trunk_link":     40,
	"primary":        60,
	"primary_link":   30,
	"secondary":      50,
	"secondary_link": 25,
	"tertiary":       40,
	"tertiary_link":  20,
	"unclassified":   25,
	"residential":    30,
	"living_street":  10,
	"service":        15,
}

type parsedWay struct {
	nodeIDs    []int64
	speed      float64
	streetName string
	oneway     bool
}

// ParsePBF reads an openstreetmap pbf extract into a road graph. Two
// passes: ways first to learn which nodes the road network uses, then
// nodes for their coordinates.
func ParsePBF(ctx context.Context, path string) (*datastructure.RoadGraph, error) {
	ways, usedNodes, err := scanWays(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Printf("parsed %d road ways", len(ways))

	nodeCoords, err := scanNodes(ctx, path, usedNodes)
	if err != nil {
		return nil, err
	}
	log.Printf("parsed %d road nodes", len(nodeCoords))

	return buildGraph(ways, nodeCoords), nil
}

func scanWays(ctx context.Context, path string) ([]parsedWay, map[int64]struct{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open pbf file: %w", err)
	}
	defer file.Close()

	scanner := osmpbf.New(ctx, file, runtime.GOMAXPROCS(-1))
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	ways := make([]parsedWay, 0)
	usedNodes := make(map[int64]struct{})

	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}

		speed, ok := roadClassSpeed[way.Tags.Find("highway")]
		if !ok {
			continue
		}
		if maxSpeed := parseMaxSpeed(way.Tags.Find("maxspeed")); maxSpeed > 0 {
			speed = maxSpeed
		}

		nodeIDs := make([]int64, 0, len(way.Nodes))
		for _, wayNode := range way.Nodes {
			nodeIDs = append(nodeIDs, int64(wayNode.ID))
			usedNodes[int64(wayNode.ID)] = struct{}{}
		}
		if len(nodeIDs) < 2 {
			continue
		}

		ways = append(ways, parsedWay{
			nodeIDs:    nodeIDs,
			speed:      speed,
			streetName: way.Tags.Find("name"),
			oneway:     way.Tags.Find("oneway") == "yes",
		})
	}

	return ways, usedNodes, scanner.Err()
}

func scanNodes(ctx context.Context, path string, usedNodes map[int64]struct{}) (map[int64]datastructure.Coordinate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pbf file: %w", err)
	}
	defer file.Close()

	scanner := osmpbf.New(ctx, file, runtime.GOMAXPROCS(-1))
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	nodeCoords := make(map[int64]datastructure.Coordinate, len(usedNodes))
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, used := usedNodes[int64(node.ID)]; !used {
			continue
		}
		nodeCoords[int64(node.ID)] = datastructure.NewCoordinate(node.Lat, node.Lon)
	}

	return nodeCoords, scanner.Err()
}

func buildGraph(ways []parsedWay, nodeCoords map[int64]datastructure.Coordinate) *datastructure.RoadGraph {
	graph := datastructure.NewRoadGraph()

	graphNodeIDs := make(map[int64]int32)
	streetNameIDs := make(map[string]int32)

	nodeID := func(osmID int64) (int32, bool) {
		coord, ok := nodeCoords[osmID]
		if !ok {
			return -1, false
		}
		if id, ok := graphNodeIDs[osmID]; ok {
			return id, true
		}
		id := int32(graph.NumNodes())
		graph.AddNode(datastructure.NewRoadNode(id, coord.Lat, coord.Lon))
		graphNodeIDs[osmID] = id
		return id, true
	}

	for _, way := range ways {
		streetName, ok := streetNameIDs[way.streetName]
		if !ok {
			streetName = int32(len(graph.StreetNames))
			graph.StreetNames = append(graph.StreetNames, way.streetName)
			streetNameIDs[way.streetName] = streetName
		}

		for i := 0; i < len(way.nodeIDs)-1; i++ {
			fromID, okFrom := nodeID(way.nodeIDs[i])
			toID, okTo := nodeID(way.nodeIDs[i+1])
			if !okFrom || !okTo {
				// incomplete extract, skip the segment
				continue
			}

			fromNode := graph.GetNode(fromID)
			toNode := graph.GetNode(toID)
			dist := geo.CalculateHaversineDistance(fromNode.Lat, fromNode.Lon,
				toNode.Lat, toNode.Lon) * 1000 // meter
			weight := dist / 1000 / way.speed * 60 // minutes

			geometry := []datastructure.Coordinate{
				datastructure.NewCoordinate(fromNode.Lat, fromNode.Lon),
				datastructure.NewCoordinate(toNode.Lat, toNode.Lon),
			}

			graph.AddEdge(datastructure.NewRoadEdge(int32(graph.NumOutEdges()),
				fromID, toID, dist, weight, streetName, geometry))
			if !way.oneway {
				graph.AddEdge(datastructure.NewRoadEdge(int32(graph.NumOutEdges()),
					toID, fromID, dist, weight, streetName,
					[]datastructure.Coordinate{geometry[1], geometry[0]}))
			}
		}
	}

	return graph
}

func parseMaxSpeed(tag string) float64 {
	var speed float64
	if _, err := fmt.Sscanf(tag, "%f", &speed); err != nil {
		return 0
	}
	return speed
}
