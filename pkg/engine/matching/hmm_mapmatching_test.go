package matching_test

import (
	"testing"

	"github.com/danarpra/matchengine/pkg/datastructure"
	"github.com/danarpra/matchengine/pkg/engine/matching"
	"github.com/danarpra/matchengine/pkg/engine/routing"

	"github.com/stretchr/testify/assert"
)

// buildChainGraph lays a road as a chain of nodes along constant lat,
// with edges in both directions.
func buildChainGraph(g *datastructure.RoadGraph, lat float64, lons []float64) []int32 {
	nodeIDs := make([]int32, 0, len(lons))
	for _, lon := range lons {
		id := int32(g.NumNodes())
		g.AddNode(datastructure.NewRoadNode(id, lat, lon))
		nodeIDs = append(nodeIDs, id)
	}

	for i := 0; i < len(nodeIDs)-1; i++ {
		from := g.GetNode(nodeIDs[i])
		to := g.GetNode(nodeIDs[i+1])
		distMeter := 1000 * distanceKM(from, to)
		geometry := []datastructure.Coordinate{
			datastructure.NewCoordinate(from.Lat, from.Lon),
			datastructure.NewCoordinate(to.Lat, to.Lon),
		}

		forwardID := int32(g.NumOutEdges())
		g.AddEdge(datastructure.NewRoadEdge(forwardID, from.ID, to.ID, distMeter, distMeter/500, -1, geometry))
		backwardID := int32(g.NumOutEdges())
		g.AddEdge(datastructure.NewRoadEdge(backwardID, to.ID, from.ID, distMeter, distMeter/500,
			-1, []datastructure.Coordinate{geometry[1], geometry[0]}))
	}
	return nodeIDs
}

func distanceKM(a, b datastructure.RoadNode) float64 {
	// small offsets at the equator, 1 degree of lon is close to 111 km
	dLat := (a.Lat - b.Lat) * 111.0
	dLon := (a.Lon - b.Lon) * 111.0
	if dLat < 0 {
		dLat = -dLat
	}
	if dLon < 0 {
		dLon = -dLon
	}
	return dLat + dLon
}

func candidateOnEdge(edgeID int32) *matching.Candidate {
	return &matching.Candidate{EdgeID: edgeID}
}

func TestMapMatchPrefersNearbyRoad(t *testing.T) {
	g := datastructure.NewRoadGraph()
	// the driven road at lat 0, a parallel decoy road 0.004 degree north
	buildChainGraph(g, 0, []float64{0, 0.001, 0.002, 0.003})
	buildChainGraph(g, 0.004, []float64{0, 0.001, 0.002, 0.003})

	hmm := matching.NewHMMMapMatching(g, routing.NewRouteAlgorithm(g))

	// forward edges of the true road are 0, 2, 4; of the decoy 6, 8, 10
	trueEdges := []int32{0, 2, 4}
	decoyEdges := []int32{6, 8, 10}

	gps := make([]matching.StateObservationPair, 0)
	for i := 0; i < 3; i++ {
		observation := datastructure.NewCoordinate(0.0001, float64(i)*0.001+0.0004)
		gps = append(gps, matching.StateObservationPair{
			Observation: observation,
			State: []*matching.Candidate{
				candidateOnEdge(trueEdges[i]),
				candidateOnEdge(decoyEdges[i]),
			},
		})
	}

	result, err := hmm.MapMatch(gps)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(result.Path))
	assert.Equal(t, 0, result.RestartCount)

	for i, edge := range result.Edges {
		assert.Equal(t, trueEdges[i], edge.EdgeID)
	}
	// matched projections sit on the driven road, not the decoy
	for _, p := range result.Path {
		assert.InDelta(t, 0.0, p.Lat, 1e-6)
	}
}

func TestMapMatchBridgesDisconnectedRoads(t *testing.T) {
	g := datastructure.NewRoadGraph()
	// two roads with no connection in between
	buildChainGraph(g, 0, []float64{0, 0.001})
	buildChainGraph(g, 0, []float64{0.1, 0.101})

	hmm := matching.NewHMMMapMatching(g, routing.NewRouteAlgorithm(g))

	gps := []matching.StateObservationPair{
		{
			Observation: datastructure.NewCoordinate(0.0001, 0.0002),
			State:       []*matching.Candidate{candidateOnEdge(0)},
		},
		{
			Observation: datastructure.NewCoordinate(0.0001, 0.0008),
			State:       []*matching.Candidate{candidateOnEdge(0)},
		},
		{
			Observation: datastructure.NewCoordinate(0.0001, 0.1002),
			State:       []*matching.Candidate{candidateOnEdge(2)},
		},
		{
			Observation: datastructure.NewCoordinate(0.0001, 0.1008),
			State:       []*matching.Candidate{candidateOnEdge(2)},
		},
	}

	result, err := hmm.MapMatch(gps)
	assert.Nil(t, err)

	// the gap severs the trellis, the search restarts after it and
	// still matches every observation
	assert.Equal(t, 4, len(result.Path))
	assert.Equal(t, 1, result.RestartCount)
}

func TestMapMatchNoObservations(t *testing.T) {
	g := datastructure.NewRoadGraph()
	hmm := matching.NewHMMMapMatching(g, routing.NewRouteAlgorithm(g))

	_, err := hmm.MapMatch(nil)
	assert.ErrorIs(t, err, matching.ErrNoObservations)
}
