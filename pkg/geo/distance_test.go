package geo_test

import (
	"testing"

	"github.com/danarpra/matchengine/pkg/datastructure"
	"github.com/danarpra/matchengine/pkg/geo"

	"github.com/stretchr/testify/assert"
)

func TestCalculateHaversineDistance(t *testing.T) {
	// jakarta monas to bundaran HI is about 2.2 km
	dist := geo.CalculateHaversineDistance(-6.175392, 106.827153, -6.195037, 106.823008)
	assert.InDelta(t, 2.23, dist, 0.1)

	assert.Equal(t, 0.0, geo.CalculateHaversineDistance(-6.175392, 106.827153, -6.175392, 106.827153))
}

func TestGetDestinationPoint(t *testing.T) {
	lat, lon := geo.GetDestinationPoint(0, 0, 90, 1.0)

	// one km due east stays on the equator
	assert.InDelta(t, 0.0, lat, 1e-9)
	assert.InDelta(t, 1.0, geo.CalculateHaversineDistance(0, 0, lat, lon), 1e-6)
}

func TestProjectPointToLineCoord(t *testing.T) {
	a := datastructure.NewCoordinate(0, 0)
	b := datastructure.NewCoordinate(0, 0.01)
	point := datastructure.NewCoordinate(0.001, 0.005)

	projection := geo.ProjectPointToLineCoord(a, b, point)
	assert.InDelta(t, 0.0, projection.Lat, 1e-6)
	assert.InDelta(t, 0.005, projection.Lon, 1e-6)
}

func TestProjectPointToEdgeGeometry(t *testing.T) {
	geometry := []datastructure.Coordinate{
		datastructure.NewCoordinate(0, 0),
		datastructure.NewCoordinate(0, 0.001),
		datastructure.NewCoordinate(0.001, 0.002),
	}
	point := datastructure.NewCoordinate(0.0002, 0.0005)

	projection, segmentIndex, dist := geo.ProjectPointToEdgeGeometry(geometry, point)
	assert.Equal(t, 0, segmentIndex)
	assert.InDelta(t, 0.0, projection.Lat, 1e-6)
	assert.InDelta(t, 22.2, dist, 1.0)
}
