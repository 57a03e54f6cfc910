package geo

import (
	"github.com/danarpra/matchengine/pkg/datastructure"

	"github.com/golang/geo/s2"
)

// ProjectPointToLineCoord projects a point onto the segment between two
// line points and returns the projection coordinate.
func ProjectPointToLineCoord(linePointA, linePointB datastructure.Coordinate,
	point datastructure.Coordinate) datastructure.Coordinate {

	aS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(linePointA.Lat, linePointA.Lon))
	bS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(linePointB.Lat, linePointB.Lon))
	pointS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(point.Lat, point.Lon))

	projection := s2.Project(pointS2, aS2, bS2)
	projectionLatLng := s2.LatLngFromPoint(projection)
	return datastructure.NewCoordinate(projectionLatLng.Lat.Degrees(), projectionLatLng.Lng.Degrees())
}

// ProjectPointToEdgeGeometry finds the closest projection of point onto
// the polyline geometry and returns it with the index of the segment it
// falls on. Distances in meters.
func ProjectPointToEdgeGeometry(edgePoints []datastructure.Coordinate,
	point datastructure.Coordinate) (datastructure.Coordinate, int, float64) {

	bestProjection := edgePoints[0]
	bestIndex := 0
	minDist := CalculateHaversineDistance(point.Lat, point.Lon,
		edgePoints[0].Lat, edgePoints[0].Lon) * 1000

	for i := 0; i < len(edgePoints)-1; i++ {
		projection := ProjectPointToLineCoord(edgePoints[i], edgePoints[i+1], point)
		distance := CalculateHaversineDistance(point.Lat, point.Lon,
			projection.Lat, projection.Lon) * 1000

		if distance < minDist {
			minDist = distance
			bestProjection = projection
			bestIndex = i
		}
	}

	return bestProjection, bestIndex, minDist
}
