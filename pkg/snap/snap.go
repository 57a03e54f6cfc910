package snap

import (
	"math"

	"github.com/danarpra/matchengine/pkg/datastructure"

	"github.com/dhconnelly/rtreego"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50

	// search box half-size in degrees, roughly 300 meter (from the fmm
	// paper)
	minRadius = 0.003
)

// EdgeObject is one road segment stored in the snapping index.
type EdgeObject struct {
	EdgeID     int32
	FromNodeID int32
	ToNodeID   int32
	Center     datastructure.Coordinate

	bounds rtreego.Rect
}

func (o *EdgeObject) Bounds() rtreego.Rect {
	return o.bounds
}

// RoadSnapper finds candidate road segments near a gps sample.
type RoadSnapper struct {
	tree *rtreego.Rtree
}

func NewRoadSnapper() *RoadSnapper {
	return &RoadSnapper{
		tree: rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren),
	}
}

// BuildIndex inserts every edge of the graph, bounded by its geometry.
func (rs *RoadSnapper) BuildIndex(graph *datastructure.RoadGraph) error {
	for i := 0; i < graph.NumOutEdges(); i++ {
		if err := rs.InsertEdge(graph.GetOutEdge(int32(i))); err != nil {
			return err
		}
	}
	return nil
}

func (rs *RoadSnapper) InsertEdge(edge datastructure.RoadEdge) error {
	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	for _, p := range edge.PointsInBetween {
		minLat = math.Min(minLat, p.Lat)
		minLon = math.Min(minLon, p.Lon)
		maxLat = math.Max(maxLat, p.Lat)
		maxLon = math.Max(maxLon, p.Lon)
	}

	bounds, err := rtreego.NewRect(rtreego.Point{minLat, minLon},
		[]float64{math.Max(maxLat-minLat, 1e-6), math.Max(maxLon-minLon, 1e-6)})
	if err != nil {
		return err
	}

	center := edge.PointsInBetween[0]
	rs.tree.Insert(&EdgeObject{
		EdgeID:     edge.EdgeID,
		FromNodeID: edge.FromNodeID,
		ToNodeID:   edge.ToNodeID,
		Center:     center,
		bounds:     bounds,
	})
	return nil
}

// SnapToRoads returns the road segments intersecting a search box
// around the point, growing the box a couple of times when nothing is
// found.
func (rs *RoadSnapper) SnapToRoads(p datastructure.Point) []*EdgeObject {
	radius := minRadius
	nearestEdges := rs.searchBox(p, radius)

	counter := 0
	for counter < 2 && len(nearestEdges) == 0 {
		radius += 0.0005
		counter++
		nearestEdges = rs.searchBox(p, radius)
	}

	return nearestEdges
}

// SnapToRoadsWithinRadius returns at most k segments inside the radius
// box, nearest first.
func (rs *RoadSnapper) SnapToRoadsWithinRadius(p datastructure.Point, radius float64, k int) []*EdgeObject {
	spatials := rs.tree.NearestNeighbors(k, rtreego.Point{p.Lat, p.Lon})

	nearestEdges := make([]*EdgeObject, 0, len(spatials))
	for _, spatial := range spatials {
		if spatial == nil {
			continue
		}
		edge := spatial.(*EdgeObject)
		if math.Abs(edge.Center.Lat-p.Lat) > radius || math.Abs(edge.Center.Lon-p.Lon) > radius {
			continue
		}
		nearestEdges = append(nearestEdges, edge)
	}
	return nearestEdges
}

func (rs *RoadSnapper) searchBox(p datastructure.Point, radius float64) []*EdgeObject {
	bound, err := rtreego.NewRect(rtreego.Point{p.Lat - radius, p.Lon - radius},
		[]float64{2 * radius, 2 * radius})
	if err != nil {
		return nil
	}

	spatials := rs.tree.SearchIntersect(bound)
	nearestEdges := make([]*EdgeObject, 0, len(spatials))
	for _, spatial := range spatials {
		nearestEdges = append(nearestEdges, spatial.(*EdgeObject))
	}
	return nearestEdges
}
