package service

import (
	"github.com/danarpra/matchengine/pkg/datastructure"
	"github.com/danarpra/matchengine/pkg/engine/matching"
	"github.com/danarpra/matchengine/pkg/kv"
	"github.com/danarpra/matchengine/pkg/snap"
)

type Matching interface {
	MapMatch(gps []matching.StateObservationPair) (matching.MatchResult, error)
}

type RoadSnapper interface {
	SnapToRoads(p datastructure.Point) []*snap.EdgeObject
	SnapToRoadsWithinRadius(p datastructure.Point, radius float64, k int) []*snap.EdgeObject
}

type KVDB interface {
	GetNearestRoadSegmentsFromPointCoord(lat, lon float64) ([]kv.KVEdge, error)
}

type Graph interface {
	GetOutEdge(edgeID int32) datastructure.RoadEdge
}
