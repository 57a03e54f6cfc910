package matching

import (
	"github.com/danarpra/matchengine/pkg/datastructure"
	"github.com/danarpra/matchengine/pkg/trellis"
)

// Candidate is one road-segment hypothesis for one gps sample. It is
// the state type fed into the trellis search.
type Candidate struct {
	StateID       trellis.StateID
	ObservationID int

	EdgeID     int32
	FromNodeID int32
	ToNodeID   int32

	// ProjectionID is the graph node the candidate routes from, the
	// nearer endpoint of its edge.
	ProjectionID int32

	// ProjectionLoc is the observation projected onto the edge
	// geometry, DistToObservation the projection distance in meters.
	ProjectionLoc     datastructure.Coordinate
	DistToObservation float64
}

func (c *Candidate) ID() trellis.StateID {
	return c.StateID
}

func (c *Candidate) Time() trellis.Time {
	return trellis.Time(c.ObservationID)
}

// StateObservationPair groups one gps observation with its candidate
// states.
type StateObservationPair struct {
	Observation   datastructure.Coordinate
	ObservationID int
	State         []*Candidate
}
