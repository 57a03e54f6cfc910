package trellis

// Search is the contract shared by the naive and the lazy engine. A
// search is single threaded: one goroutine populates columns with
// AddState and then queries winners. SearchWinner answers are monotone,
// once a winner is produced for a time it never changes.
type Search interface {
	// AddState places a state into the column of the given time and
	// returns its id. States must be added with dense ids in time order.
	AddState(time Time, state State) (StateID, error)

	// SearchWinner returns the optimal state at the given time, or
	// InvalidStateID when no state at that time is reachable or the
	// time is past the last column.
	SearchWinner(time Time) (StateID, error)

	// Predecessor returns the chosen predecessor of a state whose label
	// has been materialized by prior SearchWinner calls, or
	// InvalidStateID at time 0 and across breakage boundaries.
	Predecessor(id StateID) StateID

	// State returns the state owned by the engine for the id, nil for
	// InvalidStateID.
	State(id StateID) State

	// AccumulatedCost returns the state's optimal accumulated cost, or
	// the engine's invalid sentinel for unknown states.
	AccumulatedCost(id StateID) float64

	// SearchPath returns a backward iterator positioned at the winner
	// of the given time, walking predecessor links down to time 0.
	SearchPath(time Time) (StateIterator, error)

	// PathEnd is the end sentinel for SearchPath iteration.
	PathEnd() StateIterator

	// Clear releases all states and derived caches.
	Clear()
}

// searchPath is the shared SearchPath implementation of both engines.
func searchPath(s Search, time Time) (StateIterator, error) {
	winner, err := s.SearchWinner(time)
	if err != nil {
		return s.PathEnd(), err
	}
	return StateIterator{search: s, id: winner, time: time}, nil
}
