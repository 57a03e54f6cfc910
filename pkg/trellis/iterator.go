package trellis

// StateIterator walks a search result backward in time, from the winner
// at the queried time down to time 0. Across a breakage boundary the
// predecessor link is absent; the iterator then resumes from the winner
// cache of the far side, which may trigger further search work.
type StateIterator struct {
	search Search
	id     StateID
	time   Time
}

func endIterator(s Search) StateIterator {
	return StateIterator{search: s, id: InvalidStateID, time: InvalidTime}
}

// Valid reports whether the iterator points at a state. An invalid,
// non-end iterator marks a time at which no state was found.
func (it StateIterator) Valid() bool {
	return it.id != InvalidStateID
}

func (it StateIterator) IsEnd() bool {
	return it.id == InvalidStateID && it.time == InvalidTime
}

func (it StateIterator) ID() StateID {
	return it.id
}

func (it StateIterator) Time() Time {
	return it.time
}

// State returns the state under the iterator, nil when not Valid.
func (it StateIterator) State() State {
	return it.search.State(it.id)
}

func (it StateIterator) Equal(other StateIterator) bool {
	return it.id == other.id && it.time == other.time && it.search == other.search
}

// Next steps one time backward and returns the advanced iterator. At
// time 0 it returns the end sentinel.
func (it StateIterator) Next() StateIterator {
	if it.IsEnd() {
		return it
	}
	return it.goback()
}

func (it StateIterator) goback() StateIterator {
	if it.time <= 0 {
		return endIterator(it.search)
	}

	next := StateIterator{search: it.search}
	next.time = it.time - 1
	next.id = it.search.Predecessor(it.id)
	if next.id == InvalidStateID {
		// A breakage boundary, resume from the winner on the far side.
		winner, err := it.search.SearchWinner(next.time)
		if err != nil {
			return endIterator(it.search)
		}
		next.id = winner
	}
	if next.id != InvalidStateID && it.search.State(next.id).Time() != next.time {
		return endIterator(it.search)
	}
	return next
}
