package trellis

import "fmt"

// ViterbiSearch is the incremental best-first engine. It expands the
// implicit transition graph in cost order (Dijkstra), settles each state
// at most once, and extends the trellis only as far as queries demand.
// Work is reused across successive SearchWinner calls. Minimization
// only: costs must be non-negative and CostSofar monotone, a state
// popped for settlement twice is reported as an optimality violation.
type ViterbiSearch struct {
	store stateStore
	model CostModel

	queue   *SPQueue
	scanned map[StateID]Label

	// unreachedStates[t] holds the not yet settled states of column t.
	unreachedStates [][]StateID

	winner []StateID

	// Labels popped at a time earlier than earliestTime cannot be part
	// of any path to a future winner and are discarded unscanned.
	earliestTime Time
}

func NewViterbiSearch(model CostModel) *ViterbiSearch {
	return &ViterbiSearch{
		model:   model,
		queue:   NewSPQueue(Minimize),
		scanned: make(map[StateID]Label),
	}
}

// IsInvalidCost reports the unreachable sentinel. Negative costs are
// reserved as the sentinel, the model may narrow this further.
func (vs *ViterbiSearch) IsInvalidCost(cost float64) bool {
	if d, ok := vs.model.(InvalidCostDiscriminator); ok {
		return d.IsInvalidCost(cost)
	}
	return cost < 0
}

// InvalidCost is the sentinel returned by AccumulatedCost for states
// that were never settled.
func (vs *ViterbiSearch) InvalidCost() float64 {
	return -1
}

func (vs *ViterbiSearch) AddState(time Time, state State) (StateID, error) {
	id, err := vs.store.addState(time, state)
	if err != nil {
		return id, err
	}
	for int(time) >= len(vs.unreachedStates) {
		vs.unreachedStates = append(vs.unreachedStates, nil)
	}
	vs.unreachedStates[time] = append(vs.unreachedStates[time], id)
	return id, nil
}

func (vs *ViterbiSearch) State(id StateID) State {
	return vs.store.state(id)
}

func (vs *ViterbiSearch) Clear() {
	vs.earliestTime = 0
	vs.queue.Clear()
	vs.scanned = make(map[StateID]Label)
	vs.unreachedStates = nil
	vs.winner = nil
	vs.store.clear()
}

func (vs *ViterbiSearch) SearchWinner(time Time) (StateID, error) {
	// Use the cache
	if time >= 0 && int(time) < len(vs.winner) {
		return vs.winner[time], nil
	}

	if time < 0 || int(time) >= len(vs.unreachedStates) {
		return InvalidStateID, nil
	}

	// Continue the last search if possible
	searchedTime, err := vs.iterativeSearch(time, false)
	if err != nil {
		return InvalidStateID, err
	}

	for searchedTime < time {
		// searchedTime < target implies a breakage during the last
		// search, request a new start
		searchedTime, err = vs.iterativeSearch(time, true)
		if err != nil {
			return InvalidStateID, err
		}
	}

	if int(time) < len(vs.winner) {
		return vs.winner[time], nil
	}
	return InvalidStateID, nil
}

func (vs *ViterbiSearch) Predecessor(id StateID) StateID {
	if label, ok := vs.scanned[id]; ok {
		return label.Predecessor
	}
	return InvalidStateID
}

func (vs *ViterbiSearch) AccumulatedCost(id StateID) float64 {
	if label, ok := vs.scanned[id]; ok {
		return label.CostSofar
	}
	return vs.InvalidCost()
}

func (vs *ViterbiSearch) SearchPath(time Time) (StateIterator, error) {
	return searchPath(vs, time)
}

func (vs *ViterbiSearch) PathEnd() StateIterator {
	return endIterator(vs)
}

// initQueue reseeds the queue with emission-only labels from a column.
// Used at the very first search and after a breakage.
func (vs *ViterbiSearch) initQueue(column []StateID) {
	vs.queue.Clear()
	for _, id := range column {
		emissionCost := vs.model.EmissionCost(vs.store.state(id))
		if vs.IsInvalidCost(emissionCost) {
			continue
		}
		vs.queue.Push(NewLabel(emissionCost, id, InvalidStateID))
	}
}

func (vs *ViterbiSearch) addSuccessorsToQueue(id StateID) error {
	state := vs.store.state(id)
	if int(state.Time())+1 >= len(vs.unreachedStates) {
		return fmt.Errorf("the state at time %d is impossible to have successors", state.Time())
	}

	label, ok := vs.scanned[id]
	if !ok {
		return fmt.Errorf("the state %d must be scanned", id)
	}
	costSofar := label.CostSofar
	if vs.IsInvalidCost(costSofar) {
		// Invalid labels are filtered before they enter the queue
		return fmt.Errorf("impossible to get invalid cost from scanned labels")
	}

	// Settled states have been removed from unreachedStates, so no
	// reached state can be relaxed twice.
	for _, nextID := range vs.unreachedStates[state.Time()+1] {
		nextState := vs.store.state(nextID)

		emissionCost := vs.model.EmissionCost(nextState)
		if vs.IsInvalidCost(emissionCost) {
			continue
		}

		transitionCost := vs.model.TransitionCost(state, nextState)
		if vs.IsInvalidCost(transitionCost) {
			continue
		}

		nextCostSofar := vs.model.CostSofar(costSofar, transitionCost, emissionCost)
		if vs.IsInvalidCost(nextCostSofar) {
			continue
		}

		vs.queue.Push(NewLabel(nextCostSofar, nextID, id))
	}
	return nil
}

// iterativeSearch runs one best-first expansion toward target. It
// returns the last time a winner (or proven absence) was recorded for;
// a returned time short of target means the queue drained on a breakage.
func (vs *ViterbiSearch) iterativeSearch(target Time, requestNewStart bool) (Time, error) {
	if int(target) >= len(vs.unreachedStates) {
		if len(vs.unreachedStates) == 0 {
			return InvalidTime, ErrNoStates
		}
		return InvalidTime, fmt.Errorf("the target time %d is beyond the maximum allowed time %d",
			target, len(vs.unreachedStates)-1)
	}

	// Nothing to do, the winner at the target time is already known
	if int(target) < len(vs.winner) {
		return target, nil
	}

	// Precondition here: winner.size() <= target < unreachedStates.size()

	var source Time
	if !requestNewStart && len(vs.winner) > 0 && vs.winner[len(vs.winner)-1] != InvalidStateID {
		// Continue the last search from its settled winner
		source = Time(len(vs.winner) - 1)
		if err := vs.addSuccessorsToQueue(vs.winner[source]); err != nil {
			return InvalidTime, err
		}
	} else {
		source = Time(len(vs.winner))
		vs.initQueue(vs.unreachedStates[source])
	}

	searchedTime := source

	for !vs.queue.Empty() {
		// Pop the cheapest label. It is not necessarily the winner at
		// its time unless it is the first one settled there.
		label, _ := vs.queue.Pop()
		id := label.State
		time := vs.store.state(id).Time()

		// Labels earlier than the earliest time cannot be part of the
		// path to any future winner
		if time < vs.earliestTime {
			continue
		}

		// Settle it: remember its optimal cost and predecessor
		if _, settled := vs.scanned[id]; settled {
			return InvalidTime, ErrOptimality
		}
		vs.scanned[id] = label

		// Remove it from its column
		column := vs.unreachedStates[time]
		found := false
		for i, unreachedID := range column {
			if unreachedID == id {
				vs.unreachedStates[time] = append(column[:i], column[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return InvalidTime, fmt.Errorf("the state %d must exist in column %d", id, time)
		}

		// The column is empty now, earlier labels can no longer reach
		// future winners optimally, so everything before time+1 is stale
		if len(vs.unreachedStates[time]) == 0 {
			vs.earliestTime = time + 1
		}

		// First arrival at this column is the winner at this time
		if int(time) >= len(vs.winner) {
			if int(time) != len(vs.winner) {
				return InvalidTime, fmt.Errorf("found a state from the future time %d", time)
			}
			vs.winner = append(vs.winner, id)
		}

		if time > searchedTime {
			searchedTime = time
		}

		// Stop as soon as the winner at the target time is known, its
		// successors are pushed on the next search
		if target <= searchedTime {
			break
		}

		if err := vs.addSuccessorsToQueue(id); err != nil {
			return InvalidTime, err
		}
	}

	// Record absence for every time the search drained past, so the
	// next search restarts from the first missing column
	for len(vs.winner) <= int(searchedTime) {
		vs.winner = append(vs.winner, InvalidStateID)
	}

	// Postcondition: searchedTime == winner.size()-1 && searchedTime <= target.
	// searchedTime < target means a breakage: no connection from the
	// column at searchedTime to the one after it.

	return searchedTime, nil
}
