package trellis

import "math"

// NaiveSearch is the textbook full-trellis Viterbi engine. It fills the
// trellis column by column with Bellman relaxation up to the requested
// time and keeps the complete label vector of every column, so any
// state's label can be answered afterwards. Supports both polarities.
type NaiveSearch struct {
	store stateStore
	model CostModel

	polarity Polarity

	winner  []StateID
	history [][]Label
}

func NewNaiveSearch(model CostModel, polarity Polarity) *NaiveSearch {
	return &NaiveSearch{model: model, polarity: polarity}
}

// InvalidCost is the unreachable sentinel: +Inf when minimizing, -Inf
// when maximizing.
func (n *NaiveSearch) InvalidCost() float64 {
	if n.polarity == Maximize {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

func (n *NaiveSearch) isInvalid(cost float64) bool {
	return cost == n.InvalidCost()
}

// better reports whether a should replace b under the engine polarity.
func (n *NaiveSearch) better(a, b Label) bool {
	if n.polarity == Maximize {
		return b.less(a)
	}
	return a.less(b)
}

func (n *NaiveSearch) AddState(time Time, state State) (StateID, error) {
	return n.store.addState(time, state)
}

func (n *NaiveSearch) State(id StateID) State {
	return n.store.state(id)
}

func (n *NaiveSearch) Clear() {
	n.store.clear()
	n.winner = nil
	n.history = nil
}

func (n *NaiveSearch) SearchWinner(target Time) (StateID, error) {
	if target < 0 || int(target) >= len(n.store.columns) {
		return InvalidStateID, nil
	}

	// Use the cache
	if int(target) < len(n.winner) {
		return n.winner[target], nil
	}

	for time := Time(len(n.winner)); time <= target; time++ {
		column := n.store.columns[time]

		var labels []Label
		if time == 0 {
			labels = n.initLabels(column, true)
		} else {
			labels = n.initLabels(column, false)
			n.updateLabels(labels, n.history[len(n.history)-1])
		}

		winner := n.findWinner(labels)
		if winner == InvalidStateID && time > 0 {
			// Not reachable from the previous column, restart from
			// the best emission cost only.
			labels = n.initLabels(column, true)
			winner = n.findWinner(labels)
		}
		n.winner = append(n.winner, winner)
		n.history = append(n.history, labels)
	}

	return n.winner[target], nil
}

func (n *NaiveSearch) Predecessor(id StateID) StateID {
	label, ok := n.label(id)
	if !ok {
		return InvalidStateID
	}
	return label.Predecessor
}

func (n *NaiveSearch) AccumulatedCost(id StateID) float64 {
	label, ok := n.label(id)
	if !ok {
		return n.InvalidCost()
	}
	return label.CostSofar
}

func (n *NaiveSearch) SearchPath(time Time) (StateIterator, error) {
	return searchPath(n, time)
}

func (n *NaiveSearch) PathEnd() StateIterator {
	return endIterator(n)
}

func (n *NaiveSearch) initLabels(column []StateID, useEmissionCost bool) []Label {
	labels := make([]Label, 0, len(column))
	for _, id := range column {
		initialCost := n.InvalidCost()
		if useEmissionCost {
			emissionCost := n.model.EmissionCost(n.store.state(id))
			if !n.isInvalid(emissionCost) {
				initialCost = emissionCost
			}
		}
		labels = append(labels, NewLabel(initialCost, id, InvalidStateID))
	}
	return labels
}

func (n *NaiveSearch) updateLabels(labels []Label, prevLabels []Label) {
	for _, prevLabel := range prevLabels {
		prevCostSofar := prevLabel.CostSofar
		if n.isInvalid(prevCostSofar) {
			continue
		}
		prevState := n.store.state(prevLabel.State)

		for i := range labels {
			state := n.store.state(labels[i].State)

			emissionCost := n.model.EmissionCost(state)
			if n.isInvalid(emissionCost) {
				continue
			}

			transitionCost := n.model.TransitionCost(prevState, state)
			if n.isInvalid(transitionCost) {
				continue
			}

			costSofar := n.model.CostSofar(prevCostSofar, transitionCost, emissionCost)
			if n.isInvalid(costSofar) {
				continue
			}

			candidate := NewLabel(costSofar, labels[i].State, prevLabel.State)
			if n.better(candidate, labels[i]) {
				labels[i] = candidate
			}
		}
	}
}

func (n *NaiveSearch) findWinner(labels []Label) StateID {
	winner := InvalidStateID
	var best Label
	for _, label := range labels {
		if n.isInvalid(label.CostSofar) {
			continue
		}
		if winner == InvalidStateID || n.better(label, best) {
			winner = label.State
			best = label
		}
	}
	return winner
}

// label linear searches a state's label within its column history.
func (n *NaiveSearch) label(id StateID) (Label, bool) {
	state := n.store.state(id)
	if state == nil {
		return Label{}, false
	}
	time := state.Time()
	if int(time) >= len(n.history) {
		return Label{}, false
	}
	for _, label := range n.history[time] {
		if label.State == id {
			return label, true
		}
	}
	return Label{}, false
}
