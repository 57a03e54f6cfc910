package trellis_test

import (
	"math"

	"github.com/danarpra/matchengine/pkg/trellis"
)

// testState is a bare candidate carrying only identity.
type testState struct {
	id   trellis.StateID
	time trellis.Time
}

func (s testState) ID() trellis.StateID {
	return s.id
}

func (s testState) Time() trellis.Time {
	return s.time
}

// tableModel answers costs from lookup tables. Missing entries yield
// the configured invalid sentinel (negative for the lazy engine, the
// matching infinity for the naive engine).
type tableModel struct {
	emissions   map[trellis.StateID]float64
	transitions map[[2]trellis.StateID]float64
	invalid     float64
}

func newTableModel(invalid float64) *tableModel {
	return &tableModel{
		emissions:   make(map[trellis.StateID]float64),
		transitions: make(map[[2]trellis.StateID]float64),
		invalid:     invalid,
	}
}

func (m *tableModel) EmissionCost(state trellis.State) float64 {
	if cost, ok := m.emissions[state.ID()]; ok {
		return cost
	}
	return m.invalid
}

func (m *tableModel) TransitionCost(left, right trellis.State) float64 {
	if cost, ok := m.transitions[[2]trellis.StateID{left.ID(), right.ID()}]; ok {
		return cost
	}
	return m.invalid
}

func (m *tableModel) CostSofar(prev, transition, emission float64) float64 {
	return prev + transition + emission
}

// trellisBuilder populates columns with dense ids, the way a host
// assigns state ids while snapping observations.
type trellisBuilder struct {
	search trellis.Search
	model  *tableModel
	nextID trellis.StateID
}

func newTrellisBuilder(search trellis.Search, model *tableModel) *trellisBuilder {
	return &trellisBuilder{search: search, model: model}
}

// addColumn places one state per emission into the column at time and
// registers its emission cost.
func (b *trellisBuilder) addColumn(time trellis.Time, emissions []float64) []trellis.StateID {
	ids := make([]trellis.StateID, 0, len(emissions))
	for _, emission := range emissions {
		id := b.nextID
		b.nextID++
		if _, err := b.search.AddState(time, testState{id: id, time: time}); err != nil {
			panic(err)
		}
		b.model.emissions[id] = emission
		ids = append(ids, id)
	}
	return ids
}

func (b *trellisBuilder) setTransition(from, to trellis.StateID, cost float64) {
	b.model.transitions[[2]trellis.StateID{from, to}] = cost
}

// collectPath drains a backward iterator into state ids, queried time
// first.
func collectPath(s trellis.Search, time trellis.Time) ([]trellis.StateID, error) {
	it, err := s.SearchPath(time)
	if err != nil {
		return nil, err
	}
	ids := make([]trellis.StateID, 0)
	for ; !it.Equal(s.PathEnd()); it = it.Next() {
		ids = append(ids, it.ID())
	}
	return ids, nil
}

var inf = math.Inf(1)
