package trellis_test

import (
	"testing"

	"github.com/danarpra/matchengine/pkg/trellis"

	"golang.org/x/exp/rand"
)

func generateRandomInteger(min int, max int) int {
	return min + rand.Intn(max-min)
}

func TestSPQueueMinPolarity(t *testing.T) {
	pq := trellis.NewSPQueue(trellis.Minimize)
	if pq == nil {
		t.Errorf("SPQueue is nil")
	}

	for i := 0; i < 10000; i++ {
		label := trellis.NewLabel(float64(generateRandomInteger(0, 10000)), trellis.StateID(i), trellis.InvalidStateID)
		pq.Push(label)
	}

	prevLabel, ok := pq.Pop()
	if !ok {
		t.Errorf("error pop min")
	}

	for i := 1; i < 10000; i++ {
		label, ok := pq.Pop()
		if !ok {
			t.Errorf("error pop min")
		}

		if prevLabel.CostSofar > label.CostSofar {
			t.Errorf("SPQueue is not sorted")
		}
		prevLabel = label
	}

	if !pq.Empty() {
		t.Errorf("SPQueue should be empty")
	}
}

func TestSPQueueMaxPolarity(t *testing.T) {
	pq := trellis.NewSPQueue(trellis.Maximize)

	for i := 0; i < 10000; i++ {
		label := trellis.NewLabel(float64(generateRandomInteger(0, 10000)), trellis.StateID(i), trellis.InvalidStateID)
		pq.Push(label)
	}

	prevLabel, ok := pq.Pop()
	if !ok {
		t.Errorf("error pop max")
	}

	for i := 1; i < 10000; i++ {
		label, ok := pq.Pop()
		if !ok {
			t.Errorf("error pop max")
		}

		if prevLabel.CostSofar < label.CostSofar {
			t.Errorf("SPQueue is not sorted")
		}
		prevLabel = label
	}
}

func TestSPQueueKeepsBestLabelPerState(t *testing.T) {
	pq := trellis.NewSPQueue(trellis.Minimize)

	pq.Push(trellis.NewLabel(5, 7, trellis.InvalidStateID))
	pq.Push(trellis.NewLabel(3, 7, 1))
	pq.Push(trellis.NewLabel(9, 7, 2))

	if pq.Size() != 1 {
		t.Errorf("want one label per state, got %d", pq.Size())
	}

	label, ok := pq.Pop()
	if !ok {
		t.Errorf("error pop")
	}
	if label.CostSofar != 3 || label.Predecessor != trellis.StateID(1) {
		t.Errorf("want the cheapest label kept, got %+v", label)
	}
}

func TestSPQueueClear(t *testing.T) {
	pq := trellis.NewSPQueue(trellis.Minimize)
	for i := 0; i < 100; i++ {
		pq.Push(trellis.NewLabel(float64(i), trellis.StateID(i), trellis.InvalidStateID))
	}
	pq.Clear()
	if !pq.Empty() {
		t.Errorf("SPQueue should be empty after clear")
	}
	if _, ok := pq.Top(); ok {
		t.Errorf("Top on empty SPQueue should report not ok")
	}
}
