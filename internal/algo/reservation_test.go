package algo

import (
	"sync"
	"testing"

	"github.com/pdatta1/PathRouting/internal/core"
)

func TestReservationIdempotent(t *testing.T) {
	r := NewReservationTable()

	if r.IsReserved(3, 1, 2, 0) {
		t.Fatal("empty table reports a reservation")
	}
	r.Reserve(3, 1, 2, 0)
	r.Reserve(3, 1, 2, 0)

	if !r.IsReserved(3, 1, 2, 0) {
		t.Error("cell not reserved after Reserve")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
	if r.IsReserved(4, 1, 2, 0) || r.IsReserved(3, 1, 2, 1) {
		t.Error("reservation leaked to another tick or level")
	}
}

func TestReservationIntrospection(t *testing.T) {
	r := NewReservationTable()
	r.ReserveAll([]core.Cell{
		{Tick: 2, Coords: core.Coords{X: 1, Y: 1}},
		{Tick: 0, Coords: core.Coords{X: 3}},
		{Tick: 2, Coords: core.Coords{X: 0, Y: 1}},
		{Tick: 2, Coords: core.Coords{X: 0, Y: 0, Z: 1}},
	})

	ticks := r.Ticks()
	if len(ticks) != 2 || ticks[0] != 0 || ticks[1] != 2 {
		t.Errorf("Ticks = %v, want [0 2]", ticks)
	}

	cells := r.Cells(2)
	want := []core.Coords{{X: 0, Y: 1}, {X: 1, Y: 1}, {Z: 1}}
	if len(cells) != len(want) {
		t.Fatalf("Cells(2) = %v, want %v", cells, want)
	}
	for i := range want {
		if cells[i] != want[i] {
			t.Errorf("Cells(2)[%d] = %s, want %s", i, cells[i], want[i])
		}
	}
	if got := r.Cells(9); len(got) != 0 {
		t.Errorf("Cells(9) = %v, want empty", got)
	}
}

func TestReservationConcurrent(t *testing.T) {
	r := NewReservationTable()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Reserve(i, i%10, 0, 0)
				_ = r.IsReserved(i, 0, 0, 0)
			}
		}()
	}
	wg.Wait()
	if r.Len() != 100 {
		t.Errorf("Len = %d, want 100", r.Len())
	}
}
