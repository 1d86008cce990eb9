package algo

import (
	"sort"
	"sync"

	"github.com/pdatta1/PathRouting/internal/core"
)

// ReservationTable records which space-time cells are claimed by committed
// trajectories. It is safe for concurrent use; planners sharing one table still
// need to run one at a time to keep their reservations consistent.
type ReservationTable struct {
	mu    sync.RWMutex
	ticks map[int]map[core.Coords]struct{}
	count int
}

// NewReservationTable creates an empty table.
func NewReservationTable() *ReservationTable {
	return &ReservationTable{ticks: make(map[int]map[core.Coords]struct{})}
}

// IsReserved reports whether (x, y, z) is claimed at tick.
func (r *ReservationTable) IsReserved(tick, x, y, z int) bool {
	return r.isReserved(tick, core.Coords{X: x, Y: y, Z: z})
}

func (r *ReservationTable) isReserved(tick int, c core.Coords) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ticks[tick][c]
	return ok
}

// Reserve claims (x, y, z) at tick. Reserving a claimed cell is a no-op.
func (r *ReservationTable) Reserve(tick, x, y, z int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reserveLocked(tick, core.Coords{X: x, Y: y, Z: z})
}

// ReserveAll claims every cell.
func (r *ReservationTable) ReserveAll(cells []core.Cell) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cells {
		r.reserveLocked(c.Tick, c.Coords)
	}
}

func (r *ReservationTable) reserveLocked(tick int, c core.Coords) {
	bucket, ok := r.ticks[tick]
	if !ok {
		bucket = make(map[core.Coords]struct{})
		r.ticks[tick] = bucket
	}
	if _, ok := bucket[c]; ok {
		return
	}
	bucket[c] = struct{}{}
	r.count++
}

// Len returns the number of reserved cells.
func (r *ReservationTable) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Ticks returns the ticks with at least one reservation, ascending.
func (r *ReservationTable) Ticks() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, 0, len(r.ticks))
	for t, bucket := range r.ticks {
		if len(bucket) > 0 {
			out = append(out, t)
		}
	}
	sort.Ints(out)
	return out
}

// Cells returns the coordinates reserved at tick, ordered by z, y, x.
func (r *ReservationTable) Cells(tick int) []core.Coords {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Coords, 0, len(r.ticks[tick]))
	for c := range r.ticks[tick] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}
