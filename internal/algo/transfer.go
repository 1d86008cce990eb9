package algo

import (
	"fmt"

	"github.com/pdatta1/PathRouting/internal/core"
)

// FindNearestTransfer returns the VTU fewest hops from start, searching breadth-first
// over the whole graph. If start is itself a VTU it is returned. Among VTUs at the same
// hop distance the one reached first in adjacency order wins.
func FindNearestTransfer(m *core.Map, start core.NodeID) (*core.Node, error) {
	s, err := m.Node(start)
	if err != nil {
		return nil, fmt.Errorf("find transfer point: %w", err)
	}

	visited := map[core.NodeID]bool{start: true}
	queue := []*core.Node{s}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.Type == core.VTU {
			return n, nil
		}
		for _, nb := range m.Neighbors(n.ID) {
			if visited[nb.ID] {
				continue
			}
			visited[nb.ID] = true
			queue = append(queue, nb)
		}
	}

	return nil, fmt.Errorf("find transfer point from %s: %w", s.Coords, core.ErrTransferPointNotFound)
}

// TransferDistances returns the hop distance from start to every reachable VTU.
func TransferDistances(m *core.Map, start core.NodeID) (map[core.NodeID]int, error) {
	if _, err := m.Node(start); err != nil {
		return nil, fmt.Errorf("transfer distances: %w", err)
	}

	dist := map[core.NodeID]int{start: 0}
	out := make(map[core.NodeID]int)
	queue := []core.NodeID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if n, _ := m.Node(id); n.Type == core.VTU {
			out[id] = dist[id]
		}
		for _, nb := range m.Neighbors(id) {
			if _, ok := dist[nb.ID]; ok {
				continue
			}
			dist[nb.ID] = dist[id] + 1
			queue = append(queue, nb.ID)
		}
	}
	return out, nil
}
