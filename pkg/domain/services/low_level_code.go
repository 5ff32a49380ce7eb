package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vsinha/echelon/pkg/domain/entities"
)

// ErrCycle is returned when low-level codes are requested for a cyclic network
var ErrCycle = errors.New("network contains a cycle")

// LowLevelCodes assigns every node its echelon depth: nodes without
// successors get 0, every other node gets the maximum over its successors'
// codes plus one. The walk is breadth-first from the sinks along predecessor
// edges; a node is expanded only after all of its successors are final, so
// the result does not depend on the order of nodeIDs or edges.
func LowLevelCodes(nodeIDs []entities.NodeID, edges []entities.Edge) (map[entities.NodeID]int, error) {
	llc := make(map[entities.NodeID]int, len(nodeIDs))
	pendingSuccessors := make(map[entities.NodeID]int, len(nodeIDs))
	predecessors := make(map[entities.NodeID][]entities.NodeID, len(nodeIDs))
	seen := make(map[entities.EdgeID]bool, len(edges))

	for _, id := range nodeIDs {
		llc[id] = 0
		pendingSuccessors[id] = 0
	}

	for _, edge := range edges {
		if seen[edge.ID()] {
			continue
		}
		seen[edge.ID()] = true

		if _, ok := llc[edge.Source()]; !ok {
			return nil, fmt.Errorf("edge %s references unknown node %s", edge.ID(), edge.Source())
		}
		if _, ok := llc[edge.Destination()]; !ok {
			return nil, fmt.Errorf("edge %s references unknown node %s", edge.ID(), edge.Destination())
		}
		pendingSuccessors[edge.Source()]++
		predecessors[edge.Destination()] = append(predecessors[edge.Destination()], edge.Source())
	}

	queue := make([]entities.NodeID, 0, len(nodeIDs))
	for id, pending := range pendingSuccessors {
		if pending == 0 {
			queue = append(queue, id)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	processed := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		processed++

		for _, pred := range predecessors[current] {
			if depth := llc[current] + 1; depth > llc[pred] {
				llc[pred] = depth
			}
			pendingSuccessors[pred]--
			if pendingSuccessors[pred] == 0 {
				queue = append(queue, pred)
			}
		}
	}

	if processed != len(llc) {
		var stuck []entities.NodeID
		for id, pending := range pendingSuccessors {
			if pending > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Slice(stuck, func(i, j int) bool { return stuck[i] < stuck[j] })
		return nil, fmt.Errorf("%w: nodes %v", ErrCycle, stuck)
	}

	return llc, nil
}
