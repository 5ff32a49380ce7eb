package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/echelon/pkg/domain/entities"
)

// NetworkValidator checks supply network structure integrity
type NetworkValidator struct{}

// NewNetworkValidator creates a new network validator
func NewNetworkValidator() *NetworkValidator {
	return &NetworkValidator{}
}

// ValidationResult contains the results of network validation
type ValidationResult struct {
	HasCycles      bool
	CyclePaths     [][]entities.NodeID
	DuplicateEdges []entities.Edge
	DanglingEdges  []entities.Edge
	Errors         []string
}

// Valid reports whether no errors were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateNetwork validates edges against the known node ids
func (v *NetworkValidator) ValidateNetwork(nodeIDs []entities.NodeID, edges []entities.Edge) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:     make([][]entities.NodeID, 0),
		DuplicateEdges: make([]entities.Edge, 0),
		DanglingEdges:  make([]entities.Edge, 0),
		Errors:         make([]string, 0),
	}

	known := make(map[entities.NodeID]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		known[id] = true
	}

	for _, edge := range edges {
		if !known[edge.Source()] || !known[edge.Destination()] {
			result.DanglingEdges = append(result.DanglingEdges, edge)
			result.Errors = append(result.Errors, fmt.Sprintf("edge %s references unknown node", edge.ID()))
		}
	}

	result.DuplicateEdges = v.detectDuplicateEdges(edges)
	if len(result.DuplicateEdges) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("found %d duplicate edges", len(result.DuplicateEdges)))
	}

	cycles := v.detectCycles(v.buildAdjacencyMap(edges))
	result.HasCycles = len(cycles) > 0
	result.CyclePaths = cycles
	for _, cycle := range cycles {
		result.Errors = append(result.Errors, fmt.Sprintf("network cycle detected: %v", cycle))
	}

	return result
}

// buildAdjacencyMap creates a map of source -> destinations, sorted
func (v *NetworkValidator) buildAdjacencyMap(edges []entities.Edge) map[entities.NodeID][]entities.NodeID {
	adjacencyMap := make(map[entities.NodeID][]entities.NodeID)
	seen := make(map[entities.EdgeID]bool)

	for _, edge := range edges {
		if seen[edge.ID()] {
			continue
		}
		seen[edge.ID()] = true
		adjacencyMap[edge.Source()] = append(adjacencyMap[edge.Source()], edge.Destination())
	}

	for source := range adjacencyMap {
		targets := adjacencyMap[source]
		sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	}

	return adjacencyMap
}

// detectCycles uses DFS to find cycles in the network
func (v *NetworkValidator) detectCycles(adjacencyMap map[entities.NodeID][]entities.NodeID) [][]entities.NodeID {
	visited := make(map[entities.NodeID]bool)
	recursionStack := make(map[entities.NodeID]bool)
	cycles := make([][]entities.NodeID, 0)

	sources := make([]entities.NodeID, 0, len(adjacencyMap))
	for source := range adjacencyMap {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	for _, source := range sources {
		if !visited[source] {
			v.dfsDetectCycle(source, adjacencyMap, visited, recursionStack, nil, &cycles)
		}
	}

	return cycles
}

func (v *NetworkValidator) dfsDetectCycle(
	current entities.NodeID,
	adjacencyMap map[entities.NodeID][]entities.NodeID,
	visited map[entities.NodeID]bool,
	recursionStack map[entities.NodeID]bool,
	path []entities.NodeID,
	cycles *[][]entities.NodeID,
) {
	visited[current] = true
	recursionStack[current] = true
	path = append(path, current)

	for _, next := range adjacencyMap[current] {
		if !visited[next] {
			v.dfsDetectCycle(next, adjacencyMap, visited, recursionStack, path, cycles)
			continue
		}
		if !recursionStack[next] {
			continue
		}

		for i, id := range path {
			if id == next {
				cycle := make([]entities.NodeID, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, next) // close the cycle
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	recursionStack[current] = false
}

// detectDuplicateEdges finds edges supplied more than once
func (v *NetworkValidator) detectDuplicateEdges(edges []entities.Edge) []entities.Edge {
	seen := make(map[entities.EdgeID]entities.Edge)
	duplicates := make([]entities.Edge, 0)

	for _, edge := range edges {
		if existing, exists := seen[edge.ID()]; exists {
			duplicates = append(duplicates, edge, existing)
		} else {
			seen[edge.ID()] = edge
		}
	}

	return duplicates
}

// ValidateNodeUniqueness validates that node ids are unique
func (v *NetworkValidator) ValidateNodeUniqueness(nodeIDs []entities.NodeID) *ValidationResult {
	result := &ValidationResult{
		Errors: make([]string, 0),
	}

	seen := make(map[entities.NodeID]bool)
	duplicates := make([]entities.NodeID, 0)

	for _, id := range nodeIDs {
		if seen[id] {
			duplicates = append(duplicates, id)
		} else {
			seen[id] = true
		}
	}

	if len(duplicates) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate node ids found: %v", duplicates))
	}

	return result
}
