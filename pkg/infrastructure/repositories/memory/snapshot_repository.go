package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/domain/repositories"
)

// SnapshotRepository provides in-memory snapshot storage
type SnapshotRepository struct {
	runs map[string]map[entities.Period]entities.Snapshot
	mu   sync.RWMutex
}

// NewSnapshotRepository creates a new in-memory snapshot repository
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{
		runs: make(map[string]map[entities.Period]entities.Snapshot),
	}
}

// Verify interface compliance
var _ repositories.SnapshotRepository = (*SnapshotRepository)(nil)

// SaveSnapshot stores a copy of snapshot, replacing any earlier one for the same period
func (r *SnapshotRepository) SaveSnapshot(snapshot *entities.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	if snapshot.RunID == "" {
		return fmt.Errorf("snapshot run id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	periods, exists := r.runs[snapshot.RunID]
	if !exists {
		periods = make(map[entities.Period]entities.Snapshot)
		r.runs[snapshot.RunID] = periods
	}
	periods[snapshot.Period] = copySnapshot(*snapshot)
	return nil
}

// GetSnapshot returns the snapshot of runID at period
func (r *SnapshotRepository) GetSnapshot(runID string, period entities.Period) (*entities.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, exists := r.runs[runID][period]
	if !exists {
		return nil, fmt.Errorf("%w: run %s period %d", repositories.ErrSnapshotNotFound, runID, period)
	}
	out := copySnapshot(snapshot)
	return &out, nil
}

// ListSnapshots returns the stored periods of runID in ascending order
func (r *SnapshotRepository) ListSnapshots(runID string) ([]entities.Period, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	periods := make([]entities.Period, 0, len(r.runs[runID]))
	for period := range r.runs[runID] {
		periods = append(periods, period)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i] < periods[j] })
	return periods, nil
}

// LatestSnapshot returns the snapshot of runID with the highest period
func (r *SnapshotRepository) LatestSnapshot(runID string) (*entities.Snapshot, error) {
	periods, _ := r.ListSnapshots(runID)
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: run %s has no snapshots", repositories.ErrSnapshotNotFound, runID)
	}
	return r.GetSnapshot(runID, periods[len(periods)-1])
}

func copySnapshot(s entities.Snapshot) entities.Snapshot {
	state := make([]byte, len(s.State))
	copy(state, s.State)
	s.State = state
	return s
}
