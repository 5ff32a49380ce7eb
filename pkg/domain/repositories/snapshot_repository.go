package repositories

import (
	"errors"

	"github.com/vsinha/echelon/pkg/domain/entities"
)

// ErrSnapshotNotFound is returned when no snapshot matches the request
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository stores per-period supply chain snapshots of a run
type SnapshotRepository interface {
	SaveSnapshot(snapshot *entities.Snapshot) error
	GetSnapshot(runID string, period entities.Period) (*entities.Snapshot, error)
	// ListSnapshots returns the periods stored for a run in ascending order
	ListSnapshots(runID string) ([]entities.Period, error)
	// LatestSnapshot returns the snapshot with the highest period of a run
	LatestSnapshot(runID string) (*entities.Snapshot, error)
}
