package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/domain/repositories"
)

const (
	filePrefix      = "period-"
	jsonExtension   = ".json"
	snappyExtension = ".json.sz"
)

// FileStore keeps one file per period under <dir>/<run id>/, optionally
// snappy-compressed. Run ids must be UUIDs.
type FileStore struct {
	dir      string
	compress bool
}

// Verify interface compliance
var _ repositories.SnapshotRepository = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir, creating it if needed
func NewFileStore(dir string, compress bool) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, compress: compress}, nil
}

type envelope struct {
	RunID     string          `json:"run_id"`
	Period    entities.Period `json:"period"`
	CreatedAt time.Time       `json:"created_at"`
	State     json.RawMessage `json:"state"`
}

// SaveSnapshot writes snapshot, replacing any file for the same period.
// The state must be a JSON document.
func (s *FileStore) SaveSnapshot(snapshot *entities.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	runDir, err := s.runDir(snapshot.RunID)
	if err != nil {
		return err
	}
	if !json.Valid(snapshot.State) {
		return fmt.Errorf("snapshot state for run %s period %d is not valid JSON", snapshot.RunID, snapshot.Period)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.Marshal(envelope{
		RunID:     snapshot.RunID,
		Period:    snapshot.Period,
		CreatedAt: snapshot.CreatedAt,
		State:     snapshot.State,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	name := s.fileName(snapshot.Period, s.compress)
	if s.compress {
		data = snappy.Encode(nil, data)
	}

	// drop a stale file written with the other encoding
	_ = os.Remove(filepath.Join(runDir, s.fileName(snapshot.Period, !s.compress)))

	tmp := filepath.Join(runDir, name+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(runDir, name)); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// GetSnapshot reads the snapshot of runID at period, in either encoding
func (s *FileStore) GetSnapshot(runID string, period entities.Period) (*entities.Snapshot, error) {
	runDir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}

	for _, compressed := range []bool{true, false} {
		path := filepath.Join(runDir, s.fileName(period, compressed))
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
		}
		return decode(data, compressed)
	}

	return nil, fmt.Errorf("%w: run %s period %d", repositories.ErrSnapshotNotFound, runID, period)
}

// ListSnapshots returns the stored periods of runID in ascending order
func (s *FileStore) ListSnapshots(runID string) ([]entities.Period, error) {
	runDir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(runDir)
	if errors.Is(err, os.ErrNotExist) {
		return []entities.Period{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	seen := make(map[entities.Period]bool)
	periods := make([]entities.Period, 0, len(entries))
	for _, entry := range entries {
		period, ok := parseFileName(entry.Name())
		if !ok || seen[period] {
			continue
		}
		seen[period] = true
		periods = append(periods, period)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i] < periods[j] })
	return periods, nil
}

// LatestSnapshot returns the snapshot of runID with the highest period
func (s *FileStore) LatestSnapshot(runID string) (*entities.Snapshot, error) {
	periods, err := s.ListSnapshots(runID)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: run %s has no snapshots", repositories.ErrSnapshotNotFound, runID)
	}
	return s.GetSnapshot(runID, periods[len(periods)-1])
}

func (s *FileStore) runDir(runID string) (string, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", runID, err)
	}
	return filepath.Join(s.dir, id.String()), nil
}

func (s *FileStore) fileName(period entities.Period, compressed bool) string {
	ext := jsonExtension
	if compressed {
		ext = snappyExtension
	}
	return fmt.Sprintf("%s%06d%s", filePrefix, period, ext)
}

func parseFileName(name string) (entities.Period, bool) {
	if !strings.HasPrefix(name, filePrefix) {
		return 0, false
	}
	rest := strings.TrimPrefix(name, filePrefix)

	switch {
	case strings.HasSuffix(rest, snappyExtension):
		rest = strings.TrimSuffix(rest, snappyExtension)
	case strings.HasSuffix(rest, jsonExtension):
		rest = strings.TrimSuffix(rest, jsonExtension)
	default:
		return 0, false
	}

	period, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return entities.Period(period), true
}

func decode(data []byte, compressed bool) (*entities.Snapshot, error) {
	if compressed {
		decoded, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
		}
		data = decoded
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &entities.Snapshot{
		RunID:     env.RunID,
		Period:    env.Period,
		CreatedAt: env.CreatedAt,
		State:     []byte(env.State),
	}, nil
}
