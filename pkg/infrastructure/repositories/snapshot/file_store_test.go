package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/domain/repositories"
)

func TestFileStore_RoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(map[bool]string{false: "plain", true: "snappy"}[compress], func(t *testing.T) {
			dir := t.TempDir()
			store, err := NewFileStore(dir, compress)
			require.NoError(t, err)

			runID := uuid.NewString()
			created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			state := []byte(`{"nodes":[{"id":"A"}],"edges":[]}`)
			require.NoError(t, store.SaveSnapshot(&entities.Snapshot{RunID: runID, Period: 4, CreatedAt: created, State: state}))

			snapshot, err := store.GetSnapshot(runID, 4)
			require.NoError(t, err)
			assert.Equal(t, runID, snapshot.RunID)
			assert.Equal(t, entities.Period(4), snapshot.Period)
			assert.True(t, created.Equal(snapshot.CreatedAt))
			assert.JSONEq(t, string(state), string(snapshot.State))

			name := "period-000004.json"
			if compress {
				name += ".sz"
			}
			raw, err := os.ReadFile(filepath.Join(dir, runID, name))
			require.NoError(t, err)
			if compress {
				_, err := snappy.Decode(nil, raw)
				assert.NoError(t, err, "file must be snappy encoded")
			} else {
				assert.Contains(t, string(raw), `"run_id"`)
			}
		})
	}
}

func TestFileStore_ListAndLatest(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), true)
	require.NoError(t, err)
	runID := uuid.NewString()

	for _, p := range []entities.Period{3, 10, 1} {
		require.NoError(t, store.SaveSnapshot(&entities.Snapshot{RunID: runID, Period: p, State: []byte(`{}`)}))
	}

	periods, err := store.ListSnapshots(runID)
	require.NoError(t, err)
	assert.Equal(t, []entities.Period{1, 3, 10}, periods)

	latest, err := store.LatestSnapshot(runID)
	require.NoError(t, err)
	assert.Equal(t, entities.Period(10), latest.Period)

	empty, err := store.ListSnapshots(uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = store.LatestSnapshot(uuid.NewString())
	assert.ErrorIs(t, err, repositories.ErrSnapshotNotFound)
	_, err = store.GetSnapshot(runID, 2)
	assert.ErrorIs(t, err, repositories.ErrSnapshotNotFound)
}

func TestFileStore_SwitchingEncodingReplacesFile(t *testing.T) {
	dir := t.TempDir()
	runID := uuid.NewString()

	plain, err := NewFileStore(dir, false)
	require.NoError(t, err)
	require.NoError(t, plain.SaveSnapshot(&entities.Snapshot{RunID: runID, Period: 1, State: []byte(`{"v":1}`)}))

	compressed, err := NewFileStore(dir, true)
	require.NoError(t, err)
	require.NoError(t, compressed.SaveSnapshot(&entities.Snapshot{RunID: runID, Period: 1, State: []byte(`{"v":2}`)}))

	snapshot, err := plain.GetSnapshot(runID, 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(snapshot.State))

	periods, err := plain.ListSnapshots(runID)
	require.NoError(t, err)
	assert.Equal(t, []entities.Period{1}, periods)
}

func TestFileStore_Validation(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), false)
	require.NoError(t, err)

	assert.Error(t, store.SaveSnapshot(nil))
	assert.Error(t, store.SaveSnapshot(&entities.Snapshot{RunID: "../escape", State: []byte(`{}`)}))
	assert.Error(t, store.SaveSnapshot(&entities.Snapshot{RunID: uuid.NewString(), State: []byte(`not json`)}))

	_, err = NewFileStore("", false)
	assert.Error(t, err)
}
