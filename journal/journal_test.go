package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftpmirror/config"
	"ftpmirror/mirror"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRuns(t *testing.T) {
	j := openTestJournal(t)

	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := RunRecord{
		ID:                 "run-1",
		RemoteRoot:         "/uploads",
		LocalRoot:          "/var/data",
		DeleteRemote:       true,
		FilesProcessed:     4,
		FilesFailed:        1,
		DeletionsPerformed: 3,
		DeletionsFailed:    0,
		StartedAt:          started,
		FinishedAt:         started.Add(5 * time.Second),
	}
	require.NoError(t, j.Record(rec))

	runs, err := j.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, "/uploads", got.RemoteRoot)
	assert.Equal(t, "/var/data", got.LocalRoot)
	assert.True(t, got.DeleteRemote)
	assert.Equal(t, 4, got.FilesProcessed)
	assert.Equal(t, 1, got.FilesFailed)
	assert.Equal(t, 3, got.DeletionsPerformed)
	assert.Equal(t, 0, got.DeletionsFailed)
	assert.True(t, got.StartedAt.Equal(started))
	assert.True(t, got.FinishedAt.Equal(started.Add(5*time.Second)))
}

func TestRunsNewestFirst(t *testing.T) {
	j := openTestJournal(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := RunRecord{
			ID:        string(rune('a' + i)),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, j.Record(rec))
	}

	runs, err := j.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
	assert.Equal(t, "a", runs[2].ID)

	limited, err := j.Runs(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "c", limited[0].ID)
	assert.Equal(t, "b", limited[1].ID)
}

func TestRecordAssignsID(t *testing.T) {
	j := openTestJournal(t)

	require.NoError(t, j.Record(RunRecord{StartedAt: time.Now()}))

	runs, err := j.Runs(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.NotEmpty(t, runs[0].ID)
}

func TestRecorderPersistsFinishedRuns(t *testing.T) {
	j := openTestJournal(t)
	rec := NewRecorder(j, config.SyncConfig{
		RemoteRoot:   "/pub",
		LocalRoot:    "downloads",
		DeleteRemote: true,
	})

	rec.Emit(mirror.DirEntered{Path: "/pub"})
	runs, err := j.Runs(0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec.Emit(mirror.RunFinished{Summary: mirror.RunSummary{
		FilesProcessed:     2,
		FilesFailed:        0,
		DeletionsPerformed: 2,
		StartedAt:          started,
		FinishedAt:         started.Add(time.Second),
	}})

	runs, err = j.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "/pub", runs[0].RemoteRoot)
	assert.Equal(t, "downloads", runs[0].LocalRoot)
	assert.True(t, runs[0].DeleteRemote)
	assert.Equal(t, 2, runs[0].FilesProcessed)
	assert.Equal(t, 2, runs[0].DeletionsPerformed)
	assert.NotEmpty(t, runs[0].ID)
}
