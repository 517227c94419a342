package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clickmapper/clickmapper/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := Connect(filepath.Join(t.TempDir(), "journal", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Initialize())
	return NewRepository(db)
}

func TestConnectEmptyPath(t *testing.T) {
	_, err := Connect("")
	assert.Error(t, err)
}

func TestCreateAndQueryLaunches(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	events := []*models.LaunchEvent{
		{SessionID: "a", Timestamp: base, Kind: "render", Command: "magick", Args: "animate image.gif -window 1"},
		{SessionID: "a", Timestamp: base.Add(time.Second), Kind: "sound", Command: "ffplay", Args: "click.wav"},
		{SessionID: "b", Timestamp: base.Add(2 * time.Second), Kind: "sound", Command: "ffplay", Failed: true, ErrorMsg: "not found"},
	}
	for _, e := range events {
		require.NoError(t, repo.CreateLaunch(e))
		assert.NotZero(t, e.ID)
	}

	got, err := repo.GetLaunchesBySession("a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "render", got[0].Kind)
	assert.Equal(t, "sound", got[1].Kind)

	since, err := repo.GetLaunchesSince(base.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.True(t, since[1].Failed)
	assert.Equal(t, "not found", since[1].ErrorMsg)
}

func TestErrorLogs(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now()

	require.NoError(t, repo.CreateErrorLog(&models.ErrorLog{SessionID: "a", Timestamp: now.Add(-time.Hour), ErrorMsg: "old"}))
	require.NoError(t, repo.CreateErrorLog(&models.ErrorLog{SessionID: "a", Timestamp: now, ErrorMsg: "display closed"}))

	count, err := repo.CountErrorsSince(now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestClear(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now()

	require.NoError(t, repo.CreateLaunch(&models.LaunchEvent{SessionID: "a", Timestamp: now, Kind: "sound", Command: "ffplay"}))
	require.NoError(t, repo.CreateErrorLog(&models.ErrorLog{Timestamp: now, ErrorMsg: "x"}))

	require.NoError(t, repo.Clear())

	got, err := repo.GetLaunchesSince(time.Time{})
	require.NoError(t, err)
	assert.Empty(t, got)

	count, err := repo.CountErrorsSince(time.Time{})
	require.NoError(t, err)
	assert.Zero(t, count)
}
