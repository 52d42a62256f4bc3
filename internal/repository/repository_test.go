package repository_test

import (
	"path/filepath"
	"testing"

	"github.com/obsidian-net/classicd/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *repository.Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	r, err := repository.Connect(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestLogoutLocationSaveAndLookup(t *testing.T) {
	r := newTestRepository(t)

	_, _, _, _, _, ok := r.Lookup("notch", "main")
	assert.False(t, ok)

	require.NoError(t, r.Save("notch", "main", 10, 20, 30, 64, 32))
	x, y, z, yaw, pitch, ok := r.Lookup("notch", "main")
	require.True(t, ok)
	assert.EqualValues(t, 10, x)
	assert.EqualValues(t, 20, y)
	assert.EqualValues(t, 30, z)
	assert.EqualValues(t, 64, yaw)
	assert.EqualValues(t, 32, pitch)
}

func TestLogoutLocationUpsertReplacesPreviousEntry(t *testing.T) {
	r := newTestRepository(t)

	require.NoError(t, r.Save("notch", "main", 1, 2, 3, 0, 0))
	require.NoError(t, r.Save("notch", "main", 9, 9, 9, 128, 64))

	x, y, z, _, _, ok := r.Lookup("notch", "main")
	require.True(t, ok)
	assert.EqualValues(t, 9, x)
	assert.EqualValues(t, 9, y)
	assert.EqualValues(t, 9, z)
}

func TestLogoutLocationScopedPerWorld(t *testing.T) {
	r := newTestRepository(t)
	require.NoError(t, r.Save("notch", "main", 1, 2, 3, 0, 0))

	_, _, _, _, _, ok := r.Lookup("notch", "creative")
	assert.False(t, ok)
}

func TestAuditTrailRecordsMostRecentFirst(t *testing.T) {
	r := newTestRepository(t)

	require.NoError(t, r.RecordAudit("admin", "op", "notch", ""))
	require.NoError(t, r.RecordAudit("admin", "kick", "griefer", "spamming"))

	entries, err := r.RecentAudit(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "kick", entries[0].Action)
	assert.Equal(t, "op", entries[1].Action)
}
