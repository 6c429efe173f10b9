package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPath_CreatesAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.sqlite")

	database, err := OpenPath(path)
	require.NoError(t, err)
	defer database.Close()

	status, err := GetMigrationStatus(database)
	require.NoError(t, err)
	assert.Equal(t, uint(1), status.CurrentVersion)
	assert.Equal(t, uint(1), status.LatestVersion)
	assert.False(t, status.Pending)
	assert.False(t, status.Dirty)

	_, err = database.Exec("INSERT INTO local_state (key, value) VALUES (?, ?)", "k", "v")
	assert.NoError(t, err)
}

func TestOpenPath_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")

	first, err := OpenPath(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenPath(path)
	require.NoError(t, err)
	defer second.Close()

	assert.NoError(t, RunMigrations(second))
}

func TestRunMigrations_NilDatabase(t *testing.T) {
	err := RunMigrations(nil)
	assert.EqualError(t, err, "database not open")
}

func TestConnect_ReportsPendingMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")

	database, err := Connect(path)
	require.NoError(t, err)
	defer database.Close()

	status, err := GetMigrationStatus(database)
	require.NoError(t, err)
	assert.Equal(t, uint(0), status.CurrentVersion)
	assert.Equal(t, uint(1), status.LatestVersion)
	assert.True(t, status.Pending)
	assert.Contains(t, status.String(), "1 available")

	require.NoError(t, RunMigrations(database))
	status, err = GetMigrationStatus(database)
	require.NoError(t, err)
	assert.False(t, status.Pending)
	assert.Equal(t, "version 1 (up to date)", status.String())
}

func TestMigrationStatus_Dirty(t *testing.T) {
	s := MigrationStatus{CurrentVersion: 1, LatestVersion: 1, Dirty: true}
	assert.Contains(t, s.String(), "dirty")
}
