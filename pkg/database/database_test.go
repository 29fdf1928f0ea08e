package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_OpenInMemory(t *testing.T) {
	db, err := New(WithPath(":memory:"))
	require.NoError(t, err)
	require.NotNil(t, db.Get())
	assert.NoError(t, db.Close())
}

func TestDatabase_CreatesDataDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wallet.db")
	db, err := New(WithPath(path))
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, path)
}

func TestDatabase_CloseWithoutOpen(t *testing.T) {
	db := &Database{}
	assert.NoError(t, db.Close())
}
