package repo

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	repository, err := New(db)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate())
	return db
}

func setupTestRepo(t *testing.T) *Repository {
	repository, err := New(setupTestDB(t))
	require.NoError(t, err)
	return repository
}

func TestNew_NilDatabase(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilDatabase)
}

func TestSeedDefaults(t *testing.T) {
	repository := setupTestRepo(t)

	require.NoError(t, repository.SeedDefaults())

	configs, err := repository.ListTokenConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 3)

	amc, err := repository.GetTokenConfig("AMC")
	require.NoError(t, err)
	require.Equal(t, 2.00, amc.CurrentPrice)
	require.Equal(t, "none", amc.AutoMode)

	autoSwap, err := repository.GetBoolSetting("auto_swap_fund")
	require.NoError(t, err)
	require.False(t, autoSwap)

	// idempotent
	require.NoError(t, repository.SeedDefaults())
	configs, err = repository.ListTokenConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 3)
}
