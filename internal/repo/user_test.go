package repo

import (
	"testing"
	"time"

	"amcwallet/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestUser(id, email string) *models.User {
	return &models.User{
		ID:            id,
		Email:         email,
		Name:          "Test User",
		WalletAddress: "0x" + id,
		SeedPhrase:    "phrase-" + id,
	}
}

func TestUserRepository_CRUD(t *testing.T) {
	repository := setupTestRepo(t)

	user := newTestUser("u1", "u1@example.com")
	require.NoError(t, repository.CreateUser(user))

	got, err := repository.GetUserByID("u1")
	require.NoError(t, err)
	require.Equal(t, "u1@example.com", got.Email)

	got, err = repository.GetUserByEmail("u1@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", got.ID)

	users, err := repository.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	repository := setupTestRepo(t)

	user := newTestUser("u1", "u1@example.com")
	require.NoError(t, repository.CreateUser(user))
	require.NoError(t, repository.CreateBalance(&models.Balance{
		UserID: "u1", Symbol: "AMC", Amount: decimal.NewFromInt(10),
	}))
	uid := "u1"
	require.NoError(t, repository.CreateTransaction(&models.Transaction{
		UserID: &uid, Type: "receive", Amount: decimal.NewFromInt(10),
		Currency: "AMC", Status: "completed", Hash: "h1", Date: time.Now(),
	}))
	require.NoError(t, repository.CreateOTPCode(&models.OTPCode{
		UserID: "u1", Code: "123456", Purpose: "seed_phrase",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}))

	require.NoError(t, repository.DeleteUser("u1"))

	_, err := repository.GetUserByID("u1")
	require.Error(t, err)

	balances, err := repository.ListBalancesByUser("u1")
	require.NoError(t, err)
	require.Empty(t, balances)

	result, err := repository.ListTransactions(TransactionFilter{UserID: &uid})
	require.NoError(t, err)
	require.Zero(t, result.Total)
}
