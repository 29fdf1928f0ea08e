package repo

import (
	"testing"
	"time"

	"amcwallet/internal/models"

	"github.com/stretchr/testify/require"
)

func TestOTPRepository_ConsumeOnce(t *testing.T) {
	repository := setupTestRepo(t)
	now := time.Now()

	require.NoError(t, repository.CreateOTPCode(&models.OTPCode{
		UserID: "u1", Code: "123456", Purpose: models.OTPPurposeSeedPhrase,
		ExpiresAt: now.Add(10 * time.Minute),
	}))

	otp, err := repository.ConsumeOTPCode("u1", models.OTPPurposeSeedPhrase, "123456", now)
	require.NoError(t, err)
	require.True(t, otp.Used)

	// second use must fail
	_, err = repository.ConsumeOTPCode("u1", models.OTPPurposeSeedPhrase, "123456", now)
	require.Error(t, err)
}

func TestOTPRepository_ExpiredNeverMatches(t *testing.T) {
	repository := setupTestRepo(t)
	now := time.Now()

	require.NoError(t, repository.CreateOTPCode(&models.OTPCode{
		UserID: "u1", Code: "123456", Purpose: models.OTPPurposeWalletImport,
		ExpiresAt: now.Add(-time.Minute),
	}))

	_, err := repository.ConsumeOTPCode("u1", models.OTPPurposeWalletImport, "123456", now)
	require.Error(t, err)
}

func TestOTPRepository_WrongPurposeOrCode(t *testing.T) {
	repository := setupTestRepo(t)
	now := time.Now()

	require.NoError(t, repository.CreateOTPCode(&models.OTPCode{
		UserID: "u1", Code: "123456", Purpose: models.OTPPurposeSeedPhrase,
		ExpiresAt: now.Add(10 * time.Minute),
	}))

	_, err := repository.ConsumeOTPCode("u1", models.OTPPurposeWalletImport, "123456", now)
	require.Error(t, err)

	_, err = repository.ConsumeOTPCode("u1", models.OTPPurposeSeedPhrase, "999999", now)
	require.Error(t, err)
}
