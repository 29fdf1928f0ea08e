package mailer

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_RequiresConfig(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrInvalidMailerConfig)

	_, err = New(
		WithSMTP("smtp.example.com", 587, "user", "pass"),
		WithLogger(slog.Default()),
	)
	assert.ErrorIs(t, err, ErrInvalidMailerConfig)
}

func TestMailer_ValidConfig(t *testing.T) {
	m, err := New(
		WithSMTP("smtp.example.com", 587, "user", "pass"),
		WithFrom("wallet@example.com"),
		WithLogger(slog.Default()),
	)
	require.NoError(t, err)
	require.NotNil(t, m)
}
