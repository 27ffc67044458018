package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokens_IssueAndVerify(t *testing.T) {
	t.Parallel()

	tokens := NewTokens("test-secret", 7*24*time.Hour)

	signed, err := tokens.Issue(42)
	require.NoError(t, err)

	userID, err := tokens.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestTokens_VerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signed, err := NewTokens("secret-a", time.Hour).Issue(1)
	require.NoError(t, err)

	_, err = NewTokens("secret-b", time.Hour).Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_VerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	issued := time.Unix(1_700_000_000, 0)
	tokens := NewTokens("test-secret", time.Hour)
	tokens.now = func() time.Time { return issued }

	signed, err := tokens.Issue(7)
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = tokens.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_VerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := NewTokens("test-secret", time.Hour).Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw")
	require.NoError(t, err)
	require.NotEqual(t, "pw", hash)

	require.True(t, CheckPassword(hash, "pw"))
	require.False(t, CheckPassword(hash, "wrong"))
}
