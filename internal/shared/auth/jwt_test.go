package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyPair(t *testing.T) {
	signer := NewSigner("test-secret", time.Minute, time.Hour)

	pair, err := signer.IssuePair("user-1", "maria", false)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	claims, err := signer.Verify(pair.Access, TypeAccess)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "maria", claims.Username)
	require.False(t, claims.Admin)

	// A refresh token must not pass as an access token.
	_, err = signer.Verify(pair.Refresh, TypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Verify(pair.Refresh, TypeRefresh)
	require.NoError(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	signer := NewSigner("test-secret", -time.Minute, time.Hour)

	pair, err := signer.IssuePair("user-1", "maria", true)
	require.NoError(t, err)

	_, err = signer.Verify(pair.Access, TypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := NewSigner("secret-a", time.Minute, time.Hour)
	other := NewSigner("secret-b", time.Minute, time.Hour)

	pair, err := signer.IssuePair("user-1", "maria", false)
	require.NoError(t, err)

	_, err = other.Verify(pair.Access, TypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}
