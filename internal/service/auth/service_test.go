package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyToken(t *testing.T) {
	req := require.New(t)
	svc := NewService("secret", time.Hour)

	token, err := svc.IssueToken("user-123")
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := svc.VerifyToken(token)
	req.NoError(err)
	req.Equal("user-123", claims.UserID)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := NewService("secret", time.Hour)

	_, err := svc.VerifyToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewService("secret-a", time.Hour)
	verifier := NewService("secret-b", time.Hour)

	token, err := issuer.IssueToken("user-123")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	svc := NewService("secret", -time.Minute)

	token, err := svc.IssueToken("user-123")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("campus-secret-1")
	req.NoError(err)
	req.NotEqual("campus-secret-1", hash)

	req.True(CheckPassword(hash, "campus-secret-1"))
	req.False(CheckPassword(hash, "wrong"))
}
