package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/BorisDmv/posts-api/internal/auth"
)

func TestIssueAndParse(t *testing.T) {
	tokens := auth.NewTokens([]byte("test-secret"))

	tokenStr, err := tokens.Issue(42, true)
	require.NoError(t, err)

	actor, err := tokens.Parse(tokenStr)
	require.NoError(t, err)
	require.Equal(t, auth.Actor{ID: 42, Verified: true}, actor)
}

func TestParseUnverified(t *testing.T) {
	tokens := auth.NewTokens([]byte("test-secret"))

	tokenStr, err := tokens.Issue(7, false)
	require.NoError(t, err)

	actor, err := tokens.Parse(tokenStr)
	require.NoError(t, err)
	require.False(t, actor.Verified)
}

func TestParseRejects(t *testing.T) {
	tokens := auth.NewTokens([]byte("test-secret"))

	otherSecret, err := auth.NewTokens([]byte("other-secret")).Issue(1, true)
	require.NoError(t, err)

	expired, err := tokens.WithTTL(-time.Minute).Issue(1, true)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-number",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, tokenStr := range map[string]string{
		"garbage":      "not.a.token",
		"other secret": otherSecret,
		"expired":      expired,
		"bad subject":  badSubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Parse(tokenStr)
			require.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestIssueWithoutSecret(t *testing.T) {
	_, err := auth.NewTokens(nil).Issue(1, true)
	require.Error(t, err)
}

func TestActorContext(t *testing.T) {
	_, ok := auth.ActorFrom(context.Background())
	require.False(t, ok)

	ctx := auth.WithActor(context.Background(), auth.Actor{ID: 3})
	actor, ok := auth.ActorFrom(ctx)
	require.True(t, ok)
	require.Equal(t, int64(3), actor.ID)
}
