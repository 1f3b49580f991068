package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "practice-secret"

func TestIdentityService_RoundTrip(t *testing.T) {
	svc := NewIdentityService(testSecret)

	token, err := svc.IssueToken("user-42", time.Hour)
	require.NoError(t, err)

	userID, err := svc.UserIDFromToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestIdentityService_FallsBackToSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "user-7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	userID, err := NewIdentityService(testSecret).UserIDFromToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", userID)
}

func TestIdentityService_Rejects(t *testing.T) {
	svc := NewIdentityService(testSecret)

	expired, err := svc.IssueToken("user-1", -time.Minute)
	require.NoError(t, err)

	wrongKey, err := NewIdentityService("other-secret").IssueToken("user-1", time.Hour)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, IdentityClaims{UserID: "user-1"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong key", wrongKey},
		{"no user claim", noUser},
		{"unexpected algorithm", hs512},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UserIDFromToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIdentityService_DisabledWithoutSecret(t *testing.T) {
	svc := NewIdentityService("")

	_, err := svc.UserIDFromToken(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrIdentityDisabled)

	_, err = svc.IssueToken("user-1", time.Hour)
	assert.ErrorIs(t, err, ErrIdentityDisabled)
}
