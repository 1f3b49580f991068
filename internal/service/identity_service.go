package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"practice-engine/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrIdentityDisabled = errors.New("identity attribution is not configured")
	ErrInvalidToken     = errors.New("invalid identity token")
)

// IdentityClaims are the claims read from an identity token. The user id is
// taken from user_id and falls back to the registered subject.
type IdentityClaims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// IdentityService resolves the optional identity token used to attribute attempts.
type IdentityService interface {
	UserIDFromToken(ctx context.Context, token string) (string, error)
	IssueToken(userID string, ttl time.Duration) (string, error)
}

type identityServiceImpl struct {
	secret []byte
}

// NewIdentityService verifies HS256 tokens with secret. An empty secret disables attribution.
func NewIdentityService(secret string) IdentityService {
	return &identityServiceImpl{secret: []byte(secret)}
}

func (s *identityServiceImpl) UserIDFromToken(ctx context.Context, tokenString string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrIdentityDisabled
	}

	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		logger.Get().Debug("IdentityService: token rejected", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return "", fmt.Errorf("%w: no user id claim", ErrInvalidToken)
	}
	return userID, nil
}

// IssueToken signs a token for userID. It backs local tooling and tests; production tokens come from the auth provider.
func (s *identityServiceImpl) IssueToken(userID string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrIdentityDisabled
	}
	now := time.Now()
	claims := IdentityClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
