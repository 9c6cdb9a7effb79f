package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/tasktrack/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const DefaultTokenTTL = 24 * time.Hour

// TokenManager issues and verifies HS256 access tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewTokenManager(secret string, ttl time.Duration, clock clockwork.Clock) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clock,
	}
}

// TTL is the lifetime given to every issued token.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a token for the given subject, valid from now until now+TTL.
func (tm *TokenManager) Issue(subjectID, email string) (string, error) {
	if subjectID == "" || email == "" {
		return "", errors.New("subject and email are required")
	}

	now := tm.clock.Now()
	claims := &models.TokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}

// Verify checks signature, expiry and required claims. A token is still valid
// in the second named by exp. Every failure returns models.ErrUnauthorized so
// callers cannot tell an expired token from a forged one.
func (tm *TokenManager) Verify(tokenString string) (*models.TokenClaims, error) {
	if tokenString == "" {
		return nil, models.ErrUnauthorized
	}

	claims := &models.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return tm.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		// exp has whole-second precision and jwt rejects at now == exp
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(tm.clock.Now),
	)
	if err != nil || !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}
