package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/juju/clock"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenManager builds a new manager. Issue and expiry times come from clk.
func NewTokenManager(secret string, ttlMinutes int, clk clock.Clock) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute, clock: clk}
}

// Claims describes JWT payload.
type Claims struct {
	CallerID string `json:"caller_id"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for the caller.
func (tm *TokenManager) GenerateToken(callerID string) (string, time.Time, error) {
	if callerID == "" {
		return "", time.Time{}, errors.New("caller id required")
	}
	now := tm.clock.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		CallerID: callerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   callerID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.clock.Now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
