package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/juju/clock"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5, clock.WallClock)
	token, exp, err := tm.GenerateToken("42")
	require.NoError(t, err)
	assert.False(t, exp.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.CallerID)
	assert.Equal(t, "42", claims.Subject)
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", 5, clock.WallClock).GenerateToken("42")
	require.NoError(t, err)

	_, err = NewTokenManager("two", 5, clock.WallClock).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenExpiresWithClock(t *testing.T) {
	clk := testclock.NewClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	tm := NewTokenManager("secret", 5, clk)

	token, exp, err := tm.GenerateToken("42")
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(5*time.Minute), exp)

	clk.Advance(4 * time.Minute)
	_, err = tm.ParseToken(token)
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGenerateTokenRequiresCaller(t *testing.T) {
	_, _, err := NewTokenManager("secret", 5, clock.WallClock).GenerateToken("")
	assert.Error(t, err)
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	_, ok := TokenFromContext(ctx)
	assert.False(t, ok)
	_, ok = CallerIDFromContext(WithCallerID(ctx, ""))
	assert.False(t, ok)

	ctx = WithCallerID(WithToken(ctx, "abc"), "7")
	token, ok := TokenFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
	id, ok := CallerIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "7", id)
}

func newIdentityApp(tm *TokenManager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(http.StatusUnauthorized).SendString(err.Error())
		},
	})
	app.Use(NewIdentityMiddleware(tm).Handle)
	app.Get("/", func(c *fiber.Ctx) error {
		token, _ := TokenFromContext(c.UserContext())
		caller, _ := CallerIDFromContext(c.UserContext())
		return c.SendString(token + "|" + caller)
	})
	return app
}

func TestIdentityMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5, clock.WallClock)
	token, _, err := tm.GenerateToken("9")
	require.NoError(t, err)
	app := newIdentityApp(tm)

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantBody   string
	}{
		{"anonymous", nil, http.StatusOK, "|"},
		{"caller_header", map[string]string{CallerIDHeader: "5"}, http.StatusOK, "|5"},
		{"bearer", map[string]string{"Authorization": "Bearer " + token}, http.StatusOK, token + "|9"},
		{"bearer_overrides_header", map[string]string{"Authorization": "Bearer " + token, CallerIDHeader: "5"}, http.StatusOK, token + "|9"},
		{"bad_scheme", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized, "invalid authorization header"},
		{"bad_token", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized, "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}
