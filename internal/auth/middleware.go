package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/record-service/pkg/util/errorutil"
)

// CallerIDHeader lets trusted callers pass a user id without a token.
const CallerIDHeader = "X-User-Id"

// IdentityMiddleware copies caller identity from request headers into the
// request's user context. Requests without identity pass through; whether
// an operation needs one is decided by the service layer.
type IdentityMiddleware struct {
	tokens *TokenManager
}

// NewIdentityMiddleware constructs middleware.
func NewIdentityMiddleware(tokens *TokenManager) *IdentityMiddleware {
	return &IdentityMiddleware{tokens: tokens}
}

// Handle validates a bearer token when one is sent.
func (m *IdentityMiddleware) Handle(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if callerID := strings.TrimSpace(c.Get(CallerIDHeader)); callerID != "" {
		ctx = WithCallerID(ctx, callerID)
	}

	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.NewUnauthorized("invalid authorization header")
		}

		claims, err := m.tokens.ParseToken(parts[1])
		if err != nil {
			return apperrors.NewUnauthorized("invalid token")
		}
		ctx = WithToken(ctx, parts[1])
		ctx = WithCallerID(ctx, claims.CallerID)
	}

	c.SetUserContext(ctx)
	return c.Next()
}
