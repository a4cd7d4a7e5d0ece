package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/record-service/internal/api/dto"
	"github.com/spec-kit/record-service/internal/auth"
	apperrors "github.com/spec-kit/record-service/pkg/util/errorutil"
)

// AuthHandler issues identity tokens in development environments.
type AuthHandler struct {
	tokens *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// IssueToken handles POST /auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	callerID := strings.TrimSpace(req.CallerID)
	if callerID == "" {
		return apperrors.NewValidationError("caller_id is required", nil)
	}

	token, exp, err := h.tokens.GenerateToken(callerID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.TokenResponse{Token: token, ExpiresAt: exp},
	})
}
