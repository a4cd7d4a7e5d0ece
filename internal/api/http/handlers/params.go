package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/record-service/pkg/util/errorutil"
)

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(key+" must be an integer", map[string]any{key: raw})
	}
	return v, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationError(key+" must be a number", map[string]any{key: raw})
	}
	return &v, nil
}

func queryString(c *fiber.Ctx, key string) *string {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	return &raw
}

// queryList splits a comma separated parameter, dropping blanks.
func queryList(c *fiber.Ctx, key string) []string {
	var out []string
	for _, part := range strings.Split(c.Query(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	return nil
}
