package observability

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/record-service/pkg/util/errorutil"
)

// RequestLogger logs every request and records it in metrics. It runs inside
// the error middleware, so failed requests are logged with the status their
// error will be rendered with.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
		case err != nil:
			status = apperrors.ToDomainError(err).HTTPStatus
		}
		route := c.Route().Path
		metrics.RecordRequest(route, c.Method(), status, elapsed)
		logger.Info("http_request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.Error(err),
		)
		return err
	}
}
