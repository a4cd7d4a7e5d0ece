package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/record-service/internal/api/http/handlers"
	"github.com/spec-kit/record-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration. Auth and
// Metrics are optional.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Users    *handlers.UsersHandler
	Products *handlers.ProductsHandler
	Auth     *handlers.AuthHandler
	Identity *auth.IdentityMiddleware
	Metrics  fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}
	if cfg.Auth != nil {
		app.Post("/auth/token", cfg.Auth.IssueToken)
	}

	users := app.Group("/users", cfg.Identity.Handle)
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Get("/watch", cfg.Users.Watch)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	products := app.Group("/products", cfg.Identity.Handle)
	products.Get("/", cfg.Products.List)
	products.Post("/", cfg.Products.Create)
	products.Get("/watch", cfg.Products.Watch)
	products.Get("/:id", cfg.Products.Get)
	products.Patch("/:id", cfg.Products.Update)
	products.Delete("/:id", cfg.Products.Delete)
}
