package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/record-service/internal/api/dto"
	"github.com/spec-kit/record-service/internal/domain"
	"github.com/spec-kit/record-service/internal/service"
)

// UsersHandler exposes user record endpoints.
type UsersHandler struct {
	users *service.UserService
	sse   SSEConfig
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService, sse SSEConfig) *UsersHandler {
	return &UsersHandler{users: users, sse: sse.withDefaults()}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	pageSize, err := queryInt(c, "page_size")
	if err != nil {
		return err
	}

	result, err := h.users.ListUsers(c.UserContext(), c.Query("role"), page, pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserListResponse(result)})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.CreateUser(c.UserContext(), service.CreateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PATCH /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateUser(c.UserContext(), c.Params("id"), service.UpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	result, err := h.users.DeleteUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDeleteResponse(result)})
}

// Watch handles GET /users/watch as a server-sent event stream.
func (h *UsersHandler) Watch(c *fiber.Ctx) error {
	// The stream outlives the request context; it ends with the client or on shutdown.
	sub, err := h.users.WatchUsers(context.Background(), c.Query("role"))
	if err != nil {
		return err
	}
	return serveEvents(c, h.sse, sub, "user", func(u domain.User) any {
		return dto.NewUserResponse(&u)
	})
}
