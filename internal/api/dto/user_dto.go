package dto

import (
	"time"

	"github.com/spec-kit/record-service/internal/domain"
	"github.com/spec-kit/record-service/internal/query"
)

// CreateUserRequest payload for new users.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UpdateUserRequest payload for partial user updates.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// UserResponse is the wire form of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse is one page of users.
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

// DeleteResponse reports a delete outcome.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TokenRequest asks for a development identity token.
type TokenRequest struct {
	CallerID string `json:"caller_id"`
}

// TokenResponse carries an issued identity token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserListResponse(page query.UserPage) UserListResponse {
	users := make([]UserResponse, 0, len(page.Users))
	for i := range page.Users {
		users = append(users, NewUserResponse(&page.Users[i]))
	}
	return UserListResponse{
		Users:      users,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}
}

func NewDeleteResponse(r *domain.DeleteResult) DeleteResponse {
	return DeleteResponse{Success: r.Success, Message: r.Message}
}
