package service

import (
	"context"
	"strings"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/spec-kit/record-service/internal/auth"
	"github.com/spec-kit/record-service/internal/domain"
	"github.com/spec-kit/record-service/internal/events"
	"github.com/spec-kit/record-service/internal/query"
	"github.com/spec-kit/record-service/internal/repository"
	"github.com/spec-kit/record-service/internal/stream"
	apperrors "github.com/spec-kit/record-service/pkg/util/errorutil"
)

// UserService coordinates user record workflows.
type UserService struct {
	users     repository.UserRepository
	generator *stream.UserGenerator
	events    publisher
	logger    *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo      repository.UserRepository
	Registry      *stream.Registry
	WatchInterval time.Duration
	Dispatcher    events.Dispatcher
	Clock         clock.Clock
	Logger        *zap.Logger
}

// CreateUserInput describes user creation payload. An empty Role means USER.
type CreateUserInput struct {
	Name  string
	Email string
	Role  string
}

// UpdateUserInput describes a partial user update; nil fields are kept.
type UpdateUserInput struct {
	Name  *string
	Email *string
	Role  *string
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	clk, logger := defaults(deps.Clock, deps.Logger)
	return &UserService{
		users: deps.UserRepo,
		generator: stream.NewUserGenerator(stream.UserGeneratorConfig{
			Users:    deps.UserRepo,
			Registry: deps.Registry,
			Interval: deps.WatchInterval,
		}),
		events: publisher{dispatcher: deps.Dispatcher, clock: clk, logger: logger},
		logger: logger,
	}
}

// GetUser fetches a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns one page of users, optionally restricted to a role.
func (s *UserService) ListUsers(ctx context.Context, role string, page, pageSize int) (query.UserPage, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return query.UserPage{}, err
	}
	return query.ListUsers(users, role, page, pageSize), nil
}

// CreateUser stores a new user. The caller must carry an identity token.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if _, ok := auth.TokenFromContext(ctx); !ok {
		return nil, apperrors.NewUnauthorized("authentication required to create users")
	}

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email are required", map[string]any{
			"name":  input.Name,
			"email": input.Email,
		})
	}

	role := domain.UserRoleUser
	if strings.TrimSpace(input.Role) != "" {
		parsed, err := parseRole(input.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	user := &domain.User{Name: name, Email: email, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	s.events.publish(ctx, userEvent(events.EventUserCreated, user))
	return user, nil
}

// UpdateUser applies a partial update.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	patch, err := input.patch()
	if err != nil {
		return nil, err
	}

	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, userEvent(events.EventUserUpdated, user))
	return user, nil
}

// DeleteUser removes a user.
func (s *UserService) DeleteUser(ctx context.Context, id string) (*domain.DeleteResult, error) {
	result, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user deleted", zap.String("user_id", id))
	s.events.publish(ctx, deletedEvent(events.EventUserDeleted, events.ResourceUser, id, result))
	return result, nil
}

// WatchUsers streams the users matching roleFilter until ctx ends or the
// subscription is cancelled.
func (s *UserService) WatchUsers(ctx context.Context, roleFilter string) (*stream.Subscription[domain.User], error) {
	return s.generator.Watch(ctx, roleFilter)
}

func (in UpdateUserInput) patch() (domain.UserPatch, error) {
	var patch domain.UserPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return patch, apperrors.NewValidationError("name must not be empty", nil)
		}
		patch.Name = &name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return patch, apperrors.NewValidationError("email must not be empty", nil)
		}
		patch.Email = &email
	}
	if in.Role != nil {
		role, err := parseRole(*in.Role)
		if err != nil {
			return patch, err
		}
		patch.Role = &role
	}
	return patch, nil
}

func parseRole(raw string) (domain.UserRole, error) {
	role, ok := domain.ParseUserRole(raw)
	if !ok {
		return "", apperrors.NewValidationError("invalid role", map[string]any{
			"role":    raw,
			"allowed": []domain.UserRole{domain.UserRoleAdmin, domain.UserRoleUser, domain.UserRoleModerator},
		})
	}
	return role, nil
}
