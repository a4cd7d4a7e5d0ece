package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/juju/clock"

	"github.com/spec-kit/record-service/internal/domain"
	apperrors "github.com/spec-kit/record-service/pkg/util/errorutil"
)

// UserRepository defines access to the user records.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) (*domain.DeleteResult, error)
}

type userRepository struct {
	mu    sync.RWMutex
	clock clock.Clock
	users records[domain.User]
}

// NewUserRepository returns an in-memory implementation holding seed in order.
// Seed entries without timestamps are stamped with the current time.
func NewUserRepository(clk clock.Clock, seed ...domain.User) UserRepository {
	r := &userRepository{clock: clk, users: newRecords[domain.User]()}
	now := clk.Now()
	for _, user := range seed {
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		if user.UpdatedAt.IsZero() {
			user.UpdatedAt = user.CreatedAt
		}
		r.users.put(user.ID, user)
	}
	return r
}

func (r *userRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users.list(), nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users.get(id)
	if !ok {
		return nil, userNotFound(id)
	}
	return &user, nil
}

// Create assigns ID and timestamps to user and stores a copy of it.
func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(user.Email, "") {
		return emailExists(user.Email)
	}

	now := r.clock.Now()
	user.ID = r.users.newID()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users.put(user.ID, *user)
	return nil
}

func (r *userRepository) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users.get(id)
	if !ok {
		return nil, userNotFound(id)
	}
	if patch.Email != nil && r.emailTaken(*patch.Email, id) {
		return nil, emailExists(*patch.Email)
	}

	patch.Apply(&user)
	user.UpdatedAt = r.clock.Now()
	r.users.put(id, user)
	return &user, nil
}

func (r *userRepository) Delete(_ context.Context, id string) (*domain.DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.users.remove(id) {
		return nil, userNotFound(id)
	}
	return &domain.DeleteResult{
		Success: true,
		Message: fmt.Sprintf("User with ID %s successfully deleted", id),
	}, nil
}

// emailTaken reports whether another user than exceptID owns email.
func (r *userRepository) emailTaken(email, exceptID string) bool {
	for _, existing := range r.users.byID {
		if existing.Email == email && existing.ID != exceptID {
			return true
		}
	}
	return false
}

func userNotFound(id string) error {
	return apperrors.NewNotFound(fmt.Sprintf("user with ID %s", id), map[string]any{"id": id})
}

func emailExists(email string) error {
	return apperrors.NewAlreadyExists(
		fmt.Sprintf("user with email %s already exists", email),
		map[string]any{"email": email},
	)
}
