package stream

import (
	"context"
	"time"

	"github.com/spec-kit/record-service/internal/domain"
	"github.com/spec-kit/record-service/internal/query"
	"github.com/spec-kit/record-service/internal/repository"
)

// UserGeneratorConfig wires a UserGenerator.
type UserGeneratorConfig struct {
	Users    repository.UserRepository
	Registry *Registry
	Interval time.Duration
}

// UserGenerator replays user records to watchers in round-robin order.
type UserGenerator struct {
	cfg UserGeneratorConfig
}

// NewUserGenerator builds a generator.
func NewUserGenerator(cfg UserGeneratorConfig) *UserGenerator {
	return &UserGenerator{cfg: cfg}
}

// Watch subscribes to the users matching roleFilter. The matching set is
// taken once, at subscription time. When nothing matches the subscription
// stays open but never emits.
func (g *UserGenerator) Watch(ctx context.Context, roleFilter string) (*Subscription[domain.User], error) {
	users, err := g.cfg.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	watched := query.FilterUsersByRole(users, roleFilter)

	var next nextFunc[domain.User]
	if len(watched) > 0 {
		cursor := 0
		next = func(context.Context) (domain.User, bool) {
			user := watched[cursor%len(watched)]
			cursor++
			return user, true
		}
	}
	return start(ctx, g.cfg.Registry, KindUsers, g.cfg.Interval, next), nil
}
