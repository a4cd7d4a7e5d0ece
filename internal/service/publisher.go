package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/spec-kit/record-service/internal/auth"
	"github.com/spec-kit/record-service/internal/domain"
	"github.com/spec-kit/record-service/internal/events"
)

// publisher stamps and dispatches change events. Handler failures are logged
// and never fail the mutation that caused them.
type publisher struct {
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock.Now()
	}
	if event.ActorID == nil {
		if callerID, ok := auth.CallerIDFromContext(ctx); ok {
			event.ActorID = &callerID
		}
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("resource_id", event.ResourceID),
			zap.Error(err))
	}
}

func userEvent(eventType events.EventType, u *domain.User) events.Event {
	return events.Event{
		Type:       eventType,
		Resource:   events.ResourceUser,
		ResourceID: u.ID,
		Payload: events.UserPayload{
			Name:  u.Name,
			Email: u.Email,
			Role:  string(u.Role),
		},
	}
}

func productEvent(eventType events.EventType, p *domain.Product) events.Event {
	return events.Event{
		Type:       eventType,
		Resource:   events.ResourceProduct,
		ResourceID: p.ID,
		Payload: events.ProductPayload{
			Name:      p.Name,
			Category:  p.Category,
			Price:     p.Price,
			Stock:     p.Stock,
			Available: p.Available,
		},
	}
}

func deletedEvent(eventType events.EventType, resource events.Resource, id string, result *domain.DeleteResult) events.Event {
	return events.Event{
		Type:       eventType,
		Resource:   resource,
		ResourceID: id,
		Payload:    events.DeletedPayload{Message: result.Message},
	}
}

func defaults(clk clock.Clock, logger *zap.Logger) (clock.Clock, *zap.Logger) {
	if clk == nil {
		clk = clock.WallClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return clk, logger
}
