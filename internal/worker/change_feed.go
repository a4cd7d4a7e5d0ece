package worker

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/spec-kit/record-service/internal/events"
	"github.com/spec-kit/record-service/internal/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher forwards encoded change events to another process.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// ChangeFeed fans record change events out to the log and, when configured,
// to the Postgres change log and a Redis channel.
type ChangeFeed struct {
	dispatcher events.Dispatcher
	changeLog  repository.ChangeLogRepository
	publisher  Publisher
	logger     *zap.Logger
}

// ChangeFeedDependencies bundles the sinks of a ChangeFeed. ChangeLog and
// Publisher are optional.
type ChangeFeedDependencies struct {
	Dispatcher events.Dispatcher
	ChangeLog  repository.ChangeLogRepository
	Publisher  Publisher
	Logger     *zap.Logger
}

// NewChangeFeed creates the worker.
func NewChangeFeed(deps ChangeFeedDependencies) *ChangeFeed {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeFeed{
		dispatcher: deps.Dispatcher,
		changeLog:  deps.ChangeLog,
		publisher:  deps.Publisher,
		logger:     logger,
	}
}

// StartChangeFeed subscribes the feed to every record event.
func StartChangeFeed(feed *ChangeFeed) {
	if feed == nil || feed.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		feed.dispatcher.Subscribe(eventType, feed.handle)
	}
}

func (f *ChangeFeed) handle(ctx context.Context, event events.Event) error {
	f.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("resource", string(event.Resource)),
		zap.String("resource_id", event.ResourceID),
		zap.Any("payload", event.Payload))

	if f.changeLog == nil && f.publisher == nil {
		return nil
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	var errs []error
	if f.changeLog != nil {
		if err := f.appendChangeLog(ctx, event, encoded); err != nil {
			errs = append(errs, fmt.Errorf("change log: %w", err))
		}
	}
	if f.publisher != nil {
		if err := f.publisher.Publish(ctx, encoded); err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (f *ChangeFeed) appendChangeLog(ctx context.Context, event events.Event, encoded []byte) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	entry := &repository.ChangeLogEntry{
		EventID:    event.ID,
		EventType:  string(event.Type),
		Resource:   string(event.Resource),
		ResourceID: event.ResourceID,
		ActorID:    event.ActorID,
		Payload:    payload,
		OccurredAt: event.Timestamp,
	}
	if err := f.changeLog.Append(ctx, entry); err != nil {
		return err
	}
	f.logger.Debug("change recorded", zap.String("event_id", event.ID), zap.Int("bytes", len(encoded)))
	return nil
}
