package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherDeliversByType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventUserCreated, func(_ context.Context, e Event) error {
		got = append(got, "created:"+e.ResourceID)
		return nil
	})
	d.Subscribe(EventUserDeleted, func(_ context.Context, e Event) error {
		got = append(got, "deleted:"+e.ResourceID)
		return nil
	})

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventUserCreated, ResourceID: "7"}))
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventProductCreated, ResourceID: "8"}))
	assert.Equal(t, []string{"created:7"}, got)
}

func TestDispatcherRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("sink down")
	calls := 0
	d.Subscribe(EventProductPriceChanged, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventProductPriceChanged, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventProductPriceChanged})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
