// Package stream drives the periodic watch streams. Every subscription owns
// one goroutine and one timer; cancelling it stops both and closes its
// events channel.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.uber.org/zap"
)

// Kind names a stream for logging and metrics.
type Kind string

const (
	KindPriceUpdates Kind = "price_updates"
	KindUsers        Kind = "users"
)

// Observer receives subscription lifecycle and emission notifications.
type Observer interface {
	SubscriptionOpened(kind string)
	SubscriptionClosed(kind string)
	EventEmitted(kind string)
}

// Subscription is one subscriber's cursor over a stream.
type Subscription[T any] struct {
	id     string
	kind   Kind
	events chan T
	cancel context.CancelFunc
	done   chan struct{}
}

// ID identifies the subscription in logs.
func (s *Subscription[T]) ID() string { return s.id }

// Events yields emitted events; it is closed once the subscription ends.
func (s *Subscription[T]) Events() <-chan T { return s.events }

// Done is closed after the subscription loop has exited.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Cancel stops the subscription and waits for its loop to exit. It is safe
// to call more than once and from several goroutines.
func (s *Subscription[T]) Cancel() {
	s.cancel()
	<-s.done
}

// nextFunc produces the event of one tick, or false to emit nothing for it.
type nextFunc[T any] func(ctx context.Context) (T, bool)

// Registry tracks live subscriptions so they can be counted and shut down together.
type Registry struct {
	clock    clock.Clock
	logger   *zap.Logger
	observer Observer

	mu     sync.Mutex
	active map[string]func()
	closed bool
}

// NewRegistry builds a registry; observer may be nil.
func NewRegistry(clk clock.Clock, logger *zap.Logger, observer Observer) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		clock:    clk,
		logger:   logger,
		observer: observer,
		active:   make(map[string]func()),
	}
}

// Active returns the number of live subscriptions.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// CloseAll cancels every live subscription and waits for them to exit.
// Subscriptions started afterwards end immediately.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	r.closed = true
	cancels := make([]func(), 0, len(r.active))
	for _, cancel := range r.active {
		cancels = append(cancels, cancel)
	}
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (r *Registry) register(id string, kind Kind, cancel func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.active[id] = cancel
	if r.observer != nil {
		r.observer.SubscriptionOpened(string(kind))
	}
	r.logger.Debug("subscription opened", zap.String("stream", string(kind)), zap.String("subscription_id", id))
	return true
}

func (r *Registry) release(id string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[id]; !ok {
		return
	}
	delete(r.active, id)
	if r.observer != nil {
		r.observer.SubscriptionClosed(string(kind))
	}
	r.logger.Debug("subscription closed", zap.String("stream", string(kind)), zap.String("subscription_id", id))
}

func (r *Registry) emitted(kind Kind) {
	if r.observer != nil {
		r.observer.EventEmitted(string(kind))
	}
}

// start launches a subscription that calls next every interval. A nil next
// yields a subscription that never ticks and only waits for cancellation.
func start[T any](ctx context.Context, r *Registry, kind Kind, interval time.Duration, next nextFunc[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		id:     uuid.NewString(),
		kind:   kind,
		events: make(chan T),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if !r.register(sub.id, kind, sub.Cancel) {
		cancel()
		next = nil
	}

	var timer clock.Timer
	if next != nil {
		timer = r.clock.NewTimer(interval)
	}
	go sub.run(ctx, r, interval, timer, next)
	return sub
}

func (s *Subscription[T]) run(ctx context.Context, r *Registry, interval time.Duration, timer clock.Timer, next nextFunc[T]) {
	defer close(s.done)
	defer close(s.events)
	defer r.release(s.id, s.kind)

	if timer == nil {
		<-ctx.Done()
		return
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.Chan():
		}

		if ev, ok := next(ctx); ok {
			select {
			case s.events <- ev:
				r.emitted(s.kind)
			case <-ctx.Done():
				return
			}
		}
		timer.Reset(interval)
	}
}
