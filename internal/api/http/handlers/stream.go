package handlers

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/spec-kit/record-service/internal/stream"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SSEConfig controls server-sent event responses. A zero Heartbeat disables
// keep-alive comments.
type SSEConfig struct {
	Clock     clock.Clock
	Heartbeat time.Duration
	Logger    *zap.Logger
}

func (cfg SSEConfig) withDefaults() SSEConfig {
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}

// serveEvents streams sub to the client as server-sent events named event.
// The subscription is cancelled once the client goes away or the stream ends.
func serveEvents[T any](c *fiber.Ctx, cfg SSEConfig, sub *stream.Subscription[T], event string, render func(T) any) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer sub.Cancel()

		var heartbeat <-chan time.Time
		var timer clock.Timer
		if cfg.Heartbeat > 0 {
			timer = cfg.Clock.NewTimer(cfg.Heartbeat)
			defer timer.Stop()
			heartbeat = timer.Chan()
		}

		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := writeEvent(w, sub.ID(), event, render(ev)); err != nil {
					cfg.Logger.Debug("sse client gone", zap.String("subscription_id", sub.ID()), zap.Error(err))
					return
				}
			case <-heartbeat:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
				timer.Reset(cfg.Heartbeat)
			}
		}
	})
	return nil
}

func writeEvent(w *bufio.Writer, id, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", id, event, data); err != nil {
		return err
	}
	return w.Flush()
}
