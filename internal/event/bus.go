package event

import (
	"context"
	"log/slog"

	"crewdesk.app/core/common/logger"
)

// Handler reacts to a published event. Handler errors are logged and never
// propagated to the publisher; a failed side effect must not fail the
// mutation that already committed.
type Handler interface {
	Name() string
	Handle(ctx context.Context, e Event) error
}

// Bus is an in-process event bus. Publish invokes handlers synchronously in
// subscription order and returns only once every handler has run.
type Bus struct {
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		EventType: logger.Ptr(string(e.EventType())),
	})
	for _, h := range b.handlers {
		if err := h.Handle(ctx, e); err != nil {
			slog.ErrorContext(ctx, "event handler failed",
				"handler", h.Name(),
				"channel", e.Channel(),
				"error", err)
		}
	}
}
