package notify

import (
	"context"
	"log/slog"
)

// logTransport stands in for a real provider integration. It records the
// delivery in the structured log so staging environments can verify fan-out
// without an external dependency.
type logTransport struct {
	channel Channel
	logger  *slog.Logger
}

func NewLogTransport(channel Channel, logger *slog.Logger) Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &logTransport{channel: channel, logger: logger}
}

func (t *logTransport) Send(ctx context.Context, userID int64, n Notification) error {
	t.logger.InfoContext(ctx, "notification delivered",
		"channel", t.channel.String(),
		"user_id", userID,
		"type", n.Type,
		"title", n.Title,
		"dedupe_key", n.DedupeKey)
	return nil
}

// NewLogDispatcher wires a dispatcher with log transports on every channel.
func NewLogDispatcher(logger *slog.Logger) *Dispatcher {
	return NewDispatcher(
		NewLogTransport(ChannelRecord, logger),
		NewLogTransport(ChannelEmail, logger),
		NewLogTransport(ChannelSMS, logger),
		NewLogTransport(ChannelPush, logger),
	)
}
