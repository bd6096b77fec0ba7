// Package notify delivers user-facing notifications over a closed set of
// channels. Adding a channel means adding a constant, a transport and a case
// in the dispatcher switch.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Channel is the delivery medium for a notification.
type Channel int

const (
	ChannelRecord Channel = iota // persisted in-app notification record
	ChannelEmail
	ChannelSMS
	ChannelPush
)

// AllChannels lists every channel the dispatcher knows about.
var AllChannels = []Channel{ChannelRecord, ChannelEmail, ChannelSMS, ChannelPush}

func (c Channel) String() string {
	switch c {
	case ChannelRecord:
		return "record"
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	case ChannelPush:
		return "push"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Notification is the channel-agnostic message handed to transports.
type Notification struct {
	Type      string
	Title     string
	Message   string
	Data      map[string]any
	ActionURL string
	// DedupeKey lets downstream transports drop repeat deliveries when a
	// fan-out job is retried.
	DedupeKey string
}

// Delivery is the contract the worker depends on. Implementations are
// best-effort per channel.
type Delivery interface {
	Deliver(ctx context.Context, userID int64, n Notification, channels []Channel) error
}

// Transport sends a notification over one concrete medium.
type Transport interface {
	Send(ctx context.Context, userID int64, n Notification) error
}

// Dispatcher routes a notification to the transport for each requested
// channel. A transport failure does not stop delivery on other channels.
type Dispatcher struct {
	record Transport
	email  Transport
	sms    Transport
	push   Transport
}

func NewDispatcher(record, email, sms, push Transport) *Dispatcher {
	return &Dispatcher{record: record, email: email, sms: sms, push: push}
}

func (d *Dispatcher) Deliver(ctx context.Context, userID int64, n Notification, channels []Channel) error {
	var errs []error
	for _, ch := range channels {
		transport, err := d.transportFor(ch)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := transport.Send(ctx, userID, n); err != nil {
			errs = append(errs, fmt.Errorf("%s delivery to user %d: %w", ch, userID, err))
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) transportFor(ch Channel) (Transport, error) {
	switch ch {
	case ChannelRecord:
		return d.record, nil
	case ChannelEmail:
		return d.email, nil
	case ChannelSMS:
		return d.sms, nil
	case ChannelPush:
		return d.push, nil
	default:
		return nil, fmt.Errorf("unknown notification channel %d", int(ch))
	}
}
