package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shirase/yoyaku/internal/event"
	"github.com/shirase/yoyaku/internal/store"
)

// SlotStore persists fallback payloads for popup pickup.
type SlotStore interface {
	PutResult(p store.ResultPayload) error
	PutError(p store.ErrorPayload) error
}

// Presenter asks the popup surface to present itself to the user after a
// fallback write.
type Presenter interface {
	Present(ctx context.Context) error
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(ctx context.Context) error

func (f PresenterFunc) Present(ctx context.Context) error { return f(ctx) }

// Channel is the delivery channel between the orchestrator and the UI
// surfaces: direct sends through the hub, persisted fallback through the
// slot store.
type Channel struct {
	hub       *Hub
	slots     SlotStore
	presenter Presenter
	logger    *slog.Logger
	now       func() time.Time
}

// NewChannel creates a Channel. presenter may be nil when no surface can be
// summoned.
func NewChannel(hub *Hub, slots SlotStore, presenter Presenter) *Channel {
	return &Channel{
		hub:       hub,
		slots:     slots,
		presenter: presenter,
		logger:    slog.Default(),
		now:       time.Now,
	}
}

// Deliver attempts a direct send to destination and reports whether any live
// subscriber received the event.
func (c *Channel) Deliver(destination string, ev event.Event) bool {
	return c.hub.Send(destination, ev)
}

// Fallback persists a terminal event for popup pickup: completes go to the
// result slot, failures to the error slot. Either write unconditionally
// overwrites an unread payload. Loading events have no fallback and are
// ignored. After a successful write the presenter is asked to surface the
// popup.
func (c *Channel) Fallback(ctx context.Context, ev event.Event) error {
	now := c.now()
	switch ev.Kind {
	case event.KindComplete:
		if err := c.slots.PutResult(store.ResultPayload{
			Summary:      ev.Summary,
			OriginalText: ev.Preview,
			Timestamp:    now,
		}); err != nil {
			return fmt.Errorf("writing result slot: %w", err)
		}
	case event.KindKeyMissing, event.KindEmpty:
		if err := c.slots.PutError(store.ErrorPayload{
			Message:   ev.Message,
			Timestamp: now,
		}); err != nil {
			return fmt.Errorf("writing error slot: %w", err)
		}
	default:
		return nil
	}

	if c.presenter != nil {
		if err := c.presenter.Present(ctx); err != nil {
			// The payload is already parked; the popup will find it on its
			// next open even without the nudge.
			c.logger.Warn("presenting popup failed", "request_id", ev.RequestID, "error", err)
		}
	}
	return nil
}
