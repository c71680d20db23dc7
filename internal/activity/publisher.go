package activity

import (
	"context"
	"log/slog"
	"time"
)

// Publisher accepts activity events from domain services. Implementations
// must never block domain operations; dropping an event under pressure is
// preferable to stalling a report mutation.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// ChannelPublisher hands events to a buffered channel drained by a Worker.
// When the buffer is full the event is dropped and counted in the log; the
// activity trail is observability, not the system of record.
type ChannelPublisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewChannelPublisher(inbox chan<- Event, logger *slog.Logger) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox, logger: logger}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "activity event dropped, inbox full",
			"action", string(event.Action),
			"report_id", event.ReportID,
		)
	}
}

// NopPublisher discards events; used in tests that do not assert on the
// activity trail.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) {}
