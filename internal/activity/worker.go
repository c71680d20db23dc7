package activity

import (
	"context"
	"log/slog"
)

// Worker drains the activity inbox and appends each event to the store,
// keeping domain mutations decoupled from activity persistence.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is cancelled. Store failures are
// logged and skipped; a broken activity sink must not stop the drain loop and
// back-pressure the domain.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "append activity event",
					"action", string(event.Action),
					"error", err,
				)
			}
		}
	}
}
