package schedule

import (
	"context"
	"log/slog"
	"time"
)

// Worker periodically sweeps for due schedules and triggers them.
type Worker struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewWorker(service *Service, interval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		service:  service,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps on every tick until the context is cancelled. A failed sweep is
// logged and retried on the next tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.service.RunDue(ctx, w.now()); err != nil {
				w.logger.ErrorContext(ctx, "schedule sweep failed", "error", err)
			}
		}
	}
}
