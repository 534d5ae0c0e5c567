package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TrackBD/trackbd_api/internal/models"
	"github.com/TrackBD/trackbd_api/internal/service"
)

// ReminderStore is the repository surface the reminder worker depends on.
type ReminderStore interface {
	ListDueForReminder(ctx context.Context, now time.Time, lead time.Duration) ([]models.Install, error)
	MarkReminderSent(ctx context.Context, installID string, at time.Time) error
}

// ReminderWorker sends the same-day installation reminder to customers whose
// installation time is coming up. Each install is reminded at most once per
// scheduled time.
type ReminderWorker struct {
	repo          ReminderStore
	notifications *service.NotificationService
	interval      time.Duration
	leadTime      time.Duration
}

// NewReminderWorker constructs a ReminderWorker.
func NewReminderWorker(repo ReminderStore, notifications *service.NotificationService, interval, leadTime time.Duration) *ReminderWorker {
	return &ReminderWorker{
		repo:          repo,
		notifications: notifications,
		interval:      interval,
		leadTime:      leadTime,
	}
}

// Start begins the reminder loop and listens for context cancellation.
func (w *ReminderWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("lead_time", w.leadTime).Msg("Starting reminder worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Reminder worker stopped")
			return
		}
	}
}

func (w *ReminderWorker) run(ctx context.Context) {
	now := time.Now()
	due, err := w.repo.ListDueForReminder(ctx, now, w.leadTime)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list installs due for reminder")
		return
	}

	for i := range due {
		install := &due[i]
		outcome := w.notifications.DispatchReminder(ctx, install)
		// The mark is set regardless of the send outcome; a failed reminder
		// is recorded, not retried.
		if err := w.repo.MarkReminderSent(ctx, install.ID, now); err != nil {
			log.Error().Err(err).Str("install_id", install.ID).Msg("Failed to mark reminder as sent")
			continue
		}
		log.Info().
			Str("install_id", install.ID).
			Str("outcome", string(outcome.Outcome)).
			Msg("installation reminder dispatched")
	}
}
