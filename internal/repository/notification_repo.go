package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/TrackBD/trackbd_api/internal/models"
)

// NotificationRepository stores the outcome of outbound customer messages.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a dispatch log row.
func (r *NotificationRepository) Create(ctx context.Context, l *models.NotificationLog) error {
	const q = `
        INSERT INTO notification_logs (install_id, recipient, trigger_status, message, outcome, detail)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		l.InstallID, l.Recipient, l.TriggerStatus, l.Message, l.Outcome, l.Detail,
	).Scan(&l.ID, &l.CreatedAt)
}

// ListByInstall returns the dispatch history of one install, newest first.
func (r *NotificationRepository) ListByInstall(ctx context.Context, installID string) ([]models.NotificationLog, error) {
	var out []models.NotificationLog
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, install_id, recipient, trigger_status, message, outcome, detail, created_at
		FROM notification_logs
		WHERE install_id = $1
		ORDER BY id DESC
	`, installID)
	return out, err
}
