package models

import "time"

// NotificationOutcome records what happened to a single dispatch attempt.
type NotificationOutcome string

const (
	// NotificationSent means the messaging API accepted the message.
	NotificationSent NotificationOutcome = "sent"
	// NotificationFailed means a send was attempted and rejected.
	NotificationFailed NotificationOutcome = "failed"
	// NotificationSkipped means no send was attempted (invalid recipient).
	NotificationSkipped NotificationOutcome = "skipped"
)

// NotificationLog is the persisted outcome of one customer notification.
// Dispatch is best-effort and at-most-once: rows are never retried.
type NotificationLog struct {
	ID            int64               `db:"id" json:"id"`
	InstallID     string              `db:"install_id" json:"installId"`
	Recipient     string              `db:"recipient" json:"recipient"`
	TriggerStatus InstallStatus       `db:"trigger_status" json:"triggerStatus"`
	Message       string              `db:"message" json:"message"`
	Outcome       NotificationOutcome `db:"outcome" json:"outcome"`
	Detail        *string             `db:"detail" json:"detail,omitempty"`
	CreatedAt     time.Time           `db:"created_at" json:"createdAt"`
}
