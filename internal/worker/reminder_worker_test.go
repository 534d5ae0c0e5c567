package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrackBD/trackbd_api/internal/models"
	"github.com/TrackBD/trackbd_api/internal/service"
	"github.com/TrackBD/trackbd_api/pkg/smartsms"
)

type fakeReminderStore struct {
	due    []models.Install
	marked []string
}

func (s *fakeReminderStore) ListDueForReminder(_ context.Context, _ time.Time, _ time.Duration) ([]models.Install, error) {
	return s.due, nil
}

func (s *fakeReminderStore) MarkReminderSent(_ context.Context, installID string, _ time.Time) error {
	s.marked = append(s.marked, installID)
	return nil
}

type fakeMessenger struct {
	sent []string
	err  error
}

func (m *fakeMessenger) SendWhatsApp(_ context.Context, recipient, _ string) (*smartsms.SendResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, recipient)
	return &smartsms.SendResult{}, nil
}

type fakeLogStore struct {
	logs []models.NotificationLog
}

func (s *fakeLogStore) Create(_ context.Context, l *models.NotificationLog) error {
	s.logs = append(s.logs, *l)
	return nil
}

func (s *fakeLogStore) ListByInstall(_ context.Context, _ string) ([]models.NotificationLog, error) {
	return s.logs, nil
}

func dueInstall(id string) models.Install {
	at := time.Now().Add(2 * time.Hour)
	return models.Install{
		ID: id,
		Customer: models.Customer{
			Name:  "Rahim Uddin",
			Phone: "01712345678",
		},
		Status:         models.StatusInstallationScheduled,
		InstallationAt: &at,
	}
}

func TestReminderWorkerRun(t *testing.T) {
	store := &fakeReminderStore{due: []models.Install{dueInstall("install_1"), dueInstall("install_2")}}
	messenger := &fakeMessenger{}
	logs := &fakeLogStore{}
	w := NewReminderWorker(store, service.NewNotificationService(messenger, logs), time.Minute, 3*time.Hour)

	w.run(context.Background())

	assert.Equal(t, []string{"install_1", "install_2"}, store.marked)
	assert.Len(t, messenger.sent, 2)
	require.Len(t, logs.logs, 2)
	assert.Equal(t, models.NotificationSent, logs.logs[0].Outcome)
}

func TestReminderWorkerMarksFailedSends(t *testing.T) {
	store := &fakeReminderStore{due: []models.Install{dueInstall("install_1")}}
	messenger := &fakeMessenger{err: context.DeadlineExceeded}
	logs := &fakeLogStore{}
	w := NewReminderWorker(store, service.NewNotificationService(messenger, logs), time.Minute, 3*time.Hour)

	w.run(context.Background())

	// Failed reminders are recorded and marked, never retried.
	assert.Equal(t, []string{"install_1"}, store.marked)
	require.Len(t, logs.logs, 1)
	assert.Equal(t, models.NotificationFailed, logs.logs[0].Outcome)
}

func TestReminderWorkerStopsOnCancel(t *testing.T) {
	store := &fakeReminderStore{}
	w := NewReminderWorker(store, service.NewNotificationService(&fakeMessenger{}, &fakeLogStore{}), time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
