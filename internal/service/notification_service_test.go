package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrackBD/trackbd_api/internal/models"
)

func TestBuildStatusMessage(t *testing.T) {
	at := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

	t.Run("device shipped includes courier and imei", func(t *testing.T) {
		in := newTestInstall("install_1", models.StatusDeviceShipped)
		in.CourierService = strptr("Sundarban")
		in.IMEI = strptr("356938035643809")

		msg, ok := BuildStatusMessage(in)
		require.True(t, ok)
		assert.Contains(t, msg, "Rahim Uddin")
		assert.Contains(t, msg, "Sundarban")
		assert.Contains(t, msg, "356938035643809")
	})

	t.Run("scheduled includes formatted time", func(t *testing.T) {
		in := newTestInstall("install_1", models.StatusInstallationScheduled)
		in.InstallationAt = &at

		msg, ok := BuildStatusMessage(in)
		require.True(t, ok)
		assert.Contains(t, msg, "14 March 2026, 3:30 PM")
	})

	t.Run("scheduled without time falls back", func(t *testing.T) {
		in := newTestInstall("install_1", models.StatusInstallationScheduled)

		msg, ok := BuildStatusMessage(in)
		require.True(t, ok)
		assert.Contains(t, msg, "শিঘ্রই")
	})

	t.Run("cancelled includes short order id", func(t *testing.T) {
		in := newTestInstall("install_1699999999999", models.StatusCancelled)

		msg, ok := BuildStatusMessage(in)
		require.True(t, ok)
		assert.Contains(t, msg, "1699999999999")
		assert.NotContains(t, msg, "install_")
	})

	t.Run("silent statuses", func(t *testing.T) {
		for _, status := range []models.InstallStatus{models.StatusNewOrder, models.StatusPaymentPendingApproval} {
			in := newTestInstall("install_1", status)
			_, ok := BuildStatusMessage(in)
			assert.False(t, ok, "no message for %s", status)
		}
	})

	t.Run("message statuses", func(t *testing.T) {
		for _, status := range []models.InstallStatus{
			models.StatusDeviceShipped, models.StatusInstallationScheduled,
			models.StatusCompleted, models.StatusPaymentReceived, models.StatusCancelled,
		} {
			in := newTestInstall("install_1", status)
			_, ok := BuildStatusMessage(in)
			assert.True(t, ok, "message expected for %s", status)
		}
	})
}

func TestDispatchStatusChangeSent(t *testing.T) {
	messenger := &fakeMessenger{}
	store := &fakeNotificationStore{}
	svc := NewNotificationService(messenger, store)

	in := newTestInstall("install_1", models.StatusCompleted)
	entry := svc.DispatchStatusChange(context.Background(), in)

	require.NotNil(t, entry)
	assert.Equal(t, models.NotificationSent, entry.Outcome)
	assert.Equal(t, "8801712345678", entry.Recipient, "recipient is recorded normalized")
	assert.Equal(t, models.StatusCompleted, entry.TriggerStatus)
	assert.Nil(t, entry.Detail)
	require.Len(t, store.logs, 1)
	assert.Equal(t, []string{"8801712345678"}, messenger.sent)
}

func TestDispatchStatusChangeSilentStatus(t *testing.T) {
	messenger := &fakeMessenger{}
	store := &fakeNotificationStore{}
	svc := NewNotificationService(messenger, store)

	in := newTestInstall("install_1", models.StatusNewOrder)
	entry := svc.DispatchStatusChange(context.Background(), in)

	assert.Nil(t, entry)
	assert.Empty(t, messenger.sent)
	assert.Empty(t, store.logs, "a silent status leaves no log row")
}

func TestDispatchStatusChangeFailed(t *testing.T) {
	messenger := &fakeMessenger{err: errStoreDown}
	store := &fakeNotificationStore{}
	svc := NewNotificationService(messenger, store)

	in := newTestInstall("install_1", models.StatusCompleted)
	entry := svc.DispatchStatusChange(context.Background(), in)

	require.NotNil(t, entry)
	assert.Equal(t, models.NotificationFailed, entry.Outcome)
	require.NotNil(t, entry.Detail)
	assert.Contains(t, *entry.Detail, "store down")
	require.Len(t, store.logs, 1, "failed sends are still recorded")
}

func TestDispatchStatusChangeSkippedInvalidPhone(t *testing.T) {
	messenger := &fakeMessenger{}
	store := &fakeNotificationStore{}
	svc := NewNotificationService(messenger, store)

	in := newTestInstall("install_1", models.StatusCompleted)
	in.Customer.Phone = "12345"
	entry := svc.DispatchStatusChange(context.Background(), in)

	require.NotNil(t, entry)
	assert.Equal(t, models.NotificationSkipped, entry.Outcome)
	assert.Empty(t, messenger.sent, "invalid phone must not reach the gateway")
	require.Len(t, store.logs, 1)
}

func TestDispatchReminder(t *testing.T) {
	messenger := &fakeMessenger{}
	store := &fakeNotificationStore{}
	svc := NewNotificationService(messenger, store)

	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	in := newTestInstall("install_1", models.StatusInstallationScheduled)
	in.InstallationAt = &at

	entry := svc.DispatchReminder(context.Background(), in)
	require.NotNil(t, entry)
	assert.Equal(t, models.NotificationSent, entry.Outcome)
	assert.Contains(t, messenger.lastMsg, "14 March 2026, 10:00 AM")
}

func TestHistory(t *testing.T) {
	messenger := &fakeMessenger{}
	store := &fakeNotificationStore{}
	svc := NewNotificationService(messenger, store)
	ctx := context.Background()

	svc.DispatchStatusChange(ctx, newTestInstall("install_1", models.StatusCompleted))
	svc.DispatchStatusChange(ctx, newTestInstall("install_2", models.StatusCompleted))

	logs, err := svc.History(ctx, "install_1")
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
