package sse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrackBD/trackbd_api/internal/models"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	client := hub.Register("admin-1")
	defer hub.Unregister("admin-1")

	in := &models.Install{
		ID:            "install_1",
		Customer:      models.Customer{Name: "Rahim Uddin", Phone: "01712345678"},
		ProductPrice:  5000,
		TechnicianFee: 500,
		Status:        models.StatusNewOrder,
	}
	NewHubNotifier(hub).NotifyInstallCreated(in)

	select {
	case data := <-client.Events:
		var event InstallEvent
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, EventInstallCreated, event.Event)
		assert.Equal(t, "install_1", event.InstallID)
		assert.Equal(t, int64(4500), event.AmountDue)
	default:
		t.Fatal("expected a broadcast event")
	}
}

func TestHubSkipsBroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	notifier := NewHubNotifier(hub)

	// No clients registered: must not panic or block.
	notifier.NotifyInstallStatusChanged(&models.Install{ID: "install_1"})
	assert.Zero(t, hub.ClientCount())
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	hub := NewHub()
	client := hub.Register("admin-1")
	hub.Unregister("admin-1")

	_, open := <-client.Events
	assert.False(t, open)
	assert.Zero(t, hub.ClientCount())
}
