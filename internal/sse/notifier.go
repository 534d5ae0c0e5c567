package sse

import (
	"time"

	"github.com/TrackBD/trackbd_api/internal/models"
)

// InstallNotifier is the interface services use to emit install events.
type InstallNotifier interface {
	NotifyInstallCreated(in *models.Install)
	NotifyInstallStatusChanged(in *models.Install)
}

// HubNotifier implements InstallNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyInstallCreated(in *models.Install) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(installToEvent(EventInstallCreated, in))
}

func (n *HubNotifier) NotifyInstallStatusChanged(in *models.Install) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(installToEvent(EventInstallStatusChanged, in))
}

func installToEvent(eventType EventType, in *models.Install) *InstallEvent {
	return &InstallEvent{
		Event:        eventType,
		InstallID:    in.ID,
		CustomerName: in.Customer.Name,
		TechnicianID: in.TechnicianID,
		Status:       in.Status,
		AmountDue:    in.ComputeAmountDue(),
		Timestamp:    time.Now(),
	}
}
