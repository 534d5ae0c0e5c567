package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TrackBD/trackbd_api/internal/models"
	"github.com/TrackBD/trackbd_api/pkg/smartsms"
)

// Messenger is the outbound WhatsApp capability. Implemented by
// smartsms.Client.
type Messenger interface {
	SendWhatsApp(ctx context.Context, recipient, message string) (*smartsms.SendResult, error)
}

// NotificationStore persists dispatch outcomes.
type NotificationStore interface {
	Create(ctx context.Context, l *models.NotificationLog) error
	ListByInstall(ctx context.Context, installID string) ([]models.NotificationLog, error)
}

// NotificationService builds status messages and dispatches them to the
// customer. Dispatch is best-effort and at-most-once: the install mutation is
// already persisted when dispatch runs, a failure never rolls it back, and
// failed sends are not retried.
type NotificationService struct {
	messenger Messenger
	repo      NotificationStore
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(messenger Messenger, repo NotificationStore) *NotificationService {
	return &NotificationService{messenger: messenger, repo: repo}
}

// BuildStatusMessage returns the customer-facing Bengali message for the
// install's current status. The second return is false for statuses that
// produce no message (NewOrder, PaymentPendingApproval).
func BuildStatusMessage(in *models.Install) (string, bool) {
	name := in.Customer.Name

	switch in.Status {
	case models.StatusDeviceShipped:
		courier, imei := "", ""
		if in.CourierService != nil {
			courier = *in.CourierService
		}
		if in.IMEI != nil {
			imei = *in.IMEI
		}
		return fmt.Sprintf("প্রিয় %s, আপনার জিপিএস ট্র্যাকারটি \"%s\" কুরিয়ারের মাধ্যমে পাঠানো হয়েছে। IMEI: %s. আমাদের টেকনিশিয়ান শীঘ্রই আপনার সাথে যোগাযোগ করবেন। ধন্যবাদ।", name, courier, imei), true

	case models.StatusInstallationScheduled:
		when := "শিঘ্রই"
		if in.InstallationAt != nil {
			when = formatScheduleTime(*in.InstallationAt)
		}
		return fmt.Sprintf("প্রিয় %s, আপনার জিপিএস ট্র্যাকার ইনস্টলেশনের জন্য %s সময় নির্ধারণ করা হয়েছে। আমাদের টেকনিশিয়ান আপনার সাথে যোগাযোগ করবেন। ধন্যবাদ।", name, when), true

	case models.StatusCompleted:
		return fmt.Sprintf("প্রিয় %s, আপনার জিপিএস ট্র্যাকার ইনস্টলেশন সফলভাবে সম্পন্ন হয়েছে। আমাদের পরিষেবা ব্যবহার করার জন্য ধন্যবাদ।", name), true

	case models.StatusPaymentReceived:
		return fmt.Sprintf("প্রিয় %s, আমরা আপনার পেমেন্ট পেয়েছি। আপনার জিপিএস ট্র্যাকার পরিষেবাটি এখন সম্পূর্ণরূপে সক্রিয়। ধন্যবাদ।", name), true

	case models.StatusCancelled:
		return fmt.Sprintf("প্রিয় %s, দুঃখিত, আপনার জিপিএস ট্র্যাকার অর্ডারটি (ID: %s) বাতিল করা হয়েছে। আরো তথ্যের জন্য আমাদের সাথে যোগাযোগ করুন।", name, shortOrderID(in.ID)), true
	}

	return "", false
}

// buildReminderMessage is the same-day installation reminder sent by the
// background worker.
func buildReminderMessage(in *models.Install) string {
	when := "শিঘ্রই"
	if in.InstallationAt != nil {
		when = formatScheduleTime(*in.InstallationAt)
	}
	return fmt.Sprintf("প্রিয় %s, আজ %s সময়ে আপনার জিপিএস ট্র্যাকার ইনস্টলেশনের কথা মনে করিয়ে দিচ্ছি। আমাদের টেকনিশিয়ান নির্ধারিত সময়ে পৌঁছে যাবেন। ধন্যবাদ।", in.Customer.Name, when)
}

// DispatchStatusChange sends the message for the install's new status and
// records the outcome. It returns nil when the status produces no message.
func (s *NotificationService) DispatchStatusChange(ctx context.Context, in *models.Install) *models.NotificationLog {
	message, ok := BuildStatusMessage(in)
	if !ok {
		return nil
	}
	return s.dispatch(ctx, in, in.Status, message)
}

// DispatchReminder sends the installation reminder and records the outcome.
func (s *NotificationService) DispatchReminder(ctx context.Context, in *models.Install) *models.NotificationLog {
	return s.dispatch(ctx, in, in.Status, buildReminderMessage(in))
}

// History returns the dispatch log of one install.
func (s *NotificationService) History(ctx context.Context, installID string) ([]models.NotificationLog, error) {
	return s.repo.ListByInstall(ctx, installID)
}

func (s *NotificationService) dispatch(ctx context.Context, in *models.Install, trigger models.InstallStatus, message string) *models.NotificationLog {
	entry := &models.NotificationLog{
		InstallID:     in.ID,
		Recipient:     in.Customer.Phone,
		TriggerStatus: trigger,
		Message:       message,
	}

	if recipient, err := smartsms.NormalizeRecipient(in.Customer.Phone); err != nil {
		// Malformed number: fail fast, no network call is attempted.
		entry.Outcome = models.NotificationSkipped
		detail := err.Error()
		entry.Detail = &detail
	} else {
		entry.Recipient = recipient
		if _, err := s.messenger.SendWhatsApp(ctx, recipient, message); err != nil {
			entry.Outcome = models.NotificationFailed
			detail := err.Error()
			entry.Detail = &detail
			log.Warn().Err(err).Str("install_id", in.ID).Msg("customer notification failed")
		} else {
			entry.Outcome = models.NotificationSent
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("install_id", in.ID).Msg("failed to record notification outcome")
	}
	return entry
}

// formatScheduleTime renders the installation time the way it is shown to
// customers.
func formatScheduleTime(t time.Time) string {
	return t.Format("2 January 2006, 3:04 PM")
}

// shortOrderID strips the install_ prefix for customer-facing ids.
func shortOrderID(id string) string {
	if _, rest, found := strings.Cut(id, "_"); found {
		return rest
	}
	return id
}
