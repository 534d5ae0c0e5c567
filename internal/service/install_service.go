package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TrackBD/trackbd_api/internal/models"
	"github.com/TrackBD/trackbd_api/internal/repository"
	"github.com/TrackBD/trackbd_api/internal/sse"
	"github.com/TrackBD/trackbd_api/internal/utils"
)

// InstallStore is the repository surface InstallService depends on.
type InstallStore interface {
	Create(ctx context.Context, in *models.Install) error
	GetByID(ctx context.Context, id string) (*models.Install, error)
	Update(ctx context.Context, in *models.Install) error
	List(ctx context.Context, f repository.InstallFilter) ([]models.Install, int, error)
	AddNote(ctx context.Context, n *models.Note) error
	ListNotes(ctx context.Context, installID string) ([]models.Note, error)
	Metrics(ctx context.Context) (repository.InstallMetrics, error)
}

// CreateInstallInput carries the fields of a new order. The creating form
// always assigns a technician.
type CreateInstallInput struct {
	CustomerName    string `json:"customerName" binding:"required"`
	CustomerPhone   string `json:"customerPhone" binding:"required"`
	CustomerAddress string `json:"customerAddress" binding:"required"`
	ProductPrice    int64  `json:"productPrice"`
	TechnicianID    string `json:"technicianId" binding:"required"`
	TechnicianFee   int64  `json:"technicianFee"`
}

// ShipInput is the precondition gate for DeviceShipped: a status change
// without these fields is rejected, never persisted.
type ShipInput struct {
	IMEI           string            `json:"imei" binding:"required"`
	CourierService string            `json:"courierService" binding:"required"`
	DeviceType     models.DeviceType `json:"deviceType" binding:"required"`
}

// StatusChangeResult pairs the persisted install with the outcome of the
// best-effort customer notification, when one was produced.
type StatusChangeResult struct {
	Install      *models.Install         `json:"install"`
	Notification *models.NotificationLog `json:"notification,omitempty"`
}

// InstallService is the order lifecycle engine. All status transitions go
// through it; the store never sees an invalid jump.
type InstallService struct {
	repo          InstallStore
	techRepo      TechnicianStore
	notifications *NotificationService
	events        sse.InstallNotifier
}

// NewInstallService constructs a new InstallService.
func NewInstallService(repo InstallStore, techRepo TechnicianStore, notifications *NotificationService, events sse.InstallNotifier) *InstallService {
	return &InstallService{
		repo:          repo,
		techRepo:      techRepo,
		notifications: notifications,
		events:        events,
	}
}

// Create registers a new order in status NewOrder. No customer message is
// produced at this stage.
func (s *InstallService) Create(ctx context.Context, in CreateInstallInput) (*models.Install, error) {
	if in.ProductPrice < 0 || in.TechnicianFee < 0 {
		return nil, utils.ErrInvalidAmount
	}
	if _, err := s.techRepo.GetByID(ctx, in.TechnicianID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrTechnicianNotFound
		}
		return nil, err
	}

	techID := in.TechnicianID
	install := &models.Install{
		ID: utils.GenerateInstallID(),
		Customer: models.Customer{
			Name:    strings.TrimSpace(in.CustomerName),
			Phone:   strings.TrimSpace(in.CustomerPhone),
			Address: strings.TrimSpace(in.CustomerAddress),
		},
		ProductPrice:  in.ProductPrice,
		TechnicianID:  &techID,
		TechnicianFee: in.TechnicianFee,
		Status:        models.StatusNewOrder,
		OrderDate:     time.Now(),
	}
	if err := s.repo.Create(ctx, install); err != nil {
		return nil, err
	}
	install.AmountDue = install.ComputeAmountDue()
	s.events.NotifyInstallCreated(install)
	log.Info().Str("install_id", install.ID).Str("technician_id", techID).Msg("install created")
	return install, nil
}

// Get returns one install with notes and the derived amount due. Technicians
// can only read their own assignments.
func (s *InstallService) Get(ctx context.Context, actor Actor, id string) (*models.Install, error) {
	install, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, install); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	install.Notes = notes
	install.AmountDue = install.ComputeAmountDue()
	return install, nil
}

// List returns installs matching the filter. Technicians are always scoped to
// their own assignments regardless of the requested filter.
func (s *InstallService) List(ctx context.Context, actor Actor, f repository.InstallFilter) ([]models.Install, int, error) {
	if !actor.IsAdmin() {
		f.TechnicianID = actor.ID
	}
	installs, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i := range installs {
		installs[i].AmountDue = installs[i].ComputeAmountDue()
	}
	return installs, total, nil
}

// Ship moves NewOrder to DeviceShipped, capturing the shipping details. The
// IMEI, courier and device type are a hard precondition.
func (s *InstallService) Ship(ctx context.Context, actor Actor, id string, in ShipInput, note string) (*StatusChangeResult, error) {
	if strings.TrimSpace(in.IMEI) == "" || strings.TrimSpace(in.CourierService) == "" {
		return nil, utils.ErrMissingShippingInfo
	}
	if in.DeviceType != models.DeviceVoice && in.DeviceType != models.DeviceNonVoice {
		return nil, utils.ErrMissingShippingInfo
	}

	return s.changeStatus(ctx, actor, id, models.StatusDeviceShipped, note, func(install *models.Install) error {
		imei, courier, device := in.IMEI, in.CourierService, in.DeviceType
		install.IMEI = &imei
		install.CourierService = &courier
		install.DeviceType = &device
		return nil
	})
}

// Schedule moves DeviceShipped to InstallationScheduled at the given time.
// Calling it again while scheduled re-schedules in place: the customer is
// notified of the new time and the reminder re-arms.
func (s *InstallService) Schedule(ctx context.Context, actor Actor, id string, at time.Time, note string) (*StatusChangeResult, error) {
	if at.IsZero() {
		return nil, utils.ErrMissingScheduleTime
	}
	apply := func(install *models.Install) error {
		install.InstallationAt = &at
		// A fresh schedule gets a fresh reminder.
		install.ReminderSentAt = nil
		return nil
	}

	install, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if install.Status == models.StatusInstallationScheduled {
		return s.reschedule(ctx, actor, install, note, apply)
	}
	return s.changeStatus(ctx, actor, id, models.StatusInstallationScheduled, note, apply)
}

// reschedule repeats the scheduling side effects without a lifecycle
// transition. Like expense approval, it is an in-place update.
func (s *InstallService) reschedule(ctx context.Context, actor Actor, install *models.Install, note string, apply func(*models.Install) error) (*StatusChangeResult, error) {
	if err := s.authorize(actor, install); err != nil {
		return nil, err
	}
	if err := apply(install); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, install); err != nil {
		return nil, err
	}

	if note = strings.TrimSpace(note); note != "" {
		n := &models.Note{InstallID: install.ID, AuthorID: actor.ID, AuthorName: actor.Name, Text: note}
		if err := s.repo.AddNote(ctx, n); err != nil {
			log.Error().Err(err).Str("install_id", install.ID).Msg("failed to append note")
		}
	}

	install.AmountDue = install.ComputeAmountDue()
	s.events.NotifyInstallStatusChanged(install)
	log.Info().
		Str("install_id", install.ID).
		Str("actor", actor.ID).
		Msg("installation re-scheduled")

	result := &StatusChangeResult{Install: install}
	result.Notification = s.notifications.DispatchStatusChange(ctx, install)
	return result, nil
}

// Complete moves InstallationScheduled to Completed, recording the
// technician's travel expense as pending approval.
func (s *InstallService) Complete(ctx context.Context, actor Actor, id string, expense int64, note string) (*StatusChangeResult, error) {
	if expense < 0 {
		return nil, utils.ErrInvalidAmount
	}
	return s.changeStatus(ctx, actor, id, models.StatusCompleted, note, func(install *models.Install) error {
		status := models.ExpensePending
		install.ExpenseAmount = &expense
		install.ExpenseStatus = &status
		return nil
	})
}

// SubmitForPayment moves Completed to PaymentPendingApproval. This stage
// produces no customer message.
func (s *InstallService) SubmitForPayment(ctx context.Context, actor Actor, id string, note string) (*StatusChangeResult, error) {
	return s.changeStatus(ctx, actor, id, models.StatusPaymentPendingApproval, note, nil)
}

// Cancel moves an in-flight order to Cancelled.
func (s *InstallService) Cancel(ctx context.Context, actor Actor, id string, note string) (*StatusChangeResult, error) {
	return s.changeStatus(ctx, actor, id, models.StatusCancelled, note, nil)
}

// ApproveExpense approves (and possibly revises) the pending travel expense.
// This is orthogonal to the main lifecycle and changes no status.
func (s *InstallService) ApproveExpense(ctx context.Context, id string, amount int64) (*models.Install, error) {
	if amount < 0 {
		return nil, utils.ErrInvalidAmount
	}
	install, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if install.ExpenseAmount == nil || install.ExpenseStatus == nil {
		return nil, utils.ErrExpenseNotSubmitted
	}
	if *install.ExpenseStatus == models.ExpenseApproved {
		return nil, utils.ErrExpenseAlreadyApproved
	}

	status := models.ExpenseApproved
	install.ExpenseAmount = &amount
	install.ExpenseStatus = &status
	if err := s.repo.Update(ctx, install); err != nil {
		return nil, err
	}
	install.AmountDue = install.ComputeAmountDue()
	log.Info().Str("install_id", id).Int64("amount", amount).Msg("travel expense approved")
	return install, nil
}

// ApprovePayment moves PaymentPendingApproval to PaymentReceived, recording
// the payment details. Admin-only by routing.
func (s *InstallService) ApprovePayment(ctx context.Context, actor Actor, id string, amountReceived int64, note string) (*StatusChangeResult, error) {
	if amountReceived < 0 {
		return nil, utils.ErrInvalidAmount
	}
	return s.changeStatus(ctx, actor, id, models.StatusPaymentReceived, note, func(install *models.Install) error {
		now := time.Now()
		approvedBy := AdminActorID
		install.PaymentAmount = &amountReceived
		install.PaymentReceivedAt = &now
		install.PaymentApprovedBy = &approvedBy
		return nil
	})
}

// AddNote appends a note without touching the lifecycle.
func (s *InstallService) AddNote(ctx context.Context, actor Actor, id, text string) (*models.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, utils.ErrEmptyNote
	}
	install, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, install); err != nil {
		return nil, err
	}
	note := &models.Note{
		InstallID:  id,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Text:       text,
	}
	if err := s.repo.AddNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Metrics returns the admin dashboard aggregates.
func (s *InstallService) Metrics(ctx context.Context) (repository.InstallMetrics, error) {
	return s.repo.Metrics(ctx)
}

// changeStatus validates the transition, applies the mutation, persists it,
// and then fires the decoupled side effects: the persisted state survives a
// failed notification.
func (s *InstallService) changeStatus(ctx context.Context, actor Actor, id string, next models.InstallStatus, note string, apply func(*models.Install) error) (*StatusChangeResult, error) {
	install, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, install); err != nil {
		return nil, err
	}
	if !install.Status.CanTransitionTo(next) {
		return nil, utils.ErrInvalidTransition
	}

	prev := install.Status
	install.Status = next
	if apply != nil {
		if err := apply(install); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, install); err != nil {
		return nil, err
	}

	if note = strings.TrimSpace(note); note != "" {
		n := &models.Note{InstallID: id, AuthorID: actor.ID, AuthorName: actor.Name, Text: note}
		if err := s.repo.AddNote(ctx, n); err != nil {
			log.Error().Err(err).Str("install_id", id).Msg("failed to append note")
		}
	}

	install.AmountDue = install.ComputeAmountDue()
	s.events.NotifyInstallStatusChanged(install)
	log.Info().
		Str("install_id", id).
		Str("from", string(prev)).
		Str("to", string(next)).
		Str("actor", actor.ID).
		Msg("install status changed")

	result := &StatusChangeResult{Install: install}
	result.Notification = s.notifications.DispatchStatusChange(ctx, install)
	return result, nil
}

func (s *InstallService) load(ctx context.Context, id string) (*models.Install, error) {
	install, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrInstallNotFound
		}
		return nil, err
	}
	return install, nil
}

func (s *InstallService) authorize(actor Actor, install *models.Install) error {
	if actor.IsAdmin() {
		return nil
	}
	if install.TechnicianID != nil && *install.TechnicianID == actor.ID {
		return nil
	}
	return utils.ErrForbidden
}
