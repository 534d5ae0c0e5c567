package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/TrackBD/trackbd_api/internal/models"
	"github.com/TrackBD/trackbd_api/internal/repository"
	"github.com/TrackBD/trackbd_api/pkg/smartsms"
)

// fakeTechStore is an in-memory TechnicianStore.
type fakeTechStore struct {
	byID         map[string]*models.Technician
	activeCounts map[string]int
	deleted      []string
}

func newFakeTechStore(techs ...*models.Technician) *fakeTechStore {
	s := &fakeTechStore{
		byID:         make(map[string]*models.Technician),
		activeCounts: make(map[string]int),
	}
	for _, t := range techs {
		s.byID[t.ID] = t
	}
	return s
}

func (s *fakeTechStore) Create(_ context.Context, t *models.Technician) error {
	s.byID[t.ID] = t
	return nil
}

func (s *fakeTechStore) GetByID(_ context.Context, id string) (*models.Technician, error) {
	if t, ok := s.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *fakeTechStore) GetByUsername(_ context.Context, username string) (*models.Technician, error) {
	for _, t := range s.byID {
		if t.Username == username {
			cp := *t
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeTechStore) List(_ context.Context) ([]models.Technician, error) {
	out := make([]models.Technician, 0, len(s.byID))
	for _, t := range s.byID {
		out = append(out, *t)
	}
	return out, nil
}

func (s *fakeTechStore) Update(_ context.Context, t *models.Technician) error {
	if _, ok := s.byID[t.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *t
	s.byID[t.ID] = &cp
	return nil
}

func (s *fakeTechStore) Delete(_ context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeTechStore) CountActiveAssignments(_ context.Context, technicianID string) (int, error) {
	return s.activeCounts[technicianID], nil
}

// fakeInstallStore is an in-memory InstallStore. GetByID returns a copy so
// that, like a real database, mutations only stick after Update.
type fakeInstallStore struct {
	installs  map[string]*models.Install
	notes     map[string][]models.Note
	updateErr error
}

func newFakeInstallStore(installs ...*models.Install) *fakeInstallStore {
	s := &fakeInstallStore{
		installs: make(map[string]*models.Install),
		notes:    make(map[string][]models.Note),
	}
	for _, in := range installs {
		s.installs[in.ID] = in
	}
	return s
}

func (s *fakeInstallStore) Create(_ context.Context, in *models.Install) error {
	cp := *in
	s.installs[in.ID] = &cp
	return nil
}

func (s *fakeInstallStore) GetByID(_ context.Context, id string) (*models.Install, error) {
	if in, ok := s.installs[id]; ok {
		cp := *in
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *fakeInstallStore) Update(_ context.Context, in *models.Install) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.installs[in.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *in
	s.installs[in.ID] = &cp
	return nil
}

func (s *fakeInstallStore) List(_ context.Context, f repository.InstallFilter) ([]models.Install, int, error) {
	var out []models.Install
	for _, in := range s.installs {
		if f.TechnicianID != "" && (in.TechnicianID == nil || *in.TechnicianID != f.TechnicianID) {
			continue
		}
		if f.Status != "" && in.Status != f.Status {
			continue
		}
		out = append(out, *in)
	}
	return out, len(out), nil
}

func (s *fakeInstallStore) AddNote(_ context.Context, n *models.Note) error {
	n.ID = int64(len(s.notes[n.InstallID]) + 1)
	n.CreatedAt = time.Now()
	s.notes[n.InstallID] = append(s.notes[n.InstallID], *n)
	return nil
}

func (s *fakeInstallStore) ListNotes(_ context.Context, installID string) ([]models.Note, error) {
	return s.notes[installID], nil
}

func (s *fakeInstallStore) Metrics(_ context.Context) (repository.InstallMetrics, error) {
	var m repository.InstallMetrics
	for _, in := range s.installs {
		m.TotalInstalls++
		switch in.Status {
		case models.StatusCompleted, models.StatusPaymentReceived:
			m.CompletedInstalls++
		}
		switch in.Status {
		case models.StatusCompleted, models.StatusPaymentPendingApproval:
			m.PendingAmount += in.ComputeAmountDue()
		}
	}
	return m, nil
}

// fakeMessenger records outbound sends and optionally fails them.
type fakeMessenger struct {
	sent    []string // recipients
	lastMsg string
	err     error
}

func (m *fakeMessenger) SendWhatsApp(_ context.Context, recipient, message string) (*smartsms.SendResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, recipient)
	m.lastMsg = message
	return &smartsms.SendResult{MessageID: int64(len(m.sent))}, nil
}

// fakeNotificationStore records dispatch outcomes in memory.
type fakeNotificationStore struct {
	logs      []models.NotificationLog
	createErr error
}

func (s *fakeNotificationStore) Create(_ context.Context, l *models.NotificationLog) error {
	if s.createErr != nil {
		return s.createErr
	}
	l.ID = int64(len(s.logs) + 1)
	l.CreatedAt = time.Now()
	s.logs = append(s.logs, *l)
	return nil
}

func (s *fakeNotificationStore) ListByInstall(_ context.Context, installID string) ([]models.NotificationLog, error) {
	var out []models.NotificationLog
	for _, l := range s.logs {
		if l.InstallID == installID {
			out = append(out, l)
		}
	}
	return out, nil
}

// recordingNotifier counts SSE broadcasts.
type recordingNotifier struct {
	created       int
	statusChanged int
}

func (n *recordingNotifier) NotifyInstallCreated(_ *models.Install)       { n.created++ }
func (n *recordingNotifier) NotifyInstallStatusChanged(_ *models.Install) { n.statusChanged++ }

var errStoreDown = errors.New("store down")

func strptr(s string) *string { return &s }

// newTestInstall returns an install in the given status assigned to tech_1.
func newTestInstall(id string, status models.InstallStatus) *models.Install {
	return &models.Install{
		ID: id,
		Customer: models.Customer{
			Name:    "Rahim Uddin",
			Phone:   "01712345678",
			Address: "Dhaka",
		},
		ProductPrice:  5000,
		TechnicianID:  strptr("tech_1"),
		TechnicianFee: 500,
		Status:        status,
		OrderDate:     time.Now(),
	}
}
