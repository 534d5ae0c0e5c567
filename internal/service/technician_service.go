package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/TrackBD/trackbd_api/internal/models"
	"github.com/TrackBD/trackbd_api/internal/utils"
)

// TechnicianStore is the repository surface TechnicianService depends on.
type TechnicianStore interface {
	Create(ctx context.Context, t *models.Technician) error
	GetByID(ctx context.Context, id string) (*models.Technician, error)
	GetByUsername(ctx context.Context, username string) (*models.Technician, error)
	List(ctx context.Context) ([]models.Technician, error)
	Update(ctx context.Context, t *models.Technician) error
	Delete(ctx context.Context, id string) error
	CountActiveAssignments(ctx context.Context, technicianID string) (int, error)
}

// TechnicianInput carries the admin-supplied technician fields. Password is
// optional on update: empty means unchanged.
type TechnicianInput struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Location string `json:"location" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
}

// TechnicianService manages technician records.
type TechnicianService struct {
	repo TechnicianStore
}

// NewTechnicianService constructs a new TechnicianService.
func NewTechnicianService(repo TechnicianStore) *TechnicianService {
	return &TechnicianService{repo: repo}
}

// Create adds a technician with a bcrypt-hashed password.
func (s *TechnicianService) Create(ctx context.Context, in TechnicianInput) (*models.Technician, error) {
	if strings.TrimSpace(in.Password) == "" {
		return nil, utils.ErrPasswordRequired
	}
	if err := s.checkUsernameFree(ctx, in.Username, ""); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tech := &models.Technician{
		ID:           utils.GenerateTechnicianID(),
		Name:         in.Name,
		Phone:        in.Phone,
		Location:     in.Location,
		Username:     in.Username,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, tech); err != nil {
		return nil, err
	}
	log.Info().Str("technician_id", tech.ID).Str("username", tech.Username).Msg("technician created")
	return tech, nil
}

// Get returns one technician.
func (s *TechnicianService) Get(ctx context.Context, id string) (*models.Technician, error) {
	tech, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrTechnicianNotFound
		}
		return nil, err
	}
	return tech, nil
}

// List returns all technicians.
func (s *TechnicianService) List(ctx context.Context) ([]models.Technician, error) {
	return s.repo.List(ctx)
}

// Update rewrites a technician's fields. An empty password keeps the current
// hash.
func (s *TechnicianService) Update(ctx context.Context, id string, in TechnicianInput) (*models.Technician, error) {
	tech, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Username != tech.Username {
		if err := s.checkUsernameFree(ctx, in.Username, id); err != nil {
			return nil, err
		}
	}

	tech.Name = in.Name
	tech.Phone = in.Phone
	tech.Location = in.Location
	tech.Username = in.Username
	if strings.TrimSpace(in.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		tech.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, tech); err != nil {
		return nil, err
	}
	return tech, nil
}

// Delete removes a technician unless an install in a non-terminal status
// still references them.
func (s *TechnicianService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	active, err := s.repo.CountActiveAssignments(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return utils.ErrTechnicianAssigned
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("technician_id", id).Msg("technician deleted")
	return nil
}

func (s *TechnicianService) checkUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return utils.ErrDuplicateUsername
	}
	return nil
}
