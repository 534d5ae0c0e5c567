package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/TrackBD/trackbd_api/internal/config"
	"github.com/TrackBD/trackbd_api/internal/models"
	"github.com/TrackBD/trackbd_api/internal/utils"
)

// TechnicianDirectory is the slice of the technician repository AuthService
// needs for credential lookups.
type TechnicianDirectory interface {
	GetByUsername(ctx context.Context, username string) (*models.Technician, error)
}

// SessionStore registers and revokes live session token ids.
type SessionStore interface {
	Put(ctx context.Context, jti, userID string, ttl time.Duration) error
	Revoke(ctx context.Context, jti string) error
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// AuthService authenticates the administrator and technicians.
type AuthService struct {
	admin      config.AdminConfig
	directory  TechnicianDirectory
	sessions   SessionStore
	sessionTTL time.Duration
}

// NewAuthService constructs a new AuthService.
func NewAuthService(admin config.AdminConfig, directory TechnicianDirectory, sessions SessionStore, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		admin:      admin,
		directory:  directory,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Login checks the credential against the configured administrator first,
// then against the technician records. It returns ErrUsernameNotFound when
// no identity matches the username and ErrWrongPassword when the username
// matched but the password did not.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	// Admin credential comparison is constant-time on both fields.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
	if userOK && passOK {
		return s.issue(ctx, AdminActorID, s.admin.Username, utils.RoleAdmin)
	}
	if userOK {
		return nil, utils.ErrWrongPassword
	}

	tech, err := s.directory.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrUsernameNotFound
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(tech.PasswordHash), []byte(password)); err != nil {
		return nil, utils.ErrWrongPassword
	}

	return s.issue(ctx, tech.ID, tech.Name, utils.RoleTechnician)
}

// Logout revokes the session id carried by the presented token.
func (s *AuthService) Logout(ctx context.Context, jti string) error {
	return s.sessions.Revoke(ctx, jti)
}

func (s *AuthService) issue(ctx context.Context, userID, name, role string) (*LoginResult, error) {
	token, jti, err := utils.GenerateJWT(userID, name, role, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Put(ctx, jti, userID, s.sessionTTL); err != nil {
		// A session that cannot be registered cannot be revoked later;
		// refuse the login rather than hand out an untracked token.
		return nil, err
	}
	log.Info().Str("user_id", userID).Str("role", role).Msg("login successful")
	return &LoginResult{Token: token, Role: role, UserID: userID, Name: name}, nil
}
