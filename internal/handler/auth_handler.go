package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/TrackBD/trackbd_api/internal/middleware"
	"github.com/TrackBD/trackbd_api/internal/service"
	"github.com/TrackBD/trackbd_api/internal/utils"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	authService *service.AuthService
	limiter     *middleware.InvalidAuthRateLimiter
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AuthService, limiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Username and password are required")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrUsernameNotFound):
			h.handleLoginError(c, "USERNAME_NOT_FOUND", "Unknown username")
		case errors.Is(err, utils.ErrWrongPassword):
			h.handleLoginError(c, "WRONG_PASSWORD", "Wrong password")
		default:
			log.Error().Err(err).Msg("login failed")
			utils.Error(c, 500, "INTERNAL_ERROR", "Login failed")
		}
		return
	}

	utils.Success(c, 200, "Login successful", result)
}

// handleLoginError rate-limits failed credential attempts per IP.
func (h *AuthHandler) handleLoginError(c *gin.Context, code, message string) {
	if !h.limiter.Allow(c.ClientIP()) {
		utils.Error(c, 429, "TOO_MANY_ATTEMPTS", "Too many failed login attempts, try again later")
		return
	}
	utils.Error(c, 401, code, message)
}

// Logout handles POST /v1/auth/logout. It revokes the session carried by the
// presented token; the token is useless afterwards even if unexpired.
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString("session_jti")
	if err := h.authService.Logout(c.Request.Context(), jti); err != nil {
		log.Error().Err(err).Msg("logout failed")
		utils.Error(c, 500, "INTERNAL_ERROR", "Logout failed")
		return
	}
	utils.Success(c, 200, "Logged out", nil)
}
