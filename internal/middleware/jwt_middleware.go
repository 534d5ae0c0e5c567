package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TrackBD/trackbd_api/internal/utils"
)

// SessionChecker reports whether a session token id is still live, i.e. has
// not been revoked by logout.
type SessionChecker interface {
	Active(ctx context.Context, jti string) (bool, error)
}

type JWTMiddleware struct {
	sessions SessionChecker
}

func NewJWTMiddleware(sessions SessionChecker) *JWTMiddleware {
	return &JWTMiddleware{sessions: sessions}
}

// Handle authenticates the request and stores the actor identity in the
// context for handlers.
func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(c, 401, "UNAUTHORIZED", "Missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Error(c, 401, "UNAUTHORIZED", "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		active, err := m.sessions.Active(c.Request.Context(), claims.ID)
		if err != nil || !active {
			utils.Error(c, 401, "SESSION_REVOKED", "Session is no longer active")
			c.Abort()
			return
		}

		c.Set("actor_id", claims.UserID)
		c.Set("actor_name", claims.Name)
		c.Set("actor_role", claims.Role)
		c.Set("session_jti", claims.ID)
		c.Next()
	}
}

// RequireAdmin rejects non-admin actors. Must run after Handle.
func (m *JWTMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("actor_role") != utils.RoleAdmin {
			utils.Error(c, 403, "FORBIDDEN", "Administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
