package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Actor roles carried in session tokens.
const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
)

var jwtSecret []byte

// SetJWTSecret installs the signing secret. Must be called once at startup
// before any token is issued or validated.
func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// SessionClaims are the claims embedded in every session token.
type SessionClaims struct {
	UserID string `json:"uid"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT issues a signed session token for the given actor. The token id
// (jti) doubles as the Redis session key so logout can revoke it.
func GenerateJWT(userID, name, role string, ttl time.Duration) (token string, jti string, err error) {
	jti = uuid.New().String()
	claims := &SessionClaims{
		UserID: userID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(jwtSecret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// ValidateJWT parses and verifies a session token.
func ValidateJWT(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
