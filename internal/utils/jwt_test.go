package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, jti, err := GenerateJWT("tech_1", "Karim", RoleTechnician, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "tech_1", claims.UserID)
	assert.Equal(t, "Karim", claims.Name)
	assert.Equal(t, RoleTechnician, claims.Role)
	assert.Equal(t, jti, claims.ID)
}

func TestValidateJWTExpired(t *testing.T) {
	SetJWTSecret("test-secret")

	token, _, err := GenerateJWT("tech_1", "Karim", RoleTechnician, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	SetJWTSecret("test-secret")
	token, _, err := GenerateJWT("tech_1", "Karim", RoleTechnician, time.Hour)
	require.NoError(t, err)

	SetJWTSecret("another-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)

	SetJWTSecret("test-secret")
	_, err = ValidateJWT(token)
	assert.NoError(t, err)
}

func TestValidateJWTGarbage(t *testing.T) {
	SetJWTSecret("test-secret")
	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}
