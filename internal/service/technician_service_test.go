package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/TrackBD/trackbd_api/internal/models"
	"github.com/TrackBD/trackbd_api/internal/utils"
)

func validTechInput() TechnicianInput {
	return TechnicianInput{
		Name:     "Karim",
		Phone:    "01712345678",
		Location: "Dhaka",
		Username: "karim",
		Password: "secret1",
	}
}

func TestCreateTechnician(t *testing.T) {
	store := newFakeTechStore()
	svc := NewTechnicianService(store)

	tech, err := svc.Create(context.Background(), validTechInput())
	require.NoError(t, err)

	assert.NotEmpty(t, tech.ID)
	assert.NotEqual(t, "secret1", tech.PasswordHash, "password must be hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(tech.PasswordHash), []byte("secret1")))
}

func TestCreateTechnicianRequiresPassword(t *testing.T) {
	svc := NewTechnicianService(newFakeTechStore())

	in := validTechInput()
	in.Password = "  "
	_, err := svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, utils.ErrPasswordRequired)
}

func TestCreateTechnicianDuplicateUsername(t *testing.T) {
	store := newFakeTechStore(&models.Technician{ID: "tech_1", Username: "karim"})
	svc := NewTechnicianService(store)

	_, err := svc.Create(context.Background(), validTechInput())
	assert.ErrorIs(t, err, utils.ErrDuplicateUsername)
}

func TestUpdateTechnicianKeepsPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	store := newFakeTechStore(&models.Technician{
		ID: "tech_1", Name: "Karim", Username: "karim", PasswordHash: string(hash),
	})
	svc := NewTechnicianService(store)

	in := validTechInput()
	in.Name = "Karim Hossain"
	in.Password = ""
	tech, err := svc.Update(context.Background(), "tech_1", in)
	require.NoError(t, err)

	assert.Equal(t, "Karim Hossain", tech.Name)
	assert.Equal(t, string(hash), tech.PasswordHash, "empty password keeps the current hash")
}

func TestUpdateTechnicianChangesPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("old"), bcrypt.MinCost)
	require.NoError(t, err)
	store := newFakeTechStore(&models.Technician{
		ID: "tech_1", Username: "karim", PasswordHash: string(hash),
	})
	svc := NewTechnicianService(store)

	in := validTechInput()
	in.Password = "brand-new"
	tech, err := svc.Update(context.Background(), "tech_1", in)
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(tech.PasswordHash), []byte("brand-new")))
}

func TestUpdateTechnicianTakenUsername(t *testing.T) {
	store := newFakeTechStore(
		&models.Technician{ID: "tech_1", Username: "karim"},
		&models.Technician{ID: "tech_2", Username: "jamal"},
	)
	svc := NewTechnicianService(store)

	in := validTechInput()
	in.Username = "jamal"
	_, err := svc.Update(context.Background(), "tech_1", in)
	assert.ErrorIs(t, err, utils.ErrDuplicateUsername)
}

func TestDeleteTechnician(t *testing.T) {
	store := newFakeTechStore(&models.Technician{ID: "tech_1", Username: "karim"})
	svc := NewTechnicianService(store)

	require.NoError(t, svc.Delete(context.Background(), "tech_1"))
	assert.Equal(t, []string{"tech_1"}, store.deleted)
}

func TestDeleteTechnicianWithActiveInstalls(t *testing.T) {
	store := newFakeTechStore(&models.Technician{ID: "tech_1", Username: "karim"})
	store.activeCounts["tech_1"] = 2
	svc := NewTechnicianService(store)

	err := svc.Delete(context.Background(), "tech_1")
	assert.ErrorIs(t, err, utils.ErrTechnicianAssigned)
	assert.Empty(t, store.deleted)
}

func TestDeleteUnknownTechnician(t *testing.T) {
	svc := NewTechnicianService(newFakeTechStore())

	err := svc.Delete(context.Background(), "tech_missing")
	assert.ErrorIs(t, err, utils.ErrTechnicianNotFound)
}
