package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/TrackBD/trackbd_api/internal/models"
)

// TechnicianRepository handles database operations for technician records.
type TechnicianRepository struct {
	db *sqlx.DB
}

// NewTechnicianRepository creates a new TechnicianRepository.
func NewTechnicianRepository(db *sqlx.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

// Create inserts a new technician.
func (r *TechnicianRepository) Create(ctx context.Context, t *models.Technician) error {
	const q = `
        INSERT INTO technicians (id, name, phone, location, username, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		t.ID, t.Name, t.Phone, t.Location, t.Username, t.PasswordHash,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a technician by id.
func (r *TechnicianRepository) GetByID(ctx context.Context, id string) (*models.Technician, error) {
	var t models.Technician
	err := r.db.GetContext(ctx, &t, `
		SELECT id, name, phone, location, username, password_hash, created_at, updated_at
		FROM technicians
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByUsername returns a technician by login username.
func (r *TechnicianRepository) GetByUsername(ctx context.Context, username string) (*models.Technician, error) {
	var t models.Technician
	err := r.db.GetContext(ctx, &t, `
		SELECT id, name, phone, location, username, password_hash, created_at, updated_at
		FROM technicians
		WHERE username = $1
	`, username)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all technicians, newest first.
func (r *TechnicianRepository) List(ctx context.Context) ([]models.Technician, error) {
	var out []models.Technician
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, name, phone, location, username, password_hash, created_at, updated_at
		FROM technicians
		ORDER BY created_at DESC
	`)
	return out, err
}

// Update rewrites the mutable technician fields, including the password hash.
// Callers keep the previous hash when the password is unchanged.
func (r *TechnicianRepository) Update(ctx context.Context, t *models.Technician) error {
	const q = `
        UPDATE technicians SET
            name = $2,
            phone = $3,
            location = $4,
            username = $5,
            password_hash = $6,
            updated_at = NOW()
        WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, t.ID, t.Name, t.Phone, t.Location, t.Username, t.PasswordHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a technician. The assignment guard lives in the service;
// installs that still reference the id (terminal ones) keep their rows with
// technician_id set NULL by the schema.
func (r *TechnicianRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM technicians WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountActiveAssignments returns how many installs reference the technician
// in a non-terminal status.
func (r *TechnicianRepository) CountActiveAssignments(ctx context.Context, technicianID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM installs
		WHERE technician_id = $1
		  AND status NOT IN ($2, $3, $4)
	`, technicianID,
		models.StatusCompleted, models.StatusCancelled, models.StatusPaymentReceived,
	).Scan(&count)
	return count, err
}
