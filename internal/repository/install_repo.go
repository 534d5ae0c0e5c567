package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/TrackBD/trackbd_api/internal/models"
)

const installColumns = `
    id, customer_name, customer_phone, customer_address,
    product_price, technician_id, technician_fee, status, order_date,
    installation_at, device_type, courier_service, imei,
    expense_amount, expense_status,
    payment_amount, payment_received_at, payment_approved_by,
    reminder_sent_at, created_at, updated_at`

// InstallFilter narrows and orders List results.
type InstallFilter struct {
	Search       string
	Status       models.InstallStatus
	TechnicianID string
	Sort         string // "newest" (default) or "oldest"
	Page         int
	Limit        int
}

// InstallRepository handles database operations for install orders and their
// notes.
type InstallRepository struct {
	db *sqlx.DB
}

// NewInstallRepository creates a new InstallRepository.
func NewInstallRepository(db *sqlx.DB) *InstallRepository {
	return &InstallRepository{db: db}
}

// Create inserts a new install order.
func (r *InstallRepository) Create(ctx context.Context, in *models.Install) error {
	const q = `
        INSERT INTO installs (
            id, customer_name, customer_phone, customer_address,
            product_price, technician_id, technician_fee, status, order_date
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7, $8, $9
        ) RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		in.ID, in.Customer.Name, in.Customer.Phone, in.Customer.Address,
		in.ProductPrice, in.TechnicianID, in.TechnicianFee, in.Status, in.OrderDate,
	).Scan(&in.CreatedAt, &in.UpdatedAt)
}

// GetByID returns an install by id, without notes.
func (r *InstallRepository) GetByID(ctx context.Context, id string) (*models.Install, error) {
	var in models.Install
	err := r.db.GetContext(ctx, &in,
		`SELECT `+installColumns+` FROM installs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// Update rewrites the mutable install fields identified by id.
func (r *InstallRepository) Update(ctx context.Context, in *models.Install) error {
	const q = `
        UPDATE installs SET
            customer_name = $2,
            customer_phone = $3,
            customer_address = $4,
            product_price = $5,
            technician_id = $6,
            technician_fee = $7,
            status = $8,
            installation_at = $9,
            device_type = $10,
            courier_service = $11,
            imei = $12,
            expense_amount = $13,
            expense_status = $14,
            payment_amount = $15,
            payment_received_at = $16,
            payment_approved_by = $17,
            reminder_sent_at = $18,
            updated_at = NOW()
        WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q,
		in.ID, in.Customer.Name, in.Customer.Phone, in.Customer.Address,
		in.ProductPrice, in.TechnicianID, in.TechnicianFee, in.Status,
		in.InstallationAt, in.DeviceType, in.CourierService, in.IMEI,
		in.ExpenseAmount, in.ExpenseStatus,
		in.PaymentAmount, in.PaymentReceivedAt, in.PaymentApprovedBy,
		in.ReminderSentAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns installs matching the filter plus the total match count for
// pagination.
func (r *InstallRepository) List(ctx context.Context, f InstallFilter) ([]models.Install, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if f.Search != "" {
		where = append(where, fmt.Sprintf(
			"(customer_name ILIKE $%d OR customer_phone LIKE $%d OR COALESCE(imei, '') LIKE $%d)",
			idx, idx+1, idx+2))
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat, pat)
		idx += 3
	}
	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, f.Status)
		idx++
	}
	if f.TechnicianID != "" {
		where = append(where, fmt.Sprintf("technician_id = $%d", idx))
		args = append(args, f.TechnicianID)
		idx++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM installs WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "order_date DESC"
	if f.Sort == "oldest" {
		order = "order_date ASC"
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	query := fmt.Sprintf(`SELECT %s FROM installs WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		installColumns, cond, order, idx, idx+1)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	var out []models.Install
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// AddNote appends a note to an install. Notes are append-only; there is no
// update or delete.
func (r *InstallRepository) AddNote(ctx context.Context, n *models.Note) error {
	const q = `
        INSERT INTO install_notes (install_id, author_id, author_name, text)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		n.InstallID, n.AuthorID, n.AuthorName, n.Text,
	).Scan(&n.ID, &n.CreatedAt)
}

// ListNotes returns the notes of an install in insertion order.
func (r *InstallRepository) ListNotes(ctx context.Context, installID string) ([]models.Note, error) {
	var out []models.Note
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, install_id, author_id, author_name, text, created_at
		FROM install_notes
		WHERE install_id = $1
		ORDER BY id
	`, installID)
	return out, err
}

// ListDueForReminder returns scheduled installs whose installation time falls
// inside (now, now+lead] and which have not been reminded yet.
func (r *InstallRepository) ListDueForReminder(ctx context.Context, now time.Time, lead time.Duration) ([]models.Install, error) {
	var out []models.Install
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+installColumns+` FROM installs
		 WHERE status = $1
		   AND reminder_sent_at IS NULL
		   AND installation_at > $2
		   AND installation_at <= $3
		 ORDER BY installation_at`,
		models.StatusInstallationScheduled, now, now.Add(lead))
	return out, err
}

// InstallMetrics holds the admin dashboard aggregates.
type InstallMetrics struct {
	TotalInstalls     int   `db:"total_installs" json:"totalInstalls"`
	CompletedInstalls int   `db:"completed_installs" json:"completedInstalls"`
	PendingAmount     int64 `db:"pending_amount" json:"pendingAmount"`
}

// Metrics computes the dashboard aggregates in one round trip. Completed
// counts Completed plus PaymentReceived; pending amount sums the derived
// amount due over Completed and PaymentPendingApproval orders.
func (r *InstallRepository) Metrics(ctx context.Context) (InstallMetrics, error) {
	var m InstallMetrics
	err := r.db.GetContext(ctx, &m, `
		SELECT
			COUNT(*) AS total_installs,
			COUNT(*) FILTER (WHERE status IN ($1, $2)) AS completed_installs,
			COALESCE(SUM(
				product_price - technician_fee
				- CASE WHEN expense_status = $3 THEN COALESCE(expense_amount, 0) ELSE 0 END
			) FILTER (WHERE status IN ($1, $4)), 0) AS pending_amount
		FROM installs
	`, models.StatusCompleted, models.StatusPaymentReceived,
		models.ExpenseApproved, models.StatusPaymentPendingApproval)
	return m, err
}

// MarkReminderSent stamps the reminder bookkeeping column.
func (r *InstallRepository) MarkReminderSent(ctx context.Context, installID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE installs SET reminder_sent_at = $2, updated_at = NOW() WHERE id = $1`,
		installID, at)
	return err
}
