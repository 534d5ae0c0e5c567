package models

import "time"

type InstallStatus string

const (
	StatusNewOrder               InstallStatus = "NewOrder"
	StatusDeviceShipped          InstallStatus = "DeviceShipped"
	StatusInstallationScheduled  InstallStatus = "InstallationScheduled"
	StatusCompleted              InstallStatus = "Completed"
	StatusPaymentPendingApproval InstallStatus = "PaymentPendingApproval"
	StatusPaymentReceived        InstallStatus = "PaymentReceived"
	StatusCancelled              InstallStatus = "Cancelled"
)

type DeviceType string

const (
	DeviceVoice    DeviceType = "Voice"
	DeviceNonVoice DeviceType = "Non-Voice"
)

type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
)

// transitions is the full lifecycle map. Expense approval is an orthogonal
// sub-transition and does not appear here.
var transitions = map[InstallStatus][]InstallStatus{
	StatusNewOrder:               {StatusDeviceShipped},
	StatusDeviceShipped:          {StatusInstallationScheduled, StatusCancelled},
	StatusInstallationScheduled:  {StatusCompleted, StatusCancelled},
	StatusCompleted:              {StatusPaymentPendingApproval},
	StatusPaymentPendingApproval: {StatusPaymentReceived},
}

// CanTransitionTo reports whether next is an allowed successor of s.
func (s InstallStatus) CanTransitionTo(next InstallStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s InstallStatus) IsTerminal() bool {
	return s == StatusPaymentReceived || s == StatusCancelled
}

// Valid reports whether s is a known lifecycle status.
func (s InstallStatus) Valid() bool {
	switch s {
	case StatusNewOrder, StatusDeviceShipped, StatusInstallationScheduled,
		StatusCompleted, StatusPaymentPendingApproval, StatusPaymentReceived,
		StatusCancelled:
		return true
	}
	return false
}

// Customer holds the ordering customer's contact details. Embedded in Install
// so sqlx maps the prefixed columns directly.
type Customer struct {
	Name    string `db:"customer_name" json:"name"`
	Phone   string `db:"customer_phone" json:"phone"`
	Address string `db:"customer_address" json:"address"`
}

// Note is a single append-only note on an install. Existing notes are never
// edited or removed.
type Note struct {
	ID         int64     `db:"id" json:"-"`
	InstallID  string    `db:"install_id" json:"-"`
	AuthorID   string    `db:"author_id" json:"authorId"`
	AuthorName string    `db:"author_name" json:"authorName"`
	Text       string    `db:"text" json:"text"`
	CreatedAt  time.Time `db:"created_at" json:"date"`
}

// Install is a single customer order for a GPS tracker device and its
// installation. Amounts are in whole taka.
type Install struct {
	ID             string        `db:"id" json:"id"`
	Customer       Customer      `json:"customer"`
	ProductPrice   int64         `db:"product_price" json:"productPrice"`
	TechnicianID   *string       `db:"technician_id" json:"technicianId"`
	TechnicianFee  int64         `db:"technician_fee" json:"technicianFee"`
	Status         InstallStatus `db:"status" json:"status"`
	OrderDate      time.Time     `db:"order_date" json:"orderDate"`
	InstallationAt *time.Time    `db:"installation_at" json:"installationDateTime,omitempty"`
	DeviceType     *DeviceType   `db:"device_type" json:"deviceType,omitempty"`
	CourierService *string       `db:"courier_service" json:"courierService,omitempty"`
	IMEI           *string       `db:"imei" json:"imei,omitempty"`

	ExpenseAmount *int64         `db:"expense_amount" json:"travelExpenseAmount,omitempty"`
	ExpenseStatus *ExpenseStatus `db:"expense_status" json:"travelExpenseStatus,omitempty"`

	PaymentAmount     *int64     `db:"payment_amount" json:"paymentAmountReceived,omitempty"`
	PaymentReceivedAt *time.Time `db:"payment_received_at" json:"paymentReceivedDate,omitempty"`
	PaymentApprovedBy *string    `db:"payment_approved_by" json:"paymentApprovedBy,omitempty"`

	ReminderSentAt *time.Time `db:"reminder_sent_at" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"-"`
	UpdatedAt      time.Time  `db:"updated_at" json:"-"`

	Notes []Note `db:"-" json:"notes"`

	// AmountDue is recomputed on every read, never stored.
	AmountDue int64 `db:"-" json:"amountDue"`
}

// ApprovedExpense returns the travel expense amount if and only if it has
// been approved by the admin.
func (i *Install) ApprovedExpense() int64 {
	if i.ExpenseAmount != nil && i.ExpenseStatus != nil && *i.ExpenseStatus == ExpenseApproved {
		return *i.ExpenseAmount
	}
	return 0
}

// ComputeAmountDue derives the net amount owed for this install:
// productPrice - technicianFee - approved travel expense.
func (i *Install) ComputeAmountDue() int64 {
	return i.ProductPrice - i.TechnicianFee - i.ApprovedExpense()
}
