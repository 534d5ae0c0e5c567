package utils

import "errors"

// Common application errors used across services.
var (
	ErrUsernameNotFound       = errors.New("USERNAME_NOT_FOUND")
	ErrWrongPassword          = errors.New("WRONG_PASSWORD")
	ErrInvalidToken           = errors.New("INVALID_TOKEN")
	ErrForbidden              = errors.New("FORBIDDEN")
	ErrInstallNotFound        = errors.New("INSTALL_NOT_FOUND")
	ErrTechnicianNotFound     = errors.New("TECHNICIAN_NOT_FOUND")
	ErrTechnicianAssigned     = errors.New("TECHNICIAN_ASSIGNED")
	ErrDuplicateUsername      = errors.New("DUPLICATE_USERNAME")
	ErrPasswordRequired       = errors.New("PASSWORD_REQUIRED")
	ErrInvalidTransition      = errors.New("INVALID_TRANSITION")
	ErrMissingShippingInfo    = errors.New("MISSING_SHIPPING_INFO")
	ErrMissingScheduleTime    = errors.New("MISSING_SCHEDULE_TIME")
	ErrInvalidAmount          = errors.New("INVALID_AMOUNT")
	ErrExpenseNotSubmitted    = errors.New("EXPENSE_NOT_SUBMITTED")
	ErrExpenseAlreadyApproved = errors.New("EXPENSE_ALREADY_APPROVED")
	ErrEmptyNote              = errors.New("EMPTY_NOTE")
)
