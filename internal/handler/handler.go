package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/TrackBD/trackbd_api/internal/service"
	"github.com/TrackBD/trackbd_api/internal/utils"
)

// actorFrom rebuilds the authenticated identity stored by the JWT middleware.
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:   c.GetString("actor_id"),
		Name: c.GetString("actor_name"),
		Role: c.GetString("actor_role"),
	}
}

// serviceError maps service sentinel errors to HTTP responses. Unknown errors
// become a 500 without leaking internals.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrInstallNotFound):
		utils.Error(c, 404, "INSTALL_NOT_FOUND", "Install order not found")
	case errors.Is(err, utils.ErrTechnicianNotFound):
		utils.Error(c, 404, "TECHNICIAN_NOT_FOUND", "Technician not found")
	case errors.Is(err, utils.ErrForbidden):
		utils.Error(c, 403, "FORBIDDEN", "Not allowed to access this install")
	case errors.Is(err, utils.ErrInvalidTransition):
		utils.Error(c, 409, "INVALID_TRANSITION", "Status change not allowed from the current status")
	case errors.Is(err, utils.ErrTechnicianAssigned):
		utils.Error(c, 409, "TECHNICIAN_ASSIGNED", "Technician still has active install orders")
	case errors.Is(err, utils.ErrDuplicateUsername):
		utils.Error(c, 409, "DUPLICATE_USERNAME", "Username is already taken")
	case errors.Is(err, utils.ErrExpenseAlreadyApproved):
		utils.Error(c, 409, "EXPENSE_ALREADY_APPROVED", "Expense has already been approved")
	case errors.Is(err, utils.ErrExpenseNotSubmitted):
		utils.Error(c, 409, "EXPENSE_NOT_SUBMITTED", "No expense has been submitted for this install")
	case errors.Is(err, utils.ErrMissingShippingInfo):
		utils.Error(c, 400, "MISSING_SHIPPING_INFO", "IMEI, courier service and device type are required")
	case errors.Is(err, utils.ErrMissingScheduleTime):
		utils.Error(c, 400, "MISSING_SCHEDULE_TIME", "Installation time is required")
	case errors.Is(err, utils.ErrInvalidAmount):
		utils.Error(c, 400, "INVALID_AMOUNT", "Amount must not be negative")
	case errors.Is(err, utils.ErrPasswordRequired):
		utils.Error(c, 400, "PASSWORD_REQUIRED", "Password is required")
	case errors.Is(err, utils.ErrEmptyNote):
		utils.Error(c, 400, "EMPTY_NOTE", "Note text must not be empty")
	default:
		utils.Error(c, 500, "INTERNAL_ERROR", "Something went wrong")
	}
}
