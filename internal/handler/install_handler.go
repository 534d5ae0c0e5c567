package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TrackBD/trackbd_api/internal/models"
	"github.com/TrackBD/trackbd_api/internal/repository"
	"github.com/TrackBD/trackbd_api/internal/service"
	"github.com/TrackBD/trackbd_api/internal/utils"
)

// InstallHandler handles the install order lifecycle endpoints.
type InstallHandler struct {
	installService *service.InstallService
	notifications  *service.NotificationService
}

// NewInstallHandler constructs an InstallHandler.
func NewInstallHandler(installService *service.InstallService, notifications *service.NotificationService) *InstallHandler {
	return &InstallHandler{installService: installService, notifications: notifications}
}

// Create handles POST /v1/installs
func (h *InstallHandler) Create(c *gin.Context) {
	var req service.CreateInstallInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	install, err := h.installService.Create(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 201, "Install order created", install)
}

// List handles GET /v1/installs
func (h *InstallHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter := repository.InstallFilter{
		Search:       c.Query("search"),
		Status:       models.InstallStatus(c.Query("status")),
		TechnicianID: c.Query("technicianId"),
		Sort:         c.Query("sort"),
		Page:         page,
		Limit:        limit,
	}

	installs, total, err := h.installService.List(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Install orders retrieved", gin.H{
		"installs": installs,
	}, page, limit, total)
}

// Get handles GET /v1/installs/:id
func (h *InstallHandler) Get(c *gin.Context) {
	install, err := h.installService.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Install order retrieved", install)
}

type shipRequest struct {
	service.ShipInput
	Note string `json:"note"`
}

// Ship handles POST /v1/installs/:id/ship
func (h *InstallHandler) Ship(c *gin.Context) {
	var req shipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_SHIPPING_INFO", "IMEI, courier service and device type are required")
		return
	}

	result, err := h.installService.Ship(c.Request.Context(), actorFrom(c), c.Param("id"), req.ShipInput, req.Note)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Device marked as shipped", result)
}

type scheduleRequest struct {
	InstallationAt time.Time `json:"installationAt" binding:"required"`
	Note           string    `json:"note"`
}

// Schedule handles POST /v1/installs/:id/schedule
func (h *InstallHandler) Schedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_SCHEDULE_TIME", "Installation time is required")
		return
	}

	result, err := h.installService.Schedule(c.Request.Context(), actorFrom(c), c.Param("id"), req.InstallationAt, req.Note)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Installation scheduled", result)
}

type completeRequest struct {
	ExpenseAmount int64  `json:"expenseAmount"`
	Note          string `json:"note"`
}

// Complete handles POST /v1/installs/:id/complete
func (h *InstallHandler) Complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.installService.Complete(c.Request.Context(), actorFrom(c), c.Param("id"), req.ExpenseAmount, req.Note)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Installation completed", result)
}

type noteRequest struct {
	Note string `json:"note"`
}

// SubmitPayment handles POST /v1/installs/:id/submit-payment
func (h *InstallHandler) SubmitPayment(c *gin.Context) {
	var req noteRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	result, err := h.installService.SubmitForPayment(c.Request.Context(), actorFrom(c), c.Param("id"), req.Note)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Install submitted for payment approval", result)
}

// Cancel handles POST /v1/installs/:id/cancel
func (h *InstallHandler) Cancel(c *gin.Context) {
	var req noteRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	result, err := h.installService.Cancel(c.Request.Context(), actorFrom(c), c.Param("id"), req.Note)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Install order cancelled", result)
}

type approveExpenseRequest struct {
	Amount int64 `json:"amount" binding:"min=0"`
}

// ApproveExpense handles POST /v1/installs/:id/approve-expense
func (h *InstallHandler) ApproveExpense(c *gin.Context) {
	var req approveExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	install, err := h.installService.ApproveExpense(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Travel expense approved", install)
}

type approvePaymentRequest struct {
	AmountReceived int64  `json:"amountReceived" binding:"min=0"`
	Note           string `json:"note"`
}

// ApprovePayment handles POST /v1/installs/:id/approve-payment
func (h *InstallHandler) ApprovePayment(c *gin.Context) {
	var req approvePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.installService.ApprovePayment(c.Request.Context(), actorFrom(c), c.Param("id"), req.AmountReceived, req.Note)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Payment approved", result)
}

type addNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddNote handles POST /v1/installs/:id/notes
func (h *InstallHandler) AddNote(c *gin.Context) {
	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "EMPTY_NOTE", "Note text must not be empty")
		return
	}

	note, err := h.installService.AddNote(c.Request.Context(), actorFrom(c), c.Param("id"), req.Text)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 201, "Note added", note)
}

// ListNotifications handles GET /v1/installs/:id/notifications. The install
// lookup enforces the same ownership rules as GET /v1/installs/:id.
func (h *InstallHandler) ListNotifications(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.installService.Get(c.Request.Context(), actorFrom(c), id); err != nil {
		serviceError(c, err)
		return
	}

	logs, err := h.notifications.History(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Notification history retrieved", gin.H{
		"notifications": logs,
		"total":         len(logs),
	})
}
