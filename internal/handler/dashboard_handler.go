package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/TrackBD/trackbd_api/internal/service"
	"github.com/TrackBD/trackbd_api/internal/utils"
)

// DashboardHandler serves the admin dashboard aggregates.
type DashboardHandler struct {
	installService *service.InstallService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(installService *service.InstallService) *DashboardHandler {
	return &DashboardHandler{installService: installService}
}

// Metrics handles GET /v1/dashboard/metrics
func (h *DashboardHandler) Metrics(c *gin.Context) {
	metrics, err := h.installService.Metrics(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Dashboard metrics retrieved", metrics)
}
