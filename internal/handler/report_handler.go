package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/TrackBD/trackbd_api/internal/service"
	"github.com/TrackBD/trackbd_api/internal/utils"
)

// ReportHandler serves the Excel export of the install ledger.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// InstallsExport handles GET /v1/reports/installs.xlsx
func (h *ReportHandler) InstallsExport(c *gin.Context) {
	f, err := h.reportService.InstallsWorkbook(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to build installs export")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to build export")
		return
	}
	defer f.Close()

	name := service.ReportFileName(time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("failed to stream installs export")
	}
}
