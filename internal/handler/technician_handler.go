package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/TrackBD/trackbd_api/internal/service"
	"github.com/TrackBD/trackbd_api/internal/utils"
)

// TechnicianHandler handles technician management endpoints. All routes are
// admin-only.
type TechnicianHandler struct {
	techService *service.TechnicianService
}

// NewTechnicianHandler constructs a TechnicianHandler.
func NewTechnicianHandler(techService *service.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{techService: techService}
}

// Create handles POST /v1/technicians
func (h *TechnicianHandler) Create(c *gin.Context) {
	var req service.TechnicianInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	tech, err := h.techService.Create(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 201, "Technician created", tech)
}

// Get handles GET /v1/technicians/:id
func (h *TechnicianHandler) Get(c *gin.Context) {
	tech, err := h.techService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Technician retrieved", tech)
}

// List handles GET /v1/technicians
func (h *TechnicianHandler) List(c *gin.Context) {
	techs, err := h.techService.List(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Technicians retrieved", gin.H{
		"technicians": techs,
		"total":       len(techs),
	})
}

// Update handles PUT /v1/technicians/:id
func (h *TechnicianHandler) Update(c *gin.Context) {
	var req service.TechnicianInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	tech, err := h.techService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Technician updated", tech)
}

// Delete handles DELETE /v1/technicians/:id
func (h *TechnicianHandler) Delete(c *gin.Context) {
	if err := h.techService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Technician deleted", nil)
}
