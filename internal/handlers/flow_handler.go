package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/services"
)

// FlowHandler handles workflow template requests
type FlowHandler struct {
	flowService services.FlowService
}

// NewFlowHandler creates a new FlowHandler
func NewFlowHandler(flowService services.FlowService) *FlowHandler {
	return &FlowHandler{flowService: flowService}
}

// List handles GET /api/flows
func (h *FlowHandler) List(c *gin.Context) {
	flows, err := h.flowService.ListFlows(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if flows == nil {
		flows = []*models.Flow{}
	}
	c.JSON(http.StatusOK, flows)
}

// GetByWorkflowName handles GET /api/flows/:workflowName
func (h *FlowHandler) GetByWorkflowName(c *gin.Context) {
	f, err := h.flowService.GetFlowByWorkflowName(c.Request.Context(), c.Param("workflowName"))
	if errors.Is(err, services.ErrFlowNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Configuration not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// Update handles PUT /api/flows/:flowId
func (h *FlowHandler) Update(c *gin.Context) {
	var f models.Flow
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.flowService.UpdateFlow(c.Request.Context(), c.Param("flowId"), &f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Form handles GET /api/flows/:workflowName/form
func (h *FlowHandler) Form(c *gin.Context) {
	form, err := h.flowService.Form(c.Request.Context(), c.Param("workflowName"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// ApplyForm handles PUT /api/flows/:flowId/form
func (h *FlowHandler) ApplyForm(c *gin.Context) {
	var req models.FlowFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := h.flowService.ApplyForm(c.Request.Context(), c.Param("flowId"), req.Values)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}
