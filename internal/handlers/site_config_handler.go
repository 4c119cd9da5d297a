package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/services"
)

// SiteConfigHandler handles per-site screen configuration
type SiteConfigHandler struct {
	configService services.SiteConfigService
}

// NewSiteConfigHandler creates a new SiteConfigHandler
func NewSiteConfigHandler(configService services.SiteConfigService) *SiteConfigHandler {
	return &SiteConfigHandler{configService: configService}
}

// Get handles GET /api/site-config/:siteId[/:flowId]
func (h *SiteConfigHandler) Get(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context(), c.Param("siteId"), c.Param("flowId"))
	if errors.Is(err, services.ErrConfigNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site-specific configuration not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Put handles PUT /api/site-config/:siteId[/:flowId]. It answers 201 when a
// configuration was created and 200 when one was replaced.
func (h *SiteConfigHandler) Put(c *gin.Context) {
	var req models.SiteConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, created, err := h.configService.Upsert(c.Request.Context(), c.Param("siteId"), c.Param("flowId"), *req.Config)
	if err != nil {
		respondError(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, cfg)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
