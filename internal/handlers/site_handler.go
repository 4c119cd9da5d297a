package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/services"
)

// SiteHandler handles site administration requests
type SiteHandler struct {
	siteService services.SiteService
}

// NewSiteHandler creates a new SiteHandler
func NewSiteHandler(siteService services.SiteService) *SiteHandler {
	return &SiteHandler{siteService: siteService}
}

// List handles GET /api/sites
func (h *SiteHandler) List(c *gin.Context) {
	sites, err := h.siteService.ListSites(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if sites == nil {
		sites = []*models.Site{}
	}
	c.JSON(http.StatusOK, sites)
}

// Create handles POST /api/sites. The site is stored even when its workflow
// has no template; that case answers 404 so the admin can add the template.
func (h *SiteHandler) Create(c *gin.Context) {
	var req models.CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	site, err := h.siteService.CreateSite(c.Request.Context(), &req)
	if errors.Is(err, services.ErrFlowNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Flow configuration not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, site)
}

// Config handles GET /api/config/:siteId
func (h *SiteHandler) Config(c *gin.Context) {
	site, err := h.siteService.GetSite(c.Request.Context(), c.Param("siteId"))
	if errors.Is(err, services.ErrSiteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Configuration not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}
