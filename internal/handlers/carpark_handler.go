package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkonomy/kiosk-backend/pkg/carpark"
	"go.uber.org/zap"
)

// CarparkAPI is the external carpark service
type CarparkAPI interface {
	CarparkInfo(ctx context.Context, siteID string) (*carpark.Info, error)
	TopDonors(ctx context.Context, siteID string) ([]carpark.Donor, error)
}

var _ CarparkAPI = (*carpark.Client)(nil)

// CarparkHandler proxies read-only carpark data to kiosks
type CarparkHandler struct {
	api    CarparkAPI
	logger *zap.Logger
}

// NewCarparkHandler creates a new CarparkHandler
func NewCarparkHandler(api CarparkAPI, logger *zap.Logger) *CarparkHandler {
	return &CarparkHandler{api: api, logger: logger}
}

// Info handles GET /api/kiosk/sites/:siteId/carpark
func (h *CarparkHandler) Info(c *gin.Context) {
	info, err := h.api.CarparkInfo(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// TopDonors handles GET /api/kiosk/sites/:siteId/top-donors
func (h *CarparkHandler) TopDonors(c *gin.Context) {
	donors, err := h.api.TopDonors(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	if donors == nil {
		donors = []carpark.Donor{}
	}
	c.JSON(http.StatusOK, donors)
}

func (h *CarparkHandler) upstreamError(c *gin.Context, err error) {
	if errors.Is(err, carpark.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	h.logger.Warn("Carpark API request failed", zap.String("site_id", c.Param("siteId")), zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "Carpark service unavailable"})
}
