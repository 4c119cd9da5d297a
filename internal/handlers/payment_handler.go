package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/services"
	"github.com/parkonomy/kiosk-backend/pkg/resultbus"
	"go.uber.org/zap"
)

// CallbackTokenHeader authenticates the terminal integration
const CallbackTokenHeader = "X-Callback-Token"

// PaymentHandler receives payment results from the terminal integration
type PaymentHandler struct {
	bridge        services.PaymentBridge
	callbackToken string
	logger        *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler. An empty token disables the check.
func NewPaymentHandler(bridge services.PaymentBridge, callbackToken string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{bridge: bridge, callbackToken: callbackToken, logger: logger}
}

// Callback handles POST /api/payment/callback
func (h *PaymentHandler) Callback(c *gin.Context) {
	if h.callbackToken != "" &&
		subtle.ConstantTimeCompare([]byte(c.GetHeader(CallbackTokenHeader)), []byte(h.callbackToken)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid callback token"})
		return
	}

	var req models.PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("Payment callback received",
		zap.String("reference", req.ClientReference),
		zap.String("status", req.TransactionStatus),
	)
	if err := h.bridge.Deliver(c.Request.Context(), resultbus.Result{
		ClientReference:   req.ClientReference,
		TransactionStatus: req.TransactionStatus,
		Reason:            req.Reason,
	}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
