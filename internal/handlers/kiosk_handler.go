package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkonomy/kiosk-backend/internal/flow"
	"github.com/parkonomy/kiosk-backend/internal/middleware"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/services"
	"github.com/parkonomy/kiosk-backend/pkg/receipt"
)

// QRSize is the edge length of receipt QR images in pixels
const QRSize = 256

// KioskHandler exposes live kiosk sessions
type KioskHandler struct {
	kioskService services.KioskService
}

// NewKioskHandler creates a new KioskHandler
func NewKioskHandler(kioskService services.KioskService) *KioskHandler {
	return &KioskHandler{kioskService: kioskService}
}

// Start handles POST /api/kiosk/sessions
func (h *KioskHandler) Start(c *gin.Context) {
	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims, _ := middleware.ClaimsFrom(c)
	if req.SiteID == "" && claims != nil {
		req.SiteID = claims.SiteID
	}
	if req.SiteID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "siteId is required"})
		return
	}
	if claims == nil || !middleware.CanAccessSite(claims, req.SiteID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access to this site is not allowed"})
		return
	}

	view, err := h.kioskService.Start(c.Request.Context(), req.SiteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Get handles GET /api/kiosk/sessions/:id
func (h *KioskHandler) Get(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	h.respond(c)(h.kioskService.Get(c.Request.Context(), c.Param("id")))
}

// Event handles POST /api/kiosk/sessions/:id/events
func (h *KioskHandler) Event(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	var req models.KioskEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev, err := toEvent(req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c)(h.kioskService.Dispatch(c.Request.Context(), c.Param("id"), ev))
}

// Activity handles POST /api/kiosk/sessions/:id/activity
func (h *KioskHandler) Activity(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	h.respond(c)(h.kioskService.Touch(c.Request.Context(), c.Param("id")))
}

// TimeoutContinue handles POST /api/kiosk/sessions/:id/timeout/continue
func (h *KioskHandler) TimeoutContinue(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	h.respond(c)(h.kioskService.TimeoutContinue(c.Request.Context(), c.Param("id")))
}

// TimeoutReset handles POST /api/kiosk/sessions/:id/timeout/reset
func (h *KioskHandler) TimeoutReset(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	h.respond(c)(h.kioskService.TimeoutReset(c.Request.Context(), c.Param("id")))
}

// Close handles DELETE /api/kiosk/sessions/:id
func (h *KioskHandler) Close(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	if err := h.kioskService.Close(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReceiptPDF handles GET /api/kiosk/sessions/:id/receipt.pdf
func (h *KioskHandler) ReceiptPDF(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	r, err := h.kioskService.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	pdf, err := receipt.Render(*r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", receiptDisposition(r.RegistrationNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func receiptDisposition(plate string) string {
	return mime.FormatMediaType("inline", map[string]string{"filename": "receipt-" + plate + ".pdf"})
}

// ReceiptQR handles GET /api/kiosk/sessions/:id/receipt/qr.png
func (h *KioskHandler) ReceiptQR(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	r, err := h.kioskService.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	png, err := receipt.QRCode(r.QRPayload(), QRSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// authorize checks the caller may drive the session in the path
func (h *KioskHandler) authorize(c *gin.Context) bool {
	siteID, err := h.kioskService.SiteOf(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return false
	}
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || !middleware.CanAccessSite(claims, siteID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access to this site is not allowed"})
		return false
	}
	return true
}

func (h *KioskHandler) respond(c *gin.Context) func(*services.SessionView, error) {
	return func(view *services.SessionView, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// toEvent maps a kiosk request to a sequencer event. Payment results are not
// accepted here; they arrive from the terminal through the result bus.
func toEvent(req models.KioskEventRequest) (flow.Event, error) {
	switch req.Type {
	case "tap":
		return flow.Tap{}, nil
	case "select_option":
		return flow.SelectOption{Choice: flow.Choice{Fee: req.Fee, Days: req.Days}}, nil
	case "skip_payment":
		return flow.SkipPayment{}, nil
	case "enter_registration":
		return flow.EnterRegistration{Plate: req.RegistrationNumber}, nil
	case "enter_nickname":
		return flow.EnterNickname{Nickname: req.Nickname}, nil
	case "continue":
		return flow.Continue{}, nil
	case "retry_payment":
		return flow.RetryPayment{}, nil
	case "finish":
		return flow.Finish{Email: req.Email}, nil
	case "go_back":
		return flow.GoBack{}, nil
	}
	return nil, fmt.Errorf("%w: unknown event type %q", flow.ErrInvalidInput, req.Type)
}
