package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parkonomy/kiosk-backend/internal/flow"
	"github.com/parkonomy/kiosk-backend/internal/middleware"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/repositories"
	"github.com/parkonomy/kiosk-backend/internal/repositories/mocks"
	"github.com/parkonomy/kiosk-backend/internal/services"
	"github.com/parkonomy/kiosk-backend/pkg/jwt"
	"github.com/parkonomy/kiosk-backend/pkg/resultbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doJSON(r http.Handler, method, path string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stubAuth struct {
	resp *models.LoginResponse
	err  error
}

func (s *stubAuth) Login(context.Context, *models.LoginRequest) (*models.LoginResponse, error) {
	return s.resp, s.err
}

func TestLoginResponses(t *testing.T) {
	r := gin.New()
	auth := &stubAuth{err: services.ErrInvalidCredentials}
	r.POST("/api/login", NewAuthHandler(auth).Login)

	w := doJSON(r, http.MethodPost, "/api/login", map[string]string{"email": "a@b.c"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/login", map[string]string{"email": "a@b.c", "password": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Invalid email or password"}`, w.Body.String())

	auth.err = nil
	auth.resp = &models.LoginResponse{Message: "Login successful", Token: "tok", User: &models.Site{SiteID: "site1"}}
	w = doJSON(r, http.MethodPost, "/api/login", map[string]string{"email": "a@b.c", "password": "x"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "site1", resp.User.SiteID)
}

func TestLookupTables(t *testing.T) {
	r := gin.New()
	r.GET("/api/parking-fee", ParkingFees)

	w := doJSON(r, http.MethodGet, "/api/parking-fee", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var fees []models.FeeOption
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fees))
	assert.Len(t, fees, 10)
	assert.Equal(t, "UP TO 1 HR - £1.00", fees[0].Fee)
}

func TestSiteConfigHandler(t *testing.T) {
	repo := new(mocks.SiteFlowConfigRepository)
	h := NewSiteConfigHandler(services.NewSiteConfigService(repo, zap.NewNop()))
	r := gin.New()
	r.GET("/api/site-config/:siteId", h.Get)
	r.PUT("/api/site-config/:siteId", h.Put)

	repo.On("FindFirst", mock.Anything, "site1", "").Return(nil, repositories.ErrNotFound).Once()
	w := doJSON(r, http.MethodGet, "/api/site-config/site1", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Site-specific configuration not found"}`, w.Body.String())

	w = doJSON(r, http.MethodPut, "/api/site-config/site1", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := map[string]interface{}{"config": map[string]interface{}{"mainScreen": map[string]string{"title": "Hi"}}}
	repo.On("FindFirst", mock.Anything, "site1", "").Return(nil, repositories.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	w = doJSON(r, http.MethodPut, "/api/site-config/site1", body, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	repo.On("FindFirst", mock.Anything, "site1", "").Return(&models.SiteFlowConfig{ID: "site1-1", SiteID: "site1"}, nil).Once()
	repo.On("Replace", mock.Anything, mock.Anything).Return(nil).Once()
	w = doJSON(r, http.MethodPut, "/api/site-config/site1", body, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var cfg models.SiteFlowConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, "Hi", cfg.Config.MainScreen.Title)
	repo.AssertExpectations(t)
}

type recordingBridge struct {
	delivered []resultbus.Result
}

func (b *recordingBridge) Initiate(context.Context, string, int64) (*services.PaymentHandoff, error) {
	return &services.PaymentHandoff{}, nil
}
func (b *recordingBridge) Cancel(context.Context, string) {}
func (b *recordingBridge) Deliver(_ context.Context, r resultbus.Result) error {
	b.delivered = append(b.delivered, r)
	return nil
}

func TestPaymentCallback(t *testing.T) {
	bridge := &recordingBridge{}
	r := gin.New()
	r.POST("/api/payment/callback", NewPaymentHandler(bridge, "s3cret", zap.NewNop()).Callback)

	body := map[string]string{"client_reference": "ref-1", "transaction_status": "Transaction Successful"}
	w := doJSON(r, http.MethodPost, "/api/payment/callback", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, bridge.delivered)

	w = doJSON(r, http.MethodPost, "/api/payment/callback", body, map[string]string{CallbackTokenHeader: "s3cret"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, bridge.delivered, 1)
	assert.Equal(t, "ref-1", bridge.delivered[0].ClientReference)
}

func TestToEvent(t *testing.T) {
	ev, err := toEvent(models.KioskEventRequest{Type: "select_option", Fee: "£2.00"})
	require.NoError(t, err)
	assert.Equal(t, flow.SelectOption{Choice: flow.Choice{Fee: "£2.00"}}, ev)

	ev, err = toEvent(models.KioskEventRequest{Type: "enter_registration", RegistrationNumber: "AB12"})
	require.NoError(t, err)
	assert.Equal(t, flow.EnterRegistration{Plate: "AB12"}, ev)

	_, err = toEvent(models.KioskEventRequest{Type: "payment_succeeded"})
	assert.ErrorIs(t, err, flow.ErrInvalidInput)
}

type staticThemes struct{}

func (staticThemes) Resolve(_ context.Context, siteID string) (*services.Theme, error) {
	return &services.Theme{
		Site:     &models.Site{SiteID: siteID, WorkflowName: string(flow.NoParkFee)},
		Workflow: flow.NoParkFee,
		Source:   services.ThemeFromTemplate,
	}, nil
}

func TestReceiptDisposition(t *testing.T) {
	assert.Equal(t, "inline; filename=receipt-AB12CDE.pdf", receiptDisposition("AB12CDE"))
	assert.Equal(t, `inline; filename="receipt-AB\\12.pdf"`, receiptDisposition(`AB\12`))
	assert.True(t, strings.HasPrefix(receiptDisposition("ÅB12"), "inline; filename*=utf-8''"))
}

func TestKioskSessionEndpoints(t *testing.T) {
	tokens := jwt.NewTokenService("secret", time.Hour)
	kioskSvc := services.NewKioskService(staticThemes{}, &recordingBridge{}, nil, nil, services.KioskConfig{}, zap.NewNop())
	h := NewKioskHandler(kioskSvc)

	r := gin.New()
	api := r.Group("/api/kiosk", middleware.JWTAuthMiddleware(tokens, zap.NewNop()))
	api.POST("/sessions", h.Start)
	api.GET("/sessions/:id", h.Get)
	api.POST("/sessions/:id/events", h.Event)
	api.GET("/sessions/:id/receipt.pdf", h.ReceiptPDF)
	api.GET("/sessions/:id/receipt/qr.png", h.ReceiptQR)
	api.DELETE("/sessions/:id", h.Close)

	site1, err := tokens.Issue(jwt.Claims{ID: "1", Role: models.RoleSite, SiteID: "site1"})
	require.NoError(t, err)
	site2, err := tokens.Issue(jwt.Claims{ID: "2", Role: models.RoleSite, SiteID: "site2"})
	require.NoError(t, err)
	auth1 := map[string]string{"Authorization": "Bearer " + site1}
	auth2 := map[string]string{"Authorization": "Bearer " + site2}

	w := doJSON(r, http.MethodPost, "/api/kiosk/sessions", map[string]string{"siteId": "site2"}, auth1)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/kiosk/sessions", nil, auth1)
	require.Equal(t, http.StatusCreated, w.Code)
	var view services.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "site1", view.SiteID)
	assert.Equal(t, flow.KindMainScreen, view.Screen)
	base := "/api/kiosk/sessions/" + view.ID

	assert.Equal(t, http.StatusForbidden, doJSON(r, http.MethodGet, base, nil, auth2).Code)

	w = doJSON(r, http.MethodPost, base+"/events", map[string]string{"type": "continue"}, auth1)
	assert.Equal(t, http.StatusConflict, w.Code)

	for _, ev := range []map[string]interface{}{
		{"type": "tap"},
		{"type": "tap"},
		{"type": "select_option", "days": 3},
		{"type": "enter_registration", "registrationNumber": "ab12 cde"},
		{"type": "continue"},
	} {
		w = doJSON(r, http.MethodPost, base+"/events", ev, auth1)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, flow.KindDecision, view.Screen)
	assert.Equal(t, "AB12 CDE", view.Selection.RegistrationNumber)

	w = doJSON(r, http.MethodGet, base+"/receipt.pdf", nil, auth1)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="receipt-AB12 CDE.pdf"`, w.Header().Get("Content-Disposition"))

	w = doJSON(r, http.MethodGet, base+"/receipt/qr.png", nil, auth1)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNoContent, doJSON(r, http.MethodDelete, base, nil, auth1).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, base, nil, auth1).Code)
}
