package services

import (
	"context"
	"errors"

	"github.com/parkonomy/kiosk-backend/internal/flow"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/pkg/receipt"
	"github.com/parkonomy/kiosk-backend/pkg/resultbus"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSiteNotFound       = errors.New("site not found")
	ErrFlowNotFound       = errors.New("flow configuration not found")
	ErrConfigNotFound     = errors.New("site-specific configuration not found")
	ErrEmailTaken         = errors.New("a site with this email already exists")
	ErrSessionNotFound    = errors.New("kiosk session not found")
	ErrReceiptUnavailable = errors.New("no receipt for this session yet")
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// SiteService defines the interface for site management
type SiteService interface {
	ListSites(ctx context.Context) ([]*models.Site, error)
	GetSite(ctx context.Context, siteID string) (*models.Site, error)
	// CreateSite stores the site and seeds its configuration from the
	// workflow template. When the template is missing the created site is
	// returned together with ErrFlowNotFound.
	CreateSite(ctx context.Context, req *models.CreateSiteRequest) (*models.Site, error)
}

// FlowService defines the interface for workflow template operations
type FlowService interface {
	ListFlows(ctx context.Context) ([]*models.Flow, error)
	GetFlowByWorkflowName(ctx context.Context, workflowName string) (*models.Flow, error)
	UpdateFlow(ctx context.Context, flowID string, flow *models.Flow) (*models.Flow, error)
	Form(ctx context.Context, workflowName string) (*FlowForm, error)
	ApplyForm(ctx context.Context, flowID string, values map[string]string) (*models.Flow, error)
}

// SiteConfigService defines the interface for per-site configuration
type SiteConfigService interface {
	Get(ctx context.Context, siteID, flowID string) (*models.SiteFlowConfig, error)
	// Upsert replaces the first matching configuration or creates one. The
	// boolean reports whether a new document was created.
	Upsert(ctx context.Context, siteID, flowID string, cfg models.WorkflowConfig) (*models.SiteFlowConfig, bool, error)
}

// ThemeResolver looks up the screen configuration a kiosk renders
type ThemeResolver interface {
	Resolve(ctx context.Context, siteID string) (*Theme, error)
}

// LeaderboardService records donations on a site's leaderboard
type LeaderboardService interface {
	Record(ctx context.Context, siteID, nickname, feeLabel string) error
}

// PaymentBridge hands payments to the terminal and routes results back
type PaymentBridge interface {
	// Initiate starts a payment. Results always arrive later on the result bus.
	Initiate(ctx context.Context, reference string, amount int64) (*PaymentHandoff, error)
	// Cancel asks the terminal to abandon a payment. Failures are only logged.
	Cancel(ctx context.Context, reference string)
	// Deliver publishes a result reported by the terminal integration
	Deliver(ctx context.Context, result resultbus.Result) error
}

// KioskService drives live kiosk sessions
type KioskService interface {
	Start(ctx context.Context, siteID string) (*SessionView, error)
	Get(ctx context.Context, id string) (*SessionView, error)
	Dispatch(ctx context.Context, id string, ev flow.Event) (*SessionView, error)
	Touch(ctx context.Context, id string) (*SessionView, error)
	TimeoutContinue(ctx context.Context, id string) (*SessionView, error)
	TimeoutReset(ctx context.Context, id string) (*SessionView, error)
	Close(ctx context.Context, id string) error
	Receipt(ctx context.Context, id string) (*receipt.Receipt, error)
	// SiteOf returns the site a session belongs to
	SiteOf(id string) (string, error)
	// Listen routes payment results from the bus to their sessions until cancel is called
	Listen(ctx context.Context, bus resultbus.Bus) (cancel func(), err error)
	HandlePaymentResult(result resultbus.Result)
}
