package repositories

import (
	"context"
	"errors"

	"github.com/parkonomy/kiosk-backend/internal/models"
)

// ErrNotFound is returned when no document matches a lookup
var ErrNotFound = errors.New("document not found")

// SiteRepository defines the interface for site data operations
type SiteRepository interface {
	Create(ctx context.Context, site *models.Site) error
	FindBySiteID(ctx context.Context, siteID string) (*models.Site, error)
	FindByEmail(ctx context.Context, email string) (*models.Site, error)
	FindAll(ctx context.Context) ([]*models.Site, error)
}

// FlowRepository defines the interface for workflow template operations
type FlowRepository interface {
	FindAll(ctx context.Context) ([]*models.Flow, error)
	FindByID(ctx context.Context, id string) (*models.Flow, error)
	FindByWorkflowName(ctx context.Context, workflowName string) (*models.Flow, error)
	// Replace overwrites the flow with the same ID. ErrNotFound if there is none.
	Replace(ctx context.Context, flow *models.Flow) error
	// UpsertByWorkflowName inserts or overwrites the template of a workflow
	UpsertByWorkflowName(ctx context.Context, flow *models.Flow) error
}

// SiteFlowConfigRepository defines the interface for per-site configuration
// operations. An empty flowID matches on siteID alone.
type SiteFlowConfigRepository interface {
	FindFirst(ctx context.Context, siteID, flowID string) (*models.SiteFlowConfig, error)
	Create(ctx context.Context, cfg *models.SiteFlowConfig) error
	Replace(ctx context.Context, cfg *models.SiteFlowConfig) error
}
