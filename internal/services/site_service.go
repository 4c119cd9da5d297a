package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parkonomy/kiosk-backend/internal/flow"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/repositories"
	"go.uber.org/zap"
)

type siteService struct {
	siteRepo   repositories.SiteRepository
	flowRepo   repositories.FlowRepository
	configRepo repositories.SiteFlowConfigRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewSiteService creates a new SiteService implementation
func NewSiteService(siteRepo repositories.SiteRepository, flowRepo repositories.FlowRepository, configRepo repositories.SiteFlowConfigRepository, logger *zap.Logger) SiteService {
	return &siteService{
		siteRepo:   siteRepo,
		flowRepo:   flowRepo,
		configRepo: configRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// ListSites returns every site
func (s *siteService) ListSites(ctx context.Context) ([]*models.Site, error) {
	return s.siteRepo.FindAll(ctx)
}

// GetSite returns one site by its site id
func (s *siteService) GetSite(ctx context.Context, siteID string) (*models.Site, error) {
	site, err := s.siteRepo.FindBySiteID(ctx, siteID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrSiteNotFound
	}
	return site, err
}

// CreateSite registers a new site and seeds its configuration
func (s *siteService) CreateSite(ctx context.Context, req *models.CreateSiteRequest) (*models.Site, error) {
	if _, err := flow.ParseWorkflow(req.WorkflowName); err != nil {
		return nil, err
	}
	role := req.Role
	switch role {
	case "":
		role = models.RoleSite
	case models.RoleSite, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", flow.ErrInvalidInput, role)
	}

	if _, err := s.siteRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	site := &models.Site{
		SiteID:        fmt.Sprintf("site%d", now.UnixMilli()),
		SiteName:      req.SiteName,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		PasswordHash:  hash,
		WorkflowName:  req.WorkflowName,
		Role:          role,
		CreatedAt:     now,
	}
	if err := s.siteRepo.Create(ctx, site); err != nil {
		return nil, err
	}
	s.logger.Info("Site created", zap.String("site_id", site.SiteID), zap.String("workflow", site.WorkflowName))

	template, err := s.flowRepo.FindByWorkflowName(ctx, req.WorkflowName)
	if errors.Is(err, repositories.ErrNotFound) {
		s.logger.Warn("No template to seed site configuration", zap.String("site_id", site.SiteID), zap.String("workflow", req.WorkflowName))
		return site, ErrFlowNotFound
	}
	if err != nil {
		return site, fmt.Errorf("failed to load flow template: %w", err)
	}

	seed := template.Config
	seed.TapToStartScreen.RecentLeaders = nil
	if err := s.configRepo.Create(ctx, &models.SiteFlowConfig{
		ID:     fmt.Sprintf("%s-%d", site.SiteID, now.UnixMilli()),
		SiteID: site.SiteID,
		Config: seed,
	}); err != nil {
		return site, fmt.Errorf("failed to seed site configuration: %w", err)
	}
	return site, nil
}
