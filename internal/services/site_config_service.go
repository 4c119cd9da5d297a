package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/repositories"
	"go.uber.org/zap"
)

type siteConfigService struct {
	configRepo repositories.SiteFlowConfigRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewSiteConfigService creates a new SiteConfigService implementation
func NewSiteConfigService(configRepo repositories.SiteFlowConfigRepository, logger *zap.Logger) SiteConfigService {
	return &siteConfigService{configRepo: configRepo, logger: logger, now: time.Now}
}

// Get returns the first configuration of a site, optionally for one flow
func (s *siteConfigService) Get(ctx context.Context, siteID, flowID string) (*models.SiteFlowConfig, error) {
	cfg, err := s.configRepo.FindFirst(ctx, siteID, flowID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrConfigNotFound
	}
	return cfg, err
}

// Upsert replaces the config of the first matching document, or creates a
// new one with a generated id.
func (s *siteConfigService) Upsert(ctx context.Context, siteID, flowID string, cfg models.WorkflowConfig) (*models.SiteFlowConfig, bool, error) {
	existing, err := s.configRepo.FindFirst(ctx, siteID, flowID)
	switch {
	case err == nil:
		existing.Config = cfg
		if err := s.configRepo.Replace(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, false, err
	}

	id := fmt.Sprintf("%s-%d", siteID, s.now().UnixMilli())
	if flowID != "" {
		id = fmt.Sprintf("%s-%s-%d", siteID, flowID, s.now().UnixMilli())
	}
	created := &models.SiteFlowConfig{
		ID:     id,
		SiteID: siteID,
		FlowID: flowID,
		Config: cfg,
	}
	if err := s.configRepo.Create(ctx, created); err != nil {
		return nil, false, err
	}
	s.logger.Info("Site configuration created", zap.String("site_id", siteID), zap.String("config_id", id))
	return created, true, nil
}
