// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/repositories"
	"github.com/stretchr/testify/mock"
)

var (
	_ repositories.SiteRepository           = (*SiteRepository)(nil)
	_ repositories.FlowRepository           = (*FlowRepository)(nil)
	_ repositories.SiteFlowConfigRepository = (*SiteFlowConfigRepository)(nil)
)

// SiteRepository mocks repositories.SiteRepository
type SiteRepository struct {
	mock.Mock
}

func (m *SiteRepository) Create(ctx context.Context, site *models.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *SiteRepository) FindBySiteID(ctx context.Context, siteID string) (*models.Site, error) {
	args := m.Called(ctx, siteID)
	site, _ := args.Get(0).(*models.Site)
	return site, args.Error(1)
}

func (m *SiteRepository) FindByEmail(ctx context.Context, email string) (*models.Site, error) {
	args := m.Called(ctx, email)
	site, _ := args.Get(0).(*models.Site)
	return site, args.Error(1)
}

func (m *SiteRepository) FindAll(ctx context.Context) ([]*models.Site, error) {
	args := m.Called(ctx)
	sites, _ := args.Get(0).([]*models.Site)
	return sites, args.Error(1)
}

// FlowRepository mocks repositories.FlowRepository
type FlowRepository struct {
	mock.Mock
}

func (m *FlowRepository) FindAll(ctx context.Context) ([]*models.Flow, error) {
	args := m.Called(ctx)
	flows, _ := args.Get(0).([]*models.Flow)
	return flows, args.Error(1)
}

func (m *FlowRepository) FindByID(ctx context.Context, id string) (*models.Flow, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*models.Flow)
	return f, args.Error(1)
}

func (m *FlowRepository) FindByWorkflowName(ctx context.Context, workflowName string) (*models.Flow, error) {
	args := m.Called(ctx, workflowName)
	f, _ := args.Get(0).(*models.Flow)
	return f, args.Error(1)
}

func (m *FlowRepository) Replace(ctx context.Context, flow *models.Flow) error {
	args := m.Called(ctx, flow)
	return args.Error(0)
}

func (m *FlowRepository) UpsertByWorkflowName(ctx context.Context, flow *models.Flow) error {
	args := m.Called(ctx, flow)
	return args.Error(0)
}

// SiteFlowConfigRepository mocks repositories.SiteFlowConfigRepository
type SiteFlowConfigRepository struct {
	mock.Mock
}

func (m *SiteFlowConfigRepository) FindFirst(ctx context.Context, siteID, flowID string) (*models.SiteFlowConfig, error) {
	args := m.Called(ctx, siteID, flowID)
	cfg, _ := args.Get(0).(*models.SiteFlowConfig)
	return cfg, args.Error(1)
}

func (m *SiteFlowConfigRepository) Create(ctx context.Context, cfg *models.SiteFlowConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *SiteFlowConfigRepository) Replace(ctx context.Context, cfg *models.SiteFlowConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}
