package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/parkonomy/kiosk-backend/internal/flow"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/repositories"
	"github.com/parkonomy/kiosk-backend/internal/repositories/mocks"
	"github.com/parkonomy/kiosk-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newSiteRequest() *models.CreateSiteRequest {
	return &models.CreateSiteRequest{
		SiteName:     "Riverside",
		Email:        "ops@riverside.example",
		Password:     "hunter22",
		WorkflowName: string(flow.OptionalDonation),
	}
}

func TestCreateSiteSeedsConfiguration(t *testing.T) {
	siteRepo := new(mocks.SiteRepository)
	flowRepo := new(mocks.FlowRepository)
	configRepo := new(mocks.SiteFlowConfigRepository)
	svc := services.NewSiteService(siteRepo, flowRepo, configRepo, zap.NewNop())

	template := &models.Flow{ID: "flow1", WorkflowName: string(flow.OptionalDonation)}
	template.Config.MainScreen.Title = "Welcome"
	template.Config.TapToStartScreen.RecentLeaders = []models.Leader{{Name: "Old", Amount: "£5.00"}}

	siteRepo.On("FindByEmail", mock.Anything, "ops@riverside.example").Return(nil, repositories.ErrNotFound).Once()
	siteRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Site) bool {
		return strings.HasPrefix(s.SiteID, "site") &&
			s.Role == models.RoleSite &&
			bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte("hunter22")) == nil
	})).Return(nil).Once()
	flowRepo.On("FindByWorkflowName", mock.Anything, string(flow.OptionalDonation)).Return(template, nil).Once()
	configRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.SiteFlowConfig) bool {
		return strings.HasPrefix(c.ID, c.SiteID+"-") &&
			c.Config.MainScreen.Title == "Welcome" &&
			len(c.Config.TapToStartScreen.RecentLeaders) == 0
	})).Return(nil).Once()

	site, err := svc.CreateSite(context.Background(), newSiteRequest())
	require.NoError(t, err)
	assert.Equal(t, "Riverside", site.SiteName)

	siteRepo.AssertExpectations(t)
	flowRepo.AssertExpectations(t)
	configRepo.AssertExpectations(t)
}

func TestCreateSiteWithoutTemplate(t *testing.T) {
	siteRepo := new(mocks.SiteRepository)
	flowRepo := new(mocks.FlowRepository)
	configRepo := new(mocks.SiteFlowConfigRepository)
	svc := services.NewSiteService(siteRepo, flowRepo, configRepo, zap.NewNop())

	siteRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, repositories.ErrNotFound).Once()
	siteRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	flowRepo.On("FindByWorkflowName", mock.Anything, mock.Anything).Return(nil, repositories.ErrNotFound).Once()

	site, err := svc.CreateSite(context.Background(), newSiteRequest())
	assert.ErrorIs(t, err, services.ErrFlowNotFound)
	require.NotNil(t, site)
	configRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateSiteRejections(t *testing.T) {
	t.Run("duplicate email", func(t *testing.T) {
		siteRepo := new(mocks.SiteRepository)
		siteRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(&models.Site{SiteID: "site0"}, nil).Once()
		svc := services.NewSiteService(siteRepo, new(mocks.FlowRepository), new(mocks.SiteFlowConfigRepository), zap.NewNop())

		_, err := svc.CreateSite(context.Background(), newSiteRequest())
		assert.ErrorIs(t, err, services.ErrEmailTaken)
		siteRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown workflow", func(t *testing.T) {
		svc := services.NewSiteService(new(mocks.SiteRepository), new(mocks.FlowRepository), new(mocks.SiteFlowConfigRepository), zap.NewNop())
		req := newSiteRequest()
		req.WorkflowName = "BogusFlow"

		_, err := svc.CreateSite(context.Background(), req)
		assert.ErrorIs(t, err, flow.ErrInvalidInput)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc := services.NewSiteService(new(mocks.SiteRepository), new(mocks.FlowRepository), new(mocks.SiteFlowConfigRepository), zap.NewNop())
		req := newSiteRequest()
		req.Role = "superuser"

		_, err := svc.CreateSite(context.Background(), req)
		assert.ErrorIs(t, err, flow.ErrInvalidInput)
	})
}

func TestGetSiteNotFound(t *testing.T) {
	siteRepo := new(mocks.SiteRepository)
	siteRepo.On("FindBySiteID", mock.Anything, "nope").Return(nil, repositories.ErrNotFound).Once()
	svc := services.NewSiteService(siteRepo, new(mocks.FlowRepository), new(mocks.SiteFlowConfigRepository), zap.NewNop())

	_, err := svc.GetSite(context.Background(), "nope")
	assert.ErrorIs(t, err, services.ErrSiteNotFound)
}
