package services

import (
	"context"
	"errors"

	"github.com/parkonomy/kiosk-backend/internal/flow"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/repositories"
)

// Theme sources
const (
	ThemeFromSite     = "site"
	ThemeFromTemplate = "template"
)

// Theme is the read-only configuration a kiosk session renders
type Theme struct {
	Site     *models.Site
	Workflow flow.Workflow
	Source   string
	Config   models.WorkflowConfig
}

// Screen returns the theme section of one screen
func (t *Theme) Screen(kind flow.ScreenKind) interface{} {
	c := t.Config
	switch kind {
	case flow.KindMainScreen:
		return c.MainScreen
	case flow.KindTapToStart:
		return c.TapToStartScreen
	case flow.KindEnterStayDuration:
		return c.EnterStayDurationScreen
	case flow.KindEnterRegNumber:
		return c.EnterRegNumberScreen
	case flow.KindGiveNickname:
		return c.EnterNickNameScreen
	case flow.KindCheckDetails:
		return c.CheckDetailsScreen
	case flow.KindDecision:
		return c.DecisionScreen
	}
	return nil
}

type themeResolver struct {
	siteRepo   repositories.SiteRepository
	flowRepo   repositories.FlowRepository
	configRepo repositories.SiteFlowConfigRepository
}

// NewThemeResolver creates a resolver that prefers a site's own
// configuration and falls back to its workflow template.
func NewThemeResolver(siteRepo repositories.SiteRepository, flowRepo repositories.FlowRepository, configRepo repositories.SiteFlowConfigRepository) ThemeResolver {
	return &themeResolver{siteRepo: siteRepo, flowRepo: flowRepo, configRepo: configRepo}
}

func (r *themeResolver) Resolve(ctx context.Context, siteID string) (*Theme, error) {
	site, err := r.siteRepo.FindBySiteID(ctx, siteID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrSiteNotFound
	}
	if err != nil {
		return nil, err
	}
	w, err := flow.ParseWorkflow(site.WorkflowName)
	if err != nil {
		return nil, err
	}

	cfg, err := r.configRepo.FindFirst(ctx, siteID, "")
	if err == nil {
		return &Theme{Site: site, Workflow: w, Source: ThemeFromSite, Config: cfg.Config}, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	template, err := r.flowRepo.FindByWorkflowName(ctx, site.WorkflowName)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrFlowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Theme{Site: site, Workflow: w, Source: ThemeFromTemplate, Config: template.Config}, nil
}
