package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/parkonomy/kiosk-backend/internal/flow"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/pkg/payment"
	"go.uber.org/zap"
)

// MaxLeaders is the length of a site's leaderboard
const MaxLeaders = 10

// AddLeader returns a new list with l inserted, sorted by amount descending
// and truncated to MaxLeaders. Ties keep their existing order.
func AddLeader(list []models.Leader, l models.Leader) []models.Leader {
	out := make([]models.Leader, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, l)
	sort.SliceStable(out, func(i, j int) bool {
		return leaderPence(out[i]) > leaderPence(out[j])
	})
	if len(out) > MaxLeaders {
		out = out[:MaxLeaders]
	}
	return out
}

func leaderPence(l models.Leader) int64 {
	p, err := payment.ParseAmount(l.Amount)
	if err != nil {
		return 0
	}
	return p
}

type leaderboardService struct {
	configs SiteConfigService
	themes  ThemeResolver
	logger  *zap.Logger
}

// NewLeaderboardService creates a new LeaderboardService implementation
func NewLeaderboardService(configs SiteConfigService, themes ThemeResolver, logger *zap.Logger) LeaderboardService {
	return &leaderboardService{configs: configs, themes: themes, logger: logger}
}

// Record appends a donation to the site's leaderboard. The update is a plain
// read-modify-write; concurrent finishers on one site may overwrite each other.
func (s *leaderboardService) Record(ctx context.Context, siteID, nickname, feeLabel string) error {
	pence, err := payment.ParseAmount(feeLabel)
	if err != nil {
		return fmt.Errorf("leaderboard amount: %w", err)
	}
	if nickname == "" {
		nickname = flow.DefaultNickname
	}

	theme, err := s.themes.Resolve(ctx, siteID)
	if err != nil {
		return err
	}
	cfg := theme.Config
	cfg.TapToStartScreen.RecentLeaders = AddLeader(cfg.TapToStartScreen.RecentLeaders, models.Leader{
		Name:   nickname,
		Amount: payment.FormatAmount(pence),
	})

	if _, _, err := s.configs.Upsert(ctx, siteID, "", cfg); err != nil {
		return err
	}
	s.logger.Info("Leaderboard updated", zap.String("site_id", siteID), zap.String("name", nickname), zap.Int64("pence", pence))
	return nil
}
