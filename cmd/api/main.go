package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parkonomy/kiosk-backend/api/routes"
	"github.com/parkonomy/kiosk-backend/internal/config"
	"github.com/parkonomy/kiosk-backend/internal/handlers"
	"github.com/parkonomy/kiosk-backend/internal/kiosk"
	"github.com/parkonomy/kiosk-backend/internal/middleware"
	mongorepo "github.com/parkonomy/kiosk-backend/internal/repositories/mongodb"
	"github.com/parkonomy/kiosk-backend/internal/services"
	"github.com/parkonomy/kiosk-backend/pkg/carpark"
	"github.com/parkonomy/kiosk-backend/pkg/jwt"
	"github.com/parkonomy/kiosk-backend/pkg/logger"
	"github.com/parkonomy/kiosk-backend/pkg/mongodb"
	"github.com/parkonomy/kiosk-backend/pkg/payment"
	"github.com/parkonomy/kiosk-backend/pkg/receipt"
	"github.com/parkonomy/kiosk-backend/pkg/resultbus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("Server stopped with error", zap.Error(err))
	}
	zlog.Info("Server exiting")
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			zlog.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database()

	if err := mongorepo.EnsureIndexes(ctx, db, cfg.MongoDB.SitesCollection, cfg.MongoDB.SiteFlowConfigsCollection); err != nil {
		zlog.Warn("Failed to ensure indexes", zap.Error(err))
	}

	siteRepo := mongorepo.NewSiteRepository(db, cfg.MongoDB.SitesCollection)
	flowRepo := mongorepo.NewFlowRepository(db, cfg.MongoDB.FlowsCollection)
	configRepo := mongorepo.NewSiteFlowConfigRepository(db, cfg.MongoDB.SiteFlowConfigsCollection)

	bus, closeBus, err := newResultBus(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer closeBus()

	tokens := jwt.NewTokenService(cfg.JWT.Secret, cfg.TokenTTL())
	terminal := payment.NewClient(payment.Config{
		BaseURL:     cfg.Payment.BaseURL,
		Mode:        cfg.Payment.Mode,
		RedirectURL: cfg.Payment.RedirectURL,
		MockAPI:     cfg.Payment.MockAPI,
		Timeout:     cfg.PaymentTimeout(),
	})
	sender := receipt.NewSender(receipt.Config{
		Gateway: cfg.Receipt.Gateway,
		BaseURL: cfg.Receipt.BaseURL,
		APIKey:  cfg.Receipt.APIKey,
		From:    cfg.Receipt.From,
	}, zlog)
	carparkClient := carpark.NewClient(carpark.Config{
		BaseURL:      cfg.Carpark.BaseURL,
		TokenURL:     cfg.Carpark.TokenURL,
		ClientID:     cfg.Carpark.ClientID,
		ClientSecret: cfg.Carpark.ClientSecret,
		MockAPI:      cfg.Carpark.MockAPI,
	})

	authService := services.NewAuthService(siteRepo, tokens, zlog)
	siteService := services.NewSiteService(siteRepo, flowRepo, configRepo, zlog)
	flowService := services.NewFlowService(flowRepo, zlog)
	configService := services.NewSiteConfigService(configRepo, zlog)
	themes := services.NewThemeResolver(siteRepo, flowRepo, configRepo)
	leaderboard := services.NewLeaderboardService(configService, themes, zlog)
	bridge := services.NewPaymentBridge(terminal, bus, zlog)
	kioskService := services.NewKioskService(themes, bridge, leaderboard, sender, services.KioskConfig{
		Idle:      cfg.IdleWindow(),
		Countdown: cfg.CountdownWindow(),
		Clock:     kiosk.RealClock(),
	}, zlog)

	cancelListen, err := kioskService.Listen(ctx, bus)
	if err != nil {
		return fmt.Errorf("failed to subscribe to payment results: %w", err)
	}
	defer cancelListen()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		SiteConfig: handlers.NewSiteConfigHandler(configService),
		Flow:       handlers.NewFlowHandler(flowService),
		Site:       handlers.NewSiteHandler(siteService),
		Kiosk:      handlers.NewKioskHandler(kioskService),
		Payment:    handlers.NewPaymentHandler(bridge, cfg.Payment.CallbackToken, zlog),
		Carpark:    handlers.NewCarparkHandler(carparkClient, zlog),
	}, routes.Options{
		Tokens:         tokens,
		Logger:         zlog,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		LoginLimiter:   middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.Burst),
		StaticDir:      cfg.Server.StaticDir,
		DB:             mongoClient,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("Server starting", zap.String("port", cfg.Server.Port), zap.String("payment_mode", terminal.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	zlog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// newResultBus picks redis pub/sub when enabled so results reach the
// instance holding the session, otherwise an in-process bus.
func newResultBus(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (resultbus.Bus, func(), error) {
	if !cfg.Redis.Enabled {
		zlog.Info("Using in-process payment result bus")
		return resultbus.NewMemoryBus(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	zlog.Info("Using redis payment result bus", zap.String("addr", cfg.Redis.Addr), zap.String("channel", resultbus.Channel))
	return resultbus.NewRedisBus(client, zlog), func() {
		if err := client.Close(); err != nil {
			zlog.Warn("Error closing redis client", zap.Error(err))
		}
	}, nil
}
