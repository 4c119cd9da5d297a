// Command seed imports workflow templates and creates the admin account.
//
//	go run ./cmd/seed -flows cmd/seed/flows.example.json -admin-email admin@example.com -admin-password secret
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/parkonomy/kiosk-backend/internal/config"
	"github.com/parkonomy/kiosk-backend/internal/flow"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/repositories"
	mongorepo "github.com/parkonomy/kiosk-backend/internal/repositories/mongodb"
	"github.com/parkonomy/kiosk-backend/internal/services"
	"github.com/parkonomy/kiosk-backend/pkg/logger"
	"github.com/parkonomy/kiosk-backend/pkg/mongodb"
	"go.uber.org/zap"
)

func main() {
	flowsPath := flag.String("flows", config.GetEnv("SEED_FLOWS", ""), "JSON file with an array of workflow templates")
	adminEmail := flag.String("admin-email", config.GetEnv("SEED_ADMIN_EMAIL", ""), "email of the admin account to create")
	adminPassword := flag.String("admin-password", config.GetEnv("SEED_ADMIN_PASSWORD", ""), "password of the admin account")
	skipIndexes := flag.Bool("skip-indexes", config.GetEnvAsBool("SEED_SKIP_INDEXES", false), "do not create collection indexes")
	timeout := flag.Duration("timeout", config.GetEnvAsDuration("SEED_TIMEOUT", time.Minute), "overall deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "console"})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		zlog.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database()

	if !*skipIndexes {
		if err := mongorepo.EnsureIndexes(ctx, db, cfg.MongoDB.SitesCollection, cfg.MongoDB.SiteFlowConfigsCollection); err != nil {
			zlog.Warn("Failed to ensure indexes", zap.Error(err))
		}
	}

	if *flowsPath != "" {
		n, err := importFlows(ctx, mongorepo.NewFlowRepository(db, cfg.MongoDB.FlowsCollection), *flowsPath)
		if err != nil {
			zlog.Fatal("Failed to import flows", zap.Error(err))
		}
		zlog.Info("Imported workflow templates", zap.Int("count", n))
	}

	if *adminEmail != "" {
		created, err := ensureAdmin(ctx, mongorepo.NewSiteRepository(db, cfg.MongoDB.SitesCollection), *adminEmail, *adminPassword)
		if err != nil {
			zlog.Fatal("Failed to create admin", zap.Error(err))
		}
		zlog.Info("Admin account ready", zap.String("email", *adminEmail), zap.Bool("created", created))
	}
}

func importFlows(ctx context.Context, repo repositories.FlowRepository, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flows []*models.Flow
	if err := json.Unmarshal(data, &flows); err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for _, f := range flows {
		if _, err := flow.ParseWorkflow(f.WorkflowName); err != nil {
			return 0, err
		}
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if err := repo.UpsertByWorkflowName(ctx, f); err != nil {
			return 0, err
		}
	}
	return len(flows), nil
}

// ensureAdmin creates the admin account unless the email is already registered
func ensureAdmin(ctx context.Context, repo repositories.SiteRepository, email, password string) (bool, error) {
	if len(password) < 6 {
		return false, errors.New("admin password must be at least 6 characters")
	}
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		return false, err
	}
	err = repo.Create(ctx, &models.Site{
		SiteID:       "admin",
		SiteName:     "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
