package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.SiteFlowConfigRepository = (*SiteFlowConfigRepository)(nil)

// SiteFlowConfigRepository handles MongoDB operations for per-site configuration
type SiteFlowConfigRepository struct {
	collection *mongo.Collection
}

// NewSiteFlowConfigRepository creates a new SiteFlowConfigRepository
func NewSiteFlowConfigRepository(db *mongo.Database, collection string) *SiteFlowConfigRepository {
	return &SiteFlowConfigRepository{
		collection: db.Collection(collection),
	}
}

// FindFirst returns the oldest configuration matching the site and, when
// given, the flow.
func (r *SiteFlowConfigRepository) FindFirst(ctx context.Context, siteID, flowID string) (*models.SiteFlowConfig, error) {
	filter := bson.M{"siteId": siteID}
	if flowID != "" {
		filter["flowId"] = flowID
	}
	opts := options.FindOne().SetSort(bson.M{"createdAt": 1})

	var cfg models.SiteFlowConfig
	err := r.collection.FindOne(ctx, filter, opts).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Create inserts a new configuration
func (r *SiteFlowConfigRepository) Create(ctx context.Context, cfg *models.SiteFlowConfig) error {
	now := time.Now()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, cfg); err != nil {
		return fmt.Errorf("failed to insert site config: %w", err)
	}
	return nil
}

// Replace overwrites a configuration by id
func (r *SiteFlowConfigRepository) Replace(ctx context.Context, cfg *models.SiteFlowConfig) error {
	cfg.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": cfg.ID}, cfg)
	if err != nil {
		return fmt.Errorf("failed to replace site config %s: %w", cfg.ID, err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the lookup indexes used by the kiosk backend. The
// site config index is not unique; duplicates are tolerated and the oldest wins.
func EnsureIndexes(ctx context.Context, db *mongo.Database, sitesCollection, configsCollection string) error {
	sites := db.Collection(sitesCollection)
	configs := db.Collection(configsCollection)
	if _, err := sites.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "siteId", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create site indexes: %w", err)
	}
	if _, err := configs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "flowId", Value: 1}, {Key: "createdAt", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to create site config indexes: %w", err)
	}
	return nil
}
