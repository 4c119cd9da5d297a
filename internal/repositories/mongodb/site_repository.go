package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure SiteRepository implements the interface
var _ repositories.SiteRepository = (*SiteRepository)(nil)

// SiteRepository handles MongoDB operations for Site
type SiteRepository struct {
	collection *mongo.Collection
}

// NewSiteRepository creates a new SiteRepository
func NewSiteRepository(db *mongo.Database, collection string) *SiteRepository {
	return &SiteRepository{
		collection: db.Collection(collection),
	}
}

// Create inserts a new site
func (r *SiteRepository) Create(ctx context.Context, site *models.Site) error {
	site.ID = primitive.NewObjectID()
	if site.CreatedAt.IsZero() {
		site.CreatedAt = time.Now()
	}
	if _, err := r.collection.InsertOne(ctx, site); err != nil {
		return fmt.Errorf("failed to insert site: %w", err)
	}
	return nil
}

// FindBySiteID finds a site by its site id
func (r *SiteRepository) FindBySiteID(ctx context.Context, siteID string) (*models.Site, error) {
	return r.findOne(ctx, bson.M{"siteId": siteID})
}

// FindByEmail finds a site by login email
func (r *SiteRepository) FindByEmail(ctx context.Context, email string) (*models.Site, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindAll returns every site ordered by creation time
func (r *SiteRepository) FindAll(ctx context.Context) ([]*models.Site, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sites []*models.Site
	if err := cursor.All(ctx, &sites); err != nil {
		return nil, err
	}
	if sites == nil {
		sites = []*models.Site{}
	}
	return sites, nil
}

func (r *SiteRepository) findOne(ctx context.Context, filter bson.M) (*models.Site, error) {
	var site models.Site
	err := r.collection.FindOne(ctx, filter).Decode(&site)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}
