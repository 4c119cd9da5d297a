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

var _ repositories.FlowRepository = (*FlowRepository)(nil)

// FlowRepository handles MongoDB operations for workflow templates
type FlowRepository struct {
	collection *mongo.Collection
}

// NewFlowRepository creates a new FlowRepository
func NewFlowRepository(db *mongo.Database, collection string) *FlowRepository {
	return &FlowRepository{
		collection: db.Collection(collection),
	}
}

// FindAll returns every workflow template
func (r *FlowRepository) FindAll(ctx context.Context) ([]*models.Flow, error) {
	opts := options.Find().SetSort(bson.M{"workflowName": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var flows []*models.Flow
	if err := cursor.All(ctx, &flows); err != nil {
		return nil, err
	}
	if flows == nil {
		flows = []*models.Flow{}
	}
	return flows, nil
}

// FindByID finds a template by id
func (r *FlowRepository) FindByID(ctx context.Context, id string) (*models.Flow, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByWorkflowName finds the first template of a workflow
func (r *FlowRepository) FindByWorkflowName(ctx context.Context, workflowName string) (*models.Flow, error) {
	return r.findOne(ctx, bson.M{"workflowName": workflowName})
}

// Replace overwrites a template by id
func (r *FlowRepository) Replace(ctx context.Context, flow *models.Flow) error {
	flow.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": flow.ID}, flow)
	if err != nil {
		return fmt.Errorf("failed to replace flow %s: %w", flow.ID, err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// UpsertByWorkflowName updates the template of a workflow, or creates it if it doesn't exist.
func (r *FlowRepository) UpsertByWorkflowName(ctx context.Context, flow *models.Flow) error {
	flow.UpdatedAt = time.Now()
	filter := bson.M{"workflowName": flow.WorkflowName}
	update := bson.M{
		"$set": bson.M{
			"config":    flow.Config,
			"updatedAt": flow.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id": flow.ID,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert flow %s: %w", flow.WorkflowName, err)
	}
	return nil
}

func (r *FlowRepository) findOne(ctx context.Context, filter bson.M) (*models.Flow, error) {
	var flow models.Flow
	err := r.collection.FindOne(ctx, filter).Decode(&flow)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &flow, nil
}
