package services

import (
	"context"
	"errors"

	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/repositories"
	"github.com/parkonomy/kiosk-backend/internal/schema"
	"go.uber.org/zap"
)

// FlowForm is the generated admin form of a workflow template
type FlowForm struct {
	ID           string         `json:"id"`
	WorkflowName string         `json:"workflowName"`
	Fields       []schema.Field `json:"fields"`
}

type flowService struct {
	flowRepo repositories.FlowRepository
	logger   *zap.Logger
}

// NewFlowService creates a new FlowService implementation
func NewFlowService(flowRepo repositories.FlowRepository, logger *zap.Logger) FlowService {
	return &flowService{flowRepo: flowRepo, logger: logger}
}

// ListFlows returns every workflow template
func (s *flowService) ListFlows(ctx context.Context) ([]*models.Flow, error) {
	return s.flowRepo.FindAll(ctx)
}

// GetFlowByWorkflowName returns the template of a workflow
func (s *flowService) GetFlowByWorkflowName(ctx context.Context, workflowName string) (*models.Flow, error) {
	f, err := s.flowRepo.FindByWorkflowName(ctx, workflowName)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrFlowNotFound
	}
	return f, err
}

// UpdateFlow replaces a template. The id in the path wins over the body.
func (s *flowService) UpdateFlow(ctx context.Context, flowID string, f *models.Flow) (*models.Flow, error) {
	f.ID = flowID
	if err := s.flowRepo.Replace(ctx, f); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFlowNotFound
		}
		return nil, err
	}
	s.logger.Info("Flow updated", zap.String("flow_id", flowID), zap.String("workflow", f.WorkflowName))
	return f, nil
}

// Form describes a template as an editable form
func (s *flowService) Form(ctx context.Context, workflowName string) (*FlowForm, error) {
	f, err := s.GetFlowByWorkflowName(ctx, workflowName)
	if err != nil {
		return nil, err
	}
	return &FlowForm{
		ID:           f.ID,
		WorkflowName: f.WorkflowName,
		Fields:       schema.Describe(&f.Config),
	}, nil
}

// ApplyForm writes submitted form values into a template
func (s *flowService) ApplyForm(ctx context.Context, flowID string, values map[string]string) (*models.Flow, error) {
	f, err := s.flowRepo.FindByID(ctx, flowID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrFlowNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := schema.Apply(&f.Config, values); err != nil {
		return nil, err
	}
	return s.UpdateFlow(ctx, flowID, f)
}
