package models

import "time"

// SiteFlowConfig is a per-site copy of a workflow's screen configuration,
// including the site's leaderboard. Keyed by SiteID and optionally FlowID.
type SiteFlowConfig struct {
	ID        string         `bson:"_id" json:"id"`
	SiteID    string         `bson:"siteId" json:"siteId"`
	FlowID    string         `bson:"flowId,omitempty" json:"flowId,omitempty"`
	Config    WorkflowConfig `bson:"config" json:"config"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// SiteConfigRequest is the body of PUT /api/site-config/:siteId[/:flowId]
type SiteConfigRequest struct {
	Config *WorkflowConfig `json:"config" binding:"required"`
}
