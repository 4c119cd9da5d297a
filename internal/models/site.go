package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Site represents one physical kiosk/car-park location with its own login.
// Admin accounts are stored as sites with the admin role.
type Site struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SiteID        string             `bson:"siteId" json:"siteId"`
	SiteName      string             `bson:"siteName" json:"siteName"`
	Address       string             `bson:"address" json:"address"`
	ContactNumber string             `bson:"contactNumber" json:"contactNumber"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"password" json:"-"`
	WorkflowName  string             `bson:"workflowName" json:"workflowName"`
	Role          string             `bson:"role" json:"role"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// CreateSiteRequest is the body of POST /api/sites
type CreateSiteRequest struct {
	SiteName      string `json:"siteName" binding:"required"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	WorkflowName  string `json:"workflowName" binding:"required"`
	Role          string `json:"role"`
}
