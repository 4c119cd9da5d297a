package models

// StartSessionRequest opens a kiosk session. Site accounts may leave SiteID
// empty to use their own site.
type StartSessionRequest struct {
	SiteID string `json:"siteId"`
}

// KioskEventRequest is one interaction sent by a kiosk. Type selects the
// event; the other fields are read only by the events that need them.
type KioskEventRequest struct {
	Type               string `json:"type" binding:"required"`
	Fee                string `json:"fee"`
	Days               int    `json:"days"`
	RegistrationNumber string `json:"registrationNumber"`
	Nickname           string `json:"nickname"`
	Email              string `json:"email"`
}

// PaymentCallbackRequest is posted by the payment terminal integration
type PaymentCallbackRequest struct {
	ClientReference   string `json:"client_reference" binding:"required"`
	TransactionStatus string `json:"transaction_status"`
	Reason            string `json:"reason"`
}
