package models

import "time"

// Flow is a workflow template: the default screen configuration for one
// kiosk experience variant. Sites get a copy of it when they are created.
type Flow struct {
	ID           string         `bson:"_id" json:"id"`
	WorkflowName string         `bson:"workflowName" json:"workflowName"`
	Config       WorkflowConfig `bson:"config" json:"config"`
	UpdatedAt    time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// WorkflowConfig describes theme and copy for every screen of a workflow.
// The kind tags drive the admin form generator in internal/schema.
type WorkflowConfig struct {
	MainScreen              MainScreenTheme   `bson:"mainScreen" json:"mainScreen" kind:"group"`
	TapToStartScreen        TapToStartTheme   `bson:"tapToStartScreen" json:"tapToStartScreen" kind:"group"`
	EnterStayDurationScreen StayDurationTheme `bson:"enterStayDurationScreen" json:"enterStayDurationScreen" kind:"group"`
	EnterRegNumberScreen    EntryTheme        `bson:"enterRegNumberScreen" json:"enterRegNumberScreen" kind:"group"`
	EnterNickNameScreen     EntryTheme        `bson:"enterNickNameScreen" json:"enterNickNameScreen" kind:"group"`
	CheckDetailsScreen      CheckDetailsTheme `bson:"checkDetailsScreen" json:"checkDetailsScreen" kind:"group"`
	DecisionScreen          DecisionTheme     `bson:"decisionScreen" json:"decisionScreen" kind:"group"`
}

// MainScreenTheme is the attract screen shown while the kiosk is idle.
type MainScreenTheme struct {
	BackgroundImage string `bson:"backgroundImage" json:"backgroundImage" kind:"asset"`
	Title           string `bson:"title" json:"title" kind:"text"`
	Subtitle        string `bson:"subtitle" json:"subtitle" kind:"text"`
	TextColor       string `bson:"textColor" json:"textColor" kind:"style"`
	SubtitleColor   string `bson:"subtitleColor" json:"subtitleColor" kind:"style"`
}

// TapToStartTheme also carries the site's leaderboard.
type TapToStartTheme struct {
	Logo                         string   `bson:"logo" json:"logo" kind:"asset"`
	ValidateParkingTextColor     string   `bson:"validateParkingTextColor" json:"validateParkingTextColor" kind:"style"`
	ButtonColor                  string   `bson:"buttonColor" json:"buttonColor" kind:"style"`
	ButtonTextColor              string   `bson:"buttonTextColor" json:"buttonTextColor" kind:"style"`
	BackgroundColor              string   `bson:"backgroundColor" json:"backgroundColor" kind:"style"`
	Title                        string   `bson:"title" json:"title" kind:"text"`
	Subtitle                     string   `bson:"subtitle" json:"subtitle" kind:"text"`
	CharityLogo                  string   `bson:"charityLogo" json:"charityLogo" kind:"asset"`
	RecentLeadersBackgroundColor string   `bson:"recentLeadersBackgroundColor" json:"recentLeadersBackgroundColor" kind:"style"`
	PoweredByBackgroundColor     string   `bson:"poweredByBackgroundColor" json:"poweredByBackgroundColor" kind:"style"`
	RecentLeaders                []Leader `bson:"recentLeaders" json:"recentLeaders" kind:"leaderboard"`
}

// StayDurationTheme styles the duration/fee option list.
type StayDurationTheme struct {
	Title               string `bson:"title" json:"title" kind:"text"`
	Subtitle            string `bson:"subtitle" json:"subtitle" kind:"text"`
	ButtonBorderColor   string `bson:"buttonBorderColor" json:"buttonBorderColor" kind:"style"`
	ButtonTextColor     string `bson:"buttonTextColor" json:"buttonTextColor" kind:"style"`
	ButtonColor         string `bson:"buttonColor" json:"buttonColor" kind:"style"`
	MoreButtonColor     string `bson:"moreButtonColor" json:"moreButtonColor" kind:"style"`
	MoreButtonTextColor string `bson:"moreButtonTextColor" json:"moreButtonTextColor" kind:"style"`
}

// EntryTheme styles the on-screen keyboard screens (registration, nickname).
type EntryTheme struct {
	Title                 string `bson:"title" json:"title" kind:"text"`
	Subtitle              string `bson:"subtitle" json:"subtitle" kind:"text"`
	TextColor             string `bson:"textColor" json:"textColor" kind:"style"`
	InputBackgroundColor  string `bson:"inputBackgroundColor" json:"inputBackgroundColor" kind:"style"`
	InputTextColor        string `bson:"inputTextColor" json:"inputTextColor" kind:"style"`
	InputBorderColor      string `bson:"inputBorderColor" json:"inputBorderColor" kind:"style"`
	ButtonContinueColor   string `bson:"buttonContinueColor" json:"buttonContinueColor" kind:"style"`
	ButtonTextColor       string `bson:"buttonTextColor" json:"buttonTextColor" kind:"style"`
	ButtonHoverColor      string `bson:"buttonHoverColor" json:"buttonHoverColor" kind:"style"`
	GoBackButtonTextColor string `bson:"goBackButtonTextColor" json:"goBackButtonTextColor" kind:"style"`
	BackButtonHoverColor  string `bson:"backButtonHoverColor" json:"backButtonHoverColor" kind:"style"`
}

// CheckDetailsTheme styles the confirmation/payment screen.
type CheckDetailsTheme struct {
	Title                    string `bson:"title" json:"title" kind:"text"`
	Subtitle                 string `bson:"subtitle" json:"subtitle" kind:"text"`
	TextColor                string `bson:"textColor" json:"textColor" kind:"style"`
	InputBackgroundColor     string `bson:"inputBackgroundColor" json:"inputBackgroundColor" kind:"style"`
	InputDaysBackgroundColor string `bson:"inputDaysBackgroundColor" json:"inputDaysBackgroundColor" kind:"style"`
	InputTextColor           string `bson:"inputTextColor" json:"inputTextColor" kind:"style"`
	InputBorderColor         string `bson:"inputBorderColor" json:"inputBorderColor" kind:"style"`
	InputPlaceholder         string `bson:"inputPlaceholder" json:"inputPlaceholder" kind:"text"`
	PaymentText              string `bson:"paymentText" json:"paymentText" kind:"text"`
	ArrowIcon                string `bson:"arrowIcon" json:"arrowIcon" kind:"asset"`
	NFCIcon                  string `bson:"nfcIcon" json:"nfcIcon" kind:"asset"`
	ButtonContinueColor      string `bson:"buttonContinueColor" json:"buttonContinueColor" kind:"style"`
	ButtonTextColor          string `bson:"buttonTextColor" json:"buttonTextColor" kind:"style"`
	ButtonHoverColor         string `bson:"buttonHoverColor" json:"buttonHoverColor" kind:"style"`
}

// DecisionTheme styles the receipt screen.
type DecisionTheme struct {
	TextColor            string `bson:"textColor" json:"textColor" kind:"style"`
	InputBackgroundColor string `bson:"inputBackgroundColor" json:"inputBackgroundColor" kind:"style"`
	InputTextColor       string `bson:"inputTextColor" json:"inputTextColor" kind:"style"`
	InputBorderColor     string `bson:"inputBorderColor" json:"inputBorderColor" kind:"style"`
	ReceiptTextColor     string `bson:"receiptTextColor" json:"receiptTextColor" kind:"style"`
	SubtitleColor        string `bson:"subtitleColor" json:"subtitleColor" kind:"style"`
	ButtonContinueColor  string `bson:"buttonContinueColor" json:"buttonContinueColor" kind:"style"`
	ButtonTextColor      string `bson:"buttonTextColor" json:"buttonTextColor" kind:"style"`
	ButtonHoverColor     string `bson:"buttonHoverColor" json:"buttonHoverColor" kind:"style"`
	QRTextColor          string `bson:"qrTextColor" json:"qrTextColor" kind:"style"`
}

// Leader is one entry of a site's recent-donors leaderboard.
// Amount is a currency label such as "£5.00".
type Leader struct {
	Name   string `bson:"name" json:"name"`
	Amount string `bson:"amount" json:"amount"`
}

// FlowFormRequest is the body of PUT /api/flows/:flowId/form
type FlowFormRequest struct {
	Values map[string]string `json:"values" binding:"required"`
}
