package flow

// Event is a user action or external result fed to the Sequencer
type Event interface {
	Name() string
	isEvent()
}

// Tap advances from the attract and tap-to-start screens
type Tap struct{}

// SelectOption picks a duration or fee on EnterStayDuration
type SelectOption struct {
	Choice Choice
}

// SkipPayment declines the optional donation and switches to the days list
type SkipPayment struct{}

type EnterRegistration struct {
	Plate string
}

type EnterNickname struct {
	Nickname string
}

// Continue confirms CheckDetails when nothing is charged
type Continue struct{}

type PaymentSucceeded struct {
	Reference string
}

type PaymentFailed struct {
	Reference string
	Reason    string
}

type RetryPayment struct{}

// Finish ends the session on Decision, optionally asking for an emailed receipt
type Finish struct {
	Email string
}

type GoBack struct{}

func (Tap) Name() string               { return "tap" }
func (SelectOption) Name() string      { return "select_option" }
func (SkipPayment) Name() string       { return "skip_payment" }
func (EnterRegistration) Name() string { return "enter_registration" }
func (EnterNickname) Name() string     { return "enter_nickname" }
func (Continue) Name() string          { return "continue" }
func (PaymentSucceeded) Name() string  { return "payment_succeeded" }
func (PaymentFailed) Name() string     { return "payment_failed" }
func (RetryPayment) Name() string      { return "retry_payment" }
func (Finish) Name() string            { return "finish" }
func (GoBack) Name() string            { return "go_back" }

func (Tap) isEvent()               {}
func (SelectOption) isEvent()      {}
func (SkipPayment) isEvent()       {}
func (EnterRegistration) isEvent() {}
func (EnterNickname) isEvent()     {}
func (Continue) isEvent()          {}
func (PaymentSucceeded) isEvent()  {}
func (PaymentFailed) isEvent()     {}
func (RetryPayment) isEvent()      {}
func (Finish) isEvent()            {}
func (GoBack) isEvent()            {}
