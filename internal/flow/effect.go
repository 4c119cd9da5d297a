package flow

// Effect is a side effect requested by a transition. The Sequencer never
// performs I/O itself; the caller executes effects in order.
type Effect interface {
	isEffect()
}

// InitiatePayment asks the payment terminal to charge Amount pence
type InitiatePayment struct {
	Reference string
	Amount    int64
	Fee       string
}

// CancelPayment is a best-effort request to abandon the payment in progress
type CancelPayment struct {
	Reference string
}

// RecordLeader appends a donor to the site's leaderboard
type RecordLeader struct {
	Name string
	Fee  string
}

type ShowPaymentError struct {
	Reason string
}

// SendReceipt emails a receipt for the finished session
type SendReceipt struct {
	Email     string
	Selection Selection
}

// Reset discards the session state; the kiosk returns to MainScreen
type Reset struct{}

func (InitiatePayment) isEffect()  {}
func (CancelPayment) isEffect()    {}
func (RecordLeader) isEffect()     {}
func (ShowPaymentError) isEffect() {}
func (SendReceipt) isEffect()      {}
func (Reset) isEffect()            {}
