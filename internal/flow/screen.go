package flow

// ScreenKind is the wire name of a screen
type ScreenKind string

const (
	KindMainScreen        ScreenKind = "MainScreen"
	KindTapToStart        ScreenKind = "TapToStart"
	KindEnterStayDuration ScreenKind = "EnterStayDuration"
	KindEnterRegNumber    ScreenKind = "EnterRegNumber"
	KindGiveNickname      ScreenKind = "GiveNickname"
	KindCheckDetails      ScreenKind = "CheckDetails"
	KindDecision          ScreenKind = "Decision"
)

// Screen is one state of the kiosk flow. The set of implementations is closed.
type Screen interface {
	Kind() ScreenKind
	isScreen()
}

type MainScreen struct{}

type TapToStart struct{}

// EnterStayDuration offers the duration or fee list. Skipped is set once the
// user declined to donate and is choosing a stay length instead.
type EnterStayDuration struct {
	Skipped bool
}

type EnterRegNumber struct{}

type GiveNickname struct{}

// CheckDetails confirms the selection and, when paying, tracks the payment
// attempt identified by Reference.
type CheckDetails struct {
	Reference string
	Failed    bool
	Reason    string
}

// Decision is the receipt screen shown after a completed session
type Decision struct{}

func (MainScreen) Kind() ScreenKind        { return KindMainScreen }
func (TapToStart) Kind() ScreenKind        { return KindTapToStart }
func (EnterStayDuration) Kind() ScreenKind { return KindEnterStayDuration }
func (EnterRegNumber) Kind() ScreenKind    { return KindEnterRegNumber }
func (GiveNickname) Kind() ScreenKind      { return KindGiveNickname }
func (CheckDetails) Kind() ScreenKind      { return KindCheckDetails }
func (Decision) Kind() ScreenKind          { return KindDecision }

func (MainScreen) isScreen()        {}
func (TapToStart) isScreen()        {}
func (EnterStayDuration) isScreen() {}
func (EnterRegNumber) isScreen()    {}
func (GiveNickname) isScreen()      {}
func (CheckDetails) isScreen()      {}
func (Decision) isScreen()          {}
