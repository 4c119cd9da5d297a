// Package flow implements the kiosk's step sequencer: an explicit state
// machine over the screens of a parking session.
package flow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate applies the same rules as gin's binding tags
var validate = validator.New()

var (
	// ErrInvalidEvent is returned when an event is not accepted on the current screen
	ErrInvalidEvent = errors.New("event not accepted on current screen")
	// ErrInvalidInput is returned when an event carries data that fails validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrStaleResult is returned for payment results of an attempt that is no longer current
	ErrStaleResult = errors.New("stale payment result")
)

// Transition describes one applied event
type Transition struct {
	From    Screen
	To      Screen
	Effects []Effect
}

// Changed reports whether the transition moved to a different screen kind
func (t Transition) Changed() bool {
	return t.From.Kind() != t.To.Kind()
}

// Option configures a Sequencer
type Option func(*Sequencer)

// WithClock sets the time source used for parking end times
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) { s.now = now }
}

// WithReferences sets the generator of payment client references
func WithReferences(next func() string) Option {
	return func(s *Sequencer) { s.newReference = next }
}

// Sequencer holds the current screen and selection of one session.
// It is not safe for concurrent use.
type Sequencer struct {
	workflow     Workflow
	screen       Screen
	history      []Screen
	selection    Selection
	now          func() time.Time
	newReference func() string
}

// New creates a sequencer positioned on MainScreen
func New(w Workflow, opts ...Option) *Sequencer {
	s := &Sequencer{
		workflow:     w,
		screen:       MainScreen{},
		now:          time.Now,
		newReference: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sequencer) Workflow() Workflow   { return s.workflow }
func (s *Sequencer) Screen() Screen       { return s.screen }
func (s *Sequencer) Selection() Selection { return s.selection }

// Reference returns the client reference of the payment attempt in progress, if any
func (s *Sequencer) Reference() string {
	if cd, ok := s.screen.(CheckDetails); ok && s.selection.IsPaying {
		return cd.Reference
	}
	return ""
}

// Reset discards all session state and returns to MainScreen
func (s *Sequencer) Reset() Transition {
	from := s.screen
	s.screen = MainScreen{}
	s.history = nil
	s.selection = Selection{}
	return Transition{From: from, To: s.screen}
}

// Apply feeds one event to the sequencer. On error the state is unchanged.
func (s *Sequencer) Apply(ev Event) (Transition, error) {
	if _, ok := ev.(GoBack); ok {
		return s.goBack()
	}

	switch cur := s.screen.(type) {
	case MainScreen:
		if _, ok := ev.(Tap); ok {
			return s.advance(TapToStart{}), nil
		}
	case TapToStart:
		if _, ok := ev.(Tap); ok {
			return s.advance(EnterStayDuration{}), nil
		}
	case EnterStayDuration:
		return s.onStayDuration(cur, ev)
	case EnterRegNumber:
		if e, ok := ev.(EnterRegistration); ok {
			return s.onRegistration(e)
		}
	case GiveNickname:
		if e, ok := ev.(EnterNickname); ok {
			name := strings.TrimSpace(e.Nickname)
			if name == "" {
				return Transition{}, fmt.Errorf("%w: nickname is required", ErrInvalidInput)
			}
			s.selection.Nickname = name
			return s.toCheckDetails(), nil
		}
	case CheckDetails:
		return s.onCheckDetails(cur, ev)
	case Decision:
		if e, ok := ev.(Finish); ok {
			return s.finish(e)
		}
	}
	return Transition{}, s.rejected(ev)
}

func (s *Sequencer) rejected(ev Event) error {
	return fmt.Errorf("%w: %s on %s", ErrInvalidEvent, ev.Name(), s.screen.Kind())
}

func (s *Sequencer) onStayDuration(cur EnterStayDuration, ev Event) (Transition, error) {
	switch e := ev.(type) {
	case SkipPayment:
		if !s.workflow.OffersSkip() || cur.Skipped {
			return Transition{}, fmt.Errorf("%w: skip is not offered", ErrInvalidInput)
		}
		return s.advance(EnterStayDuration{Skipped: true}), nil
	case SelectOption:
		if e.Choice.Fee == SkipLabel {
			return s.onStayDuration(cur, SkipPayment{})
		}
		choice, ok := offered(s.workflow, cur.Skipped, e.Choice)
		if !ok {
			return Transition{}, fmt.Errorf("%w: option %q is not offered", ErrInvalidInput, e.Choice.Label())
		}
		s.selection.Choice = choice
		s.selection.IsPaying = isPaying(s.workflow, choice)
		return s.advance(EnterRegNumber{}), nil
	}
	return Transition{}, s.rejected(ev)
}

func (s *Sequencer) onRegistration(e EnterRegistration) (Transition, error) {
	plate := strings.ToUpper(strings.Join(strings.Fields(e.Plate), " "))
	if plate == "" {
		return Transition{}, fmt.Errorf("%w: registration number is required", ErrInvalidInput)
	}
	s.selection.RegistrationNumber = plate
	if s.workflow.CollectsNickname() && s.selection.IsPaying {
		return s.advance(GiveNickname{}), nil
	}
	return s.toCheckDetails(), nil
}

func (s *Sequencer) toCheckDetails() Transition {
	if !s.selection.IsPaying {
		return s.advance(CheckDetails{})
	}
	t := s.advance(CheckDetails{Reference: s.newReference()})
	t.Effects = append(t.Effects, s.initiate())
	return t
}

func (s *Sequencer) initiate() Effect {
	amount, _ := s.selection.Choice.Amount()
	return InitiatePayment{
		Reference: s.Reference(),
		Amount:    amount,
		Fee:       s.selection.Choice.Fee,
	}
}

func (s *Sequencer) onCheckDetails(cur CheckDetails, ev Event) (Transition, error) {
	switch e := ev.(type) {
	case Continue:
		if s.selection.IsPaying {
			return Transition{}, fmt.Errorf("%w: payment is required", ErrInvalidInput)
		}
		return s.toDecision(), nil
	case PaymentSucceeded:
		if err := s.checkResult(cur, e.Reference); err != nil {
			return Transition{}, err
		}
		return s.toDecision(), nil
	case PaymentFailed:
		if err := s.checkResult(cur, e.Reference); err != nil {
			return Transition{}, err
		}
		reason := e.Reason
		if reason == "" {
			reason = "payment failed"
		}
		next := CheckDetails{Reference: cur.Reference, Failed: true, Reason: reason}
		t := s.replace(next)
		t.Effects = []Effect{ShowPaymentError{Reason: reason}}
		return t, nil
	case RetryPayment:
		if !s.selection.IsPaying || !cur.Failed {
			return Transition{}, s.rejected(ev)
		}
		t := s.replace(CheckDetails{Reference: s.newReference()})
		t.Effects = []Effect{s.initiate()}
		return t, nil
	}
	return Transition{}, s.rejected(ev)
}

func (s *Sequencer) checkResult(cur CheckDetails, ref string) error {
	if !s.selection.IsPaying {
		return fmt.Errorf("%w: nothing is being charged", ErrInvalidEvent)
	}
	if cur.Failed || ref != cur.Reference {
		return fmt.Errorf("%w: reference %q", ErrStaleResult, ref)
	}
	return nil
}

func (s *Sequencer) toDecision() Transition {
	s.selection.ParkingEndTime = EndTime(s.selection.Choice, s.now()).Format(EndTimeLayout)
	return s.advance(Decision{})
}

func (s *Sequencer) finish(e Finish) (Transition, error) {
	email := strings.TrimSpace(e.Email)
	if email != "" {
		if err := validate.Var(email, "email"); err != nil {
			return Transition{}, fmt.Errorf("%w: email %q", ErrInvalidInput, email)
		}
	}
	s.selection.Email = email

	var effects []Effect
	if s.selection.IsPaying {
		effects = append(effects, RecordLeader{Name: s.selection.LeaderName(), Fee: s.selection.Choice.Fee})
	}
	if email != "" {
		effects = append(effects, SendReceipt{Email: email, Selection: s.selection})
	}
	effects = append(effects, Reset{})

	t := s.Reset()
	t.Effects = effects
	return t, nil
}

func (s *Sequencer) goBack() (Transition, error) {
	from := s.screen
	switch cur := from.(type) {
	case MainScreen:
		return Transition{From: from, To: from}, nil
	case Decision:
		return Transition{}, s.rejected(GoBack{})
	case CheckDetails:
		var effects []Effect
		if s.workflow == MandatoryDonation && s.selection.IsPaying {
			effects = append(effects, CancelPayment{Reference: cur.Reference})
		}
		t := s.back()
		t.Effects = effects
		return t, nil
	}
	return s.back(), nil
}

func (s *Sequencer) back() Transition {
	from := s.screen
	if n := len(s.history); n > 0 {
		s.screen = s.history[n-1]
		s.history = s.history[:n-1]
	} else {
		s.screen = MainScreen{}
	}
	return Transition{From: from, To: s.screen}
}

func (s *Sequencer) advance(to Screen) Transition {
	from := s.screen
	s.history = append(s.history, from)
	s.screen = to
	return Transition{From: from, To: to}
}

func (s *Sequencer) replace(to Screen) Transition {
	from := s.screen
	s.screen = to
	return Transition{From: from, To: to}
}
