package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parkonomy/kiosk-backend/internal/flow"
	"github.com/parkonomy/kiosk-backend/internal/kiosk"
	"github.com/parkonomy/kiosk-backend/pkg/payment"
	"github.com/parkonomy/kiosk-backend/pkg/receipt"
	"github.com/parkonomy/kiosk-backend/pkg/resultbus"
	"go.uber.org/zap"
)

// Payment states shown on CheckDetails
const (
	PaymentPending = "pending"
	PaymentFailed  = "failed"
)

// SessionView is what a kiosk renders for its current screen
type SessionView struct {
	ID               string          `json:"id"`
	SiteID           string          `json:"siteId"`
	SiteName         string          `json:"siteName"`
	Workflow         flow.Workflow   `json:"workflowName"`
	Screen           flow.ScreenKind `json:"screen"`
	Selection        flow.Selection  `json:"selection"`
	Options          []flow.Choice   `json:"options,omitempty"`
	OffersSkip       bool            `json:"offersSkip"`
	Payment          *PaymentView    `json:"payment,omitempty"`
	Timeout          TimeoutView     `json:"timeout"`
	Theme            interface{}     `json:"theme"`
	ReceiptAvailable bool            `json:"receiptAvailable"`
}

// PaymentView describes the payment attempt on CheckDetails
type PaymentView struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// TimeoutView describes the inactivity watchdog
type TimeoutView struct {
	State            kiosk.State `json:"state"`
	SecondsRemaining int         `json:"secondsRemaining,omitempty"`
}

// KioskConfig configures session timing. Now and NewReference are optional.
type KioskConfig struct {
	Idle         time.Duration
	Countdown    time.Duration
	Clock        kiosk.Clock
	Now          func() time.Time
	NewReference func() string
}

type kioskSession struct {
	mu            sync.Mutex
	id            string
	theme         *Theme
	seq           *flow.Sequencer
	watchdog      *kiosk.Watchdog
	pendingRef    string
	paidReference string
	redirectURL   string
	closed        bool
}

type kioskService struct {
	themes      ThemeResolver
	bridge      PaymentBridge
	leaderboard LeaderboardService
	sender      receipt.Sender
	cfg         KioskConfig
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*kioskSession
	bySite   map[string]string
	refs     map[string]string
}

// NewKioskService creates a new KioskService implementation
func NewKioskService(themes ThemeResolver, bridge PaymentBridge, leaderboard LeaderboardService, sender receipt.Sender, cfg KioskConfig, logger *zap.Logger) KioskService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &kioskService{
		themes:      themes,
		bridge:      bridge,
		leaderboard: leaderboard,
		sender:      sender,
		cfg:         cfg,
		logger:      logger,
		sessions:    make(map[string]*kioskSession),
		bySite:      make(map[string]string),
		refs:        make(map[string]string),
	}
}

// Start opens a session for a site. A site runs one kiosk, so any previous
// session of the site is closed.
func (s *kioskService) Start(ctx context.Context, siteID string) (*SessionView, error) {
	theme, err := s.themes.Resolve(ctx, siteID)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	sess := &kioskSession{
		id:    id,
		theme: theme,
		seq:   s.newSequencer(theme.Workflow),
	}
	sess.watchdog = kiosk.NewWatchdog(kiosk.WatchdogConfig{
		Idle:      s.cfg.Idle,
		Countdown: s.cfg.Countdown,
		Clock:     s.cfg.Clock,
		OnPrompt: func() {
			s.logger.Debug("Showing timeout dialog", zap.String("session_id", id))
		},
		OnExpire: func() { s.expire(id) },
	})

	s.mu.Lock()
	previous := s.bySite[siteID]
	s.sessions[id] = sess
	s.bySite[siteID] = id
	s.mu.Unlock()

	if previous != "" {
		if err := s.closeSession(ctx, previous, false); err == nil {
			s.logger.Info("Replaced kiosk session", zap.String("site_id", siteID), zap.String("previous", previous))
		}
	}

	sessionsStartedTotal.WithLabelValues(string(theme.Workflow)).Inc()
	s.logger.Info("Kiosk session started", zap.String("session_id", id), zap.String("site_id", siteID), zap.String("theme_source", theme.Source))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

// Get returns the current view of a session
func (s *kioskService) Get(_ context.Context, id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, ErrSessionNotFound
	}
	return s.view(sess), nil
}

// Dispatch applies a kiosk event and executes the resulting effects
func (s *kioskService) Dispatch(ctx context.Context, id string, ev flow.Event) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, ErrSessionNotFound
	}

	if _, ok := ev.(flow.Tap); ok && sess.seq.Screen().Kind() == flow.KindMainScreen {
		s.refreshTheme(ctx, sess)
	}

	tr, err := sess.seq.Apply(ev)
	if err != nil {
		sess.watchdog.Touch()
		return nil, err
	}
	s.afterTransition(ctx, sess, tr)
	return s.view(sess), nil
}

// Touch records kiosk activity
func (s *kioskService) Touch(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, ErrSessionNotFound
	}
	sess.watchdog.Touch()
	return s.view(sess), nil
}

// TimeoutContinue dismisses the timeout dialog
func (s *kioskService) TimeoutContinue(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, ErrSessionNotFound
	}
	if !sess.watchdog.Continue() {
		s.logger.Debug("Timeout continue without dialog", zap.String("session_id", id))
	}
	return s.view(sess), nil
}

// TimeoutReset sends the kiosk home immediately
func (s *kioskService) TimeoutReset(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	// Reset runs OnExpire synchronously, which takes the session lock
	sess.watchdog.Reset()
	return s.Get(ctx, id)
}

// Close ends a session and cancels its timers
func (s *kioskService) Close(ctx context.Context, id string) error {
	return s.closeSession(ctx, id, true)
}

func (s *kioskService) closeSession(ctx context.Context, id string, logIt bool) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		if s.bySite[sess.theme.Site.SiteID] == id {
			delete(s.bySite, sess.theme.Site.SiteID)
		}
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.closed = true
	sess.watchdog.Stop()
	s.cancelPending(ctx, sess)
	s.clearPayment(sess)
	if logIt {
		s.logger.Info("Kiosk session closed", zap.String("session_id", id))
	}
	return nil
}

// Receipt builds the receipt of a session on the Decision screen
func (s *kioskService) Receipt(_ context.Context, id string) (*receipt.Receipt, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, ErrSessionNotFound
	}
	if sess.seq.Screen().Kind() != flow.KindDecision {
		return nil, ErrReceiptUnavailable
	}
	r := s.buildReceipt(sess, sess.seq.Selection())
	return &r, nil
}

// SiteOf returns the site of a session
func (s *kioskService) SiteOf(id string) (string, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	return sess.theme.Site.SiteID, nil
}

// Listen subscribes the service to payment results
func (s *kioskService) Listen(ctx context.Context, bus resultbus.Bus) (func(), error) {
	return bus.Subscribe(ctx, s.HandlePaymentResult)
}

// HandlePaymentResult routes a terminal result to the session that started
// the payment. Results for unknown or superseded references are ignored.
func (s *kioskService) HandlePaymentResult(r resultbus.Result) {
	s.mu.Lock()
	sess := s.sessions[s.refs[r.ClientReference]]
	s.mu.Unlock()
	if sess == nil {
		s.logger.Warn("Ignoring payment result for unknown reference", zap.String("reference", r.ClientReference))
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}

	var ev flow.Event
	if r.TransactionStatus == payment.StatusSuccess {
		ev = flow.PaymentSucceeded{Reference: r.ClientReference}
	} else {
		reason := r.Reason
		if reason == "" {
			reason = r.TransactionStatus
		}
		ev = flow.PaymentFailed{Reference: r.ClientReference, Reason: reason}
	}

	tr, err := sess.seq.Apply(ev)
	if err != nil {
		s.logger.Warn("Ignoring stale payment result",
			zap.String("session_id", sess.id),
			zap.String("reference", r.ClientReference),
			zap.Error(err),
		)
		return
	}
	s.afterTransition(context.Background(), sess, tr)
}

// expire is the watchdog's OnExpire callback
func (s *kioskService) expire(id string) {
	sess, err := s.lookup(id)
	if err != nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}

	s.cancelPending(context.Background(), sess)
	tr := sess.seq.Reset()
	s.clearPayment(sess)
	sess.watchdog.Stop()
	if tr.Changed() {
		timeoutsTotal.Inc()
		screensEnteredTotal.WithLabelValues(string(flow.KindMainScreen)).Inc()
		s.logger.Info("Kiosk session timed out", zap.String("session_id", id), zap.String("from", string(tr.From.Kind())))
	}
}

func (s *kioskService) newSequencer(w flow.Workflow) *flow.Sequencer {
	opts := []flow.Option{flow.WithClock(s.cfg.Now)}
	if s.cfg.NewReference != nil {
		opts = append(opts, flow.WithReferences(s.cfg.NewReference))
	}
	return flow.New(w, opts...)
}

// refreshTheme reloads the site's configuration as a new pass through the
// flow begins, so leaderboard and admin edits reach a running kiosk. The
// previous theme stays in place when the lookup fails.
func (s *kioskService) refreshTheme(ctx context.Context, sess *kioskSession) {
	siteID := sess.theme.Site.SiteID
	theme, err := s.themes.Resolve(ctx, siteID)
	if err != nil {
		s.logger.Warn("Failed to reload kiosk theme", zap.String("session_id", sess.id), zap.String("site_id", siteID), zap.Error(err))
		return
	}
	if theme.Workflow != sess.theme.Workflow {
		s.logger.Info("Site workflow changed", zap.String("session_id", sess.id),
			zap.String("from", string(sess.theme.Workflow)), zap.String("to", string(theme.Workflow)))
		sess.seq = s.newSequencer(theme.Workflow)
	}
	sess.theme = theme
}

func (s *kioskService) afterTransition(ctx context.Context, sess *kioskSession, tr flow.Transition) {
	if tr.Changed() {
		screensEnteredTotal.WithLabelValues(string(tr.To.Kind())).Inc()
	}
	if from, ok := tr.From.(flow.CheckDetails); ok && tr.To.Kind() == flow.KindDecision && from.Reference != "" {
		sess.paidReference = from.Reference
		paymentsTotal.WithLabelValues("succeeded").Inc()
	}

	for _, eff := range tr.Effects {
		switch e := eff.(type) {
		case flow.InitiatePayment:
			s.trackReference(sess, e.Reference)
			handoff, err := s.bridge.Initiate(ctx, e.Reference, e.Amount)
			if err != nil {
				s.logger.Error("Failed to initiate payment", zap.String("session_id", sess.id), zap.Error(err))
				next, ferr := sess.seq.Apply(flow.PaymentFailed{Reference: e.Reference, Reason: "Payment could not be started"})
				if ferr == nil {
					s.afterTransition(ctx, sess, next)
				}
				continue
			}
			sess.redirectURL = handoff.RedirectURL
		case flow.CancelPayment:
			s.bridge.Cancel(ctx, e.Reference)
		case flow.ShowPaymentError:
			paymentsTotal.WithLabelValues("failed").Inc()
			sess.redirectURL = ""
		case flow.RecordLeader:
			if err := s.leaderboard.Record(ctx, sess.theme.Site.SiteID, e.Name, e.Fee); err != nil {
				leaderboardFailuresTotal.Inc()
				s.logger.Error("Error updating leaderboard", zap.String("site_id", sess.theme.Site.SiteID), zap.Error(err))
			}
		case flow.SendReceipt:
			s.sendReceipt(e.Email, s.buildReceipt(sess, e.Selection))
		case flow.Reset:
			s.clearPayment(sess)
		}
	}

	if sess.seq.Reference() != sess.pendingRef {
		s.trackReference(sess, sess.seq.Reference())
	}

	switch {
	case sess.seq.Screen().Kind() == flow.KindMainScreen:
		sess.watchdog.Stop()
	case tr.Changed():
		sess.watchdog.Start()
	default:
		sess.watchdog.Touch()
	}
}

func (s *kioskService) sendReceipt(email string, r receipt.Receipt) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		msgID, err := s.sender.SendReceipt(ctx, email, r)
		if err != nil {
			s.logger.Warn("Failed to send receipt", zap.String("site_id", r.SiteID), zap.Error(err))
			return
		}
		s.logger.Info("Receipt sent", zap.String("site_id", r.SiteID), zap.String("message_id", msgID))
	}()
}

func (s *kioskService) buildReceipt(sess *kioskSession, sel flow.Selection) receipt.Receipt {
	r := receipt.Receipt{
		SiteID:             sess.theme.Site.SiteID,
		SiteName:           sess.theme.Site.SiteName,
		RegistrationNumber: sel.RegistrationNumber,
		Nickname:           sel.Nickname,
		Option:             sel.Choice.Label(),
		ParkingEndTime:     sel.ParkingEndTime,
		IssuedAt:           s.cfg.Now(),
	}
	if sel.IsPaying {
		r.Reference = sess.paidReference
		if pence, err := sel.Choice.Amount(); err == nil {
			r.AmountLabel = payment.FormatAmount(pence)
		}
	}
	return r
}

// cancelPending cancels a payment still awaiting its result
func (s *kioskService) cancelPending(ctx context.Context, sess *kioskSession) {
	cd, ok := sess.seq.Screen().(flow.CheckDetails)
	if !ok || cd.Failed || cd.Reference == "" {
		return
	}
	s.bridge.Cancel(ctx, cd.Reference)
}

func (s *kioskService) clearPayment(sess *kioskSession) {
	s.trackReference(sess, "")
	sess.paidReference = ""
	sess.redirectURL = ""
}

// trackReference maps ref to the session, dropping the previous reference
func (s *kioskService) trackReference(sess *kioskSession, ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.pendingRef != "" {
		delete(s.refs, sess.pendingRef)
	}
	sess.pendingRef = ref
	if ref != "" {
		s.refs[ref] = sess.id
	}
}

func (s *kioskService) lookup(id string) (*kioskSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *kioskService) view(sess *kioskSession) *SessionView {
	scr := sess.seq.Screen()
	w := sess.seq.Workflow()
	sel := sess.seq.Selection()
	st := sess.watchdog.Status()

	v := &SessionView{
		ID:               sess.id,
		SiteID:           sess.theme.Site.SiteID,
		SiteName:         sess.theme.Site.SiteName,
		Workflow:         w,
		Screen:           scr.Kind(),
		Selection:        sel,
		Timeout:          TimeoutView{State: st.State, SecondsRemaining: st.Seconds()},
		Theme:            sess.theme.Screen(scr.Kind()),
		ReceiptAvailable: scr.Kind() == flow.KindDecision,
	}
	switch cur := scr.(type) {
	case flow.EnterStayDuration:
		v.Options = flow.Options(w, cur.Skipped)
		v.OffersSkip = w.OffersSkip() && !cur.Skipped
	case flow.CheckDetails:
		if sel.IsPaying {
			pv := &PaymentView{Reference: cur.Reference, Status: PaymentPending, RedirectURL: sess.redirectURL}
			if cur.Failed {
				pv.Status = PaymentFailed
				pv.Reason = cur.Reason
				pv.RedirectURL = ""
			}
			v.Payment = pv
		}
	}
	return v
}
