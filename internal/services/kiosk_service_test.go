package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/parkonomy/kiosk-backend/internal/flow"
	"github.com/parkonomy/kiosk-backend/internal/kiosk"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/internal/services"
	"github.com/parkonomy/kiosk-backend/pkg/payment"
	"github.com/parkonomy/kiosk-backend/pkg/receipt"
	"github.com/parkonomy/kiosk-backend/pkg/resultbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) kiosk.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at.Before(c.timers[j].at) })
		var next *fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.at.After(target) {
				next = t
				break
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.stopped = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

type fakeThemes struct {
	mu       sync.Mutex
	workflow flow.Workflow
	leaders  []models.Leader
	err      error
	calls    int
}

func (f *fakeThemes) Resolve(_ context.Context, siteID string) (*services.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if siteID == "missing" {
		return nil, services.ErrSiteNotFound
	}
	if f.err != nil {
		return nil, f.err
	}
	var cfg models.WorkflowConfig
	cfg.TapToStartScreen.RecentLeaders = append([]models.Leader(nil), f.leaders...)
	return &services.Theme{
		Site:     &models.Site{SiteID: siteID, SiteName: "Riverside", WorkflowName: string(f.workflow)},
		Workflow: f.workflow,
		Source:   services.ThemeFromSite,
		Config:   cfg,
	}, nil
}

func (f *fakeThemes) set(apply func(*fakeThemes)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	apply(f)
}

func (f *fakeThemes) resolveCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type initiated struct {
	reference string
	amount    int64
}

type fakeBridge struct {
	mu        sync.Mutex
	initiated []initiated
	cancelled []string
	failNext  bool
	redirect  bool
}

func (b *fakeBridge) Initiate(_ context.Context, reference string, amount int64) (*services.PaymentHandoff, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failNext {
		b.failNext = false
		return nil, errors.New("terminal offline")
	}
	b.initiated = append(b.initiated, initiated{reference, amount})
	h := &services.PaymentHandoff{Reference: reference}
	if b.redirect {
		h.RedirectURL = "https://pay.example.com/checkout?client_reference=" + reference
	}
	return h, nil
}

func (b *fakeBridge) Cancel(_ context.Context, reference string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelled = append(b.cancelled, reference)
}

func (b *fakeBridge) Deliver(context.Context, resultbus.Result) error { return nil }

func (b *fakeBridge) cancels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.cancelled...)
}

type leaderEntry struct {
	siteID, name, fee string
}

type fakeLeaderboard struct {
	mu      sync.Mutex
	entries []leaderEntry
	err     error
}

func (l *fakeLeaderboard) Record(_ context.Context, siteID, nickname, feeLabel string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, leaderEntry{siteID, nickname, feeLabel})
	return l.err
}

type sentReceipt struct {
	email   string
	receipt receipt.Receipt
}

type fakeSender struct {
	sent chan sentReceipt
}

func (s *fakeSender) SendReceipt(_ context.Context, email string, r receipt.Receipt) (string, error) {
	s.sent <- sentReceipt{email, r}
	return "msg-1", nil
}

type kioskFixture struct {
	svc         services.KioskService
	themes      *fakeThemes
	clock       *fakeClock
	bridge      *fakeBridge
	leaderboard *fakeLeaderboard
	sender      *fakeSender
}

func newKioskFixture(w flow.Workflow) *kioskFixture {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	fx := &kioskFixture{
		themes:      &fakeThemes{workflow: w},
		clock:       clock,
		bridge:      &fakeBridge{},
		leaderboard: &fakeLeaderboard{},
		sender:      &fakeSender{sent: make(chan sentReceipt, 4)},
	}
	n := 0
	fx.svc = services.NewKioskService(fx.themes, fx.bridge, fx.leaderboard, fx.sender, services.KioskConfig{
		Idle:      30 * time.Second,
		Countdown: 30 * time.Second,
		Clock:     clock,
		Now:       clock.Now,
		NewReference: func() string {
			n++
			return fmt.Sprintf("ref-%d", n)
		},
	}, zap.NewNop())
	return fx
}

func (fx *kioskFixture) dispatch(t *testing.T, id string, events ...flow.Event) *services.SessionView {
	t.Helper()
	var view *services.SessionView
	for _, ev := range events {
		v, err := fx.svc.Dispatch(context.Background(), id, ev)
		require.NoError(t, err, ev.Name())
		view = v
	}
	return view
}

func TestKioskMandatoryDonationFlow(t *testing.T) {
	fx := newKioskFixture(flow.MandatoryDonation)
	ctx := context.Background()

	view, err := fx.svc.Start(ctx, "site1")
	require.NoError(t, err)
	assert.Equal(t, flow.KindMainScreen, view.Screen)
	assert.Equal(t, kiosk.StateStopped, view.Timeout.State)

	view = fx.dispatch(t, view.ID, flow.Tap{}, flow.Tap{})
	assert.Equal(t, flow.KindEnterStayDuration, view.Screen)
	assert.Len(t, view.Options, len(models.ParkingFees))
	assert.False(t, view.OffersSkip)
	assert.Equal(t, kiosk.StateIdle, view.Timeout.State)

	view = fx.dispatch(t, view.ID,
		flow.SelectOption{Choice: flow.Choice{Fee: "UP TO 2 HR - £2.00"}},
		flow.EnterRegistration{Plate: "ab12  cde"},
		flow.EnterNickname{Nickname: "Ann"},
	)
	assert.Equal(t, flow.KindCheckDetails, view.Screen)
	require.NotNil(t, view.Payment)
	assert.Equal(t, "ref-1", view.Payment.Reference)
	assert.Equal(t, services.PaymentPending, view.Payment.Status)
	assert.Equal(t, []initiated{{"ref-1", 200}}, fx.bridge.initiated)

	fx.svc.HandlePaymentResult(resultbus.Result{ClientReference: "ref-1", TransactionStatus: payment.StatusSuccess})

	view, err = fx.svc.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, flow.KindDecision, view.Screen)
	assert.True(t, view.ReceiptAvailable)
	assert.Equal(t, "12:00:00 - 01/03/2024", view.Selection.ParkingEndTime)

	r, err := fx.svc.Receipt(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", r.Reference)
	assert.Equal(t, "AB12 CDE", r.RegistrationNumber)
	assert.Equal(t, "£2.00", r.AmountLabel)
	assert.Equal(t, "Riverside", r.SiteName)

	view = fx.dispatch(t, view.ID, flow.Finish{Email: "ann@example.com"})
	assert.Equal(t, flow.KindMainScreen, view.Screen)
	assert.Equal(t, kiosk.StateStopped, view.Timeout.State)
	assert.Equal(t, []leaderEntry{{"site1", "Ann", "UP TO 2 HR - £2.00"}}, fx.leaderboard.entries)

	select {
	case sent := <-fx.sender.sent:
		assert.Equal(t, "ann@example.com", sent.email)
		assert.Equal(t, "ref-1", sent.receipt.Reference)
	case <-time.After(time.Second):
		t.Fatal("receipt was not sent")
	}

	_, err = fx.svc.Receipt(ctx, view.ID)
	assert.ErrorIs(t, err, services.ErrReceiptUnavailable)
}

func TestKioskReloadsThemeForEachPass(t *testing.T) {
	fx := newKioskFixture(flow.MandatoryDonation)
	ctx := context.Background()

	view, err := fx.svc.Start(ctx, "site1")
	require.NoError(t, err)
	view = fx.dispatch(t, view.ID,
		flow.Tap{}, flow.Tap{},
		flow.SelectOption{Choice: flow.Choice{Fee: "UP TO 2 HR - £2.00"}},
		flow.EnterRegistration{Plate: "AB12 CDE"},
		flow.EnterNickname{Nickname: "Ann"},
	)
	assert.Equal(t, 2, fx.themes.resolveCalls())
	fx.svc.HandlePaymentResult(resultbus.Result{ClientReference: "ref-1", TransactionStatus: payment.StatusSuccess})

	leaders := []models.Leader{{Name: "Ann", Amount: "£2.00"}}
	fx.themes.set(func(f *fakeThemes) { f.leaders = leaders })

	fx.dispatch(t, view.ID, flow.Finish{})
	view = fx.dispatch(t, view.ID, flow.Tap{})
	assert.Equal(t, flow.KindTapToStart, view.Screen)
	theme, ok := view.Theme.(models.TapToStartTheme)
	require.True(t, ok)
	assert.Equal(t, leaders, theme.RecentLeaders)
	assert.Equal(t, 3, fx.themes.resolveCalls())
}

func TestKioskThemeReloadFollowsWorkflowChange(t *testing.T) {
	fx := newKioskFixture(flow.MandatoryDonation)
	ctx := context.Background()

	view, err := fx.svc.Start(ctx, "site1")
	require.NoError(t, err)
	assert.Equal(t, flow.MandatoryDonation, view.Workflow)

	fx.themes.set(func(f *fakeThemes) { f.workflow = flow.NoParkFee })
	view = fx.dispatch(t, view.ID, flow.Tap{}, flow.Tap{})
	assert.Equal(t, flow.NoParkFee, view.Workflow)
	assert.Len(t, view.Options, len(models.Days))

	fx.themes.set(func(f *fakeThemes) { f.err = errors.New("db down") })
	view = fx.dispatch(t, view.ID, flow.GoBack{}, flow.GoBack{}, flow.Tap{})
	assert.Equal(t, flow.KindTapToStart, view.Screen)
	assert.Equal(t, flow.NoParkFee, view.Workflow)
}

func TestKioskNoParkFeeSkipsPayment(t *testing.T) {
	fx := newKioskFixture(flow.NoParkFee)

	view, err := fx.svc.Start(context.Background(), "site1")
	require.NoError(t, err)
	view = fx.dispatch(t, view.ID,
		flow.Tap{}, flow.Tap{},
		flow.SelectOption{Choice: flow.Choice{Days: 2}},
		flow.EnterRegistration{Plate: "XY99 ZZZ"},
	)
	assert.Equal(t, flow.KindCheckDetails, view.Screen)
	assert.Nil(t, view.Payment)
	assert.Empty(t, fx.bridge.initiated)

	view = fx.dispatch(t, view.ID, flow.Continue{})
	assert.Equal(t, flow.KindDecision, view.Screen)

	r, err := fx.svc.Receipt(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Empty(t, r.Reference)
	assert.Empty(t, r.AmountLabel)
	assert.Equal(t, "2 DAYS", r.Option)

	fx.dispatch(t, view.ID, flow.Finish{})
	assert.Empty(t, fx.leaderboard.entries)
}

func TestKioskStaleResultsAreIgnored(t *testing.T) {
	fx := newKioskFixture(flow.ParkFee)

	view, err := fx.svc.Start(context.Background(), "site1")
	require.NoError(t, err)
	view = fx.dispatch(t, view.ID,
		flow.Tap{}, flow.Tap{},
		flow.SelectOption{Choice: flow.Choice{Fee: "£3.00"}},
		flow.EnterRegistration{Plate: "AB12CDE"},
		flow.EnterNickname{Nickname: "Bo"},
	)
	require.NotNil(t, view.Payment)

	fx.svc.HandlePaymentResult(resultbus.Result{ClientReference: "ref-1", TransactionStatus: "Declined"})
	view, err = fx.svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, services.PaymentFailed, view.Payment.Status)
	assert.Equal(t, "Declined", view.Payment.Reason)

	view = fx.dispatch(t, view.ID, flow.RetryPayment{})
	assert.Equal(t, "ref-2", view.Payment.Reference)
	assert.Equal(t, services.PaymentPending, view.Payment.Status)

	// a late success for the first attempt must not complete the second
	fx.svc.HandlePaymentResult(resultbus.Result{ClientReference: "ref-1", TransactionStatus: payment.StatusSuccess})
	view, err = fx.svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, flow.KindCheckDetails, view.Screen)

	fx.svc.HandlePaymentResult(resultbus.Result{ClientReference: "ref-2", TransactionStatus: payment.StatusSuccess})
	view, err = fx.svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, flow.KindDecision, view.Screen)
}

func TestKioskGoBackCancelsMandatoryPayment(t *testing.T) {
	fx := newKioskFixture(flow.MandatoryDonation)

	view, err := fx.svc.Start(context.Background(), "site1")
	require.NoError(t, err)
	view = fx.dispatch(t, view.ID,
		flow.Tap{}, flow.Tap{},
		flow.SelectOption{Choice: flow.Choice{Fee: "UP TO 1 HR - £1.00"}},
		flow.EnterRegistration{Plate: "AB12CDE"},
		flow.EnterNickname{Nickname: "Cy"},
		flow.GoBack{},
	)
	assert.Equal(t, flow.KindGiveNickname, view.Screen)
	assert.Equal(t, []string{"ref-1"}, fx.bridge.cancels())

	fx.svc.HandlePaymentResult(resultbus.Result{ClientReference: "ref-1", TransactionStatus: payment.StatusSuccess})
	view, err = fx.svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, flow.KindGiveNickname, view.Screen)
}

func TestKioskInitiateFailureShowsError(t *testing.T) {
	fx := newKioskFixture(flow.MandatoryDonation)
	fx.bridge.failNext = true

	view, err := fx.svc.Start(context.Background(), "site1")
	require.NoError(t, err)
	view = fx.dispatch(t, view.ID,
		flow.Tap{}, flow.Tap{},
		flow.SelectOption{Choice: flow.Choice{Fee: "UP TO 1 HR - £1.00"}},
		flow.EnterRegistration{Plate: "AB12CDE"},
		flow.EnterNickname{Nickname: "Di"},
	)
	require.NotNil(t, view.Payment)
	assert.Equal(t, services.PaymentFailed, view.Payment.Status)
	assert.Equal(t, "Payment could not be started", view.Payment.Reason)

	view = fx.dispatch(t, view.ID, flow.RetryPayment{})
	assert.Equal(t, services.PaymentPending, view.Payment.Status)
	assert.Equal(t, []initiated{{"ref-2", 100}}, fx.bridge.initiated)
}

func TestKioskRedirectURLIsExposed(t *testing.T) {
	fx := newKioskFixture(flow.MandatoryDonation)
	fx.bridge.redirect = true

	view, err := fx.svc.Start(context.Background(), "site1")
	require.NoError(t, err)
	view = fx.dispatch(t, view.ID,
		flow.Tap{}, flow.Tap{},
		flow.SelectOption{Choice: flow.Choice{Fee: "UP TO 1 HR - £1.00"}},
		flow.EnterRegistration{Plate: "AB12CDE"},
		flow.EnterNickname{Nickname: "Ed"},
	)
	require.NotNil(t, view.Payment)
	assert.Contains(t, view.Payment.RedirectURL, "client_reference=ref-1")
}

func TestKioskTimeoutReturnsHome(t *testing.T) {
	fx := newKioskFixture(flow.MandatoryDonation)
	ctx := context.Background()

	view, err := fx.svc.Start(ctx, "site1")
	require.NoError(t, err)
	id := view.ID
	fx.dispatch(t, id, flow.Tap{})

	fx.clock.Advance(30 * time.Second)
	view, err = fx.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, kiosk.StatePrompting, view.Timeout.State)
	assert.Equal(t, 30, view.Timeout.SecondsRemaining)

	view, err = fx.svc.TimeoutContinue(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, kiosk.StateIdle, view.Timeout.State)
	assert.Equal(t, flow.KindTapToStart, view.Screen)

	fx.clock.Advance(60 * time.Second)
	view, err = fx.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, flow.KindMainScreen, view.Screen)
	assert.Equal(t, kiosk.StateStopped, view.Timeout.State)
}

func TestKioskTimeoutCancelsPendingPayment(t *testing.T) {
	fx := newKioskFixture(flow.MandatoryDonation)
	ctx := context.Background()

	view, err := fx.svc.Start(ctx, "site1")
	require.NoError(t, err)
	id := view.ID
	fx.dispatch(t, id,
		flow.Tap{}, flow.Tap{},
		flow.SelectOption{Choice: flow.Choice{Fee: "UP TO 1 HR - £1.00"}},
		flow.EnterRegistration{Plate: "AB12CDE"},
		flow.EnterNickname{Nickname: "Fi"},
	)

	view, err = fx.svc.TimeoutReset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, flow.KindMainScreen, view.Screen)
	assert.Equal(t, []string{"ref-1"}, fx.bridge.cancels())

	fx.svc.HandlePaymentResult(resultbus.Result{ClientReference: "ref-1", TransactionStatus: payment.StatusSuccess})
	view, err = fx.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, flow.KindMainScreen, view.Screen)
}

func TestKioskInvalidEventKeepsScreen(t *testing.T) {
	fx := newKioskFixture(flow.OptionalDonation)

	view, err := fx.svc.Start(context.Background(), "site1")
	require.NoError(t, err)
	_, err = fx.svc.Dispatch(context.Background(), view.ID, flow.Continue{})
	assert.ErrorIs(t, err, flow.ErrInvalidEvent)

	view, err = fx.svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, flow.KindMainScreen, view.Screen)
}

func TestKioskOneSessionPerSite(t *testing.T) {
	fx := newKioskFixture(flow.OptionalDonation)
	ctx := context.Background()

	first, err := fx.svc.Start(ctx, "site1")
	require.NoError(t, err)
	second, err := fx.svc.Start(ctx, "site1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = fx.svc.Get(ctx, first.ID)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	siteID, err := fx.svc.SiteOf(second.ID)
	require.NoError(t, err)
	assert.Equal(t, "site1", siteID)

	require.NoError(t, fx.svc.Close(ctx, second.ID))
	assert.ErrorIs(t, fx.svc.Close(ctx, second.ID), services.ErrSessionNotFound)
}

func TestKioskStartUnknownSite(t *testing.T) {
	fx := newKioskFixture(flow.OptionalDonation)
	_, err := fx.svc.Start(context.Background(), "missing")
	assert.ErrorIs(t, err, services.ErrSiteNotFound)
}

func TestKioskListenRoutesBusResults(t *testing.T) {
	fx := newKioskFixture(flow.MandatoryDonation)
	ctx := context.Background()
	bus := resultbus.NewMemoryBus()

	cancel, err := fx.svc.Listen(ctx, bus)
	require.NoError(t, err)
	defer cancel()

	view, err := fx.svc.Start(ctx, "site1")
	require.NoError(t, err)
	fx.dispatch(t, view.ID,
		flow.Tap{}, flow.Tap{},
		flow.SelectOption{Choice: flow.Choice{Fee: "UP TO 1 HR - £1.00"}},
		flow.EnterRegistration{Plate: "AB12CDE"},
		flow.EnterNickname{Nickname: "Gu"},
	)

	require.NoError(t, bus.Publish(ctx, resultbus.Result{ClientReference: "ref-1", TransactionStatus: payment.StatusSuccess}))
	view, err = fx.svc.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, flow.KindDecision, view.Screen)
}
