// Package kiosk holds the per-session inactivity watchdog.
package kiosk

import (
	"sync"
	"time"
)

// Default inactivity windows
const (
	DefaultIdle      = 30 * time.Second
	DefaultCountdown = 30 * time.Second
)

// State of a Watchdog
type State string

const (
	StateIdle      State = "idle"
	StatePrompting State = "prompting"
	StateStopped   State = "stopped"
)

// Status is a snapshot of the watchdog. Remaining is only set while prompting.
type Status struct {
	State     State         `json:"state"`
	Remaining time.Duration `json:"-"`
}

// Seconds left on the countdown dialog, rounded up
func (s Status) Seconds() int {
	if s.Remaining <= 0 {
		return 0
	}
	return int((s.Remaining + time.Second - 1) / time.Second)
}

// WatchdogConfig configures a Watchdog
type WatchdogConfig struct {
	Idle      time.Duration
	Countdown time.Duration
	Clock     Clock
	// OnPrompt runs when the idle window elapses and the countdown dialog should show
	OnPrompt func()
	// OnExpire runs when the countdown elapses or Reset is called
	OnExpire func()
}

// Watchdog runs one idle timer followed by one countdown timer. Only one of
// the two is pending at any time. Callbacks run without the watchdog's lock held.
type Watchdog struct {
	mu        sync.Mutex
	idle      time.Duration
	countdown time.Duration
	clock     Clock
	onPrompt  func()
	onExpire  func()

	state    State
	timer    Timer
	deadline time.Time
	gen      uint64
}

// NewWatchdog creates a stopped watchdog
func NewWatchdog(cfg WatchdogConfig) *Watchdog {
	if cfg.Idle <= 0 {
		cfg.Idle = DefaultIdle
	}
	if cfg.Countdown <= 0 {
		cfg.Countdown = DefaultCountdown
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	return &Watchdog{
		idle:      cfg.Idle,
		countdown: cfg.Countdown,
		clock:     cfg.Clock,
		onPrompt:  cfg.OnPrompt,
		onExpire:  cfg.OnExpire,
		state:     StateStopped,
	}
}

// Start arms the idle timer, cancelling anything pending
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.armIdle()
}

// Touch records an interaction. It hides the countdown and restarts the idle
// window. A stopped watchdog stays stopped.
func (w *Watchdog) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateStopped {
		return
	}
	w.armIdle()
}

// Continue acknowledges the countdown dialog. It reports false when no
// dialog was showing.
func (w *Watchdog) Continue() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StatePrompting {
		return false
	}
	w.armIdle()
	return true
}

// Reset expires the session immediately
func (w *Watchdog) Reset() {
	w.mu.Lock()
	w.disarm()
	w.mu.Unlock()
	if w.onExpire != nil {
		w.onExpire()
	}
}

// Stop cancels both timers. It is safe to call more than once.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disarm()
}

// Status returns the current state
func (w *Watchdog) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := Status{State: w.state}
	if w.state == StatePrompting {
		st.Remaining = w.deadline.Sub(w.clock.Now())
	}
	return st
}

func (w *Watchdog) armIdle() {
	w.disarm()
	w.state = StateIdle
	gen := w.gen
	w.timer = w.clock.AfterFunc(w.idle, func() { w.fire(gen, StateIdle) })
}

func (w *Watchdog) disarm() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.gen++
	w.state = StateStopped
}

// fire handles a timer. Timers from an earlier generation are ignored since
// time.Timer.Stop does not wait for a callback already running.
func (w *Watchdog) fire(gen uint64, expect State) {
	w.mu.Lock()
	if gen != w.gen || w.state != expect {
		w.mu.Unlock()
		return
	}

	if expect == StateIdle {
		w.state = StatePrompting
		w.deadline = w.clock.Now().Add(w.countdown)
		w.timer = w.clock.AfterFunc(w.countdown, func() { w.fire(gen, StatePrompting) })
		w.mu.Unlock()
		if w.onPrompt != nil {
			w.onPrompt()
		}
		return
	}

	w.timer = nil
	w.gen++
	w.state = StateStopped
	w.mu.Unlock()
	if w.onExpire != nil {
		w.onExpire()
	}
}
