package flow

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/parkonomy/kiosk-backend/pkg/payment"
)

// SkipLabel is the option label of the skip button
const SkipLabel = "No Thanks - Skip"

// EndTimeLayout formats Selection.ParkingEndTime
const EndTimeLayout = "15:04:05 - 02/01/2006"

// DefaultNickname is recorded on the leaderboard when a donor gives no name
const DefaultNickname = "Guest"

// Choice is the option picked on EnterStayDuration: either a fee label or a
// number of days.
type Choice struct {
	Fee     string `json:"fee,omitempty"`
	Days    int    `json:"days,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
}

// Label renders the choice the way the kiosk displays it
func (c Choice) Label() string {
	switch {
	case c.Fee != "":
		return c.Fee
	case c.Days == 1:
		return "1 DAY"
	case c.Days > 1:
		return fmt.Sprintf("%d DAYS", c.Days)
	}
	return ""
}

// Monetary reports whether the choice charges money
func (c Choice) Monetary() bool {
	if c.Skipped || c.Fee == "" || c.Fee == SkipLabel {
		return false
	}
	_, err := payment.ParseAmount(c.Fee)
	return err == nil
}

// Amount returns the charge in pence
func (c Choice) Amount() (int64, error) {
	return payment.ParseAmount(c.Fee)
}

// Selection is the in-progress state of one kiosk session
type Selection struct {
	Choice             Choice `json:"choice"`
	RegistrationNumber string `json:"registrationNumber"`
	Nickname           string `json:"nickname"`
	IsPaying           bool   `json:"isPaying"`
	ParkingEndTime     string `json:"parkingEndTime"`
	Email              string `json:"email,omitempty"`
}

// LeaderName is the name recorded on the leaderboard
func (s Selection) LeaderName() string {
	if s.Nickname == "" {
		return DefaultNickname
	}
	return s.Nickname
}

func isPaying(w Workflow, c Choice) bool {
	if w.AlwaysPays() {
		return true
	}
	if w == OptionalDonation || w == ParkFee {
		return c.Monetary()
	}
	return false
}

var hoursPattern = regexp.MustCompile(`(?i)UP TO\s+(\d+)\s*HR`)

// EndTime computes when the paid or registered stay ends
func EndTime(c Choice, now time.Time) time.Time {
	if c.Days > 0 {
		return now.AddDate(0, 0, c.Days)
	}
	if m := hoursPattern.FindStringSubmatch(c.Fee); m != nil {
		h, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(h) * time.Hour)
	}
	if pence, err := payment.ParseAmount(c.Fee); err == nil {
		return now.Add(time.Duration(pence/100) * time.Hour)
	}
	return now
}
