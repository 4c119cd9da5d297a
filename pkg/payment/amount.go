package payment

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrNoAmount is returned when a label carries no currency amount
var ErrNoAmount = errors.New("no currency amount in label")

var amountPattern = regexp.MustCompile(`£\s*(\d+)(?:\.(\d{1,2}))?`)

// ParseAmount extracts the amount in pence from a fee label such as
// "UP TO 2 HR - £2.00" or "£5".
func ParseAmount(label string) (int64, error) {
	m := amountPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrNoAmount, label)
	}
	pounds, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount in %q: %w", label, err)
	}
	var pence int64
	switch len(m[2]) {
	case 1:
		pence, _ = strconv.ParseInt(m[2], 10, 64)
		pence *= 10
	case 2:
		pence, _ = strconv.ParseInt(m[2], 10, 64)
	}
	return pounds*100 + pence, nil
}

// FormatAmount renders pence as a pound label, e.g. 250 -> "£2.50"
func FormatAmount(pence int64) string {
	return fmt.Sprintf("£%d.%02d", pence/100, pence%100)
}
