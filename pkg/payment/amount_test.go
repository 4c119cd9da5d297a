package payment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]int64{
		"UP TO 2 HR - £2.00":  200,
		"UP TO 5 HR - £10.00": 1000,
		"£1.00":               100,
		"£5":                  500,
		"£2.5":                250,
		"£ 3.75":              375,
	}
	for label, want := range cases {
		got, err := ParseAmount(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
	}
}

func TestParseAmountRejectsLabelsWithoutCurrency(t *testing.T) {
	for _, label := range []string{"", "3", "No Thanks - Skip", "2 DAYS"} {
		_, err := ParseAmount(label)
		assert.True(t, errors.Is(err, ErrNoAmount), label)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "£2.00", FormatAmount(200))
	assert.Equal(t, "£0.05", FormatAmount(5))
	assert.Equal(t, "£12.50", FormatAmount(1250))
}
