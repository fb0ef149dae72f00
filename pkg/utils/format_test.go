package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{999.5, "$999.50"},
		{1000, "$1,000.00"},
		{1234567.89, "$1,234,567.89"},
		{-2500.75, "-$2,500.75"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUSD(tt.in))
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+5.25%", FormatPercent(5.25))
	assert.Equal(t, "-3.10%", FormatPercent(-3.1))
	assert.Equal(t, "0.00%", FormatPercent(0))
}

func TestFormatShares(t *testing.T) {
	assert.Equal(t, "10", FormatShares(10))
	assert.Equal(t, "2.5", FormatShares(2.5))
	assert.Equal(t, "0.0001", FormatShares(0.0001))
	assert.Equal(t, "20.5", FormatShares(20.5000))
}

func TestFormatPnL(t *testing.T) {
	assert.Equal(t, "+$150.00", FormatPnL(150))
	assert.Equal(t, "-$75.50", FormatPnL(-75.5))
	assert.Equal(t, "$0.00", FormatPnL(0))
}
