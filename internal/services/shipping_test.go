package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestShippingCalculator_Calculate(t *testing.T) {
	calc := NewShippingCalculator()

	tests := []struct {
		name     string
		subtotal string
		state    string
		want     string
	}{
		{"south zone", "850", "Tamil Nadu", "50"},
		{"south zone case and spacing", "850", "  tamil   NADU ", "50"},
		{"remote zone", "500", "Ladakh", "150"},
		{"remote zone ampersand", "500", "Jammu & Kashmir", "150"},
		{"standard zone", "500", "Maharashtra", "80"},
		{"unknown state falls back to standard", "500", "Atlantis", "80"},
		{"charged at exactly the threshold", "999", "Kerala", "50"},
		{"free just above threshold", "999.01", "Assam", "0"},
		{"free above threshold", "1200", "Tamil Nadu", "0"},
		{"just below threshold", "998.99", "Kerala", "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Calculate(dec(tt.subtotal), tt.state)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestShippingCalculator_Scenario850TamilNadu(t *testing.T) {
	calc := NewShippingCalculator()
	subtotal := dec("850")

	shipping := calc.Calculate(subtotal, "Tamil Nadu")

	assert.True(t, shipping.Equal(dec("50")))
	assert.True(t, subtotal.Add(shipping).Equal(dec("900")))
}

func TestShippingCalculator_Matches(t *testing.T) {
	calc := NewShippingCalculator()

	assert.True(t, calc.Matches(dec("50"), dec("50")))
	assert.True(t, calc.Matches(dec("50.01"), dec("50")))
	assert.True(t, calc.Matches(dec("49.99"), dec("50")))
	assert.False(t, calc.Matches(dec("50.02"), dec("50")))
	assert.False(t, calc.Matches(dec("0"), dec("80")))
}
