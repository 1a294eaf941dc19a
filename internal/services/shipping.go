package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

type ShippingZone string

const (
	ZoneSouth    ShippingZone = "south"
	ZoneRemote   ShippingZone = "remote"
	ZoneStandard ShippingZone = "standard"
)

var (
	FreeShippingThreshold = decimal.NewFromInt(999)
	ShippingEpsilon       = decimal.RequireFromString("0.01")

	zoneRates = map[ShippingZone]decimal.Decimal{
		ZoneSouth:    decimal.NewFromInt(50),
		ZoneRemote:   decimal.NewFromInt(150),
		ZoneStandard: decimal.NewFromInt(80),
	}

	southStates = stateSet(
		"Tamil Nadu", "Kerala", "Karnataka", "Andhra Pradesh", "Telangana", "Puducherry",
	)
	remoteStates = stateSet(
		"Jammu and Kashmir", "Ladakh", "Andaman and Nicobar Islands", "Lakshadweep",
		"Arunachal Pradesh", "Assam", "Manipur", "Meghalaya", "Mizoram", "Nagaland",
		"Sikkim", "Tripura",
	)
)

// ShippingCalculator is the server-side rule table. Checkout requests
// declaring a different charge are rejected.
type ShippingCalculator struct{}

func NewShippingCalculator() *ShippingCalculator {
	return &ShippingCalculator{}
}

func (s *ShippingCalculator) Zone(state string) ShippingZone {
	key := normalizeState(state)
	switch {
	case southStates[key]:
		return ZoneSouth
	case remoteStates[key]:
		return ZoneRemote
	default:
		return ZoneStandard
	}
}

// Calculate is free strictly above FreeShippingThreshold.
func (s *ShippingCalculator) Calculate(subtotal decimal.Decimal, state string) decimal.Decimal {
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return zoneRates[s.Zone(state)]
}

// Matches reports whether a client-declared charge equals the computed one
// within ShippingEpsilon.
func (s *ShippingCalculator) Matches(declared, computed decimal.Decimal) bool {
	return declared.Sub(computed).Abs().LessThanOrEqual(ShippingEpsilon)
}

func normalizeState(state string) string {
	s := strings.ToLower(strings.ReplaceAll(state, "&", " and "))
	return strings.Join(strings.Fields(s), " ")
}

func stateSet(states ...string) map[string]bool {
	m := make(map[string]bool, len(states))
	for _, st := range states {
		m[normalizeState(st)] = true
	}
	return m
}
