package quote

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tier is a customer loyalty status level.
type Tier string

const (
	TierNone     Tier = "NONE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

var tierMultipliers = map[Tier]decimal.Decimal{
	TierNone:     decimal.Zero,
	TierSilver:   decimal.RequireFromString("0.15"),
	TierGold:     decimal.RequireFromString("0.30"),
	TierPlatinum: decimal.RequireFromString("0.50"),
}

// ParseTier resolves an identifier case-insensitively. Empty and unknown
// identifiers resolve to TierNone.
func ParseTier(identifier string) Tier {
	t := Tier(strings.ToUpper(identifier))
	switch t {
	case TierSilver, TierGold, TierPlatinum:
		return t
	default:
		return TierNone
	}
}

// Multiplier returns the bonus multiplier of the tier.
func (t Tier) Multiplier() decimal.Decimal {
	if m, ok := tierMultipliers[t]; ok {
		return m
	}
	return decimal.Zero
}

// MultiplierFor looks up the bonus multiplier for a raw tier identifier.
func MultiplierFor(identifier string) decimal.Decimal {
	return ParseTier(identifier).Multiplier()
}
