package quote

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxPoints caps the total points a single quote may award.
const MaxPoints = 50_000

// WarningPromoExpiresSoon is attached when the applied promo is about to expire.
const WarningPromoExpiresSoon = "PROMO_EXPIRES_SOON"

var maxComponent = decimal.NewFromInt(math.MaxInt32)

// Any value of at least 10^maxComponentDigits exceeds MaxInt32.
const maxComponentDigits = 10

// Result is the points breakdown of a quote.
type Result struct {
	basePoints      int
	tierBonus       int
	promoBonus      int
	totalPoints     int
	effectiveFxRate float64
	warnings        []string
}

// Getters.
func (r *Result) BasePoints() int          { return r.basePoints }
func (r *Result) TierBonus() int           { return r.tierBonus }
func (r *Result) PromoBonus() int          { return r.promoBonus }
func (r *Result) TotalPoints() int         { return r.totalPoints }
func (r *Result) EffectiveFxRate() float64 { return r.effectiveFxRate }

// Warnings returns a copy of the warning codes, never nil.
func (r *Result) Warnings() []string {
	out := make([]string, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Calculator turns resolved quote inputs into a points breakdown.
// It performs no I/O and cannot fail.
type Calculator struct {
	maxPoints int
}

// NewCalculator creates a Calculator capped at MaxPoints.
func NewCalculator() *Calculator {
	return &Calculator{maxPoints: MaxPoints}
}

// Calculate computes the breakdown for a validated fare.
func (c *Calculator) Calculate(fareAmount decimal.Decimal, fxRate float64, tierMultiplier decimal.Decimal, promo PromoOutcome) *Result {
	base := basePoints(fareAmount, decimal.NewFromFloat(fxRate))
	tierBonus := floorPoints(decimal.NewFromInt(int64(base)).Mul(tierMultiplier))

	total := int64(base) + int64(tierBonus) + int64(promo.BonusPoints())
	if total > int64(c.maxPoints) {
		total = int64(c.maxPoints)
	}

	warnings := []string{}
	if promo.ExpiringSoon() {
		warnings = append(warnings, WarningPromoExpiresSoon)
	}

	return &Result{
		basePoints:      base,
		tierBonus:       tierBonus,
		promoBonus:      promo.BonusPoints(),
		totalPoints:     int(total),
		effectiveFxRate: fxRate,
		warnings:        warnings,
	}
}

// basePoints floors fare*rate into [0, MaxInt32]. Products that are
// certainly below 1 or above MaxInt32 are decided from their magnitudes
// alone, so no rescale ever runs on an extreme exponent.
func basePoints(fare, rate decimal.Decimal) int {
	if !fare.IsPositive() || !rate.IsPositive() {
		return 0
	}

	// fare*rate lies in [10^(m-2), 10^m).
	m := magnitude(fare) + magnitude(rate)
	switch {
	case m <= 0:
		return 0
	case m-2 >= maxComponentDigits:
		return math.MaxInt32
	}
	return floorPoints(fare.Mul(rate))
}

// magnitude returns m such that 10^(m-1) <= |d| < 10^m, for non-zero d.
func magnitude(d decimal.Decimal) int64 {
	return int64(d.Exponent()) + int64(d.NumDigits())
}

// floorPoints truncates toward zero and saturates to [0, MaxInt32].
func floorPoints(d decimal.Decimal) int {
	d = d.Truncate(0)
	if d.IsNegative() {
		return 0
	}
	if d.GreaterThan(maxComponent) {
		return math.MaxInt32
	}
	return int(d.IntPart())
}
