package quote

import "math"

// PromoOutcome is the promotional bonus attached to a promo code.
type PromoOutcome struct {
	bonusPoints  int
	expiringSoon bool
}

// NewPromoOutcome builds a PromoOutcome. The bonus is clamped to [0, MaxInt32].
func NewPromoOutcome(bonusPoints int, expiringSoon bool) PromoOutcome {
	switch {
	case bonusPoints < 0:
		bonusPoints = 0
	case bonusPoints > math.MaxInt32:
		bonusPoints = math.MaxInt32
	}
	return PromoOutcome{bonusPoints: bonusPoints, expiringSoon: expiringSoon}
}

// NoPromo is the outcome used when a promo lookup is absent or failed.
func NoPromo() PromoOutcome { return PromoOutcome{} }

func (p PromoOutcome) BonusPoints() int   { return p.bonusPoints }
func (p PromoOutcome) ExpiringSoon() bool { return p.expiringSoon }
