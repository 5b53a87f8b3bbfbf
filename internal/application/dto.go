package application

import (
	"github.com/shopspring/decimal"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/domain/quote"
)

// QuoteRequest is the inbound body of POST /v1/points/quote.
type QuoteRequest struct {
	FareAmount   decimal.Decimal `json:"fareAmount"`
	Currency     string          `json:"currency"`
	CabinClass   string          `json:"cabinClass"`
	CustomerTier string          `json:"customerTier,omitempty"`
	PromoCode    string          `json:"promoCode,omitempty"`
}

// QuoteDTO is the API response representation of a points quote.
type QuoteDTO struct {
	BasePoints      int      `json:"basePoints"`
	TierBonus       int      `json:"tierBonus"`
	PromoBonus      int      `json:"promoBonus"`
	TotalPoints     int      `json:"totalPoints"`
	EffectiveFxRate float64  `json:"effectiveFxRate"`
	Warnings        []string `json:"warnings"`
}

func toQuoteDTO(r *quote.Result) *QuoteDTO {
	return &QuoteDTO{
		BasePoints:      r.BasePoints(),
		TierBonus:       r.TierBonus(),
		PromoBonus:      r.PromoBonus(),
		TotalPoints:     r.TotalPoints(),
		EffectiveFxRate: r.EffectiveFxRate(),
		Warnings:        r.Warnings(),
	}
}
