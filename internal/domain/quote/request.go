package quote

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is a supported fare currency code.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// CabinClass is a supported cabin class.
type CabinClass string

const (
	CabinEconomy  CabinClass = "ECONOMY"
	CabinBusiness CabinClass = "BUSINESS"
	CabinFirst    CabinClass = "FIRST"
)

// IsSupported reports whether c is one of the quotable currencies.
func (c Currency) IsSupported() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

// IsSupported reports whether c is one of the quotable cabin classes.
func (c CabinClass) IsSupported() bool {
	switch c {
	case CabinEconomy, CabinBusiness, CabinFirst:
		return true
	}
	return false
}

// Request is a validated quote request. It is never mutated after construction.
type Request struct {
	fareAmount   decimal.Decimal
	currency     Currency
	cabinClass   CabinClass
	customerTier string
	promoCode    string
}

// NewRequest validates the raw request fields and builds a Request.
// Checks run in order (fareAmount, currency, cabinClass) and the first
// failure is returned. customerTier and promoCode are accepted as-is.
func NewRequest(fareAmount decimal.Decimal, currency, cabinClass, customerTier, promoCode string) (*Request, error) {
	if !fareAmount.IsPositive() {
		return nil, &ValidationError{Field: "fareAmount", Reason: "must be greater than zero"}
	}
	if !Currency(currency).IsSupported() {
		return nil, &ValidationError{Field: "currency", Reason: "must be one of USD, EUR, GBP"}
	}
	if !CabinClass(cabinClass).IsSupported() {
		return nil, &ValidationError{Field: "cabinClass", Reason: "must be one of ECONOMY, BUSINESS, FIRST"}
	}

	return &Request{
		fareAmount:   fareAmount,
		currency:     Currency(currency),
		cabinClass:   CabinClass(cabinClass),
		customerTier: customerTier,
		promoCode:    promoCode,
	}, nil
}

// Getters.
func (r *Request) FareAmount() decimal.Decimal { return r.fareAmount }

// maxPlainExponent bounds the exponents FormatAmount expands into plain digits.
const maxPlainExponent = 64

// FormatAmount renders d as a plain decimal string, or in scientific
// notation when its exponent would expand to an unbounded number of digits.
func FormatAmount(d decimal.Decimal) string {
	if exp := d.Exponent(); exp > maxPlainExponent || exp < -maxPlainExponent {
		return fmt.Sprintf("%se%d", d.Coefficient().String(), exp)
	}
	return d.String()
}
func (r *Request) Currency() Currency          { return r.currency }
func (r *Request) CabinClass() CabinClass      { return r.cabinClass }
func (r *Request) CustomerTier() string        { return r.customerTier }
func (r *Request) PromoCode() string           { return r.promoCode }
func (r *Request) Tier() Tier                  { return ParseTier(r.customerTier) }
