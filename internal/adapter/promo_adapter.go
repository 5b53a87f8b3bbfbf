package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/domain/quote"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/httpclient"
)

// ErrInvalidPromo is returned when the promotions service answers with an unusable body.
var ErrInvalidPromo = errors.New("promo service returned an invalid body")

// PromoAdapter is the Anti-Corruption Layer for the promotions service.
type PromoAdapter interface {
	// FetchPromo looks up a promo code. The code is sent as given, even when empty.
	FetchPromo(ctx context.Context, code string) (quote.PromoOutcome, error)
}

// HTTPPromoAdapter calls GET {baseURL}/promo?code=<code>.
type HTTPPromoAdapter struct {
	client  *httpclient.Client
	baseURL string
}

// NewHTTPPromoAdapter creates a promo adapter for the service at baseURL.
func NewHTTPPromoAdapter(client *httpclient.Client, baseURL string) *HTTPPromoAdapter {
	return &HTTPPromoAdapter{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type promoResponse struct {
	Bonus        *int  `json:"bonus"`
	ExpiringSoon *bool `json:"expiringSoon"`
}

// FetchPromo implements PromoAdapter.
func (a *HTTPPromoAdapter) FetchPromo(ctx context.Context, code string) (quote.PromoOutcome, error) {
	var body promoResponse
	params := url.Values{"code": []string{code}}
	if err := a.client.GetJSON(ctx, a.baseURL+"/promo", params, &body); err != nil {
		return quote.NoPromo(), fmt.Errorf("fetch promo %q: %w", code, err)
	}
	if body.Bonus == nil || body.ExpiringSoon == nil || *body.Bonus < 0 {
		return quote.NoPromo(), fmt.Errorf("fetch promo %q: %w", code, ErrInvalidPromo)
	}
	return quote.NewPromoOutcome(*body.Bonus, *body.ExpiringSoon), nil
}

// MockPromoAdapter grants no bonus for any code. Used for local development.
type MockPromoAdapter struct {
	logger *zap.Logger
}

// NewMockPromoAdapter creates a mock promo adapter.
func NewMockPromoAdapter(logger *zap.Logger) *MockPromoAdapter {
	return &MockPromoAdapter{logger: logger}
}

// FetchPromo implements PromoAdapter.
func (m *MockPromoAdapter) FetchPromo(ctx context.Context, code string) (quote.PromoOutcome, error) {
	m.logger.Info("[MOCK PROMO] lookup", zap.String("code", code))
	return quote.NoPromo(), nil
}
