package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/httpclient"
)

// ErrInvalidRate is returned when the FX service answers without a usable rate.
var ErrInvalidRate = errors.New("fx service returned an invalid rate")

// FxAdapter is the Anti-Corruption Layer for the FX rate service.
type FxAdapter interface {
	// FetchRate returns the points conversion rate for a currency. A single call, no retries.
	FetchRate(ctx context.Context, currency string) (float64, error)
}

// HTTPFxAdapter calls GET {baseURL}/fx?currency=<code>.
type HTTPFxAdapter struct {
	client  *httpclient.Client
	baseURL string
}

// NewHTTPFxAdapter creates an FX adapter for the service at baseURL.
func NewHTTPFxAdapter(client *httpclient.Client, baseURL string) *HTTPFxAdapter {
	return &HTTPFxAdapter{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type fxResponse struct {
	Rate *float64 `json:"rate"`
}

// FetchRate implements FxAdapter.
func (a *HTTPFxAdapter) FetchRate(ctx context.Context, currency string) (float64, error) {
	var body fxResponse
	params := url.Values{"currency": []string{currency}}
	if err := a.client.GetJSON(ctx, a.baseURL+"/fx", params, &body); err != nil {
		return 0, fmt.Errorf("fetch fx rate for %s: %w", currency, err)
	}
	if body.Rate == nil || *body.Rate <= 0 {
		return 0, fmt.Errorf("fetch fx rate for %s: %w", currency, ErrInvalidRate)
	}
	return *body.Rate, nil
}

// MockFxAdapter serves fixed rates for local development.
type MockFxAdapter struct {
	rates  map[string]float64
	logger *zap.Logger
}

// NewMockFxAdapter creates a mock FX adapter with the development rate table.
func NewMockFxAdapter(logger *zap.Logger) *MockFxAdapter {
	return &MockFxAdapter{
		rates: map[string]float64{
			"USD": 1.0,
			"EUR": 1.1,
			"GBP": 1.25,
		},
		logger: logger,
	}
}

// FetchRate implements FxAdapter.
func (m *MockFxAdapter) FetchRate(ctx context.Context, currency string) (float64, error) {
	rate, ok := m.rates[currency]
	if !ok {
		return 0, fmt.Errorf("[MOCK FX] no rate for %s: %w", currency, ErrInvalidRate)
	}

	m.logger.Info("[MOCK FX] rate served",
		zap.String("currency", currency),
		zap.Float64("rate", rate),
	)
	return rate, nil
}
