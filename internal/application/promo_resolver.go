package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/adapter"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/domain/quote"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/metrics"
)

// DefaultPromoTimeout is the response-time budget of a promo lookup.
const DefaultPromoTimeout = 300 * time.Millisecond

// PromoResolver looks up a promo within a fixed budget. It never fails:
// errors and timeouts degrade to quote.NoPromo().
type PromoResolver struct {
	adapter adapter.PromoAdapter
	timeout time.Duration
	metrics *metrics.Recorder
	logger  *zap.Logger
}

// NewPromoResolver creates a new PromoResolver. A non-positive timeout
// falls back to DefaultPromoTimeout.
func NewPromoResolver(promo adapter.PromoAdapter, timeout time.Duration, recorder *metrics.Recorder, logger *zap.Logger) *PromoResolver {
	if timeout <= 0 {
		timeout = DefaultPromoTimeout
	}
	return &PromoResolver{adapter: promo, timeout: timeout, metrics: recorder, logger: logger}
}

type promoResult struct {
	outcome quote.PromoOutcome
	err     error
}

// ResolvePromo returns the promotions service's answer for code when it
// arrives within budget, and the default outcome otherwise.
func (r *PromoResolver) ResolvePromo(ctx context.Context, code string) quote.PromoOutcome {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Buffered so a late lookup never blocks after we stopped listening.
	done := make(chan promoResult, 1)
	go func() {
		outcome, err := r.adapter.FetchPromo(ctx, code)
		if err == nil && ctx.Err() != nil {
			msg := "promo lookup completed after request was cancelled, discarding"
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				msg = "promo lookup completed after budget, discarding"
			}
			r.logger.Debug(msg,
				zap.String("promo_code", code),
				zap.Int("bonus", outcome.BonusPoints()),
			)
		}
		done <- promoResult{outcome: outcome, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			reason := metrics.FallbackError
			if errors.Is(res.err, context.DeadlineExceeded) {
				reason = metrics.FallbackTimeout
			}
			r.fallback(code, reason, res.err)
			return quote.NoPromo()
		}
		return res.outcome
	case <-ctx.Done():
		reason := metrics.FallbackError
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = metrics.FallbackTimeout
		}
		r.fallback(code, reason, ctx.Err())
		return quote.NoPromo()
	}
}

func (r *PromoResolver) fallback(code, reason string, err error) {
	r.metrics.IncPromoFallback(reason)
	r.logger.Warn("promo lookup degraded to no bonus",
		zap.String("promo_code", code),
		zap.String("reason", reason),
		zap.Duration("budget", r.timeout),
		zap.Error(err),
	)
}
