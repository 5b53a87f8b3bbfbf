package application

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/adapter"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/domain/quote"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/metrics"
)

// fxMaxRetries is the number of extra attempts after the first failed FX call.
const fxMaxRetries = 1

// FxResolver obtains an FX rate with a bounded retry policy: one retry,
// no delay between attempts.
type FxResolver struct {
	adapter adapter.FxAdapter
	metrics *metrics.Recorder
	logger  *zap.Logger
}

// NewFxResolver creates a new FxResolver.
func NewFxResolver(fx adapter.FxAdapter, recorder *metrics.Recorder, logger *zap.Logger) *FxResolver {
	return &FxResolver{adapter: fx, metrics: recorder, logger: logger}
}

// ResolveRate returns a positive rate for currency, or a *quote.FxUnavailableError
// carrying the cause of the last failed attempt.
func (r *FxResolver) ResolveRate(ctx context.Context, currency string) (float64, error) {
	var (
		rate     float64
		lastErr  error
		attempts int
	)

	operation := func() error {
		attempts++
		got, err := r.adapter.FetchRate(ctx, currency)
		r.metrics.IncFxAttempt(err == nil)
		if err != nil {
			lastErr = err
			return err
		}
		rate = got
		return nil
	}

	notify := func(err error, _ time.Duration) {
		r.logger.Warn("fx attempt failed, retrying",
			zap.String("currency", currency),
			zap.Int("attempt", attempts),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, fxMaxRetries), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		r.logger.Error("fx rate unavailable",
			zap.String("currency", currency),
			zap.Int("attempts", attempts),
			zap.Error(lastErr),
		)
		return 0, &quote.FxUnavailableError{Currency: currency, Attempts: attempts, Cause: lastErr}
	}

	return rate, nil
}
