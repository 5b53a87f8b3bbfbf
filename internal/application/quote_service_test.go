package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/domain/quote"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/metrics"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/workflow"
)

type quoteStack struct {
	service   *QuoteService
	fx        *fakeFxAdapter
	promo     *fakePromoAdapter
	publisher *recordingPublisher
	metrics   *metrics.Recorder
}

func newQuoteStack(fx *fakeFxAdapter, promo *fakePromoAdapter, promoTimeout time.Duration) *quoteStack {
	rec := newTestRecorder()
	pub := &recordingPublisher{}
	svc := NewQuoteService(
		NewFxResolver(fx, rec, nopLogger),
		NewPromoResolver(promo, promoTimeout, rec, nopLogger),
		quote.NewCalculator(),
		pub,
		rec,
		nopLogger,
	)
	return &quoteStack{service: svc, fx: fx, promo: promo, publisher: pub, metrics: rec}
}

func okFx(rate float64) *fakeFxAdapter {
	return &fakeFxAdapter{rates: []float64{rate}, errs: []error{nil}}
}

func TestQuoteService_CappedQuoteWithExpiringPromo(t *testing.T) {
	s := newQuoteStack(okFx(3.0), &fakePromoAdapter{outcome: quote.NewPromoOutcome(50000, true)}, DefaultPromoTimeout)

	dto, err := s.service.Quote(context.Background(), QuoteRequest{
		FareAmount:   decimal.NewFromInt(1000),
		Currency:     "USD",
		CabinClass:   "ECONOMY",
		CustomerTier: "PLATINUM",
		PromoCode:    "BIG",
	})
	require.NoError(t, err)

	assert.Equal(t, &QuoteDTO{
		BasePoints:      3000,
		TierBonus:       1500,
		PromoBonus:      50000,
		TotalPoints:     50000,
		EffectiveFxRate: 3.0,
		Warnings:        []string{quote.WarningPromoExpiresSoon},
	}, dto)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.QuoteCounter(metrics.OutcomeDone)))

	evts := s.publisher.Events()
	require.Len(t, evts, 1)
	assert.Equal(t, "1000", evts[0].FareAmount)
	assert.Equal(t, "PLATINUM", evts[0].CustomerTier)
	assert.Equal(t, 50000, evts[0].TotalPoints)
}

func TestQuoteService_ValidationRejectsBeforeAnyCall(t *testing.T) {
	tests := []struct {
		name      string
		req       QuoteRequest
		wantField string
	}{
		{
			name:      "zero fare",
			req:       QuoteRequest{FareAmount: decimal.Zero, Currency: "USD", CabinClass: "ECONOMY"},
			wantField: "fareAmount",
		},
		{
			name:      "unsupported currency",
			req:       QuoteRequest{FareAmount: decimal.NewFromInt(100), Currency: "CHF", CabinClass: "ECONOMY"},
			wantField: "currency",
		},
		{
			name:      "unsupported cabin",
			req:       QuoteRequest{FareAmount: decimal.NewFromInt(100), Currency: "USD", CabinClass: "COACH"},
			wantField: "cabinClass",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newQuoteStack(okFx(1.0), &fakePromoAdapter{}, DefaultPromoTimeout)

			dto, err := s.service.Quote(context.Background(), tt.req)
			assert.Nil(t, dto)

			var vErr *quote.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)

			var stepErr *workflow.StepError
			require.True(t, errors.As(err, &stepErr))
			assert.Equal(t, string(StageValidating), stepErr.Step)

			assert.Zero(t, s.fx.Calls())
			assert.Zero(t, s.promo.Calls())
			assert.Empty(t, s.publisher.Events())
			assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.QuoteCounter(metrics.OutcomeRejected)))
		})
	}
}

func TestQuoteService_FxExhaustionSkipsPromo(t *testing.T) {
	fx := &fakeFxAdapter{rates: []float64{0, 0}, errs: []error{errors.New("500"), errors.New("500")}}
	s := newQuoteStack(fx, &fakePromoAdapter{}, DefaultPromoTimeout)

	dto, err := s.service.Quote(context.Background(), QuoteRequest{
		FareAmount: decimal.NewFromInt(100),
		Currency:   "USD",
		CabinClass: "ECONOMY",
		PromoCode:  "ANY",
	})
	assert.Nil(t, dto)

	var fxErr *quote.FxUnavailableError
	require.True(t, errors.As(err, &fxErr))

	var stepErr *workflow.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, string(StageResolvingFx), stepErr.Step)

	assert.Equal(t, 2, fx.Calls())
	assert.Zero(t, s.promo.Calls())
	assert.Empty(t, s.publisher.Events())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.QuoteCounter(metrics.OutcomeUpstreamUnavailable)))
}

func TestQuoteService_SlowPromoDegradesToNoBonus(t *testing.T) {
	promo := &fakePromoAdapter{outcome: quote.NewPromoOutcome(1000, true), delay: time.Second}
	s := newQuoteStack(okFx(1.0), promo, 50*time.Millisecond)

	dto, err := s.service.Quote(context.Background(), QuoteRequest{
		FareAmount:   decimal.NewFromInt(100),
		Currency:     "USD",
		CabinClass:   "ECONOMY",
		CustomerTier: "SILVER",
		PromoCode:    "TIMEOUT",
	})
	require.NoError(t, err)

	assert.Equal(t, 100, dto.BasePoints)
	assert.Equal(t, 15, dto.TierBonus)
	assert.Equal(t, 0, dto.PromoBonus)
	assert.Equal(t, 115, dto.TotalPoints)
	assert.Empty(t, dto.Warnings)
	assert.NotNil(t, dto.Warnings)
}

func TestQuoteService_UnknownTierGetsNoBonus(t *testing.T) {
	for _, tier := range []string{"", "DIAMOND", "gold-ish"} {
		s := newQuoteStack(okFx(2.0), &fakePromoAdapter{outcome: quote.NoPromo()}, DefaultPromoTimeout)

		dto, err := s.service.Quote(context.Background(), QuoteRequest{
			FareAmount:   decimal.NewFromInt(50),
			Currency:     "EUR",
			CabinClass:   "BUSINESS",
			CustomerTier: tier,
		})
		require.NoError(t, err)
		assert.Equal(t, 100, dto.BasePoints, "tier %q", tier)
		assert.Equal(t, 0, dto.TierBonus, "tier %q", tier)
	}
}

func TestQuoteService_PublisherFailureDoesNotFailQuote(t *testing.T) {
	s := newQuoteStack(okFx(1.0), &fakePromoAdapter{outcome: quote.NoPromo()}, DefaultPromoTimeout)
	s.publisher.err = errors.New("broker down")

	dto, err := s.service.Quote(context.Background(), QuoteRequest{
		FareAmount: decimal.NewFromInt(10),
		Currency:   "GBP",
		CabinClass: "FIRST",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, dto.TotalPoints)
}

func TestQuoteService_NilPublisher(t *testing.T) {
	rec := newTestRecorder()
	svc := NewQuoteService(
		NewFxResolver(okFx(1.0), rec, nopLogger),
		NewPromoResolver(&fakePromoAdapter{}, DefaultPromoTimeout, rec, nopLogger),
		quote.NewCalculator(),
		nil,
		rec,
		nopLogger,
	)

	_, err := svc.Quote(context.Background(), QuoteRequest{
		FareAmount: decimal.NewFromInt(10),
		Currency:   "USD",
		CabinClass: "ECONOMY",
	})
	assert.NoError(t, err)
}

func TestQuoteService_ExtremeFareExponent(t *testing.T) {
	s := newQuoteStack(okFx(1.25), &fakePromoAdapter{outcome: quote.NewPromoOutcome(100, false)}, DefaultPromoTimeout)

	start := time.Now()
	dto, err := s.service.Quote(context.Background(), QuoteRequest{
		FareAmount: decimal.RequireFromString("1e2000000000"),
		Currency:   "GBP",
		CabinClass: "ECONOMY",
	})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 200*time.Millisecond)
	assert.Equal(t, quote.MaxPoints, dto.TotalPoints)

	published := s.publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, "1e2000000000", published[0].FareAmount)
}
