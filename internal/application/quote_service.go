package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/domain/quote"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/events"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/metrics"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/workflow"
)

// Stage is a state of the quote orchestration.
type Stage string

const (
	StageValidating          Stage = "validating"
	StageResolvingFx         Stage = "resolving_fx"
	StageResolvingPromo      Stage = "resolving_promo"
	StageCalculating         Stage = "calculating"
	StageDone                Stage = "done"
	StageRejected            Stage = "rejected"
	StageUpstreamUnavailable Stage = "upstream_unavailable"
)

const publishTimeout = 2 * time.Second

// RateResolver resolves an FX rate for a currency.
type RateResolver interface {
	ResolveRate(ctx context.Context, currency string) (float64, error)
}

// PromoLookup resolves a promo code. It never fails.
type PromoLookup interface {
	ResolvePromo(ctx context.Context, code string) quote.PromoOutcome
}

// QuoteEventPublisher emits an event for every successful quote.
type QuoteEventPublisher interface {
	PublishQuoted(ctx context.Context, evt events.QuotedEvent) error
}

// QuoteService orchestrates a points quote:
// validate, resolve FX, resolve promo, calculate.
type QuoteService struct {
	fx         RateResolver
	promo      PromoLookup
	calculator *quote.Calculator
	publisher  QuoteEventPublisher
	metrics    *metrics.Recorder
	logger     *zap.Logger
}

// NewQuoteService creates a new QuoteService. publisher may be nil.
func NewQuoteService(
	fx RateResolver,
	promo PromoLookup,
	calculator *quote.Calculator,
	publisher QuoteEventPublisher,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		fx:         fx,
		promo:      promo,
		calculator: calculator,
		publisher:  publisher,
		metrics:    recorder,
		logger:     logger,
	}
}

// Quote computes the points breakdown for a request. It fails with a
// *quote.ValidationError before any outbound call, or with a
// *quote.FxUnavailableError, in which case the promo lookup is skipped.
func (s *QuoteService) Quote(ctx context.Context, in QuoteRequest) (*QuoteDTO, error) {
	var (
		req    *quote.Request
		rate   float64
		promo  quote.PromoOutcome
		result *quote.Result
	)

	wf := workflow.New("points_quote", s.logger)

	wf.AddStep(workflow.Step{
		Name: string(StageValidating),
		Execute: func(ctx context.Context) error {
			var err error
			req, err = quote.NewRequest(in.FareAmount, in.Currency, in.CabinClass, in.CustomerTier, in.PromoCode)
			return err
		},
	})

	wf.AddStep(workflow.Step{
		Name: string(StageResolvingFx),
		Execute: func(ctx context.Context) error {
			var err error
			rate, err = s.fx.ResolveRate(ctx, string(req.Currency()))
			return err
		},
	})

	// Runs only once the FX outcome is known; cannot fail.
	wf.AddStep(workflow.Step{
		Name: string(StageResolvingPromo),
		Execute: func(ctx context.Context) error {
			promo = s.promo.ResolvePromo(ctx, req.PromoCode())
			return nil
		},
	})

	wf.AddStep(workflow.Step{
		Name: string(StageCalculating),
		Execute: func(ctx context.Context) error {
			result = s.calculator.Calculate(req.FareAmount(), rate, req.Tier().Multiplier(), promo)
			return nil
		},
	})

	if err := wf.Execute(ctx); err != nil {
		s.fail(err)
		return nil, err
	}

	s.metrics.IncQuote(string(StageDone))
	s.logger.Info("points quoted",
		zap.String("currency", string(req.Currency())),
		zap.String("cabin_class", string(req.CabinClass())),
		zap.String("tier", string(req.Tier())),
		zap.Float64("fx_rate", rate),
		zap.Int("total_points", result.TotalPoints()),
		zap.Strings("warnings", result.Warnings()),
	)

	s.publish(ctx, req, result)
	return toQuoteDTO(result), nil
}

func (s *QuoteService) fail(err error) {
	var vErr *quote.ValidationError
	var fxErr *quote.FxUnavailableError

	switch {
	case errors.As(err, &vErr):
		s.metrics.IncQuote(string(StageRejected))
		s.logger.Info("quote rejected",
			zap.String("field", vErr.Field),
			zap.String("reason", vErr.Reason),
		)
	case errors.As(err, &fxErr):
		s.metrics.IncQuote(string(StageUpstreamUnavailable))
		s.logger.Error("quote failed, fx unavailable",
			zap.String("currency", fxErr.Currency),
			zap.Int("attempts", fxErr.Attempts),
			zap.Error(fxErr.Cause),
		)
	default:
		s.metrics.IncQuote(metrics.OutcomeError)
		s.logger.Error("quote failed", zap.Error(err))
	}
}

// publish is best-effort and detached from the caller's cancellation.
func (s *QuoteService) publish(ctx context.Context, req *quote.Request, result *quote.Result) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	evt := events.QuotedEvent{
		FareAmount:      quote.FormatAmount(req.FareAmount()),
		Currency:        string(req.Currency()),
		CabinClass:      string(req.CabinClass()),
		CustomerTier:    string(req.Tier()),
		PromoCode:       req.PromoCode(),
		BasePoints:      result.BasePoints(),
		TierBonus:       result.TierBonus(),
		PromoBonus:      result.PromoBonus(),
		TotalPoints:     result.TotalPoints(),
		EffectiveFxRate: result.EffectiveFxRate(),
		Warnings:        result.Warnings(),
		OccurredAt:      time.Now().UTC(),
	}
	if err := s.publisher.PublishQuoted(ctx, evt); err != nil {
		s.logger.Error("failed to publish quote event", zap.Error(err))
	}
}
