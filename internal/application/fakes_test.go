package application

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/domain/quote"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/events"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/metrics"
)

func newTestRecorder() *metrics.Recorder {
	return metrics.NewRecorder(prometheus.NewRegistry())
}

// fakeFxAdapter replays the configured results, repeating the last one.
type fakeFxAdapter struct {
	mu      sync.Mutex
	rates   []float64
	errs    []error
	calls   int
	lastCcy string
}

func (f *fakeFxAdapter) FetchRate(ctx context.Context, currency string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++
	f.lastCcy = currency
	if i >= len(f.errs) {
		i = len(f.errs) - 1
	}
	if f.errs[i] != nil {
		return 0, f.errs[i]
	}
	return f.rates[i], nil
}

func (f *fakeFxAdapter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakePromoAdapter returns a fixed answer after an optional delay that
// respects context cancellation.
type fakePromoAdapter struct {
	mu       sync.Mutex
	outcome  quote.PromoOutcome
	err      error
	delay    time.Duration
	calls    int
	lastCode string
}

func (f *fakePromoAdapter) FetchPromo(ctx context.Context, code string) (quote.PromoOutcome, error) {
	f.mu.Lock()
	f.calls++
	f.lastCode = code
	outcome, err, delay := f.outcome, f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return quote.NoPromo(), ctx.Err()
		}
	}
	return outcome, err
}

func (f *fakePromoAdapter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// stubbornPromoAdapter ignores its context, like a client without cancellation.
type stubbornPromoAdapter struct {
	delay    time.Duration
	outcome  quote.PromoOutcome
	finished chan struct{}
}

func (s *stubbornPromoAdapter) FetchPromo(ctx context.Context, code string) (quote.PromoOutcome, error) {
	time.Sleep(s.delay)
	close(s.finished)
	return s.outcome, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.QuotedEvent
	err    error
}

func (p *recordingPublisher) PublishQuoted(ctx context.Context, evt events.QuotedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Events() []events.QuotedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.QuotedEvent(nil), p.events...)
}

var nopLogger = zap.NewNop()
