package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Quote outcomes.
const (
	OutcomeDone                = "done"
	OutcomeRejected            = "rejected"
	OutcomeUpstreamUnavailable = "upstream_unavailable"
	OutcomeError               = "error"
)

// Promo fallback reasons.
const (
	FallbackError   = "error"
	FallbackTimeout = "timeout"
)

// Recorder groups the service's Prometheus collectors.
type Recorder struct {
	quotes         *prometheus.CounterVec
	fxAttempts     *prometheus.CounterVec
	promoFallbacks *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "quotes_total",
			Help:      "Points quotes by terminal outcome.",
		}, []string{"outcome"}),
		fxAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "fx_attempts_total",
			Help:      "Calls made to the FX service by result.",
		}, []string{"result"}),
		promoFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "promo_fallbacks_total",
			Help:      "Promo lookups that degraded to no bonus.",
		}, []string{"reason"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loyalty",
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(r.quotes, r.fxAttempts, r.promoFallbacks, r.httpDuration)
	return r
}

// IncQuote counts a finished quote.
func (r *Recorder) IncQuote(outcome string) {
	r.quotes.WithLabelValues(outcome).Inc()
}

// IncFxAttempt counts a single FX call.
func (r *Recorder) IncFxAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	r.fxAttempts.WithLabelValues(result).Inc()
}

// IncPromoFallback counts a promo lookup replaced by the default outcome.
func (r *Recorder) IncPromoFallback(reason string) {
	r.promoFallbacks.WithLabelValues(reason).Inc()
}

// ObserveHTTPRequest records the latency of one inbound request.
func (r *Recorder) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// QuoteCounter exposes the quote counter for the given outcome.
func (r *Recorder) QuoteCounter(outcome string) prometheus.Counter {
	return r.quotes.WithLabelValues(outcome)
}

// FxAttemptCounter exposes the FX attempt counter for the given result.
func (r *Recorder) FxAttemptCounter(result string) prometheus.Counter {
	return r.fxAttempts.WithLabelValues(result)
}

// PromoFallbackCounter exposes the promo fallback counter for the given reason.
func (r *Recorder) PromoFallbackCounter(reason string) prometheus.Counter {
	return r.promoFallbacks.WithLabelValues(reason)
}
