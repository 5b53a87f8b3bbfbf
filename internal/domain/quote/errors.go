package quote

import "fmt"

// ValidationError is returned when a quote request breaks a domain constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FxUnavailableError is returned when no FX rate could be obtained after
// the retry policy was exhausted.
type FxUnavailableError struct {
	Currency string
	Attempts int
	Cause    error
}

func (e *FxUnavailableError) Error() string {
	return fmt.Sprintf("fx rate for %s unavailable after %d attempts: %v", e.Currency, e.Attempts, e.Cause)
}

func (e *FxUnavailableError) Unwrap() error { return e.Cause }
