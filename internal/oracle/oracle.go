// Package oracle wraps a chat model behind typed, validated generation.
//
// Every call renders a prompt, asks the model for JSON, decodes it into a
// contract type and validates it against the contract's struct tags. Invalid
// output is fed back to the model as correction context and retried a bounded
// number of times before a *GenerationError is returned.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
)

const (
	// DefaultMaxAttempts bounds validation-feedback retries for one call.
	DefaultMaxAttempts = 3

	// DefaultTimeout bounds a single model round trip.
	DefaultTimeout = 90 * time.Second

	// DefaultRetryDelay is the pause before retrying a transient failure.
	DefaultRetryDelay = 500 * time.Millisecond

	// maxFeedbackOutput caps how much of a rejected response is echoed back.
	maxFeedbackOutput = 500
)

// ErrContractViolation marks output that never satisfied its contract.
var ErrContractViolation = errors.New("oracle output violates contract")

// GenerationError reports a call that exhausted its attempts.
type GenerationError struct {
	Stage     string
	Attempts  int
	RawOutput string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: generation failed after %d attempt(s): %v", e.Stage, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Observer receives one event per model round trip.
type Observer interface {
	ObserveOracleCall(stage, outcome string, elapsed time.Duration)
}

// Call outcomes reported to an Observer.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"
)

type nopObserver struct{}

func (nopObserver) ObserveOracleCall(string, string, time.Duration) {}

// Oracle issues structured generation requests against a chat model.
// It is safe for concurrent use when the underlying model is.
type Oracle struct {
	model       model.BaseChatModel
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
	observer    Observer
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithTimeout sets the per-round-trip timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *Oracle) { o.timeout = d }
}

// WithMaxAttempts sets the number of attempts per call.
func WithMaxAttempts(n int) Option {
	return func(o *Oracle) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the backoff before retrying a transient failure.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Oracle) { o.retryDelay = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Oracle) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver attaches a call observer such as a metrics recorder.
func WithObserver(obs Observer) Option {
	return func(o *Oracle) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// New returns an Oracle backed by m.
func New(m model.BaseChatModel, opts ...Option) *Oracle {
	o := &Oracle{
		model:       m,
		timeout:     DefaultTimeout,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      slog.Default(),
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// isTransientError checks if an error is likely transient and worth retrying.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit",
		"429",
		"too many requests",
		"quota exceeded",
		"timeout",
		"connection",
		"temporary",
		"unavailable",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "... [truncated]"
}
