// Package trust implements the risk scoring engine: it maps authentication
// events to trust score mutations and decides when anomalies warrant a
// security alert or mandatory step-up authentication.
package trust

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/belgacembalti/trustgate/internal/alert"
	"github.com/belgacembalti/trustgate/internal/identity"
	"github.com/belgacembalti/trustgate/internal/platform/metrics"
	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/platform/privacy"
)

// Config holds the engine's policy knobs.
type Config struct {
	// StepUpFloor forces OTP on any identity whose score is below it,
	// regardless of the caller's stated preference.
	StepUpFloor int
	// AlertThreshold: crossing below it (not every decrement under it)
	// emits a suspicious_login alert.
	AlertThreshold int
	// FailureWindow and FailuresPerWindow define the consecutive-failure
	// escalation rule.
	FailureWindow     time.Duration
	FailuresPerWindow int
}

// DefaultConfig mirrors the production policy.
func DefaultConfig() Config {
	return Config{
		StepUpFloor:       40,
		AlertThreshold:    50,
		FailureWindow:     10 * time.Minute,
		FailuresPerWindow: 5,
	}
}

// Result is the outcome of scoring one event.
type Result struct {
	NewScore int
	// Alert is non-nil when the event warrants one; the caller routes it
	// to the alert sink. The engine itself never writes alerts.
	Alert *alert.Alert
	// StepUpRequired reflects the post-update score against the floor.
	StepUpRequired bool
}

// scoreSwapAttempts bounds the CAS retry loop. Contention is per-identity
// only, so more than a handful of rounds means something is wrong.
const scoreSwapAttempts = 8

// Engine applies score deltas and alerting policy. It is safe for
// concurrent use; per-identity serialization comes from the store's
// compare-and-swap, not from locks held across store calls.
type Engine struct {
	store    identity.Store
	config   Config
	failures *failureWindow
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(store identity.Store, config Config, opts ...Option) *Engine {
	if config.FailuresPerWindow <= 0 {
		config.FailuresPerWindow = DefaultConfig().FailuresPerWindow
	}
	if config.FailureWindow <= 0 {
		config.FailureWindow = DefaultConfig().FailureWindow
	}
	e := &Engine{
		store:    store,
		config:   config,
		failures: newFailureWindow(config.FailureWindow, config.FailuresPerWindow),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RequiresStepUp reports whether the mandatory step-up invariant fires for
// the given score.
func (e *Engine) RequiresStepUp(score int) bool {
	return score < e.config.StepUpFloor
}

// Evaluate applies the event's delta to the identity's score with a
// compare-and-swap retry loop, then runs alerting policy. The returned
// result reflects the score that was actually persisted; a failed persist
// surfaces as an error with no alert emitted.
func (e *Engine) Evaluate(ctx context.Context, userID id.UserID, event Event) (*Result, error) {
	oldScore, newScore, err := e.applyDelta(ctx, userID, event.delta())
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.TrustScoreUpdates.Observe(float64(abs(newScore - oldScore)))
	}

	result := &Result{
		NewScore:       newScore,
		StepUpRequired: e.RequiresStepUp(newScore),
	}

	switch {
	case event.isFailure():
		if e.failures.record(userID, event.At) {
			result.Alert = &alert.Alert{
				UserID:   userID,
				Type:     alert.TypeMultipleFailedAttempts,
				Severity: alert.SeverityHigh,
				Message: fmt.Sprintf("%d failed attempts within %s",
					e.config.FailuresPerWindow, e.config.FailureWindow),
				CreatedAt: event.At,
			}
		}
	default:
		e.failures.clear(userID)
	}

	// Threshold crossings emit one alert; staying below the line does not.
	if result.Alert == nil && oldScore >= e.config.AlertThreshold && newScore < e.config.AlertThreshold {
		result.Alert = e.crossingAlert(userID, event)
	}

	e.logger.DebugContext(ctx, "trust score evaluated",
		"user_id", userID.String(),
		"event", string(event.Kind),
		"old_score", oldScore,
		"new_score", newScore,
		"ip", privacy.AnonymizeIP(event.IP),
	)
	return result, nil
}

func (e *Engine) crossingAlert(userID id.UserID, event Event) *alert.Alert {
	alertType := alert.TypeSuspiciousLogin
	severity := alert.SeverityMedium
	switch {
	case event.UnusualLocation:
		alertType = alert.TypeUnusualLocation
	case event.NewDevice:
		alertType = alert.TypeNewDevice
	}
	return &alert.Alert{
		UserID:    userID,
		Type:      alertType,
		Severity:  severity,
		Message:   fmt.Sprintf("trust score dropped below %d", e.config.AlertThreshold),
		CreatedAt: event.At,
	}
}

// applyDelta runs the per-identity read-modify-write loop. Zero deltas skip
// the write entirely.
func (e *Engine) applyDelta(ctx context.Context, userID id.UserID, delta int) (oldScore, newScore int, err error) {
	for attempt := 0; attempt < scoreSwapAttempts; attempt++ {
		ident, err := e.store.GetByID(ctx, userID)
		if err != nil {
			return 0, 0, err
		}
		oldScore = ident.TrustScore
		newScore = identity.ClampScore(oldScore + delta)
		if newScore == oldScore {
			return oldScore, newScore, nil
		}

		swapped, err := e.store.CompareAndSwapScore(ctx, userID, oldScore, newScore)
		if err != nil {
			return 0, 0, err
		}
		if swapped {
			return oldScore, newScore, nil
		}
	}
	return 0, 0, dErrors.New(dErrors.CodeInternal, "trust score swap contention exceeded retry budget")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
