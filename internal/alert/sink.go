package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/belgacembalti/trustgate/internal/platform/metrics"
	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

// DefaultDedupWindow is how long an unresolved alert absorbs duplicates of
// the same (identity, type) pair instead of creating a new record.
const DefaultDedupWindow = time.Hour

// Publisher fans recorded alerts out to an external audit stream. Enqueue
// must never block; delivery is best-effort.
type Publisher interface {
	Enqueue(a *Alert)
}

// Sink records security alerts with storm suppression: repeated anomalies of
// one kind against one identity collapse into a single record whose severity
// only ratchets upward. Resolution is scoped to the alert's owner.
type Sink struct {
	store       Store
	publisher   Publisher
	dedupWindow time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type SinkOption func(*Sink)

func WithLogger(logger *slog.Logger) SinkOption {
	return func(s *Sink) { s.logger = logger }
}

func WithPublisher(p Publisher) SinkOption {
	return func(s *Sink) { s.publisher = p }
}

func WithDedupWindow(window time.Duration) SinkOption {
	return func(s *Sink) { s.dedupWindow = window }
}

func WithMetrics(m *metrics.Metrics) SinkOption {
	return func(s *Sink) { s.metrics = m }
}

func NewSink(store Store, opts ...SinkOption) *Sink {
	sink := &Sink{
		store:       store,
		dedupWindow: DefaultDedupWindow,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(sink)
	}
	return sink
}

// Record persists an alert, deduping against an open record of the same
// (user, type) within the window. Returns the ID of the surviving record.
// A failed write surfaces to the caller; it is never silently retried.
func (s *Sink) Record(ctx context.Context, a *Alert) (id.AlertID, error) {
	if !a.Type.IsValid() {
		return id.AlertID{}, dErrors.New(dErrors.CodeInvalidInput, "unknown alert type")
	}
	if !a.Severity.IsValid() {
		return id.AlertID{}, dErrors.New(dErrors.CodeInvalidInput, "unknown alert severity")
	}

	now := requestcontext.Now(ctx)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = a.CreatedAt

	if !a.UserID.IsZero() {
		existing, err := s.store.FindOpen(ctx, a.UserID, a.Type, now.Add(-s.dedupWindow))
		switch {
		case err == nil:
			return s.merge(ctx, existing, a, now)
		case dErrors.HasCode(err, dErrors.CodeNotFound):
			// fall through to insert
		default:
			return id.AlertID{}, err
		}
	}

	if a.ID.IsZero() {
		a.ID = id.NewAlertID()
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return id.AlertID{}, err
	}
	if s.metrics != nil {
		s.metrics.AlertsRecorded.WithLabelValues(string(a.Type)).Inc()
	}
	s.logger.WarnContext(ctx, "security alert recorded",
		"alert_id", a.ID.String(),
		"type", string(a.Type),
		"severity", string(a.Severity),
	)
	s.publish(a)
	return a.ID, nil
}

func (s *Sink) merge(ctx context.Context, existing, incoming *Alert, now time.Time) (id.AlertID, error) {
	if incoming.Severity.OutranksOrEqual(existing.Severity) && incoming.Severity != existing.Severity {
		if err := s.store.UpdateSeverity(ctx, existing.ID, incoming.Severity, now); err != nil {
			return id.AlertID{}, err
		}
		existing.Severity = incoming.Severity
		s.publish(existing)
	}
	if s.metrics != nil {
		s.metrics.AlertsDeduped.Inc()
	}
	return existing.ID, nil
}

// Resolve marks an alert handled. The write is scoped to userID, so an alert
// belonging to another identity (or to nobody) reports CodeNotFound rather
// than revealing that it exists. Nothing in the auth flow calls this.
func (s *Sink) Resolve(ctx context.Context, userID id.UserID, alertID id.AlertID) error {
	return s.store.Resolve(ctx, userID, alertID)
}

// ListByUser returns a user's alerts, newest first.
func (s *Sink) ListByUser(ctx context.Context, userID id.UserID, unresolvedOnly bool) ([]*Alert, error) {
	return s.store.ListByUser(ctx, userID, unresolvedOnly)
}

func (s *Sink) publish(a *Alert) {
	if s.publisher == nil {
		return
	}
	copied := *a
	s.publisher.Enqueue(&copied)
}
