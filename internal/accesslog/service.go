package accesslog

import (
	"context"
	"log/slog"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/platform/privacy"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

const defaultListLimit = 50

// Recorder appends attempts to the access log. Append failures are logged
// and swallowed: a broken log must never block an authentication decision.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Recorder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

func NewRecorder(store Store, opts ...Option) *Recorder {
	rec := &Recorder{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(rec)
	}
	return rec
}

// Record appends one attempt, filling CreatedAt from the request time.
func (r *Recorder) Record(ctx context.Context, e *Entry) {
	if !e.Status.IsValid() {
		r.logger.ErrorContext(ctx, "dropping access log entry with bad status", "status", string(e.Status))
		return
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = requestcontext.Now(ctx)
	}
	if err := r.store.Append(ctx, e); err != nil {
		r.logger.ErrorContext(ctx, "access log append failed",
			"error", err,
			"status", string(e.Status),
			"ip", privacy.AnonymizeIP(e.IP),
		)
	}
}

// ListByUser returns the identity's recent attempts, newest first.
func (r *Recorder) ListByUser(ctx context.Context, userID id.UserID, limit int) ([]*Entry, error) {
	if userID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return r.store.ListByUser(ctx, userID, limit)
}
