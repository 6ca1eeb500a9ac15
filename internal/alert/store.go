package alert

import (
	"context"
	"time"

	id "github.com/belgacembalti/trustgate/pkg/domain"
)

// Store persists alert records. FindOpen exists solely for the dedup rule:
// it returns the newest unresolved alert of the given (user, type) pair
// created at or after since, or CodeNotFound. Resolve only touches alerts
// owned by userID; anything else is CodeNotFound.
type Store interface {
	Insert(ctx context.Context, a *Alert) error
	FindOpen(ctx context.Context, userID id.UserID, alertType Type, since time.Time) (*Alert, error)
	UpdateSeverity(ctx context.Context, alertID id.AlertID, severity Severity, at time.Time) error
	Resolve(ctx context.Context, userID id.UserID, alertID id.AlertID) error
	ListByUser(ctx context.Context, userID id.UserID, unresolvedOnly bool) ([]*Alert, error)
}
