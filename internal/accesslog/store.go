package accesslog

import (
	"context"

	id "github.com/belgacembalti/trustgate/pkg/domain"
)

// Store persists access log entries. Append assigns Entry.ID.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	ListByUser(ctx context.Context, userID id.UserID, limit int) ([]*Entry, error)
}
