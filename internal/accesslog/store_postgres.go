package accesslog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

// PostgresStore persists entries in the access_log table; see
// migrations/0002_security.sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, e *Entry) error {
	const query = `
		INSERT INTO access_log (user_id, email, ip, device_name, status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var userID any
	if !e.UserID.IsZero() {
		userID = e.UserID.String()
	}
	row := s.db.QueryRowContext(ctx, query,
		userID, e.Email, e.IP, e.DeviceName, string(e.Status), e.Reason, e.CreatedAt)
	if err := row.Scan(&e.ID); err != nil {
		return mapPgErr(err, "append access log entry")
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID, limit int) ([]*Entry, error) {
	const query = `
		SELECT id, COALESCE(user_id::text, ''), email, ip, device_name, status, reason, created_at
		FROM access_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, query, userID.String(), limit)
	if err != nil {
		return nil, mapPgErr(err, "list access log")
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var (
			e      Entry
			rawUID string
			status string
		)
		if err := rows.Scan(&e.ID, &rawUID, &e.Email, &e.IP, &e.DeviceName, &status, &e.Reason, &e.CreatedAt); err != nil {
			return nil, mapPgErr(err, "scan access log entry")
		}
		if rawUID != "" {
			if e.UserID, err = id.ParseUserID(rawUID); err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored user id is corrupt")
			}
		}
		e.Status = Status(status)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgErr(err, "list access log")
	}
	return out, nil
}

func mapPgErr(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("%s failed", op))
}
