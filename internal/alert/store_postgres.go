package alert

import (
	"context"
	"database/sql"
	"errors"
	"time"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

// PostgresStore persists alerts in PostgreSQL.
//
// Schema (see migrations/0002_security.sql):
//
//	security_alerts(id uuid pk, user_id uuid null, alert_type text,
//	                severity text, message text, resolved bool,
//	                created_at timestamptz, updated_at timestamptz)
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, a *Alert) error {
	var userID any
	if !a.UserID.IsZero() {
		userID = a.UserID.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO security_alerts (id, user_id, alert_type, severity, message, resolved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID.String(), userID, string(a.Type), string(a.Severity), a.Message, a.Resolved, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "insert alert")
	}
	return nil
}

func (s *PostgresStore) FindOpen(ctx context.Context, userID id.UserID, alertType Type, since time.Time) (*Alert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, alert_type, severity, message, resolved, created_at, updated_at
		FROM security_alerts
		WHERE user_id = $1 AND alert_type = $2 AND NOT resolved AND created_at >= $3
		ORDER BY created_at DESC
		LIMIT 1
	`, userID.String(), string(alertType), since)
	return scanAlert(row)
}

func (s *PostgresStore) UpdateSeverity(ctx context.Context, alertID id.AlertID, severity Severity, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE security_alerts SET severity = $1, updated_at = $2 WHERE id = $3
	`, string(severity), at, alertID.String())
	return checkAffected(res, err, "update alert severity")
}

func (s *PostgresStore) Resolve(ctx context.Context, userID id.UserID, alertID id.AlertID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE security_alerts SET resolved = true WHERE id = $1 AND user_id = $2
	`, alertID.String(), userID.String())
	return checkAffected(res, err, "resolve alert")
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID, unresolvedOnly bool) ([]*Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, alert_type, severity, message, resolved, created_at, updated_at
		FROM security_alerts
		WHERE user_id = $1 AND (NOT $2 OR NOT resolved)
		ORDER BY created_at DESC
	`, userID.String(), unresolvedOnly)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list alerts")
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		a, err := scanAlertRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "iterate alerts")
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlertFrom(sc rowScanner) (*Alert, error) {
	var a Alert
	var rawID string
	var rawUser sql.NullString
	var alertType, severity string
	err := sc.Scan(&rawID, &rawUser, &alertType, &severity, &a.Message, &a.Resolved, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	alertID, err := id.ParseAlertID(rawID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored alert id is corrupt")
	}
	a.ID = alertID
	if rawUser.Valid {
		userID, err := id.ParseUserID(rawUser.String)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored alert user id is corrupt")
		}
		a.UserID = userID
	}
	a.Type = Type(alertType)
	a.Severity = Severity(severity)
	return &a, nil
}

func scanAlert(row *sql.Row) (*Alert, error) {
	a, err := scanAlertFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no open alert")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "find alert")
	}
	return a, nil
}

func scanAlertRows(rows *sql.Rows) (*Alert, error) {
	a, err := scanAlertFrom(rows)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scan alert")
	}
	return a, nil
}

func checkAffected(res sql.Result, err error, op string) error {
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, op)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, op)
	}
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "alert not found")
	}
	return nil
}
