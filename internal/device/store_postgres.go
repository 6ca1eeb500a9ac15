package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

// PostgresStore persists devices in the trusted_devices table; see
// migrations/0002_security.sql. The (user_id, fingerprint) unique constraint
// backs the upsert.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, d *Device) (*Device, bool, error) {
	const query = `
		WITH previous AS (
			SELECT ip FROM trusted_devices WHERE user_id = $2 AND fingerprint = $3
		)
		INSERT INTO trusted_devices (id, user_id, fingerprint, name, ip, location, trusted, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, fingerprint) DO UPDATE SET
			name = EXCLUDED.name,
			ip = EXCLUDED.ip,
			location = CASE WHEN EXCLUDED.location <> '' THEN EXCLUDED.location ELSE trusted_devices.location END,
			last_seen_at = EXCLUDED.last_seen_at
		RETURNING id, trusted, first_seen_at, (xmax = 0) AS inserted,
			COALESCE((SELECT ip FROM previous), '') AS previous_ip`

	row := s.db.QueryRowContext(ctx, query,
		d.ID.String(), d.UserID.String(), d.Fingerprint, d.Name, d.IP, d.Location,
		d.Trusted, d.FirstSeenAt, d.LastSeenAt,
	)

	var (
		rawID      string
		trusted    bool
		inserted   bool
		previousIP string
	)
	stored := *d
	if err := row.Scan(&rawID, &trusted, &stored.FirstSeenAt, &inserted, &previousIP); err != nil {
		return nil, false, mapPgErr(err, "upsert device")
	}
	deviceID, err := id.ParseDeviceID(rawID)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "stored device id is corrupt")
	}
	stored.ID = deviceID
	stored.Trusted = trusted
	stored.SeenFromNewIP = !inserted && previousIP != "" && previousIP != d.IP
	return &stored, inserted, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*Device, error) {
	const query = `
		SELECT id, user_id, fingerprint, name, ip, location, trusted, first_seen_at, last_seen_at
		FROM trusted_devices
		WHERE user_id = $1
		ORDER BY last_seen_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, mapPgErr(err, "list devices")
	}
	defer rows.Close()

	var out []*Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgErr(err, "list devices")
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID, deviceID id.DeviceID) error {
	const query = `DELETE FROM trusted_devices WHERE user_id = $1 AND id = $2`

	res, err := s.db.ExecContext(ctx, query, userID.String(), deviceID.String())
	if err != nil {
		return mapPgErr(err, "delete device")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapPgErr(err, "delete device")
	}
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "device not found")
	}
	return nil
}

func scanDevice(rows *sql.Rows) (*Device, error) {
	var (
		device        Device
		rawID, rawUID string
	)
	err := rows.Scan(&rawID, &rawUID, &device.Fingerprint, &device.Name,
		&device.IP, &device.Location, &device.Trusted, &device.FirstSeenAt, &device.LastSeenAt)
	if err != nil {
		return nil, mapPgErr(err, "scan device")
	}
	if device.ID, err = id.ParseDeviceID(rawID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored device id is corrupt")
	}
	if device.UserID, err = id.ParseUserID(rawUID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored user id is corrupt")
	}
	return &device, nil
}

func mapPgErr(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, op)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("%s failed", op))
}
