package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jackc/pgx/v5/pgconn"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

// uniqueViolationCode is the class 23 SQLSTATE for unique constraint hits.
const uniqueViolationCode = "23505"

// PostgresStore persists identities in PostgreSQL.
//
// Schema (see migrations/0001_identities.sql):
//
//	identities(id uuid pk, email text unique, password_hash text,
//	           trust_score int, biometric_enabled bool, active bool,
//	           created_at timestamptz, updated_at timestamptz)
//	biometric_profiles(user_id uuid pk references identities,
//	           encrypted_template text, active bool,
//	           created_at timestamptz, last_verified_at timestamptz)
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, ident *Identity, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (id, email, password_hash, trust_score, biometric_enabled, active, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $7)
	`, ident.ID.String(), ident.Email, passwordHash, ident.TrustScore, ident.BiometricEnabled, ident.Active, ident.CreatedAt)
	if err != nil {
		return mapWriteErr(err, "create identity")
	}
	return nil
}

const identityColumns = `id, email, trust_score, biometric_enabled, active, created_at, updated_at`

func (s *PostgresStore) scanIdentity(row *sql.Row) (*Identity, error) {
	var ident Identity
	var rawID string
	err := row.Scan(&rawID, &ident.Email, &ident.TrustScore, &ident.BiometricEnabled, &ident.Active, &ident.CreatedAt, &ident.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return nil, mapReadErr(err, "scan identity")
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored identity id is corrupt")
	}
	ident.ID = userID
	return &ident, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, userID id.UserID) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE id = $1`, userID.String())
	return s.scanIdentity(row)
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE email = lower($1)`, email)
	return s.scanIdentity(row)
}

func (s *PostgresStore) VerifyCredentials(ctx context.Context, email, password string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, trust_score, biometric_enabled, active, created_at, updated_at
		FROM identities WHERE email = lower($1)
	`, email)

	var ident Identity
	var rawID, hash string
	err := row.Scan(&rawID, &ident.Email, &hash, &ident.TrustScore, &ident.BiometricEnabled, &ident.Active, &ident.CreatedAt, &ident.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Same cost and same error as a wrong password.
			_ = bcrypt.CompareHashAndPassword(enumerationDecoyHash, []byte(password))
			return nil, dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
		}
		return nil, mapReadErr(err, "lookup credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil || !ident.Active {
		return nil, dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored identity id is corrupt")
	}
	ident.ID = userID
	return &ident, nil
}

func (s *PostgresStore) CompareAndSwapScore(ctx context.Context, userID id.UserID, expected, next int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE identities SET trust_score = $1, updated_at = $2
		WHERE id = $3 AND trust_score = $4
	`, next, requestcontext.Now(ctx), userID.String(), expected)
	if err != nil {
		return false, mapWriteErr(err, "swap trust score")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, mapWriteErr(err, "swap trust score result")
	}
	return affected == 1, nil
}

func (s *PostgresStore) SetBiometricEnabled(ctx context.Context, userID id.UserID, enabled bool) error {
	return s.updateIdentity(ctx, "set biometric flag", `
		UPDATE identities SET biometric_enabled = $1, updated_at = $2 WHERE id = $3
	`, enabled, requestcontext.Now(ctx), userID.String())
}

func (s *PostgresStore) Deactivate(ctx context.Context, userID id.UserID) error {
	return s.updateIdentity(ctx, "deactivate identity", `
		UPDATE identities SET active = false, updated_at = $1 WHERE id = $2
	`, requestcontext.Now(ctx), userID.String())
}

func (s *PostgresStore) updateIdentity(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteErr(err, op)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapWriteErr(err, op)
	}
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	return nil
}

// PostgresBiometricStore persists biometric profiles in PostgreSQL.
type PostgresBiometricStore struct {
	db *sql.DB
}

func NewPostgresBiometricStore(db *sql.DB) *PostgresBiometricStore {
	return &PostgresBiometricStore{db: db}
}

func (s *PostgresBiometricStore) Upsert(ctx context.Context, profile *BiometricProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO biometric_profiles (user_id, encrypted_template, active, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			encrypted_template = EXCLUDED.encrypted_template,
			active = EXCLUDED.active
	`, profile.UserID.String(), profile.EncryptedTemplate, profile.Active, profile.CreatedAt)
	if err != nil {
		return mapWriteErr(err, "upsert biometric profile")
	}
	return nil
}

func (s *PostgresBiometricStore) FindByUser(ctx context.Context, userID id.UserID) (*BiometricProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, encrypted_template, active, created_at, last_verified_at
		FROM biometric_profiles WHERE user_id = $1 AND active
	`, userID.String())

	var profile BiometricProfile
	var rawID string
	err := row.Scan(&rawID, &profile.EncryptedTemplate, &profile.Active, &profile.CreatedAt, &profile.LastVerifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "biometric profile not found")
		}
		return nil, mapReadErr(err, "find biometric profile")
	}
	uid, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored profile id is corrupt")
	}
	profile.UserID = uid
	return &profile, nil
}

func (s *PostgresBiometricStore) MarkVerified(ctx context.Context, userID id.UserID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE biometric_profiles SET last_verified_at = $1 WHERE user_id = $2
	`, requestcontext.Now(ctx), userID.String())
	if err != nil {
		return mapWriteErr(err, "mark biometric verified")
	}
	return nil
}

// mapReadErr and mapWriteErr translate driver failures into the
// external-store taxonomy: deadline problems become CodeTimeout, everything
// else CodeUnavailable. Callers must never collapse either into a denial.
func mapReadErr(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("%s failed", op))
}

func mapWriteErr(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return dErrors.New(dErrors.CodeConflict, "email already registered")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("%s failed", op))
}
