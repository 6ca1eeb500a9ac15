// Package token mints and validates the HS256 session tokens handed out on a
// granted authentication, and keeps the revocation list that invalidates
// them early.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims carried by both access and refresh tokens. Kind keeps a refresh
// token from passing where an access token is required.
type Claims struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Kind      TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Pair is what a granted authentication hands back.
type Pair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	AccessJTI        string
	RefreshJTI       string
}

// Service mints, validates and revokes token pairs.
type Service struct {
	signingKey []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	trl        RevocationList
}

func NewService(signingKey, issuer string, accessTTL, refreshTTL time.Duration, trl RevocationList) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		trl:        trl,
	}
}

// Issue mints an access/refresh pair bound to (user, session).
func (s *Service) Issue(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*Pair, error) {
	now := requestcontext.Now(ctx)

	access, accessJTI, err := s.sign(userID, sessionID, KindAccess, now, s.accessTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "sign access token")
	}
	refresh, refreshJTI, err := s.sign(userID, sessionID, KindRefresh, now, s.refreshTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "sign refresh token")
	}

	return &Pair{
		AccessToken:      access,
		AccessExpiresAt:  now.Add(s.accessTTL),
		RefreshToken:     refresh,
		RefreshExpiresAt: now.Add(s.refreshTTL),
		AccessJTI:        accessJTI,
		RefreshJTI:       refreshJTI,
	}, nil
}

func (s *Service) sign(userID id.UserID, sessionID id.SessionID, kind TokenKind, now time.Time, ttl time.Duration) (string, string, error) {
	jti := uuid.NewString()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    userID.String(),
		SessionID: sessionID.String(),
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        jti,
		},
	})
	signed, err := tok.SignedString(s.signingKey)
	return signed, jti, err
}

// Validate parses and verifies a token of the expected kind, then checks the
// revocation list.
func (s *Service) Validate(ctx context.Context, tokenString string, kind TokenKind) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Kind != kind {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wrong token kind")
	}

	revoked, err := s.trl.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}
	return claims, nil
}

// RevokePair blacklists both halves of a pair for the remaining refresh
// lifetime, the longer of the two.
func (s *Service) RevokePair(ctx context.Context, p *Pair) error {
	return s.trl.RevokeBatch(ctx, []string{p.AccessJTI, p.RefreshJTI}, s.refreshTTL)
}

// RevokeByJTI blacklists a single token by its JTI claim.
func (s *Service) RevokeByJTI(ctx context.Context, jti string) error {
	return s.trl.Revoke(ctx, jti, s.refreshTTL)
}

// Refresh validates a refresh token, revokes it, and mints a fresh pair for
// the same session. Refresh tokens are single use.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Pair, error) {
	claims, err := s.Validate(ctx, refreshToken, KindRefresh)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if err := s.trl.Revoke(ctx, claims.ID, s.refreshTTL); err != nil {
		return nil, err
	}
	return s.Issue(ctx, userID, sessionID)
}
