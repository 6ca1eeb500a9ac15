// Package httptransport is the thin chi layer over the authentication core.
// It owns request parsing, error envelopes, and request-context capture;
// business decisions stay in the domain services.
package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/belgacembalti/trustgate/internal/accesslog"
	"github.com/belgacembalti/trustgate/internal/alert"
	"github.com/belgacembalti/trustgate/internal/device"
	"github.com/belgacembalti/trustgate/internal/identity"
	"github.com/belgacembalti/trustgate/internal/session"
	"github.com/belgacembalti/trustgate/internal/token"
	id "github.com/belgacembalti/trustgate/pkg/domain"
)

// Authenticator is the session issuer surface the handlers call.
type Authenticator interface {
	Authenticate(ctx context.Context, creds session.Credentials, wantsStepUp bool) (*session.AuthResult, error)
	CompleteOTP(ctx context.Context, email, code string) (*session.AuthResult, error)
	AuthenticateBiometric(ctx context.Context, email, presentedTemplate string) (*session.AuthResult, error)
}

// Registrar covers identity lifecycle endpoints.
type Registrar interface {
	Register(ctx context.Context, email, password string) (*identity.Identity, error)
	EnrollBiometric(ctx context.Context, userID id.UserID, encryptedTemplate string) error
}

// TokenService covers refresh and revocation.
type TokenService interface {
	Refresh(ctx context.Context, refreshToken string) (*token.Pair, error)
	RevokeByJTI(ctx context.Context, jti string) error
}

// DeviceManager covers the trusted-device management surface.
type DeviceManager interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]*device.Device, error)
	Revoke(ctx context.Context, userID id.UserID, deviceID id.DeviceID) error
}

// AlertReader exposes recorded alerts to the security surfaces. Resolve is
// owner-scoped; alerts of other identities come back as not found.
type AlertReader interface {
	ListByUser(ctx context.Context, userID id.UserID, unresolvedOnly bool) ([]*alert.Alert, error)
	Resolve(ctx context.Context, userID id.UserID, alertID id.AlertID) error
}

// AttemptReader exposes the access log.
type AttemptReader interface {
	ListByUser(ctx context.Context, userID id.UserID, limit int) ([]*accesslog.Entry, error)
}

// IdentityReader resolves identities for authenticated surfaces.
type IdentityReader interface {
	GetByID(ctx context.Context, userID id.UserID) (*identity.Identity, error)
}

type Handler struct {
	sessions   Authenticator
	identities Registrar
	reader     IdentityReader
	tokens     TokenService
	validator  TokenValidator
	devices    DeviceManager
	alerts     AlertReader
	attempts   AttemptReader
}

func NewHandler(
	sessions Authenticator,
	identities Registrar,
	reader IdentityReader,
	tokens TokenService,
	validator TokenValidator,
	devices DeviceManager,
	alerts AlertReader,
	attempts AttemptReader,
) *Handler {
	return &Handler{
		sessions:   sessions,
		identities: identities,
		reader:     reader,
		tokens:     tokens,
		validator:  validator,
		devices:    devices,
		alerts:     alerts,
		attempts:   attempts,
	}
}

// NewRouter wires the public and authenticated endpoint groups.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(clientMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/verify-otp", h.handleVerifyOTP)
		r.Post("/biometric-login", h.handleBiometricLogin)
		r.Post("/refresh", h.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(h.validator))
			r.Post("/logout", h.handleLogout)
			r.Post("/biometric-enroll", h.handleBiometricEnroll)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(h.validator))

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", h.handleDeviceList)
			r.Delete("/{deviceID}", h.handleDeviceRevoke)
		})

		r.Route("/security", func(r chi.Router) {
			r.Get("/alerts", h.handleAlertList)
			r.Post("/alerts/{alertID}/resolve", h.handleAlertResolve)
			r.Get("/access-log", h.handleAccessLog)
			r.Get("/dashboard", h.handleDashboard)
		})
	})

	return r
}
