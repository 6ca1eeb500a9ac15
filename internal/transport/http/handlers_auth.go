package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/belgacembalti/trustgate/internal/session"
	"github.com/belgacembalti/trustgate/internal/token"
	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// WantOTP lets a client opt into step-up; the trust floor can force it
	// regardless.
	WantOTP bool `json:"want_otp"`
}

type otpRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type biometricLoginRequest struct {
	Email    string `json:"email"`
	Template string `json:"template"`
}

type biometricEnrollRequest struct {
	Template string `json:"template"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	Status             string     `json:"status"`
	UserID             string     `json:"user_id,omitempty"`
	TrustScore         int        `json:"trust_score,omitempty"`
	AccessToken        string     `json:"access_token,omitempty"`
	RefreshToken       string     `json:"refresh_token,omitempty"`
	ChallengeExpiresAt *time.Time `json:"challenge_expires_at,omitempty"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	ident, err := h.identities.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id":     ident.ID.String(),
		"email":       ident.Email,
		"trust_score": ident.TrustScore,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.sessions.Authenticate(r.Context(),
		session.Credentials{Email: req.Email, Password: req.Password}, req.WantOTP)
	h.writeAuthResult(w, result, err)
}

func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.sessions.CompleteOTP(r.Context(), req.Email, req.Code)
	h.writeAuthResult(w, result, err)
}

func (h *Handler) handleBiometricLogin(w http.ResponseWriter, r *http.Request) {
	var req biometricLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.sessions.AuthenticateBiometric(r.Context(), req.Email, req.Template)
	h.writeAuthResult(w, result, err)
}

func (h *Handler) handleBiometricEnroll(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(r)
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
		return
	}

	var req biometricEnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.identities.EnrollBiometric(r.Context(), userID, req.Template); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "enrolled"})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	pair, err := h.tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPayload(pair))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	raw, ok := bearerToken(r)
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
		return
	}
	_, jti, err := h.validator.ValidateAccess(r.Context(), raw)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.tokens.RevokeByJTI(r.Context(), jti); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// writeAuthResult renders the shared state-machine outcome. Denials carry the
// envelope of their cause; infrastructure failures pass through untouched.
func (h *Handler) writeAuthResult(w http.ResponseWriter, result *session.AuthResult, err error) {
	if err != nil {
		writeError(w, err)
		return
	}

	resp := authResponse{
		Status:     string(result.Status),
		UserID:     result.UserID.String(),
		TrustScore: result.TrustScore,
	}
	switch result.Status {
	case session.StatusGranted:
		resp.AccessToken = result.Tokens.AccessToken
		resp.RefreshToken = result.Tokens.RefreshToken
	case session.StatusPendingOTP:
		expires := result.ChallengeExpiresAt
		resp.ChallengeExpiresAt = &expires
	}
	writeJSON(w, http.StatusOK, resp)
}

func tokenPayload(pair *token.Pair) map[string]any {
	return map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.AccessExpiresAt,
	}
}

// subjectID resolves the authenticated user from the request context.
func subjectID(r *http.Request) (id.UserID, bool) {
	sub, ok := requestcontext.Subject(r.Context())
	if !ok {
		return id.UserID{}, false
	}
	userID, err := id.ParseUserID(sub)
	if err != nil {
		return id.UserID{}, false
	}
	return userID, true
}
