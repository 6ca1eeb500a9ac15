package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/belgacembalti/trustgate/internal/accesslog"
	"github.com/belgacembalti/trustgate/internal/alert"
	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

type alertPayload struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

type attemptPayload struct {
	IP         string    `json:"ip"`
	DeviceName string    `json:"device_name"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) handleAlertList(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(r)
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
		return
	}
	unresolvedOnly := r.URL.Query().Get("unresolved") == "true"

	alerts, err := h.alerts.ListByUser(r.Context(), userID, unresolvedOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alertPayloads(alerts)})
}

func (h *Handler) handleAlertResolve(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(r)
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
		return
	}
	alertID, err := id.ParseAlertID(chi.URLParam(r, "alertID"))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid alert id"))
		return
	}
	if err := h.alerts.Resolve(r.Context(), userID, alertID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

func (h *Handler) handleAccessLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(r)
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.attempts.ListByUser(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": attemptPayloads(entries)})
}

// handleDashboard aggregates the security overview from the live stores.
// Every number here is computed, not canned.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(r)
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
		return
	}
	ctx := r.Context()

	ident, err := h.reader.GetByID(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	devices, err := h.devices.ListByUser(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	alerts, err := h.alerts.ListByUser(ctx, userID, true)
	if err != nil {
		writeError(w, err)
		return
	}
	attempts, err := h.attempts.ListByUser(ctx, userID, 10)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trust_score":       ident.TrustScore,
		"biometric_enabled": ident.BiometricEnabled,
		"device_count":      len(devices),
		"devices":           devicePayloads(devices),
		"unresolved_alerts": alertPayloads(alerts),
		"recent_attempts":   attemptPayloads(attempts),
	})
}

func alertPayloads(alerts []*alert.Alert) []alertPayload {
	out := make([]alertPayload, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertPayload{
			ID:        a.ID.String(),
			Type:      string(a.Type),
			Severity:  string(a.Severity),
			Message:   a.Message,
			Resolved:  a.Resolved,
			CreatedAt: a.CreatedAt,
		})
	}
	return out
}

func attemptPayloads(entries []*accesslog.Entry) []attemptPayload {
	out := make([]attemptPayload, 0, len(entries))
	for _, e := range entries {
		out = append(out, attemptPayload{
			IP:         e.IP,
			DeviceName: e.DeviceName,
			Status:     string(e.Status),
			Reason:     e.Reason,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
