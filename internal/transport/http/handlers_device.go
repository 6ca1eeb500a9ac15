package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/belgacembalti/trustgate/internal/device"
	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

type devicePayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	IP          string    `json:"ip"`
	Location    string    `json:"location,omitempty"`
	Trusted     bool      `json:"trusted"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

func (h *Handler) handleDeviceList(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(r)
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
		return
	}

	devices, err := h.devices.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devicePayloads(devices)})
}

func (h *Handler) handleDeviceRevoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(r)
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
		return
	}
	deviceID, err := id.ParseDeviceID(chi.URLParam(r, "deviceID"))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid device id"))
		return
	}

	if err := h.devices.Revoke(r.Context(), userID, deviceID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func devicePayloads(devices []*device.Device) []devicePayload {
	out := make([]devicePayload, 0, len(devices))
	for _, d := range devices {
		out = append(out, devicePayload{
			ID:          d.ID.String(),
			Name:        d.Name,
			Fingerprint: d.Fingerprint,
			IP:          d.IP,
			Location:    d.Location,
			Trusted:     d.Trusted,
			FirstSeenAt: d.FirstSeenAt,
			LastSeenAt:  d.LastSeenAt,
		})
	}
	return out
}
