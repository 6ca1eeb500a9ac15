// Package device tracks known device fingerprints per identity and
// classifies each successful authentication as coming from a known or a new
// device.
package device

import (
	"context"
	"log/slog"

	"github.com/belgacembalti/trustgate/internal/platform/metrics"
	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/platform/privacy"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

// Store persists device records. Upsert is keyed (user, fingerprint) and
// reports whether it inserted (isNew) or updated.
type Store interface {
	Upsert(ctx context.Context, d *Device) (*Device, bool, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*Device, error)
	Delete(ctx context.Context, userID id.UserID, deviceID id.DeviceID) error
}

// Registry is the device trust registry service.
type Registry struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

func NewRegistry(store Store, opts ...Option) *Registry {
	reg := &Registry{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// RecordAndClassify upserts the (user, fingerprint) pair. First sight
// creates a trusted device and returns isNew=true; the scoring engine uses
// that to apply the new-device penalty. Re-sights refresh last-seen fields.
func (r *Registry) RecordAndClassify(ctx context.Context, userID id.UserID, fingerprint, ip, label string) (*Device, bool, error) {
	if fingerprint == "" {
		return nil, false, dErrors.New(dErrors.CodeInvalidInput, "device fingerprint is required")
	}
	if label == "" {
		label = ParseUserAgent(requestcontext.UserAgent(ctx))
	}

	now := requestcontext.Now(ctx)
	candidate := &Device{
		ID:          id.NewDeviceID(),
		UserID:      userID,
		Fingerprint: fingerprint,
		Name:        label,
		IP:          ip,
		Trusted:     true,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}

	stored, isNew, err := r.store.Upsert(ctx, candidate)
	if err != nil {
		return nil, false, err
	}

	if isNew {
		if r.metrics != nil {
			r.metrics.DevicesRegistered.Inc()
		}
		r.logger.InfoContext(ctx, "new device registered",
			"user_id", userID.String(),
			"device_id", stored.ID.String(),
			"ip", privacy.AnonymizeIP(ip),
		)
	}
	return stored, isNew, nil
}

// ListByUser returns the identity's devices, most recently seen first.
func (r *Registry) ListByUser(ctx context.Context, userID id.UserID) ([]*Device, error) {
	return r.store.ListByUser(ctx, userID)
}

// Revoke removes a device so its next appearance classifies as new again.
func (r *Registry) Revoke(ctx context.Context, userID id.UserID, deviceID id.DeviceID) error {
	return r.store.Delete(ctx, userID, deviceID)
}
