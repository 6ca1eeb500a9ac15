package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the auth core. One instance
// is created in main and shared; tests construct their own against a fresh
// registry to avoid duplicate registration panics.
type Metrics struct {
	LoginAttempts     *prometheus.CounterVec
	StepUpsRequired   prometheus.Counter
	OTPIssued         prometheus.Counter
	OTPValidations    *prometheus.CounterVec
	DevicesRegistered prometheus.Counter
	AlertsRecorded    *prometheus.CounterVec
	AlertsDeduped     prometheus.Counter
	TrustScoreUpdates prometheus.Histogram
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all metrics on the given registerer.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgate_login_attempts_total",
			Help: "Authentication attempts by final outcome",
		}, []string{"outcome"}),
		StepUpsRequired: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustgate_step_ups_required_total",
			Help: "Logins forced into OTP step-up by the trust engine",
		}),
		OTPIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustgate_otp_issued_total",
			Help: "OTP challenges issued",
		}),
		OTPValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgate_otp_validations_total",
			Help: "OTP validation attempts by result",
		}, []string{"result"}),
		DevicesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustgate_devices_registered_total",
			Help: "New device fingerprints recorded",
		}),
		AlertsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgate_security_alerts_total",
			Help: "Security alerts recorded by type",
		}, []string{"type"}),
		AlertsDeduped: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustgate_security_alerts_deduped_total",
			Help: "Alerts merged into an existing unresolved record",
		}),
		TrustScoreUpdates: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustgate_trust_score_delta",
			Help:    "Magnitude of applied trust score deltas",
			Buckets: []float64{0, 5, 10, 15, 25, 50},
		}),
	}
}
