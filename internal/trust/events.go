package trust

import "time"

// EventKind tags the authentication outcome being scored.
type EventKind string

const (
	// EventSuccess is a successful primary (or completed step-up) auth.
	EventSuccess EventKind = "success"
	// EventFailure is a failed credential check.
	EventFailure EventKind = "failure"
	// EventOTPFailure is a failed step-up code validation.
	EventOTPFailure EventKind = "otp_failure"
)

// Event carries one authentication outcome and its request metadata into
// the scoring engine. Timestamps come from the request, not the wall clock,
// so every decision in one attempt agrees on "now".
type Event struct {
	Kind        EventKind
	IP          string
	Fingerprint string
	At          time.Time

	// NewDevice marks a success from a fingerprint seen for the first time.
	NewDevice bool
	// UnusualLocation marks a geo anomaly flagged by the caller.
	UnusualLocation bool
}

// delta returns the signed score adjustment for the event.
func (e Event) delta() int {
	switch e.Kind {
	case EventSuccess:
		if e.NewDevice || e.UnusualLocation {
			return -5
		}
		return 0
	case EventFailure:
		return -10
	case EventOTPFailure:
		return -15
	}
	return 0
}

// isFailure reports whether the event counts toward the rolling
// consecutive-failure window.
func (e Event) isFailure() bool {
	return e.Kind == EventFailure || e.Kind == EventOTPFailure
}
