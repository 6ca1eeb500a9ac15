package trust

import (
	"sync"
	"time"

	id "github.com/belgacembalti/trustgate/pkg/domain"
)

// failureWindow tracks recent failure timestamps per identity for the
// consecutive-failure escalation rule. One escalation fires per filled
// window; the window resets when it fires, so five failures produce one
// alert rather than one per failure past the threshold.
//
// State is in-process. Failure streaks are short-lived by nature and an
// engine restart merely restarts the count, which fails open on alerting
// but never on scoring.
type failureWindow struct {
	mu       sync.Mutex
	window   time.Duration
	limit    int
	failures map[id.UserID][]time.Time
}

func newFailureWindow(window time.Duration, limit int) *failureWindow {
	return &failureWindow{
		window:   window,
		limit:    limit,
		failures: make(map[id.UserID][]time.Time),
	}
}

// record adds a failure at now and reports whether the streak just reached
// the escalation limit.
func (w *failureWindow) record(userID id.UserID, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-w.window)
	kept := w.failures[userID][:0]
	for _, t := range w.failures[userID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)

	if len(kept) >= w.limit {
		delete(w.failures, userID)
		return true
	}
	w.failures[userID] = kept
	return false
}

// clear wipes an identity's streak after a successful authentication.
func (w *failureWindow) clear(userID id.UserID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.failures, userID)
}
