package inquiry

import (
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

const (
	DefaultSubmissionLimit  = 3
	DefaultSubmissionWindow = 24 * time.Hour
)

// Decision is the result of one rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// SlidingWindow allows at most Limit submissions in any rolling Window.
type SlidingWindow struct {
	Limit  int
	Window time.Duration
}

func DefaultWindow() SlidingWindow {
	return SlidingWindow{Limit: DefaultSubmissionLimit, Window: DefaultSubmissionWindow}
}

// Prune drops attempts that left the window and returns the rest in ascending order.
func (w SlidingWindow) Prune(history []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-w.Window)
	kept := make([]time.Time, 0, len(history))
	for _, t := range history {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Before(kept[j]) })
	return kept
}

// Decide registers an attempt at now when allowed. The returned history replaces the stored one.
func (w SlidingWindow) Decide(history []time.Time, now time.Time) ([]time.Time, Decision) {
	kept := w.Prune(history, now)
	if len(kept) >= w.Limit {
		return kept, Decision{Allowed: false, Remaining: 0, ResetAt: kept[0].Add(w.Window)}
	}
	kept = append(kept, now)
	return kept, Decision{Allowed: true, Remaining: w.Limit - len(kept), ResetAt: kept[0].Add(w.Window)}
}

// Remaining counts attempts still available at now without registering one.
func (w SlidingWindow) Remaining(history []time.Time, now time.Time) int {
	left := w.Limit - len(w.Prune(history, now))
	if left < 0 {
		return 0
	}
	return left
}

// ClientKey fingerprints a submitter from whatever identifiers the transport has.
// Raw identifiers never reach the limiter store.
func ClientKey(parts ...string) string {
	sum := blake2b.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:16])
}
