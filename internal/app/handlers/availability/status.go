package availability

import (
	"context"
	"log/slog"
	"time"

	"rentdom/internal/app/policies"
	domainavailability "rentdom/internal/domain/availability"
	domainlistings "rentdom/internal/domain/listings"
)

// StatusResolver turns the cache outcome into the tagged status the picker consumes.
// Wait bounds how long a request follows an in-flight fetch; when it elapses the status
// is Loading and the fetch keeps running for later requests.
type StatusResolver struct {
	Source policies.AvailabilitySource
	Wait   time.Duration
	Now    func() time.Time
	Logger *slog.Logger
}

// Snapshot returns the cached data together with the status kind it implies.
func (r *StatusResolver) Snapshot(ctx context.Context) (domainavailability.Snapshot, domainavailability.Status) {
	waitCtx := ctx
	if r.Wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, r.Wait)
		defer cancel()
	}

	snap, err := r.Source.Get(waitCtx)
	if err == nil {
		return snap, domainavailability.Loaded(nil)
	}
	if waitCtx.Err() != nil {
		return domainavailability.Snapshot{}, domainavailability.Loading()
	}
	if r.Logger != nil {
		r.Logger.WarnContext(ctx, "availability unavailable, failing open", "error", err)
	}
	return domainavailability.Snapshot{}, domainavailability.Unavailable(err)
}

// Status resolves the unavailable dates of one property. Dates are anchored to the
// current year of the injected clock.
func (r *StatusResolver) Status(ctx context.Context, id domainlistings.PropertyID) domainavailability.Status {
	snap, st := r.Snapshot(ctx)
	if !st.Known() {
		return st
	}
	return domainavailability.Loaded(snap.UnavailableDates(id, r.now().Year()))
}

func (r *StatusResolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
