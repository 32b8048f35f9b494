package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainavailability "rentdom/internal/domain/availability"
	"rentdom/internal/domain/shared/daterange"
)

type stubSource struct {
	snap    domainavailability.Snapshot
	err     error
	release chan struct{}
}

func (s *stubSource) Get(ctx context.Context) (domainavailability.Snapshot, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return domainavailability.Snapshot{}, ctx.Err()
		}
	}
	if s.err != nil {
		return domainavailability.Snapshot{}, s.err
	}
	return s.snap.Clone(), nil
}

func (s *stubSource) Refetch(ctx context.Context) (domainavailability.Snapshot, error) {
	return s.Get(ctx)
}

func fixedClock() time.Time {
	return time.Date(2025, time.July, 12, 10, 0, 0, 0, time.UTC)
}

func TestStatusLoadedAnchorsToClockYear(t *testing.T) {
	periods := []domainavailability.RentPeriod{
		{ID: "Согласия 50", Month: "июля", StartDay: 10, EndDay: 11},
		{ID: "Согласия 50", Month: "июня", StartDay: 30, EndDay: 45},
	}
	src := &stubSource{snap: domainavailability.NewSnapshot(periods, domainavailability.DefaultPropertyMapper(), fixedClock())}
	r := &StatusResolver{Source: src, Wait: time.Second, Now: fixedClock}

	st := r.Status(context.Background(), 3)
	require.Equal(t, domainavailability.StatusLoaded, st.Kind())
	require.Equal(t, []time.Time{
		daterange.Date(2025, time.June, 30),
		daterange.Date(2025, time.July, 10),
		daterange.Date(2025, time.July, 11),
	}, st.Dates())

	require.Empty(t, r.Status(context.Background(), 1).Dates())
	require.Equal(t, domainavailability.StatusLoaded, r.Status(context.Background(), 1).Kind())
}

func TestStatusLoadingWhenFetchOutlivesWait(t *testing.T) {
	src := &stubSource{release: make(chan struct{})}
	defer close(src.release)
	r := &StatusResolver{Source: src, Wait: 10 * time.Millisecond, Now: fixedClock}

	started := time.Now()
	st := r.Status(context.Background(), 3)
	require.Equal(t, domainavailability.StatusLoading, st.Kind())
	require.Empty(t, st.Dates())
	require.NoError(t, st.Err())
	require.Less(t, time.Since(started), 5*time.Second)

	snap, st := r.Snapshot(context.Background())
	require.Equal(t, domainavailability.StatusLoading, st.Kind())
	require.Empty(t, snap.RentPeriods)
}

func TestStatusUnavailableWhenFetchFails(t *testing.T) {
	boom := errors.New("sheet export returned 500")
	r := &StatusResolver{Source: &stubSource{err: boom}, Wait: time.Second, Now: fixedClock}

	st := r.Status(context.Background(), 3)
	require.Equal(t, domainavailability.StatusUnavailable, st.Kind())
	require.Empty(t, st.Dates())
	require.ErrorIs(t, st.Err(), boom)
	require.False(t, st.Known())
}

func TestStatusUnavailableWithoutWait(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	r := &StatusResolver{Source: &stubSource{err: boom}}

	_, st := r.Snapshot(context.Background())
	require.Equal(t, domainavailability.StatusUnavailable, st.Kind())
	require.ErrorIs(t, st.Err(), boom)
}
