package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rentdom/internal/app/middleware"
	appoutbox "rentdom/internal/app/outbox"
	"rentdom/internal/domain/inquiry"
	domainlistings "rentdom/internal/domain/listings"
)

func catalogFixture() []domainlistings.Property {
	return []domainlistings.Property{
		{ID: 1, Type: "apartment", Title: "Двухкомнатная", Price: 4500, Available: true, Amenities: []string{"Wi-Fi"}},
		{ID: 2, Type: "room", Title: "Комната", Price: 3000, Available: false},
		{ID: 3, Type: "apartment-studio", Title: "Студия", Price: 3500, Available: true},
	}
}

func TestCatalogSearchKeepsDocumentOrder(t *testing.T) {
	repo := NewCatalogRepository(catalogFixture()...)
	ctx := context.Background()

	all, err := repo.Search(ctx, domainlistings.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, domainlistings.PropertyID(1), all[0].ID)
	require.Equal(t, domainlistings.PropertyID(3), all[2].ID)

	available, err := repo.Search(ctx, domainlistings.Filter{Category: domainlistings.FilterAvailable})
	require.NoError(t, err)
	require.Len(t, available, 2)

	apartments, err := repo.Search(ctx, domainlistings.Filter{Category: "apartment"})
	require.NoError(t, err)
	require.Len(t, apartments, 2)
}

func TestCatalogByIDReturnsCopy(t *testing.T) {
	repo := NewCatalogRepository(catalogFixture()...)
	ctx := context.Background()

	p, err := repo.ByID(ctx, 1)
	require.NoError(t, err)
	p.Amenities[0] = "changed"

	again, err := repo.ByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Wi-Fi", again.Amenities[0])

	_, err = repo.ByID(ctx, 42)
	require.ErrorIs(t, err, domainlistings.ErrPropertyNotFound)
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	l := NewRateLimiter(inquiry.DefaultWindow())
	ctx := context.Background()
	start := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, "client", start.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, 2-i, d.Remaining)
	}
	d, err := l.Allow(ctx, "client", start.Add(3*time.Hour))
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, start.Add(24*time.Hour), d.ResetAt)

	other, err := l.Allow(ctx, "someone-else", start.Add(3*time.Hour))
	require.NoError(t, err)
	require.True(t, other.Allowed)

	left, err := l.Remaining(ctx, "client", start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, left)

	d, err = l.Allow(ctx, "client", start.Add(24*time.Hour))
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestIdempotencyStoreExpires(t *testing.T) {
	now := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)
	s := NewIdempotencyStore(time.Hour, func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, middleware.IdempotencyRecord{Key: "k", Payload: []byte(`{}`), OccurredAt: now}))
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(time.Hour)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

type recordingPublisher struct {
	fail      bool
	published []string
}

func (p *recordingPublisher) Publish(_ context.Context, rec appoutbox.EventRecord) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.published = append(p.published, rec.Name)
	return nil
}

func TestOutboxFlushPublishesAndRetainsFailures(t *testing.T) {
	pub := &recordingPublisher{fail: true}
	box := NewOutbox(pub)
	ctx := context.Background()

	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "inquiry.submitted"}))
	require.Error(t, box.Flush(ctx))
	require.Equal(t, 1, box.Pending())

	pub.fail = false
	require.NoError(t, box.Flush(ctx))
	require.Equal(t, 0, box.Pending())
	require.Equal(t, []string{"inquiry.submitted"}, pub.published)
}
