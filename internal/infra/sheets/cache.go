package sheets

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"rentdom/internal/domain/availability"
)

const DefaultTTL = 5 * time.Minute

const flightKey = "sheet"

// Fetcher returns the raw CSV document.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Recorder receives cache and fetch outcomes. *obs.Metrics satisfies it.
type Recorder interface {
	SheetFetch(err error)
	SheetRows(parsed, skipped int)
	CacheLookup(outcome string)
}

// Cache keeps the last parsed snapshot for TTL and lets at most one download run at a time.
// A download, once started, runs to completion even if every caller has gone away.
type Cache struct {
	Fetcher Fetcher
	Mapper  availability.PropertyMapper
	TTL     time.Duration
	Now     func() time.Time
	Logger  *slog.Logger
	Metrics Recorder

	mu        sync.RWMutex
	snapshot  availability.Snapshot
	updatedAt time.Time
	group     singleflight.Group
}

func NewCache(fetcher Fetcher, mapper availability.PropertyMapper, ttl time.Duration) *Cache {
	if len(mapper.Entries()) == 0 {
		mapper = availability.DefaultPropertyMapper()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{Fetcher: fetcher, Mapper: mapper, TTL: ttl}
}

// Get returns the cached snapshot while it is younger than TTL, otherwise joins or starts
// the shared download. A failed download leaves the previous slot in place.
func (c *Cache) Get(ctx context.Context) (availability.Snapshot, error) {
	if snap, ok := c.fresh(); ok {
		c.record("hit")
		return snap, nil
	}
	return c.load(ctx, false)
}

// Refetch downloads regardless of age. Concurrent callers still share one download.
func (c *Cache) Refetch(ctx context.Context) (availability.Snapshot, error) {
	return c.load(ctx, true)
}

// UpdatedAt is the time of the last successful download, zero before the first one.
func (c *Cache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// flight is what one shared load hands its callers. Cached is set when a flight that
// started on a stale read found the slot refreshed by the flight before it.
type flight struct {
	snap   availability.Snapshot
	cached bool
}

func (c *Cache) load(ctx context.Context, force bool) (availability.Snapshot, error) {
	ch := c.group.DoChan(flightKey, func() (any, error) {
		if !force {
			if snap, ok := c.fresh(); ok {
				return flight{snap: snap, cached: true}, nil
			}
		}
		snap, err := c.download(context.WithoutCancel(ctx))
		return flight{snap: snap}, err
	})
	select {
	case <-ctx.Done():
		return availability.Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.record(flightOutcome(res.Shared, false))
			return availability.Snapshot{}, res.Err
		}
		f := res.Val.(flight)
		c.record(flightOutcome(res.Shared, f.cached))
		return f.snap.Clone(), nil
	}
}

func flightOutcome(shared, cached bool) string {
	switch {
	case cached:
		return "hit"
	case shared:
		return "shared"
	default:
		return "fetch"
	}
}

func (c *Cache) download(ctx context.Context) (availability.Snapshot, error) {
	started := c.now()
	c.logger().DebugContext(ctx, "availability fetch started")

	text, err := c.Fetcher.Fetch(ctx)
	if err == nil {
		var snap availability.Snapshot
		snap, err = c.parse(ctx, text)
		if err == nil {
			c.mu.Lock()
			c.snapshot = snap
			c.updatedAt = c.now()
			c.mu.Unlock()
			c.fetched(nil)
			c.logger().InfoContext(ctx, "availability fetched",
				"periods", len(snap.RentPeriods),
				"properties", len(snap.ByProperty),
				"duration", time.Since(started),
			)
			return snap, nil
		}
	}
	c.fetched(err)
	c.logger().ErrorContext(ctx, "availability fetch failed", "error", err)
	return availability.Snapshot{}, err
}

func (c *Cache) parse(ctx context.Context, text string) (availability.Snapshot, error) {
	res, err := availability.Parse(text)
	if err != nil {
		return availability.Snapshot{}, err
	}
	for _, skip := range res.Skipped {
		c.logger().WarnContext(ctx, "spreadsheet row skipped", "line", skip.Line, "reason", skip.Reason, "row", skip.Raw)
	}
	at := c.now()
	for _, p := range res.Periods {
		if p.Clipped(at.Year()) {
			c.logger().WarnContext(ctx, "spreadsheet row clipped to its month", "id", p.ID, "month", p.Month, "start", p.StartDay, "end", p.EndDay)
		}
	}
	if c.Metrics != nil {
		c.Metrics.SheetRows(len(res.Periods), len(res.Skipped))
	}
	return availability.NewSnapshot(res.Periods, c.Mapper, at), nil
}

func (c *Cache) fresh() (availability.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.updatedAt.IsZero() || c.now().Sub(c.updatedAt) >= c.TTL {
		return availability.Snapshot{}, false
	}
	return c.snapshot.Clone(), true
}

func (c *Cache) record(outcome string) {
	if c.Metrics != nil {
		c.Metrics.CacheLookup(outcome)
	}
}

func (c *Cache) fetched(err error) {
	if c.Metrics != nil {
		c.Metrics.SheetFetch(err)
	}
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Cache) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
