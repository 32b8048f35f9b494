package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"rentdom/internal/domain/availability"
)

const sampleCSV = "Объект,Месяц,Начало,Конец,Комментарий\n" +
	"Согласия 50,июля,10,15,\n" +
	"Ленинский 36 1 комната,Июль,1,3,оплачено\n" +
	"Неизвестный,июля,,4,\n"

type fakeFetcher struct {
	calls   atomic.Int32
	release chan struct{}
	text    string
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context) (string, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	return f.text, f.err
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(f Fetcher, clk *clock) *Cache {
	c := NewCache(f, availability.DefaultPropertyMapper(), 0)
	c.Now = clk.Now
	return c
}

func TestClientFetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	text, err := (&Client{URL: srv.URL}).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, sampleCSV, text)
}

func TestClientFetchNon2xxCarriesSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sheet is private", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := (&Client{URL: srv.URL}).Fetch(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	require.Contains(t, err.Error(), "403")
	require.Contains(t, err.Error(), "sheet is private")
}

func TestClientFetchDecodesWindows1251(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String(sampleCSV)
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(encoded))
	}))
	defer srv.Close()

	text, err := (&Client{URL: srv.URL, Charset: "windows-1251"}).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, sampleCSV, text)
}

func TestCacheGroupsParsedPeriods(t *testing.T) {
	clk := &clock{now: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)}
	cache := newTestCache(&fakeFetcher{text: sampleCSV}, clk)

	snap, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.RentPeriods, 2)
	require.Len(t, snap.Periods(3), 1)
	require.Equal(t, 10, snap.Periods(3)[0].StartDay)
	require.Len(t, snap.Periods(2), 1)
	require.Equal(t, clk.Now(), cache.UpdatedAt())
}

func TestCacheSingleFlight(t *testing.T) {
	clk := &clock{now: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)}
	f := &fakeFetcher{text: sampleCSV, release: make(chan struct{})}
	cache := newTestCache(f, clk)

	const callers = 16
	results := make([]availability.Snapshot, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Get(context.Background())
		}(i)
	}
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(f.release)
	wg.Wait()

	require.Equal(t, int32(1), f.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, results[0].RentPeriods, results[i].RentPeriods)
	}
}

func TestCacheSingleFlightSharesFailure(t *testing.T) {
	clk := &clock{now: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)}
	boom := errors.New("network down")
	f := &fakeFetcher{err: boom, release: make(chan struct{})}
	cache := newTestCache(f, clk)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = cache.Get(context.Background())
		}(i)
	}
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(f.release)
	wg.Wait()

	require.Equal(t, int32(1), f.calls.Load())
	for _, err := range errs {
		require.ErrorIs(t, err, boom)
	}
	require.True(t, cache.UpdatedAt().IsZero())
}

func TestCacheFreshness(t *testing.T) {
	clk := &clock{now: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)}
	f := &fakeFetcher{text: sampleCSV}
	cache := newTestCache(f, clk)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	clk.Advance(4*time.Minute + 59*time.Second)
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), f.calls.Load())

	clk.Advance(time.Second)
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(2), f.calls.Load())
}

func TestCacheFailureKeepsPreviousSlotButRetries(t *testing.T) {
	clk := &clock{now: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)}
	f := &fakeFetcher{text: sampleCSV}
	cache := newTestCache(f, clk)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	firstUpdate := cache.UpdatedAt()

	clk.Advance(DefaultTTL)
	f.err = errors.New("503")
	_, err = cache.Get(context.Background())
	require.Error(t, err)
	require.Equal(t, firstUpdate, cache.UpdatedAt())

	f.err = nil
	snap, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.RentPeriods, 2)
	require.Equal(t, int32(3), f.calls.Load())
}

func TestCacheCallerCancelDoesNotAbortFetch(t *testing.T) {
	clk := &clock{now: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)}
	f := &fakeFetcher{text: sampleCSV, release: make(chan struct{})}
	cache := newTestCache(f, clk)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	close(f.release)
	require.Eventually(t, func() bool { return !cache.UpdatedAt().IsZero() }, time.Second, time.Millisecond)

	snap, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.RentPeriods, 2)
	require.Equal(t, int32(1), f.calls.Load())
}

func TestCacheRefetchIgnoresAge(t *testing.T) {
	clk := &clock{now: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)}
	f := &fakeFetcher{text: sampleCSV}
	cache := newTestCache(f, clk)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	_, err = cache.Refetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(2), f.calls.Load())
}

func TestCacheStaleReaderReusesFinishedFlight(t *testing.T) {
	clk := &clock{now: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)}
	f := &fakeFetcher{text: sampleCSV}
	cache := newTestCache(f, clk)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	// a caller that read the slot as stale just before the previous flight stored it
	snap, err := cache.load(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, snap.RentPeriods, 2)
	require.Equal(t, int32(1), f.calls.Load())

	_, err = cache.load(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, int32(2), f.calls.Load())
}

func TestCacheReturnsCopies(t *testing.T) {
	clk := &clock{now: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)}
	cache := newTestCache(&fakeFetcher{text: sampleCSV}, clk)

	snap, err := cache.Get(context.Background())
	require.NoError(t, err)
	snap.RentPeriods[0].ID = "changed"
	delete(snap.ByProperty, 3)

	again, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Согласия 50", again.RentPeriods[0].ID)
	require.Len(t, again.Periods(3), 1)
}
