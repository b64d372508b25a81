package quotecache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"marketdata/internal/quote"
)

func q(symbol string, price int64) quote.Quote {
	return quote.Quote{Symbol: symbol, Price: decimal.NewFromInt(price), ResolvedAt: time.Now()}
}

func TestFetch_MissFillsThenHits(t *testing.T) {
	t.Parallel()
	c := &Cache{TTL: time.Minute}
	var calls atomic.Int32
	fill := func() (quote.Quote, error) {
		calls.Add(1)
		return q("AAPL", 175), nil
	}

	got, err := c.Fetch("stock:AAPL", fill)
	require.NoError(t, err)
	require.Equal(t, "AAPL", got.Symbol)

	got, err = c.Fetch("stock:AAPL", fill)
	require.NoError(t, err)
	require.Equal(t, "AAPL", got.Symbol)
	require.Equal(t, int32(1), calls.Load(), "second fetch must be served from cache")
}

func TestFetch_ExpiredEntryRefetches(t *testing.T) {
	t.Parallel()
	c := &Cache{TTL: time.Nanosecond}
	var calls atomic.Int32
	fill := func() (quote.Quote, error) {
		calls.Add(1)
		return q("AAPL", 175), nil
	}

	_, err := c.Fetch("stock:AAPL", fill)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = c.Fetch("stock:AAPL", fill)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestFetch_DisabledCachePassesThrough(t *testing.T) {
	t.Parallel()
	var nilCache *Cache
	var calls atomic.Int32
	fill := func() (quote.Quote, error) {
		calls.Add(1)
		return q("AAPL", 175), nil
	}

	for i := 0; i < 3; i++ {
		_, err := nilCache.Fetch("stock:AAPL", fill)
		require.NoError(t, err)
	}
	require.Equal(t, int32(3), calls.Load())
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()
	c := &Cache{TTL: time.Minute}
	boom := errors.New("provider down")
	var calls atomic.Int32

	_, err := c.Fetch("stock:AAPL", func() (quote.Quote, error) {
		calls.Add(1)
		return quote.Quote{}, boom
	})
	require.ErrorIs(t, err, boom)

	got, err := c.Fetch("stock:AAPL", func() (quote.Quote, error) {
		calls.Add(1)
		return q("AAPL", 175), nil
	})
	require.NoError(t, err)
	require.Equal(t, "AAPL", got.Symbol)
	require.Equal(t, int32(2), calls.Load())
}

func TestFetch_ConcurrentMissesCoalesce(t *testing.T) {
	t.Parallel()
	c := &Cache{TTL: time.Minute}
	var calls atomic.Int32
	release := make(chan struct{})
	fill := func() (quote.Quote, error) {
		calls.Add(1)
		<-release
		return q("AAPL", 175), nil
	}

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			got, err := c.Fetch("stock:AAPL", fill)
			require.NoError(t, err)
			require.Equal(t, "AAPL", got.Symbol)
		}()
	}
	time.Sleep(10 * time.Millisecond) // let the goroutines pile up
	close(release)
	wg.Wait()
	require.Equal(t, int32(1), calls.Load(), "concurrent misses for one key must coalesce")
}

func TestPut_InvalidQuotesNeverCached(t *testing.T) {
	t.Parallel()
	c := &Cache{TTL: time.Minute}
	c.Put("stock:ZERO", quote.Quote{Symbol: "ZERO"})
	_, ok := c.Get("stock:ZERO")
	require.False(t, ok)
}

func TestPut_EvictsOverMaxItems(t *testing.T) {
	t.Parallel()
	c := &Cache{TTL: time.Minute, MaxItems: 2}
	c.Put("a", q("A", 1))
	c.Put("b", q("B", 2))
	c.Put("c", q("C", 3))

	c.mu.RLock()
	size := len(c.items)
	c.mu.RUnlock()
	require.LessOrEqual(t, size, 2)
}


