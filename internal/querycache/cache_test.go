package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	d := domain.MustParseDate("2025-03-10")

	assert.Equal(t, "menuCatalog", MenuCatalogKey().String())
	assert.Equal(t, "roster:2025-03-10", RosterKey(d).String())
	assert.Equal(t, RosterKey(d), RosterKey(domain.NewDate(2025, time.March, 10)))
	assert.NotEqual(t, RosterKey(d), RosterKey(d.AddDays(1)))
	assert.Equal(t, KindRoster, RosterKey(d).Kind())
}

func TestFetchCachesValue(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"a"}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Fetch(context.Background(), c, MenuCatalogKey(), fetch)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, v)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchCachesNilRoster(t *testing.T) {
	c := New(0)
	key := RosterKey(domain.MustParseDate("2025-03-10"))
	var calls atomic.Int32

	for i := 0; i < 2; i++ {
		v, err := Fetch(context.Background(), c, key, func(ctx context.Context) (*domain.DailyRoster, error) {
			calls.Add(1)
			return nil, nil
		})
		require.NoError(t, err)
		assert.Nil(t, v)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestErrorsAreNotCachedAndStayPerKey(t *testing.T) {
	c := New(time.Minute)
	d := domain.MustParseDate("2025-03-10")
	boom := errors.New("boom")

	_, err := Fetch(context.Background(), c, RosterKey(d), func(ctx context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	other, err := Fetch(context.Background(), c, RosterKey(d.AddDays(1)), func(ctx context.Context) (string, error) {
		return "tomorrow", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "tomorrow", other)

	v, err := Fetch(context.Background(), c, RosterKey(d), func(ctx context.Context) (string, error) {
		return "today", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "today", v)
}

func TestTTLExpiry(t *testing.T) {
	c := New(time.Minute)
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	n := 0
	fetch := func(ctx context.Context) (int, error) {
		n++
		return n, nil
	}

	v, _ := Fetch(context.Background(), c, MenuCatalogKey(), fetch)
	assert.Equal(t, 1, v)

	now = now.Add(30 * time.Second)
	v, _ = Fetch(context.Background(), c, MenuCatalogKey(), fetch)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	v, _ = Fetch(context.Background(), c, MenuCatalogKey(), fetch)
	assert.Equal(t, 2, v)
}

func TestInvalidate(t *testing.T) {
	c := New(0)
	d := domain.MustParseDate("2025-03-10")

	n := 0
	fetch := func(ctx context.Context) (int, error) {
		n++
		return n, nil
	}

	_, _ = Fetch(context.Background(), c, RosterKey(d), fetch)
	_, _ = Fetch(context.Background(), c, RosterKey(d.AddDays(1)), fetch)
	_, _ = Fetch(context.Background(), c, MenuCatalogKey(), fetch)
	assert.Equal(t, 3, c.Len())

	c.Invalidate(RosterKey(d))
	_, ok := c.lookup(RosterKey(d))
	assert.False(t, ok)
	_, ok = c.lookup(RosterKey(d.AddDays(1)))
	assert.True(t, ok)

	c.InvalidateKind(KindRoster)
	assert.Equal(t, 1, c.Len())
	_, ok = c.lookup(MenuCatalogKey())
	assert.True(t, ok)
}

func TestConcurrentFetchesAreCoalesced(t *testing.T) {
	c := New(0)
	release := make(chan struct{})
	var calls atomic.Int32

	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "menu", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Fetch(context.Background(), c, MenuCatalogKey(), fetch)
		}(i)
	}

	// 等所有 goroutine 都进入 singleflight
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "menu", r)
	}
}

func TestInvalidateDuringFetchDropsStaleResult(t *testing.T) {
	c := New(0)
	key := RosterKey(domain.MustParseDate("2025-03-10"))

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan string)

	go func() {
		v, _ := Fetch(context.Background(), c, key, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "before save", nil
		})
		done <- v
	}()

	<-started
	c.Invalidate(key)

	// 失效之后的请求不会合并到旧请求上
	v, err := Fetch(context.Background(), c, key, func(ctx context.Context) (string, error) {
		return "after save", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "after save", v)

	close(release)
	assert.Equal(t, "before save", <-done)

	cached, ok := c.lookup(key)
	require.True(t, ok)
	assert.Equal(t, "after save", cached)
}

func TestInvalidateKindDuringFetch(t *testing.T) {
	c := New(0)
	key := RosterKey(domain.MustParseDate("2025-03-10"))

	_, err := Fetch(context.Background(), c, key, func(ctx context.Context) (string, error) {
		c.InvalidateKind(KindRoster)
		return "stale", nil
	})
	require.NoError(t, err)

	_, ok := c.lookup(key)
	assert.False(t, ok)
}
