package browser_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depezo/sflix-api/internal/browser"
	"github.com/depezo/sflix-api/internal/browser/browsertest"
)

func TestWithPageAlwaysClosesPage(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite()
	pool := browser.NewPool(site, 2)

	boom := errors.New("boom")
	err := pool.WithPage(context.Background(), func(ctx context.Context, page browser.Page) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = pool.WithPage(context.Background(), func(ctx context.Context, page browser.Page) error {
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, site.Opened())
	assert.Equal(t, 2, site.Closed())
}

func TestWithPageClosesOnPanic(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite()
	pool := browser.NewPool(site, 1)

	assert.Panics(t, func() {
		_ = pool.WithPage(context.Background(), func(ctx context.Context, page browser.Page) error {
			panic("navigator bug")
		})
	})
	assert.Equal(t, 1, site.Closed())

	// the slot was released, so a second acquire does not block
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.WithPage(ctx, func(context.Context, browser.Page) error { return nil }))
}

func TestPoolBoundsConcurrentPages(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite()
	pool := browser.NewPool(site, 2)

	var inFlight, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.WithPage(context.Background(), func(ctx context.Context, page browser.Page) error {
				cur := atomic.AddInt32(&inFlight, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Equal(t, 6, site.Closed())
}

func TestAcquireHonoursContextWhenFull(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite()
	pool := browser.NewPool(site, 1)

	_, release, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAcquireReleasesSlotWhenPageFails(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite()
	site.NewPageErr = errors.New("chromium missing")
	pool := browser.NewPool(site, 1)

	for i := 0; i < 3; i++ {
		_, _, err := pool.Acquire(context.Background())
		require.Error(t, err)
	}
}

func TestClosedPoolRejectsAcquire(t *testing.T) {
	t.Parallel()

	pool := browser.NewPool(browsertest.NewSite(), 0)
	require.NoError(t, pool.Close())

	_, _, err := pool.Acquire(context.Background())
	assert.ErrorIs(t, err, browser.ErrClosed)
}
