package browser_test

import (
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depezo/sflix-api/internal/browser"
	"github.com/depezo/sflix-api/internal/browser/browsertest"
)

func TestWaitForAnyReturnsFirstPresentSelector(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite().Handle("https://sflix.test/tv/x", `<div class="eps-item">1</div><div class="episode">1</div>`)
	page, err := site.NewPage(context.Background())
	require.NoError(t, err)
	require.NoError(t, page.Navigate(context.Background(), "https://sflix.test/tv/x", time.Second))

	sel, err := browser.WaitForAny(context.Background(), page, []string{".missing", ".episode", ".eps-item"}, time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, ".episode", sel)
}

func TestWaitForAnyTimesOut(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite().Handle("https://sflix.test/tv/x", `<div></div>`)
	page, _ := site.NewPage(context.Background())
	require.NoError(t, page.Navigate(context.Background(), "https://sflix.test/tv/x", time.Second))

	start := time.Now()
	_, err := browser.WaitForAny(context.Background(), page, []string{".eps-item"}, 30*time.Millisecond, 5*time.Millisecond)
	assert.ErrorIs(t, err, browser.ErrWaitTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWaitForAnySeesContentAppearAfterClick(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite().Handle("https://sflix.test/tv/x", `<a class="ss-item">Season 2</a>`)
	site.OnClick = func(url string, el *goquery.Selection) string {
		return `<div class="eps-item">Episode 1</div>`
	}
	page, _ := site.NewPage(context.Background())
	require.NoError(t, page.Navigate(context.Background(), "https://sflix.test/tv/x", time.Second))

	el, err := page.QueryOne(context.Background(), ".ss-item")
	require.NoError(t, err)
	require.NotNil(t, el)
	require.NoError(t, el.Click(context.Background()))

	_, err = browser.WaitForAny(context.Background(), page, []string{".eps-item"}, 50*time.Millisecond, time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Season 2"}, site.Clicks())
}

func TestNewLauncherRejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := browser.NewLauncher(browser.Options{Backend: "netscape"})
	assert.Error(t, err)

	l, err := browser.NewLauncher(browser.Options{Backend: "chromedp"})
	require.NoError(t, err)
	assert.IsType(t, &browser.ChromedpLauncher{}, l)

	l, err = browser.NewLauncher(browser.Options{})
	require.NoError(t, err)
	assert.IsType(t, &browser.PlaywrightLauncher{}, l)
}
