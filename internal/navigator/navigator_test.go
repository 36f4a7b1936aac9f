package navigator_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depezo/sflix-api/internal/browser"
	"github.com/depezo/sflix-api/internal/browser/browsertest"
	"github.com/depezo/sflix-api/internal/models"
	"github.com/depezo/sflix-api/internal/navigator"
)

const (
	origin    = "https://sflix.test"
	seriesURL = origin + "/tv/free-show-hd-100"
	movieURL  = origin + "/movie/free-film-hd-200"
)

func testConfig() navigator.Config {
	return navigator.Config{
		NavigationTimeout: time.Second,
		SettleTimeout:     20 * time.Millisecond,
		ClickTimeout:      20 * time.Millisecond,
		ServerTimeout:     20 * time.Millisecond,
		PollInterval:      5 * time.Millisecond,
	}
}

// seriesPage renders a picker with two seasons and the rows of the active one
func seriesPage(active, episodes int, extra string) string {
	var rows strings.Builder
	for i := 1; i <= episodes; i++ {
		fmt.Fprintf(&rows, `<div class="eps-item" data-episode="%d"><span class="ep-name">S%d Episode %d</span></div>`, i, active, i)
	}
	return fmt.Sprintf(`<html><body><div class="detail_page">
		<div class="ss-list">
			<a class="ss-item" data-season="1">Season 1</a>
			<a class="ss-item" data-season="2">Season 2</a>
		</div>
		<div class="eps-list">%s</div>
		%s
	</div></body></html>`, rows.String(), extra)
}

const serverBlock = `<div class="film-servers"><ul>
	<li><a class="link-item active" data-id="10"><span>Server</span> <span>UpCloud</span></a></li>
	<li><a class="link-item" data-id="11"><span>Server</span> <span>Vidcloud</span></a></li>
	<li><a class="link-item" data-id="12">Share</a></li>
</ul></div>
<iframe class="watching_iframe" src="https://embed.test/e/10"></iframe>`

// showSite serves a series whose season 1 has 3 episodes and season 2 has 2
func showSite() *browsertest.Site {
	site := browsertest.NewSite().Handle(seriesURL, seriesPage(1, 3, ""))
	site.OnClick = func(_ string, el *goquery.Selection) string {
		if s := el.AttrOr("data-season", ""); s != "" {
			if s == "2" {
				return seriesPage(2, 2, "")
			}
			return seriesPage(1, 3, "")
		}
		if el.AttrOr("data-episode", "") != "" {
			return seriesPage(1, 3, serverBlock)
		}
		return ""
	}
	return site
}

func newNavigator(site *browsertest.Site) *navigator.Navigator {
	return navigator.New(browser.NewPool(site, 2), origin, testConfig())
}

func TestSeasonsCountsEpisodesPerSeason(t *testing.T) {
	t.Parallel()

	site := showSite()
	seasons, err := newNavigator(site).Seasons(context.Background(), seriesURL)
	require.NoError(t, err)

	assert.Equal(t, []models.Season{
		{SeasonNumber: 1, SeasonName: "Season 1", EpisodeCount: 3},
		{SeasonNumber: 2, SeasonName: "Season 2", EpisodeCount: 2},
	}, seasons)
	assert.Equal(t, []string{"Season 1", "Season 2"}, site.Clicks())
	assert.Equal(t, 1, site.Opened())
	assert.Equal(t, 1, site.Closed())
}

func TestSeasonEpisodesSelectsRequestedSeason(t *testing.T) {
	t.Parallel()

	episodes, err := newNavigator(showSite()).SeasonEpisodes(context.Background(), seriesURL, 2)
	require.NoError(t, err)

	require.Len(t, episodes, 2)
	assert.Equal(t, 1, episodes[0].EpisodeNumber)
	assert.Equal(t, "S2 Episode 1", episodes[0].Title)
	assert.Equal(t, 2, episodes[1].EpisodeNumber)
}

func TestSeasonEpisodesUnknownSeasonReadsVisibleRows(t *testing.T) {
	t.Parallel()

	site := showSite()
	episodes, err := newNavigator(site).SeasonEpisodes(context.Background(), seriesURL, 7)
	require.NoError(t, err)

	assert.Len(t, episodes, 3)
	assert.Empty(t, site.Clicks())
}

func TestSeasonsWithEpisodesReusesOnePage(t *testing.T) {
	t.Parallel()

	site := showSite()
	seasons, err := newNavigator(site).SeasonsWithEpisodes(context.Background(), seriesURL)
	require.NoError(t, err)

	require.Len(t, seasons, 2)
	assert.Equal(t, 3, seasons[0].EpisodeCount)
	assert.Len(t, seasons[0].Episodes, 3)
	assert.Equal(t, 2, seasons[1].EpisodeCount)
	assert.Equal(t, "S2 Episode 2", seasons[1].Episodes[1].Title)
	assert.Equal(t, 1, site.Opened())
}

func TestEpisodeServersSelectsEpisodeAndScans(t *testing.T) {
	t.Parallel()

	site := showSite()
	res, err := newNavigator(site).EpisodeServers(context.Background(), seriesURL, 1, 2)
	require.NoError(t, err)

	require.Len(t, res.Servers, 2)
	assert.Equal(t, "UpCloud", res.Servers[0].Name)
	assert.Equal(t, "10", res.Servers[0].ID)
	assert.True(t, res.Servers[0].IsActive)
	assert.Equal(t, "Vidcloud", res.Servers[1].Name)
	assert.Equal(t, "https://embed.test/e/10", res.Iframe)
	require.NotNil(t, res.Diagnostics)
	assert.Equal(t, seriesURL, res.Diagnostics.URL)
	assert.Equal(t, []string{"Season 1", "S1 Episode 2"}, site.Clicks())
}

func TestEpisodeServersFallsBackToPageContent(t *testing.T) {
	t.Parallel()

	site := showSite()
	site.EvaluateErr = errors.New("script blocked")

	res, err := newNavigator(site).EpisodeServers(context.Background(), seriesURL, 1, 1)
	require.NoError(t, err)

	assert.Len(t, res.Servers, 2)
	require.NotNil(t, res.Diagnostics)
	found := false
	for _, e := range res.Diagnostics.Errors {
		if strings.HasPrefix(e, "server scan:") {
			found = true
		}
	}
	assert.True(t, found, "evaluation failure should be recorded: %v", res.Diagnostics.Errors)
}

func TestEpisodeServersNoServers(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite().Handle(seriesURL, seriesPage(1, 1, ""))
	res, err := newNavigator(site).EpisodeServers(context.Background(), seriesURL, 1, 1)
	require.NoError(t, err)

	assert.NotNil(t, res.Servers)
	assert.Empty(t, res.Servers)
	assert.Equal(t, "", res.Iframe)
}

func TestMovieServersOpensServersTab(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite().Handle(movieURL, `<html><body><div class="detail_page">
		<ul class="nav-tabs"><li><a href="#servers">Servers</a></li></ul>
	</div></body></html>`)
	site.OnClick = func(_ string, el *goquery.Selection) string {
		if el.AttrOr("href", "") == "#servers" {
			return `<html><body><div class="detail_page">` + serverBlock + `</div></body></html>`
		}
		return ""
	}

	res, err := newNavigator(site).MovieServers(context.Background(), movieURL)
	require.NoError(t, err)

	assert.Len(t, res.Servers, 2)
	assert.Equal(t, []string{"Servers"}, site.Clicks())
}

func TestNavigationFailureReleasesPage(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite()
	site.NavigateErr = errors.New("net::ERR_TIMED_OUT")

	_, err := newNavigator(site).Seasons(context.Background(), seriesURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, browser.ErrNavigation)
	assert.Equal(t, site.Opened(), site.Closed())
}

type reported struct {
	op   string
	diag models.Diagnostics
}

func reportingNavigator(site *browsertest.Site, out *[]reported) *navigator.Navigator {
	cfg := testConfig()
	cfg.Report = func(op string, diag models.Diagnostics) {
		*out = append(*out, reported{op: op, diag: diag})
	}
	return navigator.New(browser.NewPool(site, 1), origin, cfg)
}

func TestSeasonsReportsDiagnosticsOnFailure(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite()
	site.NavigateErr = errors.New("net::ERR_TIMED_OUT")

	var got []reported
	_, err := reportingNavigator(site, &got).Seasons(context.Background(), seriesURL)
	require.Error(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "seasons", got[0].op)
	assert.Equal(t, seriesURL, got[0].diag.URL)
	require.Len(t, got[0].diag.Errors, 1)
	assert.Contains(t, got[0].diag.Errors[0], "ERR_TIMED_OUT")
}

func TestSeasonsReportsSelectorCountsAndSnapshot(t *testing.T) {
	t.Parallel()

	var got []reported
	_, err := reportingNavigator(showSite(), &got).Seasons(context.Background(), seriesURL)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].diag.SelectorCounts[".ss-list .ss-item"])
	assert.Contains(t, got[0].diag.Snapshot, "ss-list")
	assert.Empty(t, got[0].diag.Errors)
}

func TestSeasonsWithEpisodesReportsFailure(t *testing.T) {
	t.Parallel()

	site := browsertest.NewSite()
	var got []reported
	_, err := reportingNavigator(site, &got).SeasonsWithEpisodes(context.Background(), seriesURL)
	require.Error(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "seasons with episodes", got[0].op)
	assert.NotEmpty(t, got[0].diag.Errors)
}
