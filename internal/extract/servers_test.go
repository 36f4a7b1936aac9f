package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depezo/sflix-api/internal/models"
)

func TestServerName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "UpCloud", ServerName("  Server\n   UpCloud "))
	assert.Equal(t, "Vidcloud", ServerName("SERVER Vidcloud"))
	assert.Equal(t, "MegaCloud", ServerName("MegaCloud"))
	assert.Equal(t, "", ServerName("Server"))
}

func TestValidServerName(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"Share", "12", "Download now", "Season 2", "Episode 3", "Rate it", "x", strings.Repeat("a", 51), ""} {
		assert.False(t, ValidServerName(bad), "%q should be rejected", bad)
	}
	for _, good := range []string{"UpCloud", "Vidcloud", "HD 2"} {
		assert.True(t, ValidServerName(good), "%q should be accepted", good)
	}
}

func TestFilterServersRejectsNoiseAndDedups(t *testing.T) {
	t.Parallel()

	candidates := []ServerCandidate{
		{Text: "Server UpCloud", ID: "111", Link: "/watch/1", Element: "A", Active: true},
		{Text: "Share", ID: "s1"},
		{Text: "12", ID: "n1"},
		{Text: "Server Vidcloud", ID: ""},
		{Text: "Server  UpCloud", ID: "111", Link: "/other"},
		{Text: "Server UpCloud", ID: "112"},
		{Text: "MegaCloud", ID: "113", Type: "mega"},
	}

	got := FilterServers(candidates)
	assert.Equal(t, []models.ServerEntry{
		{Name: "UpCloud", ID: "111", Link: "/watch/1", Element: "A", IsActive: true},
		{Name: "UpCloud", ID: "112"},
		{Name: "MegaCloud", ID: "113", Type: "mega"},
	}, got)

	keys := map[models.ServerKey]bool{}
	for _, s := range got {
		require.False(t, keys[s.Key()], "duplicate %v", s.Key())
		keys[s.Key()] = true
	}
}

func TestFilterServersEmpty(t *testing.T) {
	t.Parallel()

	got := FilterServers(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestScanServers(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<html><body><main>
		<div class="film-servers"><ul class="ulclear">
			<li><a class="link-item active" data-id="10" data-linkid="L10" href="/watch/10"><span>Server</span> <span>UpCloud</span></a></li>
			<li><a class="link-item" data-id="11"><span>Server</span> <span>Vidcloud</span></a></li>
			<li><a class="btn-share" data-id="sh">Share</a></li>
		</ul></div>
		<iframe class="watching_iframe" src="https://embed.test/e/10"></iframe>
	</main></body></html>`)

	scan := ScanServers(doc.Selection)

	assert.Equal(t, 2, scan.Counts[".link-item[data-id]"])
	assert.Equal(t, 2, scan.Counts["a.link-item"])
	assert.Equal(t, "https://embed.test/e/10", scan.Iframe)
	assert.NotEmpty(t, scan.Snapshot)
	require.Len(t, scan.Containers, len(ServerContainerSelectors))
	assert.True(t, scan.Containers[0].Present)
	assert.LessOrEqual(t, len([]rune(scan.Containers[0].Preview)), 500)
	assert.False(t, scan.Containers[1].Present)

	servers := FilterServers(scan.Candidates)
	require.Len(t, servers, 2)
	assert.Equal(t, "UpCloud", servers[0].Name)
	assert.Equal(t, "10", servers[0].ID)
	assert.Equal(t, "/watch/10", servers[0].Link)
	assert.Equal(t, "A", servers[0].Element)
	assert.True(t, servers[0].IsActive)
	assert.Equal(t, "Vidcloud", servers[1].Name)

	diag := scan.Diagnostics()
	assert.Equal(t, scan.Counts, diag.SelectorCounts)
}

func TestServerScanScriptEmbedsSelectors(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(ServerScanScript, "() => {"))
	assert.Contains(t, ServerScanScript, `".link-item[data-id]"`)
	assert.Contains(t, ServerScanScript, `"#servers-list"`)
	assert.NotContains(t, ServerScanScript, "%SERVERS%")
}

func TestFilterServersKeepsPairsThatShareSeparators(t *testing.T) {
	t.Parallel()

	got := FilterServers([]ServerCandidate{
		{Text: "Up|Cloud", ID: "7"},
		{Text: "Up", ID: "Cloud|7"},
		{Text: "Up", ID: "Cloud|7"},
	})
	assert.Equal(t, []models.ServerEntry{
		{Name: "Up|Cloud", ID: "7"},
		{Name: "Up", ID: "Cloud|7"},
	}, got)
}
