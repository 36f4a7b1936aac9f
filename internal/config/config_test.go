package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depezo/sflix-api/internal/extract"
)

func TestDefaultsAreValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, extract.DefaultSeasonLimits, cfg.SeasonLimits())
	assert.Equal(t, time.Second, cfg.FetchBackoff())
	assert.Equal(t, 30*time.Second, cfg.NavigatorConfig().NavigationTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	assert.False(t, cfg.Debug())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("BASE_URL", "https://mirror.test")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("BROWSER_BACKEND", "chromedp")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("BROWSER_POOL_SIZE", "4")
	t.Setenv("SEASON_CEILING_DOM", "30")
	t.Setenv("CORS_ORIGINS", "https://a.test, https://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, "https://mirror.test", cfg.Site.BaseURL)
	assert.True(t, cfg.Debug())
	assert.Equal(t, "chromedp", cfg.BrowserOptions().Backend)
	assert.False(t, cfg.BrowserOptions().Headless)
	assert.Equal(t, 4, cfg.Browser.PoolSize)
	assert.Equal(t, extract.SeasonLimits{Script: 10, DOM: 30, Enumeration: 50}, cfg.SeasonLimits())
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins())
}

func TestExecutablePathPrecedence(t *testing.T) {
	t.Setenv("CHROME_PATH", "/usr/bin/chromium-browser")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/chromium-browser", cfg.BrowserOptions().ExecutablePath)

	t.Setenv("PUPPETEER_EXECUTABLE_PATH", "/opt/chrome/chrome")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/chrome/chrome", cfg.BrowserOptions().ExecutablePath)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	t.Parallel()

	for name, mutate := range map[string]func(*Config){
		"port":     func(c *Config) { c.Server.Port = 0 },
		"base url": func(c *Config) { c.Site.BaseURL = "sflix2.to" },
		"backend":  func(c *Config) { c.Browser.Backend = "selenium" },
		"pool":     func(c *Config) { c.Browser.PoolSize = -1 },
		"ceiling":  func(c *Config) { c.Seasons.DOMCeiling = 0 },
	} {
		cfg := Default()
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}
