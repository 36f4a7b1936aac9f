// Package config loads service settings from the environment
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/browser"
	"github.com/depezo/sflix-api/internal/extract"
	"github.com/depezo/sflix-api/internal/navigator"
)

// DefaultBaseURL is the catalog site scraped when BASE_URL is unset
const DefaultBaseURL = "https://sflix2.to"

type Config struct {
	Server  ServerConfig
	Site    SiteConfig
	Browser BrowserConfig
	Seasons SeasonConfig
}

type ServerConfig struct {
	Port              int    `env:"PORT"`
	CORSOrigins       string `env:"CORS_ORIGINS"`
	ShutdownTimeoutMs int    `env:"SHUTDOWN_TIMEOUT_MS"`
	LogLevel          string `env:"LOG_LEVEL"`
}

type SiteConfig struct {
	BaseURL        string `env:"BASE_URL"`
	OverridesFile  string `env:"OVERRIDES_FILE"`
	FetchRetries   int    `env:"FETCH_RETRIES"`
	FetchBackoffMs int    `env:"FETCH_BACKOFF_MS"`
	FetchTimeoutMs int    `env:"FETCH_TIMEOUT_MS"`
}

type BrowserConfig struct {
	Enabled             bool   `env:"BROWSER_ENABLED"`
	Backend             string `env:"BROWSER_BACKEND"`
	ExecutablePath      string `env:"PUPPETEER_EXECUTABLE_PATH"`
	ChromePath          string `env:"CHROME_PATH"`
	Headless            bool   `env:"BROWSER_HEADLESS"`
	BlockResources      bool   `env:"BROWSER_BLOCK_RESOURCES"`
	UserAgent           string `env:"BROWSER_USER_AGENT"`
	PoolSize            int    `env:"BROWSER_POOL_SIZE"`
	NavigationTimeoutMs int    `env:"BROWSER_NAVIGATION_TIMEOUT_MS"`
	SettleTimeoutMs     int    `env:"BROWSER_SETTLE_TIMEOUT_MS"`
	ClickTimeoutMs      int    `env:"BROWSER_CLICK_TIMEOUT_MS"`
	ServerTimeoutMs     int    `env:"BROWSER_SERVER_TIMEOUT_MS"`
}

// SeasonConfig holds the season-number ceilings of the three discovery strategies
type SeasonConfig struct {
	ScriptCeiling      int `env:"SEASON_CEILING_SCRIPT"`
	DOMCeiling         int `env:"SEASON_CEILING_DOM"`
	EnumerationCeiling int `env:"SEASON_CEILING_ENUMERATION"`
}

// Default returns the settings used when no variable is set
func Default() Config {
	nav := navigator.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Port:              3000,
			CORSOrigins:       "*",
			ShutdownTimeoutMs: 10000,
			LogLevel:          "info",
		},
		Site: SiteConfig{
			BaseURL:        DefaultBaseURL,
			FetchRetries:   3,
			FetchBackoffMs: 1000,
			FetchTimeoutMs: 30000,
		},
		Browser: BrowserConfig{
			Enabled:             true,
			Backend:             "playwright",
			Headless:            true,
			BlockResources:      true,
			PoolSize:            0,
			NavigationTimeoutMs: int(nav.NavigationTimeout / time.Millisecond),
			SettleTimeoutMs:     int(nav.SettleTimeout / time.Millisecond),
			ClickTimeoutMs:      int(nav.ClickTimeout / time.Millisecond),
			ServerTimeoutMs:     int(nav.ServerTimeout / time.Millisecond),
		},
		Seasons: SeasonConfig{
			ScriptCeiling:      extract.DefaultSeasonLimits.Script,
			DOMCeiling:         extract.DefaultSeasonLimits.DOM,
			EnumerationCeiling: extract.DefaultSeasonLimits.Enumeration,
		},
	}
}

// Load reads the environment over the defaults
func Load() (Config, error) {
	cfg := Default()
	err := config.New().AddFeeder(feeder.Env{}).AddStruct(&cfg).Feed()
	if err != nil {
		return cfg, errors.Wrap(err, "read environment")
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the service cannot run with
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("invalid PORT %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Site.BaseURL, "http://") && !strings.HasPrefix(c.Site.BaseURL, "https://") {
		return errors.Errorf("invalid BASE_URL %q", c.Site.BaseURL)
	}
	switch c.Browser.Backend {
	case "playwright", "chromedp":
	default:
		return errors.Errorf("invalid BROWSER_BACKEND %q", c.Browser.Backend)
	}
	if c.Browser.PoolSize < 0 {
		return errors.Errorf("invalid BROWSER_POOL_SIZE %d", c.Browser.PoolSize)
	}
	if c.Seasons.ScriptCeiling < 1 || c.Seasons.DOMCeiling < 1 || c.Seasons.EnumerationCeiling < 1 {
		return errors.New("season ceilings must be positive")
	}
	return nil
}

// Debug reports whether LOG_LEVEL asks for debug output
func (c Config) Debug() bool {
	return strings.EqualFold(c.Server.LogLevel, "debug")
}

// Addr is the listen address of the HTTP server
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// AllowedOrigins splits CORS_ORIGINS on commas
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.Server.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ShutdownTimeout bounds graceful shutdown
func (c Config) ShutdownTimeout() time.Duration {
	return ms(c.Server.ShutdownTimeoutMs)
}

// FetchTimeout is the per-request timeout of the HTTP client
func (c Config) FetchTimeout() time.Duration {
	return ms(c.Site.FetchTimeoutMs)
}

// FetchBackoff is the base delay between fetch attempts
func (c Config) FetchBackoff() time.Duration {
	return ms(c.Site.FetchBackoffMs)
}

// SeasonLimits converts the ceilings for the extractors
func (c Config) SeasonLimits() extract.SeasonLimits {
	return extract.SeasonLimits{
		Script:      c.Seasons.ScriptCeiling,
		DOM:         c.Seasons.DOMCeiling,
		Enumeration: c.Seasons.EnumerationCeiling,
	}
}

// BrowserOptions builds the launcher options. PUPPETEER_EXECUTABLE_PATH wins
// over CHROME_PATH.
func (c Config) BrowserOptions() browser.Options {
	exe := c.Browser.ExecutablePath
	if exe == "" {
		exe = c.Browser.ChromePath
	}
	return browser.Options{
		Backend:        c.Browser.Backend,
		ExecutablePath: exe,
		Headless:       c.Browser.Headless,
		UserAgent:      c.Browser.UserAgent,
		BlockResources: c.Browser.BlockResources,
	}
}

// NavigatorConfig converts the browser waits for the navigator
func (c Config) NavigatorConfig() navigator.Config {
	return navigator.Config{
		NavigationTimeout: ms(c.Browser.NavigationTimeoutMs),
		SettleTimeout:     ms(c.Browser.SettleTimeoutMs),
		ClickTimeout:      ms(c.Browser.ClickTimeoutMs),
		ServerTimeout:     ms(c.Browser.ServerTimeoutMs),
		Limits:            c.SeasonLimits(),
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
