package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/api"
	"github.com/depezo/sflix-api/internal/config"
	"github.com/depezo/sflix-api/internal/util"
	"github.com/depezo/sflix-api/internal/version"
	"github.com/depezo/sflix-api/pkg/sflix"
)

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	debugFlag := flag.Bool("debug", false, "enable debug mode")
	helpFlag := flag.Bool("help", false, "show help message")
	altHelpFlag := flag.Bool("h", false, "show help message")
	portFlag := flag.Int("port", 0, "listen port (overrides PORT)")

	flag.Parse()

	if *versionFlag || version.HasVersionArg() {
		version.ShowVersion()
		return
	}

	if *helpFlag || *altHelpFlag {
		util.WriteHelp(os.Stdout, helpSections())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		util.SetDebugMode(*debugFlag)
		log.Fatalln(util.ErrorHandler(err))
	}
	if *portFlag > 0 {
		cfg.Server.Port = *portFlag
	}

	util.SetDebugMode(*debugFlag || cfg.Debug())
	util.InitLogger(cfg.Server.LogLevel)

	client, err := sflix.NewClient(cfg)
	if err != nil {
		log.Fatalln(util.ErrorHandler(err))
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewHandler(client, version.Version, cfg.AllowedOrigins()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	fmt.Println(util.Banner(version.Version, cfg.Addr()))
	util.Info("server started",
		"base_url", client.Origin(),
		"browser", client.BrowserEnabled(),
		"backend", cfg.Browser.Backend)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = client.Close()
			log.Fatalln(util.ErrorHandler(err))
		}
	case <-ctx.Done():
		util.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		util.Warn("graceful shutdown failed", "error", err)
	}
	if err := client.Close(); err != nil {
		util.Warn("browser shutdown failed", "error", err)
	}
}

func helpSections() []util.HelpSection {
	d := config.Default()
	itoa := strconv.Itoa
	return []util.HelpSection{
		{Title: "Options", Entries: []util.HelpEntry{
			{Name: "-port", Description: "Listen port, overrides PORT."},
			{Name: "-debug", Description: "Verbose logging with caller information and browser diagnostics."},
			{Name: "-version", Description: "Show version information."},
			{Name: "-help / -h", Description: "Show this message."},
		}},
		{Title: "Server", Entries: []util.HelpEntry{
			{Name: "PORT", Default: itoa(d.Server.Port), Description: "HTTP listen port."},
			{Name: "CORS_ORIGINS", Default: d.Server.CORSOrigins, Description: "Comma-separated allowed origins."},
			{Name: "SHUTDOWN_TIMEOUT_MS", Default: itoa(d.Server.ShutdownTimeoutMs), Description: "Grace period for in-flight requests."},
			{Name: "LOG_LEVEL", Default: d.Server.LogLevel, Description: "Set to debug for verbose output."},
		}},
		{Title: "Site", Entries: []util.HelpEntry{
			{Name: "BASE_URL", Default: d.Site.BaseURL, Description: "Catalog origin every page is fetched from."},
			{Name: "OVERRIDES_FILE", Description: "YAML table of known season and episode counts; the built-in table is used when unset."},
			{Name: "FETCH_RETRIES", Default: itoa(d.Site.FetchRetries), Description: "Attempts per page fetch."},
			{Name: "FETCH_BACKOFF_MS", Default: itoa(d.Site.FetchBackoffMs), Description: "Base delay between attempts, multiplied by the attempt number."},
			{Name: "FETCH_TIMEOUT_MS", Default: itoa(d.Site.FetchTimeoutMs), Description: "Per-request timeout."},
		}},
		{Title: "Browser", Entries: []util.HelpEntry{
			{Name: "BROWSER_ENABLED", Default: strconv.FormatBool(d.Browser.Enabled), Description: "Use a headless browser when static pages are not enough."},
			{Name: "BROWSER_BACKEND", Default: d.Browser.Backend, Description: "playwright or chromedp."},
			{Name: "PUPPETEER_EXECUTABLE_PATH / CHROME_PATH", Description: "Browser executable; the first one set wins."},
			{Name: "BROWSER_POOL_SIZE", Default: itoa(d.Browser.PoolSize), Description: "Maximum open pages, 0 for no bound."},
			{Name: "BROWSER_NAVIGATION_TIMEOUT_MS", Default: itoa(d.Browser.NavigationTimeoutMs), Description: "Page load timeout."},
		}},
		{Title: "Seasons", Entries: []util.HelpEntry{
			{Name: "SEASON_CEILING_SCRIPT", Default: itoa(d.Seasons.ScriptCeiling), Description: "Highest season accepted from inline scripts."},
			{Name: "SEASON_CEILING_DOM", Default: itoa(d.Seasons.DOMCeiling), Description: "Highest season accepted from the season picker."},
			{Name: "SEASON_CEILING_ENUMERATION", Default: itoa(d.Seasons.EnumerationCeiling), Description: "Highest season visited by browser enumeration."},
		}},
	}
}
