// Package main runs single catalog operations from the command line and
// prints the result as JSON. Useful when a selector stops matching.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/depezo/sflix-api/internal/util"
	"github.com/depezo/sflix-api/pkg/sflix"
)

func main() {
	op := flag.String("op", "listings", "operation: listings, search, movie, series, seasons, seasons-episodes, episodes, episode-servers, movie-servers, cast")
	id := flag.String("id", "", "movie, series or cast id (or the query for search)")
	season := flag.Int("season", 1, "season number")
	episode := flag.Int("episode", 1, "episode number")
	page := flag.Int("page", 1, "page number")
	workers := flag.Int("workers", 3, "concurrent listings")
	noBrowser := flag.Bool("no-browser", false, "static extraction only")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	debug := flag.Bool("debug", false, "enable debug mode")
	flag.Parse()

	util.SetDebugMode(*debug)
	cfg, err := sflix.LoadConfig()
	if err != nil {
		log.Fatalln(util.ErrorHandler(err))
	}
	util.InitLogger(cfg.Server.LogLevel)
	if *noBrowser {
		cfg.Browser.Enabled = false
	}

	client, err := sflix.NewClient(cfg)
	if err != nil {
		log.Fatalln(util.ErrorHandler(err))
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	result, err := run(ctx, client, *op, *id, *season, *episode, *page, *workers)
	if err != nil {
		util.Error("probe failed", "op", *op, "error", err)
		os.Exit(1)
	}
	util.Debug("probe finished", "op", *op, "took", time.Since(start))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, c *sflix.Client, op, id string, season, episode, page, workers int) (interface{}, error) {
	switch op {
	case "listings":
		return c.Listings(ctx, page, workers), nil
	case "search":
		return c.Search(ctx, id)
	case "movie":
		return c.MovieDetails(ctx, id)
	case "series":
		return c.SeriesDetails(ctx, id)
	case "seasons":
		return c.SeriesSeasons(ctx, id)
	case "seasons-episodes":
		return c.SeriesSeasonsAndEpisodes(ctx, id)
	case "episodes":
		return c.SeasonEpisodes(ctx, id, season)
	case "episode-servers":
		return c.EpisodeServers(ctx, id, season, episode)
	case "movie-servers":
		return c.MovieServers(ctx, id)
	case "cast":
		return c.CastMoviesAndShows(ctx, id, page)
	default:
		return nil, errors.Errorf("unknown op %q", op)
	}
}
