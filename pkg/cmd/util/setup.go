// Package util holds the setup code shared by the subcommands.
package util

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/config"
	"github.com/mpapenbr/wrc-timing-go/pkg/fetch"
	"github.com/mpapenbr/wrc-timing-go/pkg/fetch/cache"
	"github.com/mpapenbr/wrc-timing-go/pkg/ingest"
	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/patches"
	"github.com/mpapenbr/wrc-timing-go/pkg/repository"
	"github.com/mpapenbr/wrc-timing-go/pkg/session"
	"github.com/mpapenbr/wrc-timing-go/pkg/utils"
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger replaces the default logger according to the log flags
func SetupLogger() error {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	filtered, err := logger.WithFilter(config.LogFilter)
	if err != nil {
		return fmt.Errorf("invalid log filter: %w", err)
	}
	log.ResetDefault(filtered)
	return nil
}

// SetupTelemetry starts the tracer provider if enabled.
// The returned function flushes pending spans.
func SetupTelemetry(ctx context.Context) func() {
	if !config.EnableTelemetry {
		return func() {}
	}
	log.Info("Enabling telemetry")
	telemetry, err := config.SetupTelemetry(ctx)
	if err != nil {
		log.Warn("Could not setup telemetry", log.ErrorField(err))
		return func() {}
	}
	return telemetry.Shutdown
}

func OpenStore(ctx context.Context) (*repository.Store, error) {
	log.Debug("Opening store", log.String("db", config.DB), log.Bool("newDB", config.NewDB))
	return repository.Open(ctx, config.DB, config.NewDB)
}

func NewFetcher(ctx context.Context) (*fetch.Fetcher, error) {
	backend, err := cache.ParseBackend(config.CacheBackend)
	if err != nil {
		return nil, err
	}
	if wait := utils.ParseWait(config.WaitForUpstream, 15*time.Second); wait > 0 {
		if err := utils.WaitForHTTPResponse(ctx, config.TimingURL, wait); err != nil {
			return nil, err
		}
	}
	return fetch.New(fetch.Config{
		ResultsURL: config.ResultsURL,
		TimingURL:  config.TimingURL,
		CORSProxy:  config.CORSProxy,
		Cache: fetch.CacheConfig{
			Enabled: config.CacheEnabled,
			Config: cache.Config{
				Backend: backend,
				TTL:     config.CacheTTL,
				Path:    config.CachePath,
			},
		},
		Timeout:   config.FetchTimeout,
		RateLimit: config.RateLimit,
	})
}

func LoadPatches() (*patches.Patches, error) {
	return patches.Load(config.PatchFile)
}

func NewIngester(f *fetch.Fetcher, store *repository.Store) *ingest.Ingester {
	src := ingest.SourceTiming
	if config.Source == "results" {
		src = ingest.SourceResults
	}
	return ingest.New(f, store,
		ingest.WithSource(src),
		ingest.WithChampionship(config.Championship))
}

// NewSession selects season, championship, category and event from the
// config. Without event id the current event of the season is used.
//
//nolint:whitespace // can't make both editor and linter happy
func NewSession(
	ctx context.Context, store *repository.Store, seeder session.Seeder, p *patches.Patches,
) (*session.Session, error) {
	lookup := model.NewChampionshipLookup()
	p.ApplyChampionships(lookup)
	opts := []session.Option{session.WithLookup(lookup)}
	if seeder != nil {
		opts = append(opts, session.WithSeeder(seeder))
	}
	s := session.New(store, opts...)
	if err := s.SetSeason(ctx, config.Year); err != nil {
		return nil, err
	}
	if config.Championship != "" {
		c, err := model.ParseCategory(config.Championship)
		if err != nil {
			return nil, err
		}
		s.SetChampionship(c)
	}
	s.SetCategory(config.Category)
	if config.EventID != 0 {
		return s, s.SetEvent(ctx, config.EventID)
	}
	return s, s.UseCurrentEvent(ctx)
}

// ParseID parses a numeric command argument
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}
