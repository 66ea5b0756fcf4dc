// One-shot mode: runs the ETL pipeline once and exits. Use cmd/worker for
// scheduled recurring runs.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"rainball/etl/internal/client"
	"rainball/etl/internal/config"
	"rainball/etl/internal/pipeline"
	"rainball/etl/internal/repository"
	"rainball/etl/internal/sink"
	"rainball/etl/internal/weather"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.MustLoad()
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(fmt.Errorf("%w: %w", pipeline.ErrStoreUnreachable, err)).Msg("Failed to connect to match store")
	}
	defer db.Close()

	darksky := client.NewClient(cfg.DarkskyBaseURL, cfg.DarkskyAPIKey, cfg.DarkskyTimeout)

	var cache *weather.Cache
	if cfg.CacheEnabled {
		cache, err = weather.NewCache(ctx, cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to weather cache")
		}
		defer cache.Close()
	}
	wx := weather.NewAggregator(darksky, cache, cfg.WeatherLatitude, cfg.WeatherLongitude, cfg.WeatherSkipFailedDates)

	var teamSink pipeline.Sink
	if cfg.SinkEnabled {
		mongoSink, err := sink.NewMongo(ctx, sink.Config{
			User:       cfg.AtlasUser,
			Key:        cfg.AtlasKey,
			Cluster:    cfg.AtlasCluster,
			Database:   cfg.AtlasDatabase,
			Collection: cfg.AtlasCollection,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to sink")
		}
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer closeCancel()
			if err := mongoSink.Close(closeCtx); err != nil {
				log.Warn().Err(err).Msg("Failed to close sink")
			}
		}()
		teamSink = mongoSink
	}

	pipe := pipeline.New(cfg, db.Matches, wx, teamSink)

	report, err := pipe.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Pipeline run failed")
		os.Exit(1)
	}

	log.Info().
		Int("matches", report.Matches).
		Int("teams", report.Teams).
		Int("skipped_dates", len(report.SkippedDates)).
		Strs("inserted_ids", report.InsertedIDs).
		Msg("Pipeline run succeeded")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
