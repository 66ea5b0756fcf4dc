// Worker mode: runs the ETL pipeline on a cron schedule and serves
// Prometheus metrics. Use cmd/runonce for a single manual run.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"rainball/etl/internal/client"
	"rainball/etl/internal/config"
	"rainball/etl/internal/pipeline"
	"rainball/etl/internal/repository"
	"rainball/etl/internal/scheduler"
	"rainball/etl/internal/sink"
	"rainball/etl/internal/weather"

	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	if cfg.EnableMetrics {
		go startMetricsServer(db, strconv.Itoa(cfg.MetricsPort))
	}

	sched := scheduler.NewScheduler(cfg, pipe)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	log.Info().
		Int("season", cfg.Season).
		Str("schedule", cfg.PipelineCron).
		Msg("Worker started")

	// Block until shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	cancel()
	sched.Stop()
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(db *repository.Database, port string) {
	http.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
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
