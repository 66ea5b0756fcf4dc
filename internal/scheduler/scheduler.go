package scheduler

import (
	"context"
	"fmt"

	"rainball/etl/internal/config"
	"rainball/etl/internal/pipeline"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the ETL pipeline on a cron schedule in worker mode
type Scheduler struct {
	cfg  *config.Config
	pipe *pipeline.Pipeline
	cron *cron.Cron
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, pipe *pipeline.Pipeline) *Scheduler {
	return &Scheduler{
		cfg:  cfg,
		pipe: pipe,
		cron: cron.New(),
	}
}

// Start registers the pipeline run on the configured schedule
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.PipelineCron, func() {
		log.Info().Msg("Running scheduled pipeline...")
		report, err := s.pipe.Run(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Scheduled pipeline run failed")
			return
		}
		log.Info().
			Int("teams", report.Teams).
			Dur("duration", report.Duration).
			Msg("Scheduled pipeline run complete")
	}); err != nil {
		return fmt.Errorf("failed to schedule pipeline run: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.PipelineCron).
		Msg("Pipeline run scheduled")

	return nil
}

// Stop stops the scheduler, waiting for a running job to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	log.Info().Msg("Scheduler stopped")
}
