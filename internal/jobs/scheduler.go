package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/config"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/queue"
)

// Scheduler queues the periodic orphan sweep. It only enqueues; the
// consumer group decides which worker actually runs it.
type Scheduler struct {
	cron      *cron.Cron
	publisher *queue.Publisher
	cfg       config.SweepConfig
	log       zerolog.Logger
}

func NewScheduler(publisher *queue.Publisher, cfg config.SweepConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		publisher: publisher,
		cfg:       cfg,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("orphan sweep disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.enqueueSweep); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.cfg.Schedule).Msg("orphan sweep scheduled")
	return nil
}

// Stop waits briefly for an in-flight enqueue before giving up.
func (s *Scheduler) Stop() {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueSweep() {
	if err := s.publisher.EnqueueSweep(context.Background()); err != nil {
		s.log.Error().Err(err).Msg("enqueue sweep failed")
		return
	}
	s.log.Info().Msg("sweep task queued")
}
