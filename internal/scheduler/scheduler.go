package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/config"
	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// DigestPublisher builds and delivers the daily digest.
type DigestPublisher interface {
	PublishDailyDigest(ctx context.Context, at time.Time) (models.DailyDigest, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	reporter DigestPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a scheduler whose cron expressions are evaluated in loc.
func NewScheduler(cfg config.ReportingConfig, loc *time.Location, reporter DigestPublisher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the daily digest job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.publishDailyDigest); err != nil {
		return fmt.Errorf("schedule daily digest %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("daily_digest", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publishDailyDigest() {
	s.logger.Info("generating daily digest")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	digest, err := s.reporter.PublishDailyDigest(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to publish daily digest", zap.Error(err))
		return
	}

	s.logger.Info("daily digest sent successfully", zap.String("date", digest.Date.Format(models.DateLayout)))
}
