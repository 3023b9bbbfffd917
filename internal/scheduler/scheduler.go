// Package scheduler runs the recurring reminder job for upcoming fumigations.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/config"
	"github.com/agrovex/campoflow/internal/service/fumigation"
	"github.com/agrovex/campoflow/pkg/clients/notify"
)

// Scheduler manages the cron-driven reminder digest.
type Scheduler struct {
	cron        *cron.Cron
	fumigations *fumigation.Service
	notifier    notify.Client
	cfg         config.ReminderConfig
	logger      *zap.Logger
}

// New creates a scheduler in the configured timezone.
func New(cfg config.ReminderConfig, fumigations *fumigation.Service, notifier notify.Client, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cron:        cron.New(cron.WithLocation(location)),
		fumigations: fumigations,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// Start registers the reminder job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendReminderDigest); err != nil {
		s.logger.Error("failed to schedule reminder digest", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendReminderDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	upcoming, err := s.fumigations.Upcoming(ctx, s.cfg.HorizonDays)
	if err != nil {
		s.logger.Error("failed to collect upcoming fumigations", zap.Error(err))
		return
	}
	if len(upcoming) == 0 {
		s.logger.Info("no upcoming fumigations within horizon", zap.Int("horizon_days", s.cfg.HorizonDays))
		return
	}

	digest := notify.Digest{
		GeneratedAt: time.Now().UTC(),
		HorizonDays: s.cfg.HorizonDays,
	}
	for _, record := range upcoming {
		digest.Upcoming = append(digest.Upcoming, notify.Item{
			FumigationID: record.ID,
			FieldID:      record.FieldID,
			ApplicatorID: record.ApplicatorID,
			Date:         record.Date,
		})
	}

	if err := s.notifier.SendDigest(ctx, digest); err != nil {
		s.logger.Error("failed to send reminder digest", zap.Error(err))
		return
	}

	s.logger.Info("reminder digest sent", zap.Int("upcoming", len(digest.Upcoming)))
}
