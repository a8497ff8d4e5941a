package processor

import (
	"context"
	"fmt"

	"spectre/notification-worker/internal/app/notifications/service"
	"spectre/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const DefaultRetrySchedule = "*/15 * * * *"

// CronScheduler периодически повторяет отправку failed писем
type CronScheduler struct {
	cron *cron.Cron
	svc  service.NotificationServiceInterface
}

func NewCronScheduler(svc service.NotificationServiceInterface) *CronScheduler {
	// прогоны не перекрываются
	c := cron.New(
		cron.WithLogger(cronLogger{log: logger.Component("cron")}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: logger.Component("cron")})),
	)

	return &CronScheduler{cron: c, svc: svc}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultRetrySchedule
	}

	_, err := s.cron.AddFunc(schedule, func() { s.retry(ctx) })
	if err != nil {
		return fmt.Errorf("invalid retry schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	logger.Info().Str("schedule", schedule).Msg("Notification retry scheduler started")
	return nil
}

func (s *CronScheduler) retry(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	sent, err := s.svc.RetryFailed(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Notification retry failed")
		return
	}
	logger.Debug().Int("sent", sent).Msg("Notification retry completed")
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	<-s.cron.Stop().Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger - cron.Logger поверх zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
