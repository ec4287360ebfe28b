// Package scheduler запускает периодические задачи обслуживания базы.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
)

// UserRepository очищает просроченные токены сброса пароля.
type UserRepository interface {
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// SchedulerService выполняет задачи по расписанию cron.
type SchedulerService struct {
	repo UserRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo UserRepository, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Run регистрирует задачи по расписанию schedule и блокируется до отмены ctx.
// Перед выходом дожидается завершения уже запущенных задач.
func (s *SchedulerService) Run(ctx context.Context, schedule string) error {
	const op = "scheduler.Run"

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.purgeExpiredResetTokens(ctx) }); err != nil {
		return fmt.Errorf("%s: invalid schedule %q: %w", op, schedule, err)
	}

	s.purgeExpiredResetTokens(ctx)
	c.Start()
	s.log.Info("scheduler started", slog.String("op", op), slog.String("schedule", schedule))

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("scheduler stopped", slog.String("op", op))
	return nil
}

func (s *SchedulerService) purgeExpiredResetTokens(ctx context.Context) {
	const op = "scheduler.purgeExpiredResetTokens"
	log := s.log.With(slog.String("op", op))

	if ctx.Err() != nil {
		return
	}
	log.Info("starting purge of expired password reset tokens")
	n, err := s.repo.PurgeExpiredResetTokens(ctx, s.now())
	if err != nil {
		log.Error("failed to purge reset tokens", sl.Err(err))
		return
	}
	if n == 0 {
		log.Info("no expired reset tokens found")
		return
	}
	log.Info("expired reset tokens purged", slog.Int64("count", n))
}
