// Package scheduler собирает процесс фоновых задач: периодическую очистку
// просроченных токенов сброса пароля.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tour-booking/internal/config"
	schedulerservice "github.com/magabrotheeeer/tour-booking/internal/services/scheduler"
	"github.com/magabrotheeeer/tour-booking/internal/storage/mongodb"
)

const (
	connectAttempts = 10
	connectDelay    = 3 * time.Second
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	db               *mongodb.Storage
	schedule         string
	logger           *slog.Logger
}

// waitForDB повторяет подключение, пока MongoDB не станет доступна.
func waitForDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongodb.Storage, error) {
	var lastErr error
	for range connectAttempts {
		db, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.Warn("database is not ready, retrying", slog.Any("err", err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectDelay):
		}
	}
	return nil, fmt.Errorf("database not ready after retries: %w", lastErr)
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	db, err := waitForDB(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		schedulerService: schedulerservice.NewSchedulerService(db.Users(), logger),
		db:               db,
		schedule:         cfg.PurgeSchedule,
		logger:           logger,
	}, nil
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := a.schedulerService.Run(ctx, a.schedule)

	a.logger.Info("shutting down scheduler service")
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if cerr := a.db.Close(closeCtx); cerr != nil {
		a.logger.Error("failed to close database", slog.Any("err", cerr))
	}
	return err
}
