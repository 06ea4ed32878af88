package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/license-admin-console/internal/config"
	"github.com/makkenzo/license-admin-console/internal/tasks"
	"go.uber.org/zap"
)

// RunWorkers starts the asynq server and the scheduler that enqueues the
// expiry digest, and blocks until ctx is done.
func RunWorkers(ctx context.Context, cfg *config.Config, api tasks.LicenseLister, logger *zap.Logger) error {
	redisConnOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(
		redisConnOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log := logger.Named("AsynqServerErrorHandler")
				log.Error("Asynq task processing failed",
					zap.String("task_type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err),
				)
			}),
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqServer")),
		},
	)

	mux := asynq.NewServeMux()

	digestHandler := tasks.NewExpiryDigestHandler(api, logger)
	mux.HandleFunc(tasks.TypeExpiryDigest, digestHandler.ProcessTask)

	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("asynq server error: %w", err)
	}
	logger.Info("Asynq Server started.")

	scheduler := asynq.NewScheduler(
		redisConnOpts,
		&asynq.SchedulerOpts{
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqScheduler")),
		},
	)

	digestTask, err := tasks.NewExpiryDigestTask(cfg.Worker.ExpiringWithinDays)
	if err != nil {
		srv.Shutdown()
		return fmt.Errorf("scheduler task creation error: %w", err)
	}

	entryID, err := scheduler.Register(cfg.Worker.DigestSchedule, digestTask)
	if err != nil {
		srv.Shutdown()
		return fmt.Errorf("scheduler registration error: %w", err)
	}
	logger.Info("Registered periodic license expiry digest", zap.String("entry_id", entryID), zap.String("schedule", cfg.Worker.DigestSchedule))

	logger.Info("Starting Asynq Scheduler...")
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return fmt.Errorf("asynq scheduler error: %w", err)
	}

	<-ctx.Done()

	logger.Info("Shutting down Asynq Scheduler...")
	scheduler.Shutdown()
	logger.Info("Asynq Scheduler stopped.")

	logger.Info("Shutting down Asynq Server...")
	srv.Shutdown()
	logger.Info("Asynq Server stopped.")

	return nil
}

type asynqLoggerAdapter struct {
	logger *zap.Logger
}

func NewAsynqLoggerAdapter(logger *zap.Logger) *asynqLoggerAdapter {
	return &asynqLoggerAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (l *asynqLoggerAdapter) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
