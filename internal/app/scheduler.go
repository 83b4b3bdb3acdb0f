package app

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/repository"
	"github.com/velobro/event_bot/internal/service"
)

// Журнал сообщений чистится от записей старше этого срока: более
// старые сообщения бот уже не обновляет.
const messageRetention = 48 * time.Hour

// Scheduler управляет фоновыми задачами: напоминания о событиях
// и чистка журнала отправленных сообщений.
type Scheduler struct {
	scheduler gocron.Scheduler
	reminders *service.ReminderService
	msgRepo   *repository.BotMessageRepository
	logger    *zap.Logger
}

func NewScheduler(
	reminders *service.ReminderService,
	msgRepo *repository.BotMessageRepository,
	logger *zap.Logger,
) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler: s,
		reminders: reminders,
		msgRepo:   msgRepo,
		logger:    logger,
	}, nil
}

// Start регистрирует задачи и запускает планировщик
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler")

	// Напоминания проверяются раз в минуту
	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.reminders.ProcessDue(ctx)
		}),
	); err != nil {
		return err
	}

	// Журнал сообщений чистится раз в час
	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			s.cleanupMessages(ctx)
		}),
	); err != nil {
		return err
	}

	s.scheduler.Start()
	return nil
}

// Stop останавливает планировщик, дожидаясь текущих задач
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Error("Failed to shutdown scheduler", zap.Error(err))
	}
}

func (s *Scheduler) cleanupMessages(ctx context.Context) {
	cutoff := time.Now().Add(-messageRetention)

	deleted, err := s.msgRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to cleanup message log", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("Message log cleaned", zap.Int64("deleted", deleted))
	}
}
