package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/repository"
)

// ReminderNotifier доставка напоминаний участникам
type ReminderNotifier interface {
	Remind(ctx context.Context, ev *model.Event, textKey string) int
}

// ReminderService рассылает напоминания о событиях: за 3 дня и за
// 1 день, в настроенный час. Сдвиг в минутах до начала (для отладки)
// заменяет штатное расписание.
type ReminderService struct {
	eventRepo *repository.EventRepository
	notifier  ReminderNotifier
	location  *time.Location

	hour         int // час отправки штатных напоминаний
	override3Min int // 0 — штатное расписание
	override1Min int
	now          func() time.Time
	logger       *zap.Logger
}

func NewReminderService(
	eventRepo *repository.EventRepository,
	notifier ReminderNotifier,
	location *time.Location,
	hour, override3Min, override1Min int,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		eventRepo:     eventRepo,
		notifier:      notifier,
		location:      location,
		hour:          hour,
		override3Min: override3Min,
		override1Min:  override1Min,
		now:           time.Now,
		logger:        logger,
	}
}

// ProcessDue отправляет созревшие напоминания. Вызывается планировщиком
// раз в минуту; отправленное помечается, чтобы не дублировать.
func (s *ReminderService) ProcessDue(ctx context.Context) {
	events, err := s.eventRepo.ReminderCandidates(ctx)
	if err != nil {
		s.logger.Error("failed to list reminder candidates", zap.Error(err))
		return
	}

	now := s.now().In(s.location)
	for i := range events {
		ev := &events[i]
		if ev.Started(now, s.location) {
			continue
		}

		if ev.Reminder3Days && ev.Reminder3DaysSentAt == nil &&
			!now.Before(s.dueAt(ev, 3, s.override3Min)) {
			s.send(ctx, ev, "remind.days3", model.EventUpdate{
				SetReminder3DaysSentAt: true,
				Reminder3DaysSentAt:    &now,
			})
		}

		if ev.Reminder1Day && ev.Reminder1DaySentAt == nil &&
			!now.Before(s.dueAt(ev, 1, s.override1Min)) {
			s.send(ctx, ev, "remind.day1", model.EventUpdate{
				SetReminder1DaySentAt: true,
				Reminder1DaySentAt:    &now,
			})
		}
	}
}

// dueAt момент отправки: за daysBefore дней в настроенный час, либо
// за overrideMin минут до начала, если сдвиг задан
func (s *ReminderService) dueAt(ev *model.Event, daysBefore, overrideMin int) time.Time {
	if overrideMin > 0 {
		return ev.StartsAt(s.location).Add(-time.Duration(overrideMin) * time.Minute)
	}

	day := ev.Date.AddDate(0, 0, -daysBefore)
	return time.Date(day.Year(), day.Month(), day.Day(), s.hour, 0, 0, 0, s.location)
}

func (s *ReminderService) send(ctx context.Context, ev *model.Event, textKey string, mark model.EventUpdate) {
	delivered := s.notifier.Remind(ctx, ev, textKey)

	if _, err := s.eventRepo.Update(ctx, ev.ID, mark); err != nil {
		s.logger.Error("failed to mark reminder sent", zap.Error(err), zap.Int64("event_id", ev.ID))
		return
	}

	s.logger.Info("🔔 Reminder sent",
		zap.Int64("event_id", ev.ID),
		zap.String("kind", textKey),
		zap.Int("delivered", delivered),
	)
}
