package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/repository"
)

type EventService struct {
	eventRepo *repository.EventRepository
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

func NewEventService(eventRepo *repository.EventRepository, location *time.Location, logger *zap.Logger) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

// Upcoming активные события, которые ещё не закончились. Однодневное
// событие пропадает из афиши на следующий день, многодневное — после
// последнего дня.
func (s *EventService) Upcoming(ctx context.Context) ([]model.Event, error) {
	today := s.now().In(s.location)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.location)

	events, err := s.eventRepo.ListUpcoming(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

// Get событие по id (nil, nil — события нет)
func (s *EventService) Get(ctx context.Context, id int64) (*model.Event, error) {
	ev, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

func (s *EventService) Create(ctx context.Context, ev *model.Event) error {
	if err := s.eventRepo.Create(ctx, ev); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("✅ Event created",
		zap.Int64("event_id", ev.ID),
		zap.String("title", ev.Title),
		zap.Time("date", ev.Date),
	)
	return nil
}

// Update частичное обновление (nil, nil — события нет)
func (s *EventService) Update(ctx context.Context, id int64, upd model.EventUpdate) (*model.Event, error) {
	ev, err := s.eventRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if ev != nil {
		s.logger.Info("Event updated", zap.Int64("event_id", id))
	}
	return ev, nil
}

// Cancel переводит событие в статус cancelled
func (s *EventService) Cancel(ctx context.Context, id int64) (*model.Event, error) {
	ev, err := s.eventRepo.Update(ctx, id, model.EventUpdate{
		SetStatus: true,
		Status:    model.EventStatusCancelled,
	})
	if err != nil {
		return nil, fmt.Errorf("cancel event: %w", err)
	}
	if ev != nil {
		s.logger.Info("🚫 Event cancelled", zap.Int64("event_id", id), zap.String("title", ev.Title))
	}
	return ev, nil
}

// ReminderCandidates активные события с включёнными, но ещё не
// отправленными напоминаниями
func (s *EventService) ReminderCandidates(ctx context.Context) ([]model.Event, error) {
	events, err := s.eventRepo.ReminderCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reminder candidates: %w", err)
	}
	return events, nil
}
