package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/repository"
)

type RegistrationService struct {
	regRepo *repository.RegistrationRepository
	logger  *zap.Logger
}

func NewRegistrationService(regRepo *repository.RegistrationRepository, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		regRepo: regRepo,
		logger:  logger,
	}
}

// Availability занятость события: сколько записано и каков лимит
func (s *RegistrationService) Availability(ctx context.Context, ev *model.Event) (model.Availability, error) {
	count, err := s.regRepo.Count(ctx, ev.ID)
	if err != nil {
		return model.Availability{}, fmt.Errorf("count registrations: %w", err)
	}
	return model.Availability{Going: count, Capacity: ev.Limit}, nil
}

func (s *RegistrationService) IsRegistered(ctx context.Context, eventID, userID int64) (bool, error) {
	registered, err := s.regRepo.IsRegistered(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return registered, nil
}

// Register записывает пользователя с проверкой лимита.
// Возвращает model.ErrEventFull, если мест не осталось.
func (s *RegistrationService) Register(ctx context.Context, ev *model.Event, userID int64) error {
	avail, err := s.Availability(ctx, ev)
	if err != nil {
		return err
	}
	if avail.Full() {
		return model.ErrEventFull
	}

	if err := s.regRepo.Add(ctx, ev.ID, userID); err != nil {
		return fmt.Errorf("add registration: %w", err)
	}

	s.logger.Info("User registered",
		zap.Int64("event_id", ev.ID),
		zap.Int64("user_id", userID),
	)
	return nil
}

// Unregister снимает запись; false — записи не было
func (s *RegistrationService) Unregister(ctx context.Context, eventID, userID int64) (bool, error) {
	removed, err := s.regRepo.Remove(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("remove registration: %w", err)
	}
	if removed {
		s.logger.Info("User unregistered",
			zap.Int64("event_id", eventID),
			zap.Int64("user_id", userID),
		)
	}
	return removed, nil
}

func (s *RegistrationService) Participants(ctx context.Context, eventID int64) ([]model.Participant, error) {
	participants, err := s.regRepo.Participants(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}
