package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/repository"
)

type PromocodeService struct {
	promoRepo *repository.PromocodeRepository
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

func NewPromocodeService(promoRepo *repository.PromocodeRepository, location *time.Location, logger *zap.Logger) *PromocodeService {
	return &PromocodeService{
		promoRepo: promoRepo,
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

// Apply применяет промокод: проверяет срок и повторное использование,
// фиксирует применение. Повторный ввод того же кода не проходит.
func (s *PromocodeService) Apply(ctx context.Context, ev *model.Event, userID int64, code string) (model.PromoResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	promo, err := s.promoRepo.GetByCode(ctx, ev.ID, code)
	if err != nil {
		return model.PromoResult{}, fmt.Errorf("get promocode: %w", err)
	}
	if promo == nil {
		return model.PromoResult{Reason: model.PromoNotFound}, nil
	}

	now := s.now().In(s.location)
	if promo.Expired(now) || ev.Started(now, s.location) {
		return model.PromoResult{Reason: model.PromoExpired}, nil
	}

	used, err := s.promoRepo.IsUsedBy(ctx, promo.ID, userID)
	if err != nil {
		return model.PromoResult{}, fmt.Errorf("check promocode use: %w", err)
	}
	if used {
		return model.PromoResult{Reason: model.PromoAlreadyUsed}, nil
	}

	if err := s.promoRepo.MarkUsed(ctx, promo.ID, userID, now); err != nil {
		return model.PromoResult{}, fmt.Errorf("mark promocode used: %w", err)
	}

	s.logger.Info("🎟 Promocode applied",
		zap.String("code", code),
		zap.Int64("event_id", ev.ID),
		zap.Int64("user_id", userID),
	)
	return model.PromoResult{Reason: model.PromoOK, Discount: promo.Discount}, nil
}

// Discount лучшая применённая пользователем скидка (zero, если нет)
func (s *PromocodeService) Discount(ctx context.Context, eventID, userID int64) (decimal.Decimal, error) {
	discount, err := s.promoRepo.UserDiscount(ctx, eventID, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get user discount: %w", err)
	}
	return discount, nil
}

// Add создаёт промокод; существующий код того же события перезаписывается
func (s *PromocodeService) Add(ctx context.Context, eventID int64, code string, discount decimal.Decimal, expiresAt *time.Time) (*model.Promocode, error) {
	promo := &model.Promocode{
		EventID:   eventID,
		Code:      strings.ToUpper(strings.TrimSpace(code)),
		Discount:  discount,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	if err := s.promoRepo.Create(ctx, promo); err != nil {
		return nil, fmt.Errorf("create promocode: %w", err)
	}

	s.logger.Info("Promocode created",
		zap.String("code", promo.Code),
		zap.Int64("event_id", eventID),
	)
	return promo, nil
}

// Remove удаляет промокод; false — кода не было
func (s *PromocodeService) Remove(ctx context.Context, eventID int64, code string) (bool, error) {
	removed, err := s.promoRepo.Delete(ctx, eventID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return false, fmt.Errorf("delete promocode: %w", err)
	}
	return removed, nil
}

func (s *PromocodeService) List(ctx context.Context, eventID int64) ([]model.Promocode, error) {
	promos, err := s.promoRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list promocodes: %w", err)
	}
	return promos, nil
}
