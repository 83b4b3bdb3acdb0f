package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/repository"
	"github.com/velobro/event_bot/internal/yookassa"
)

type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	regRepo     *repository.RegistrationRepository
	gateway     *yookassa.Client
	now         func() time.Time
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	regRepo *repository.RegistrationRepository,
	gateway *yookassa.Client,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		regRepo:     regRepo,
		gateway:     gateway,
		now:         time.Now,
		logger:      logger,
	}
}

// Start создаёт платёж на шлюзе и сохраняет его у себя.
// Возвращает платёж и ссылку на страницу оплаты.
func (s *PaymentService) Start(ctx context.Context, ev *model.Event, user *model.User, discount decimal.Decimal) (*model.Payment, string, error) {
	if !ev.IsPaid() {
		return nil, "", fmt.Errorf("event %d is free", ev.ID)
	}

	amount := ev.Cost.Sub(discount)
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	created, err := s.gateway.CreatePayment(ctx, amount, ev.Title, map[string]string{
		"event_id": strconv.FormatInt(ev.ID, 10),
		"user_id":  strconv.FormatInt(user.ID, 10),
	})
	if err != nil {
		return nil, "", fmt.Errorf("create gateway payment: %w", err)
	}

	payment := &model.Payment{
		ID:      created.ID,
		EventID: ev.ID,
		UserID:  user.ID,
		Amount:  amount,
		Status:  model.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, "", fmt.Errorf("save payment: %w", err)
	}

	s.logger.Info("💳 Payment started",
		zap.String("payment_id", payment.ID),
		zap.Int64("event_id", ev.ID),
		zap.Int64("user_id", user.ID),
		zap.String("amount", amount.StringFixed(2)),
	)
	return payment, created.ConfirmationURL(), nil
}

// Confirm сверяет платёж со шлюзом и отмечает успех. Статус на
// стороне ЮKassa — источник истины, вебхук лишь повод проверить.
// Возвращает платёж и признак, что успех записан впервые.
func (s *PaymentService) Confirm(ctx context.Context, paymentID string) (*model.Payment, bool, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, false, fmt.Errorf("get payment: %w", err)
	}
	if payment == nil {
		return nil, false, nil
	}

	remote, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, false, fmt.Errorf("check gateway payment: %w", err)
	}
	if !remote.Succeeded() {
		s.logger.Warn("Payment not succeeded on gateway",
			zap.String("payment_id", paymentID),
			zap.String("status", remote.Status),
		)
		return payment, false, nil
	}

	first, err := s.paymentRepo.MarkSucceeded(ctx, paymentID, s.now())
	if err != nil {
		return nil, false, fmt.Errorf("mark payment succeeded: %w", err)
	}
	if !first {
		// Повторная доставка вебхука
		return payment, false, nil
	}

	if err := s.regRepo.Add(ctx, payment.EventID, payment.UserID); err != nil {
		return nil, false, fmt.Errorf("register after payment: %w", err)
	}

	payment.Status = model.PaymentStatusSucceeded
	s.logger.Info("✅ Payment succeeded",
		zap.String("payment_id", paymentID),
		zap.Int64("event_id", payment.EventID),
		zap.Int64("user_id", payment.UserID),
	)
	return payment, true, nil
}

func (s *PaymentService) HasPaid(ctx context.Context, eventID, userID int64) (bool, error) {
	payment, err := s.paymentRepo.GetSucceeded(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("get succeeded payment: %w", err)
	}
	return payment != nil, nil
}

// Refund возвращает успешный платёж целиком и снимает запись.
// model.ErrNoPayment — возвращать нечего.
func (s *PaymentService) Refund(ctx context.Context, ev *model.Event, userID int64) error {
	payment, err := s.paymentRepo.GetSucceeded(ctx, ev.ID, userID)
	if err != nil {
		return fmt.Errorf("get succeeded payment: %w", err)
	}
	if payment == nil {
		return model.ErrNoPayment
	}

	if err := s.gateway.Refund(ctx, payment.ID, payment.Amount); err != nil {
		return fmt.Errorf("refund gateway payment: %w", err)
	}

	if err := s.paymentRepo.MarkCancelled(ctx, payment.ID); err != nil {
		return fmt.Errorf("mark payment cancelled: %w", err)
	}
	if _, err := s.regRepo.Remove(ctx, ev.ID, userID); err != nil {
		return fmt.Errorf("remove registration: %w", err)
	}

	s.logger.Info("↩️ Payment refunded",
		zap.String("payment_id", payment.ID),
		zap.Int64("event_id", ev.ID),
		zap.Int64("user_id", userID),
	)
	return nil
}

// AttachMessage привязывает сообщение со ссылкой на оплату,
// чтобы удалить его после успеха
func (s *PaymentService) AttachMessage(ctx context.Context, paymentID string, messageID int) error {
	if err := s.paymentRepo.SetMessageID(ctx, paymentID, messageID); err != nil {
		return fmt.Errorf("attach payment message: %w", err)
	}
	return nil
}
