// Package webhook принимает уведомления ЮKassa о платежах.
// Шлюз повторяет доставку до получения 200, поэтому обработка
// идемпотентна, а ответ всегда успешный.
package webhook

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/controller/keyboard"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/service"
	"github.com/velobro/event_bot/internal/texts"
	"github.com/velobro/event_bot/internal/tg"
)

// notification пришедшее от ЮKassa событие
type notification struct {
	Event  string `json:"event"`
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"object"`
}

type Server struct {
	payments *service.PaymentService
	events   *service.EventService
	users    *service.UserService
	tg       tg.Client
	texts    *texts.Texts
	logger   *zap.Logger

	engine *gin.Engine
}

func NewServer(
	payments *service.PaymentService,
	events *service.EventService,
	users *service.UserService,
	client tg.Client,
	tx *texts.Texts,
	environment string,
	logger *zap.Logger,
) *Server {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		payments: payments,
		events:   events,
		users:    users,
		tg:       client,
		texts:    tx,
		logger:   logger,
		engine:   gin.New(),
	}

	s.engine.Use(gin.Recovery())
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.POST("/webhook/yookassa", s.handleYooKassa)
	return s
}

// Run блокируется до остановки сервера
func (s *Server) Run(addr string) error {
	s.logger.Info("🌐 Webhook server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

func (s *Server) handleYooKassa(c *gin.Context) {
	var n notification
	if err := c.ShouldBindJSON(&n); err != nil {
		s.logger.Warn("Malformed webhook payload", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	if n.Event != "payment.succeeded" || n.Object.ID == "" {
		c.Status(http.StatusOK)
		return
	}

	ctx := c.Request.Context()
	payment, first, err := s.payments.Confirm(ctx, n.Object.ID)
	if err != nil {
		s.logger.Error("Failed to confirm payment", zap.Error(err), zap.String("payment_id", n.Object.ID))
		// 200 не отдаём: пусть шлюз попробует ещё раз
		c.Status(http.StatusInternalServerError)
		return
	}
	if payment == nil || !first {
		c.Status(http.StatusOK)
		return
	}

	s.notifyPaid(ctx, payment)
	c.Status(http.StatusOK)
}

// notifyPaid убирает сообщение со ссылкой на оплату и поздравляет
// пользователя с записью
func (s *Server) notifyPaid(ctx context.Context, payment *model.Payment) {
	user, err := s.users.ByID(ctx, payment.UserID)
	if err != nil || user == nil {
		s.logger.Error("Failed to load paid user", zap.Error(err), zap.Int64("user_id", payment.UserID))
		return
	}

	if payment.MessageID != nil {
		tg.SafeDelete(ctx, s.tg, user.TelegramID, *payment.MessageID)
	}

	ev, err := s.events.Get(ctx, payment.EventID)
	if err != nil || ev == nil {
		s.logger.Error("Failed to load paid event", zap.Error(err), zap.Int64("event_id", payment.EventID))
		return
	}

	_, err = s.tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      user.TelegramID,
		Text:        s.texts.T("pay.success", map[string]any{"title": ev.Title}),
		ReplyMarkup: keyboard.BackToEvent(s.texts, ev.ID),
	})
	if err != nil {
		s.logger.Warn("Failed to send payment confirmation", zap.Error(err), zap.Int64("chat_id", user.TelegramID))
	}
}
