// Package notify рассылает уведомления пользователям: анонсы новых
// событий, изменения, отмены и произвольные рассылки модератора.
// Доставка best-effort: заблокировавшие бота чаты пропускаются.
package notify

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/controller/keyboard"
	"github.com/velobro/event_bot/internal/format"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/repository"
	"github.com/velobro/event_bot/internal/texts"
	"github.com/velobro/event_bot/internal/tg"
)

type Notifier struct {
	tg       tg.Client
	userRepo *repository.UserRepository
	regRepo  *repository.RegistrationRepository
	msgRepo  *repository.BotMessageRepository
	texts    *texts.Texts
	support  string
	now      func() time.Time
	logger   *zap.Logger
}

func New(
	client tg.Client,
	userRepo *repository.UserRepository,
	regRepo *repository.RegistrationRepository,
	msgRepo *repository.BotMessageRepository,
	tx *texts.Texts,
	supportURL string,
	logger *zap.Logger,
) *Notifier {
	return &Notifier{
		tg:       client,
		userRepo: userRepo,
		regRepo:  regRepo,
		msgRepo:  msgRepo,
		texts:    tx,
		support:  supportURL,
		now:      time.Now,
		logger:   logger,
	}
}

// AnnounceNewEvent карточка нового события всем, кроме создателя
func (n *Notifier) AnnounceNewEvent(ctx context.Context, ev *model.Event, excludeTelegramID int64) int {
	ids, err := n.userRepo.AllTelegramIDs(ctx)
	if err != nil {
		n.logger.Error("failed to list recipients", zap.Error(err))
		return 0
	}

	text := n.texts.T("notify.new_event", nil) + "\n\n" +
		format.EventCard(ev, format.CardOptions{}, n.texts)
	return n.fanOut(ctx, ids, excludeTelegramID, text, keyboard.EventLink(n.texts, ev.ID))
}

// тексты уведомлений по изменённому полю
var updateNoticeKeys = map[string]string{
	"title":       "notify.event_updated.title",
	"date":        "notify.event_updated.date",
	"time":        "notify.event_updated.time",
	"place":       "notify.event_updated.place",
	"cost":        "notify.event_updated.cost",
	"description": "notify.event_updated.description",
	"limit":       "notify.event_updated.limit",
	"images":      "notify.event_updated.images",
	"reminders":   "notify.event_updated.reminders",
}

// NotifyEventUpdated уведомление участникам об изменении события.
// Текст подбирается по изменённому полю.
func (n *Notifier) NotifyEventUpdated(ctx context.Context, ev *model.Event, field string, excludeTelegramID int64) int {
	ids, err := n.regRepo.ParticipantTelegramIDs(ctx, ev.ID)
	if err != nil {
		n.logger.Error("failed to list participants", zap.Error(err), zap.Int64("event_id", ev.ID))
		return 0
	}

	key, ok := updateNoticeKeys[field]
	if !ok {
		key = "notify.event_updated.generic"
	}
	text := n.texts.T(key, map[string]any{"title": ev.Title})
	return n.fanOut(ctx, ids, excludeTelegramID, text, keyboard.EventLink(n.texts, ev.ID))
}

// NotifyEventCancelled уведомление участникам об отмене
func (n *Notifier) NotifyEventCancelled(ctx context.Context, ev *model.Event, excludeTelegramID int64) int {
	ids, err := n.regRepo.ParticipantTelegramIDs(ctx, ev.ID)
	if err != nil {
		n.logger.Error("failed to list participants", zap.Error(err), zap.Int64("event_id", ev.ID))
		return 0
	}

	text := n.texts.T("notify.event_cancelled", map[string]any{
		"title":   ev.Title,
		"support": n.support,
	})
	return n.fanOut(ctx, ids, excludeTelegramID, text, keyboard.Hide(n.texts))
}

// Broadcast произвольный текст участникам события
func (n *Notifier) Broadcast(ctx context.Context, eventID int64, excludeTelegramID int64, text string) (int, int, error) {
	ids, err := n.regRepo.ParticipantTelegramIDs(ctx, eventID)
	if err != nil {
		return 0, 0, err
	}

	total := 0
	for _, id := range ids {
		if id != excludeTelegramID {
			total++
		}
	}
	delivered := n.fanOut(ctx, ids, excludeTelegramID, text, keyboard.Hide(n.texts))
	return delivered, total, nil
}

// Remind напоминание участникам события
func (n *Notifier) Remind(ctx context.Context, ev *model.Event, textKey string) int {
	ids, err := n.regRepo.ParticipantTelegramIDs(ctx, ev.ID)
	if err != nil {
		n.logger.Error("failed to list participants", zap.Error(err), zap.Int64("event_id", ev.ID))
		return 0
	}

	text := n.texts.T(textKey, map[string]any{"title": ev.Title})
	return n.fanOut(ctx, ids, 0, text, keyboard.EventLink(n.texts, ev.ID))
}

// fanOut последовательная рассылка; недоставленные чаты пропускаются
func (n *Notifier) fanOut(ctx context.Context, ids []int64, exclude int64, text string, markup models.ReplyMarkup) int {
	delivered := 0
	for _, id := range ids {
		if id == exclude {
			continue
		}

		msg, err := n.tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      id,
			Text:        text,
			ReplyMarkup: markup,
		})
		if err != nil {
			n.logger.Debug("failed to deliver notification", zap.Error(err), zap.Int64("chat_id", id))
			continue
		}
		delivered++

		if err := n.msgRepo.Track(ctx, id, msg.ID, n.now()); err != nil {
			n.logger.Warn("failed to track message", zap.Error(err), zap.Int64("chat_id", id))
		}
	}
	return delivered
}
