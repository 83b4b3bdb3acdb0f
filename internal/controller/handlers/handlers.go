// Package handlers реализует пользовательские экраны бота: меню,
// афишу, карточку события, запись, оплату и промокоды.
package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/controller/deps"
	"github.com/velobro/event_bot/internal/controller/keyboard"
	"github.com/velobro/event_bot/internal/controller/views"
	"github.com/velobro/event_bot/internal/format"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/session"
	"github.com/velobro/event_bot/internal/tg"
)

// глубина и допуск промахов зачистки чата при /start
const (
	startSweepDepth  = 30
	startSweepMisses = 5
)

type Handlers struct {
	d *deps.Deps
	v *views.Views
}

func New(d *deps.Deps, v *views.Views) *Handlers {
	return &Handlers{d: d, v: v}
}

func identity(u *models.User) model.Identity {
	if u == nil {
		return model.Identity{}
	}
	return model.Identity{
		TelegramID: u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
}

// Start обработка /start: подчищает хвост диалога и шлёт главное меню
func (h *Handlers) Start(ctx context.Context, msg *models.Message) {
	// Вместе с /start убираем недавние сообщения бота, чтобы меню
	// не дублировалось после перезапуска диалога
	tg.SweepRecent(ctx, h.d.TG, msg.Chat.ID, msg.ID, startSweepDepth, startSweepMisses)

	view, err := h.v.MainMenu(ctx, identity(msg.From))
	if err != nil {
		h.d.Log.Error("failed to render main menu", zap.Error(err), zap.Int64("chat_id", msg.Chat.ID))
		return
	}
	h.send(ctx, msg.Chat.ID, view.Text, view.Markup)
}

// ShowMainMenu возврат в главное меню по кнопке
func (h *Handlers) ShowMainMenu(ctx context.Context, cb *models.CallbackQuery) {
	view, err := h.v.MainMenu(ctx, identity(&cb.From))
	if err != nil {
		h.d.Log.Error("failed to render main menu", zap.Error(err))
		h.answer(ctx, cb)
		return
	}
	h.edit(ctx, cb, view)
	h.answer(ctx, cb)
}

func (h *Handlers) ShowCommunity(ctx context.Context, cb *models.CallbackQuery) {
	h.edit(ctx, cb, h.v.Community())
	h.answer(ctx, cb)
}

func (h *Handlers) ShowSettings(ctx context.Context, cb *models.CallbackQuery) {
	h.edit(ctx, cb, h.v.Settings())
	h.answer(ctx, cb)
}

// ShowActualList афиша событий, page с нуля
func (h *Handlers) ShowActualList(ctx context.Context, cb *models.CallbackQuery, page int) {
	view, err := h.v.ActualList(ctx, page)
	if err != nil {
		h.d.Log.Error("failed to render event list", zap.Error(err))
		h.answer(ctx, cb)
		return
	}
	h.edit(ctx, cb, view)
	h.answer(ctx, cb)
}

// ShowManageList список событий для модератора
func (h *Handlers) ShowManageList(ctx context.Context, cb *models.CallbackQuery, page int) {
	view, err := h.v.ManageList(ctx, page)
	if err != nil {
		h.d.Log.Error("failed to render manage list", zap.Error(err))
		h.answer(ctx, cb)
		return
	}
	h.edit(ctx, cb, view)
	h.answer(ctx, cb)
}

// ShowEventCard карточка события. Сообщение со списком заменяется:
// если у события есть фотографии, старое сообщение удаляется и
// карточка приходит вместе с медиа, иначе редактируется на месте.
func (h *Handlers) ShowEventCard(ctx context.Context, cb *models.CallbackQuery, eventID int64) {
	msg := tg.MessageFromCallback(cb)
	view, err := h.renderCard(ctx, cb, eventID)
	if err != nil {
		h.answer(ctx, cb)
		return
	}
	if view == nil {
		tg.AnswerCallbackAlert(ctx, h.d.TG, cb.ID, h.d.Texts.T("error.not_found", nil))
		return
	}

	if len(view.Images) == 0 || msg == nil {
		h.edit(ctx, cb, view)
		h.answer(ctx, cb)
		return
	}

	tg.SafeDelete(ctx, h.d.TG, msg.Chat.ID, msg.ID)
	h.sendMedia(ctx, msg.Chat.ID, view.Images)
	h.send(ctx, msg.Chat.ID, view.Text, view.Markup)
	h.answer(ctx, cb)
}

// Register запись на бесплатное событие
func (h *Handlers) Register(ctx context.Context, cb *models.CallbackQuery, eventID int64) {
	ev, user, ok := h.eventAndUser(ctx, cb, eventID)
	if !ok {
		return
	}
	if ev.IsPaid() {
		// На платное событие записывает оплата
		h.answer(ctx, cb)
		return
	}

	if err := h.d.Registrations.Register(ctx, ev, user.ID); err != nil {
		if errors.Is(err, model.ErrEventFull) {
			tg.AnswerCallbackToast(ctx, h.d.TG, cb.ID, h.d.Texts.T("reg.full", nil))
			h.refreshCard(ctx, cb, eventID)
			return
		}
		h.d.Log.Error("failed to register", zap.Error(err), zap.Int64("event_id", eventID))
		h.answer(ctx, cb)
		return
	}

	tg.AnswerCallbackToast(ctx, h.d.TG, cb.ID, h.d.Texts.T("reg.done", nil))
	h.refreshCard(ctx, cb, eventID)
}

// Leave снятие записи с события
func (h *Handlers) Leave(ctx context.Context, cb *models.CallbackQuery, eventID int64) {
	_, user, ok := h.eventAndUser(ctx, cb, eventID)
	if !ok {
		return
	}

	removed, err := h.d.Registrations.Unregister(ctx, eventID, user.ID)
	if err != nil {
		h.d.Log.Error("failed to unregister", zap.Error(err), zap.Int64("event_id", eventID))
		h.answer(ctx, cb)
		return
	}
	if removed {
		tg.AnswerCallbackToast(ctx, h.d.TG, cb.ID, h.d.Texts.T("reg.removed", nil))
	} else {
		h.answer(ctx, cb)
	}
	h.refreshCard(ctx, cb, eventID)
}

// Pay выбор способа оплаты
func (h *Handlers) Pay(ctx context.Context, cb *models.CallbackQuery, eventID int64) {
	ev, user, ok := h.eventAndUser(ctx, cb, eventID)
	if !ok {
		return
	}
	if !ev.IsPaid() {
		h.answer(ctx, cb)
		return
	}

	paid, err := h.d.Payments.HasPaid(ctx, eventID, user.ID)
	if err != nil {
		h.d.Log.Error("failed to check payment", zap.Error(err), zap.Int64("event_id", eventID))
		h.answer(ctx, cb)
		return
	}
	if paid {
		tg.AnswerCallbackToast(ctx, h.d.TG, cb.ID, h.d.Texts.T("pay.already_paid", nil))
		return
	}

	h.edit(ctx, cb, &views.Rendered{
		Text:   h.d.Texts.T("pay.choose_method", nil),
		Markup: keyboard.PayMethods(h.d.Texts, eventID),
	})
	h.answer(ctx, cb)
}

// PayCard создаёт платёж и показывает ссылку на оплату
func (h *Handlers) PayCard(ctx context.Context, cb *models.CallbackQuery, eventID int64) {
	ev, user, ok := h.eventAndUser(ctx, cb, eventID)
	if !ok {
		return
	}

	discount, err := h.d.Promocodes.Discount(ctx, eventID, user.ID)
	if err != nil {
		h.d.Log.Warn("failed to load discount", zap.Error(err), zap.Int64("event_id", eventID))
	}

	payment, url, err := h.d.Payments.Start(ctx, ev, user, discount)
	if err != nil {
		h.d.Log.Error("failed to create payment",
			zap.Error(err), zap.Int64("event_id", eventID), zap.Int64("user_id", user.ID))
		tg.AnswerCallbackAlert(ctx, h.d.TG, cb.ID, h.d.Texts.T("pay.create_failed", nil))
		return
	}

	h.edit(ctx, cb, &views.Rendered{
		Text: h.d.Texts.T("pay.link", map[string]any{
			"amount": payment.Amount.StringFixed(2),
			"url":    url,
		}),
		Markup: keyboard.BackToEvent(h.d.Texts, eventID),
	})

	if msg := tg.MessageFromCallback(cb); msg != nil {
		if err := h.d.Payments.AttachMessage(ctx, payment.ID, msg.ID); err != nil {
			h.d.Log.Warn("failed to attach payment message", zap.Error(err), zap.String("payment_id", payment.ID))
		}
	}
	h.answer(ctx, cb)
}

// Promo запрос промокода: дальнейший текст в чате считается кодом
func (h *Handlers) Promo(ctx context.Context, key session.Key, s *session.Session, cb *models.CallbackQuery, eventID int64) {
	msg := tg.MessageFromCallback(cb)
	if msg == nil {
		h.answer(ctx, cb)
		return
	}

	s.Step = session.StepPromoCode
	s.PromoEventID = eventID
	s.Prompt = &session.Ref{ChatID: msg.Chat.ID, MessageID: msg.ID}
	if err := h.d.Sessions.Put(ctx, key, s); err != nil {
		h.d.Log.Error("failed to save session", zap.Error(err), zap.String("key", key.String()))
	}

	h.edit(ctx, cb, &views.Rendered{
		Text:   h.d.Texts.T("promo.enter", nil),
		Markup: keyboard.BackToEvent(h.d.Texts, eventID),
	})
	h.answer(ctx, cb)
}

// HandlePromoCode ввод промокода текстом
func (h *Handlers) HandlePromoCode(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) bool {
	if s.Step != session.StepPromoCode || s.PromoEventID == 0 {
		return false
	}
	defer tg.SafeDelete(ctx, h.d.TG, msg.Chat.ID, msg.ID)

	ev, err := h.d.Events.Get(ctx, s.PromoEventID)
	if err != nil || ev == nil {
		h.resetPromo(ctx, key, s)
		return true
	}

	user, err := h.d.Users.Ensure(ctx, identity(msg.From))
	if err != nil {
		h.d.Log.Error("failed to ensure user", zap.Error(err))
		return true
	}

	res, err := h.d.Promocodes.Apply(ctx, ev, user.ID, msg.Text)
	if err != nil {
		h.d.Log.Error("failed to apply promocode", zap.Error(err), zap.Int64("event_id", ev.ID))
		h.updatePrompt(ctx, s, h.d.Texts.T("error.internal", nil), keyboard.BackToEvent(h.d.Texts, ev.ID))
		return true
	}

	var text string
	switch res.Reason {
	case model.PromoOK:
		text = h.d.Texts.T("promo.success", map[string]any{"discount": format.Money(res.Discount)})
		h.resetPromo(ctx, key, s)
	case model.PromoExpired:
		text = h.d.Texts.T("promo.expired", nil)
		h.resetPromo(ctx, key, s)
	case model.PromoAlreadyUsed:
		text = h.d.Texts.T("promo.already_used", nil)
		h.resetPromo(ctx, key, s)
	default:
		// Неверный код: даём попробовать ещё раз
		text = h.d.Texts.T("promo.not_found", nil)
	}
	h.updatePrompt(ctx, s, text, keyboard.BackToEvent(h.d.Texts, ev.ID))
	return true
}

// Refund возврат платежа по кнопке
func (h *Handlers) Refund(ctx context.Context, cb *models.CallbackQuery, eventID int64) {
	ev, user, ok := h.eventAndUser(ctx, cb, eventID)
	if !ok {
		return
	}

	err := h.d.Payments.Refund(ctx, ev, user.ID)
	switch {
	case errors.Is(err, model.ErrNoPayment):
		tg.AnswerCallbackToast(ctx, h.d.TG, cb.ID, h.d.Texts.T("pay.refund_none", nil))
		return
	case err != nil:
		h.d.Log.Error("failed to refund",
			zap.Error(err), zap.Int64("event_id", eventID), zap.Int64("user_id", user.ID))
		tg.AnswerCallbackAlert(ctx, h.d.TG, cb.ID, h.d.Texts.T("pay.refund_failed", nil))
		return
	}

	tg.AnswerCallbackToast(ctx, h.d.TG, cb.ID, h.d.Texts.T("pay.refund_done", nil))
	h.refreshCard(ctx, cb, eventID)
}

// Hide удаляет сообщение с кнопкой
func (h *Handlers) Hide(ctx context.Context, cb *models.CallbackQuery) {
	if msg := tg.MessageFromCallback(cb); msg != nil {
		tg.SafeDelete(ctx, h.d.TG, msg.Chat.ID, msg.ID)
	}
	h.answer(ctx, cb)
}

func (h *Handlers) renderCard(ctx context.Context, cb *models.CallbackQuery, eventID int64) (*views.Rendered, error) {
	view, err := h.v.EventCard(ctx, eventID, identity(&cb.From))
	if err != nil {
		h.d.Log.Error("failed to render event card", zap.Error(err), zap.Int64("event_id", eventID))
		return nil, err
	}
	return view, nil
}

// refreshCard перерисовывает карточку после изменившегося состояния
func (h *Handlers) refreshCard(ctx context.Context, cb *models.CallbackQuery, eventID int64) {
	view, err := h.renderCard(ctx, cb, eventID)
	if err != nil || view == nil {
		return
	}
	h.edit(ctx, cb, view)
}

func (h *Handlers) eventAndUser(ctx context.Context, cb *models.CallbackQuery, eventID int64) (*model.Event, *model.User, bool) {
	ev, err := h.d.Events.Get(ctx, eventID)
	if err != nil {
		h.d.Log.Error("failed to load event", zap.Error(err), zap.Int64("event_id", eventID))
		h.answer(ctx, cb)
		return nil, nil, false
	}
	if ev == nil {
		tg.AnswerCallbackAlert(ctx, h.d.TG, cb.ID, h.d.Texts.T("error.not_found", nil))
		return nil, nil, false
	}

	user, err := h.d.Users.Ensure(ctx, identity(&cb.From))
	if err != nil {
		h.d.Log.Error("failed to ensure user", zap.Error(err), zap.Int64("telegram_id", cb.From.ID))
		h.answer(ctx, cb)
		return nil, nil, false
	}
	return ev, user, true
}

func (h *Handlers) resetPromo(ctx context.Context, key session.Key, s *session.Session) {
	s.Step = session.StepNone
	s.PromoEventID = 0
	if err := h.d.Sessions.Put(ctx, key, s); err != nil {
		h.d.Log.Error("failed to save session", zap.Error(err), zap.String("key", key.String()))
	}
}

func (h *Handlers) updatePrompt(ctx context.Context, s *session.Session, text string, markup *models.InlineKeyboardMarkup) {
	if s.Prompt == nil {
		return
	}
	_, err := h.d.TG.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      s.Prompt.ChatID,
		MessageID:   s.Prompt.MessageID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil && !tg.IsNotModified(err) {
		h.d.Log.Debug("failed to edit promo prompt", zap.Error(err))
	}
}

func (h *Handlers) send(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	msg, err := h.d.TG.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		h.d.Log.Error("failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
		return
	}
	h.track(ctx, chatID, msg.ID)
}

func (h *Handlers) sendMedia(ctx context.Context, chatID int64, fileIDs []string) {
	if len(fileIDs) == 0 {
		return
	}

	if len(fileIDs) == 1 {
		msg, err := h.d.TG.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID: chatID,
			Photo:  &models.InputFileString{Data: fileIDs[0]},
		})
		if err != nil {
			h.d.Log.Warn("failed to send photo", zap.Error(err), zap.Int64("chat_id", chatID))
			return
		}
		h.track(ctx, chatID, msg.ID)
		return
	}

	media := make([]models.InputMedia, 0, len(fileIDs))
	for _, id := range fileIDs {
		media = append(media, &models.InputMediaPhoto{Media: id})
	}
	msgs, err := h.d.TG.SendMediaGroup(ctx, &bot.SendMediaGroupParams{ChatID: chatID, Media: media})
	if err != nil {
		h.d.Log.Warn("failed to send media group", zap.Error(err), zap.Int64("chat_id", chatID))
		return
	}
	for _, m := range msgs {
		h.track(ctx, chatID, m.ID)
	}
}

// edit заменяет текст и клавиатуру нажатого сообщения
func (h *Handlers) edit(ctx context.Context, cb *models.CallbackQuery, view *views.Rendered) {
	msg := tg.MessageFromCallback(cb)
	if msg == nil || view == nil {
		return
	}

	_, err := h.d.TG.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        view.Text,
		ReplyMarkup: view.Markup,
	})
	if err == nil || tg.IsNotModified(err) {
		return
	}

	// Сообщение могло быть с медиа, тогда правится подпись
	_, cerr := h.d.TG.EditMessageCaption(ctx, &bot.EditMessageCaptionParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Caption:     view.Text,
		ReplyMarkup: view.Markup,
	})
	if cerr != nil && !tg.IsNotModified(cerr) {
		h.d.Log.Debug("failed to edit message",
			zap.Error(err), zap.Int64("chat_id", msg.Chat.ID), zap.Int("message_id", msg.ID))
	}
}

func (h *Handlers) answer(ctx context.Context, cb *models.CallbackQuery) {
	tg.AnswerCallback(ctx, h.d.TG, cb.ID)
}

func (h *Handlers) track(ctx context.Context, chatID int64, messageID int) {
	if err := h.d.Messages.Track(ctx, chatID, messageID, h.d.Clock()); err != nil {
		h.d.Log.Warn("failed to track message",
			zap.Error(err), zap.Int64("chat_id", chatID), zap.Int("message_id", messageID))
	}
}
