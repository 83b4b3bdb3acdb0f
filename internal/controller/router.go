package controller

import (
	"context"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/controller/callbacks"
	"github.com/velobro/event_bot/internal/session"
	"github.com/velobro/event_bot/internal/tg"
)

// handleCallback единая точка входа для нажатий inline-кнопок
func (c *BotController) handleCallback(ctx context.Context, _ *bot.Bot, update *models.Update) {
	// Паника не должна оставить кнопку с «часиками»
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("panic in update handler",
				zap.String("scope", "callback"),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			if cb := update.CallbackQuery; cb != nil {
				tg.AnswerCallbackToast(ctx, c.d.TG, cb.ID, c.d.Texts.T("error.internal", nil))
			}
		}
	}()

	cb := update.CallbackQuery
	if cb == nil {
		return
	}

	msg := tg.MessageFromCallback(cb)
	chatID := cb.From.ID
	if msg != nil {
		chatID = msg.Chat.ID
	}

	cmd := callbacks.Parse(cb.Data)
	key := session.Key{ChatID: chatID, UserID: cb.From.ID}

	if moderatorOnly(cmd.Kind) && !c.isModerator(ctx, cb) {
		tg.AnswerCallbackAlert(ctx, c.d.TG, cb.ID, c.d.Texts.T("error.forbidden", nil))
		return
	}

	s, err := c.d.Sessions.Get(ctx, key)
	if err != nil {
		c.log.Error("failed to load session", zap.Error(err), zap.String("key", key.String()))
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
		return
	}

	switch cmd.Kind {
	case callbacks.Noop:
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)

	// Пользовательские экраны: отвечают на callback сами
	case callbacks.MainMenu:
		c.handlers.ShowMainMenu(ctx, cb)
	case callbacks.MenuActual:
		c.handlers.ShowActualList(ctx, cb, 0)
	case callbacks.EventListPage:
		c.handlers.ShowActualList(ctx, cb, cmd.Page)
	case callbacks.MenuCommunity:
		c.handlers.ShowCommunity(ctx, cb)
	case callbacks.EventView:
		c.handlers.ShowEventCard(ctx, cb, cmd.EventID)
	case callbacks.EventRegister:
		c.handlers.Register(ctx, cb, cmd.EventID)
	case callbacks.EventLeave:
		c.handlers.Leave(ctx, cb, cmd.EventID)
	case callbacks.EventPay:
		c.handlers.Pay(ctx, cb, cmd.EventID)
	case callbacks.EventPayCard:
		c.handlers.PayCard(ctx, cb, cmd.EventID)
	case callbacks.EventPromo:
		c.handlers.Promo(ctx, key, s, cb, cmd.EventID)
	case callbacks.EventRefund:
		c.handlers.Refund(ctx, cb, cmd.EventID)
	case callbacks.Hide:
		c.handlers.Hide(ctx, cb)

	// Меню модератора
	case callbacks.MenuSettings:
		c.handlers.ShowSettings(ctx, cb)
	case callbacks.SettingsManage:
		c.handlers.ShowManageList(ctx, cb, 0)
	case callbacks.ManagePage:
		c.handlers.ShowManageList(ctx, cb, cmd.Page)

	// Мастер создания события
	case callbacks.SettingsCreate:
		c.wizard.StartCreate(ctx, key, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.CreateBack:
		c.wizard.CreateBack(ctx, key, s, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.CreateSkip:
		c.wizard.CreateSkip(ctx, key, s, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.CreateCancel:
		c.wizard.CreateCancel(ctx, key, s, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.CreateImagesConfirm:
		c.wizard.ImagesConfirm(ctx, key, s, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.CreateReminder3:
		c.wizard.ToggleCreateReminder(ctx, key, s, chatID, true)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.CreateReminder1:
		c.wizard.ToggleCreateReminder(ctx, key, s, chatID, false)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.CreateRemindersDone:
		c.wizard.RemindersDone(ctx, key, s, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.CreatePublish:
		switch {
		case c.wizard.Publish(ctx, key, s, cb, chatID):
			tg.AnswerCallbackToast(ctx, c.d.TG, cb.ID, c.d.Texts.T("create.published", nil))
		case s.Step != session.StepPreview:
			// Сессия уже очищена: повторное нажатие на устаревшем превью
			tg.AnswerCallbackToast(ctx, c.d.TG, cb.ID, c.d.Texts.T("error.stale", nil))
		default:
			tg.AnswerCallback(ctx, c.d.TG, cb.ID)
		}

	// Редактирование события
	case callbacks.EditEvent:
		c.wizard.OpenEdit(ctx, key, s, cmd.EventID, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.EditField:
		c.wizard.EditFieldCommand(ctx, key, s, cmd, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.EditBack:
		c.wizard.EditBack(ctx, key, s, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.EditSave:
		c.wizard.EditSave(ctx, key, s, cb, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.EditClearImages:
		c.wizard.ClearImages(ctx, key, s, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.EditReminder3:
		c.wizard.ToggleEditReminder(ctx, key, s, chatID, true)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.EditReminder1:
		c.wizard.ToggleEditReminder(ctx, key, s, chatID, false)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.EditBroadcast:
		c.wizard.OpenBroadcast(ctx, key, s, cmd.EventID, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.EditParticipants:
		c.wizard.OpenParticipants(ctx, key, s, cmd.EventID, 0, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.EditParticipantsPage:
		c.wizard.OpenParticipants(ctx, key, s, cmd.EventID, cmd.Page, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.EditParticipantRemove:
		c.wizard.RemoveParticipant(ctx, key, s, cmd, chatID)
		tg.AnswerCallbackToast(ctx, c.d.TG, cb.ID, c.d.Texts.T("edit.participant_removed", nil))
	case callbacks.EditCancelEvent:
		c.wizard.OpenCancelConfirm(ctx, key, s, cmd.EventID, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.EditConfirmCancel:
		c.wizard.ConfirmCancel(ctx, key, s, cb, cmd.EventID, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)

	// Промокоды события
	case callbacks.PromoMenu:
		c.wizard.OpenPromoMenu(ctx, key, s, cmd.EventID, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.PromoAdd:
		c.wizard.OpenPromoAdd(ctx, key, s, cmd.EventID, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.PromoDelete:
		c.wizard.OpenPromoDelete(ctx, key, s, cmd.EventID, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)
	case callbacks.PromoList:
		c.wizard.ShowPromoList(ctx, key, s, cmd.EventID, chatID)
		tg.AnswerCallback(ctx, c.d.TG, cb.ID)

	default:
		c.log.Warn("unknown callback", zap.String("data", cb.Data))
		tg.AnswerCallbackToast(ctx, c.d.TG, cb.ID, c.d.Texts.T("error.stale", nil))
	}
}

// handleMessage текст и фотографии, адресованные активному диалогу
func (c *BotController) handleMessage(ctx context.Context, _ *bot.Bot, update *models.Update) {
	defer c.recoverPanic("message")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}

	key := session.Key{ChatID: msg.Chat.ID, UserID: msg.From.ID}
	s, err := c.d.Sessions.Get(ctx, key)
	if err != nil {
		c.log.Error("failed to load session", zap.Error(err), zap.String("key", key.String()))
		return
	}

	if c.wizard.HandleCreateMessage(ctx, key, s, msg) {
		return
	}
	if c.wizard.HandleEditMessage(ctx, key, s, msg) {
		return
	}
	if c.handlers.HandlePromoCode(ctx, key, s, msg) {
		return
	}
	// Сообщение вне диалога игнорируется
}

// isModerator проверка прав по данным нажавшего
func (c *BotController) isModerator(ctx context.Context, cb *models.CallbackQuery) bool {
	user, err := c.d.Users.ByTelegramID(ctx, cb.From.ID)
	if err != nil {
		c.log.Error("failed to load user", zap.Error(err), zap.Int64("telegram_id", cb.From.ID))
		return false
	}
	return c.d.Moderator(user)
}

// moderatorOnly действия, доступные только модераторам
func moderatorOnly(kind callbacks.Kind) bool {
	switch kind {
	case callbacks.MenuSettings,
		callbacks.SettingsCreate,
		callbacks.SettingsManage,
		callbacks.ManagePage,
		callbacks.CreateBack,
		callbacks.CreateSkip,
		callbacks.CreateCancel,
		callbacks.CreateImagesConfirm,
		callbacks.CreateReminder3,
		callbacks.CreateReminder1,
		callbacks.CreateRemindersDone,
		callbacks.CreatePublish,
		callbacks.EditEvent,
		callbacks.EditField,
		callbacks.EditBack,
		callbacks.EditSave,
		callbacks.EditClearImages,
		callbacks.EditReminder3,
		callbacks.EditReminder1,
		callbacks.EditBroadcast,
		callbacks.EditParticipants,
		callbacks.EditParticipantsPage,
		callbacks.EditParticipantRemove,
		callbacks.EditCancelEvent,
		callbacks.EditConfirmCancel,
		callbacks.PromoMenu,
		callbacks.PromoAdd,
		callbacks.PromoDelete,
		callbacks.PromoList:
		return true
	}
	return false
}

func (c *BotController) recoverPanic(scope string) {
	if r := recover(); r != nil {
		c.log.Error("panic in update handler",
			zap.String("scope", scope),
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()))
	}
}
