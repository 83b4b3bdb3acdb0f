// Package wizard реализует диалоговые сценарии модератора: пошаговое
// создание события, редактирование и управление промокодами.
package wizard

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/controller/deps"
	"github.com/velobro/event_bot/internal/controller/keyboard"
	"github.com/velobro/event_bot/internal/controller/prompt"
	"github.com/velobro/event_bot/internal/controller/views"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/session"
	"github.com/velobro/event_bot/internal/tg"
)

type Wizard struct {
	d       *deps.Deps
	v       *views.Views
	prompts *prompt.Manager
}

func New(d *deps.Deps, v *views.Views, prompts *prompt.Manager) *Wizard {
	return &Wizard{d: d, v: v, prompts: prompts}
}

func (w *Wizard) save(ctx context.Context, key session.Key, s *session.Session) {
	if err := w.d.Sessions.Put(ctx, key, s); err != nil {
		w.d.Log.Error("failed to save session", zap.Error(err), zap.String("key", key.String()))
	}
}

func (w *Wizard) clear(ctx context.Context, key session.Key) {
	if err := w.d.Sessions.Clear(ctx, key); err != nil {
		w.d.Log.Error("failed to clear session", zap.Error(err), zap.String("key", key.String()))
	}
}

// showParseError показывает ошибку валидации в активной подсказке
func (w *Wizard) showParseError(ctx context.Context, s *session.Session, chatID int64, err error, markup models.ReplyMarkup) {
	var perr *ParseError
	if errors.As(err, &perr) {
		w.prompts.Update(ctx, s, chatID, w.d.Texts.T(perr.Key, perr.Data), markup)
		return
	}
	w.prompts.Update(ctx, s, chatID, w.d.Texts.T("error.internal", nil), markup)
}

// draftEvent материализует черновик в событие (без ID до публикации)
func draftEvent(d session.Draft, createdBy int64) *model.Event {
	ev := &model.Event{
		Title:         d.Title,
		EndDate:       d.EndDate,
		Time:          d.Time,
		EndTime:       d.EndTime,
		Place:         d.Place,
		Description:   d.Description,
		Cost:          d.Cost,
		Images:        d.Images,
		Limit:         d.Limit,
		Reminder3Days: d.Reminder3Days,
		Reminder1Day:  d.Reminder1Day,
		Status:        model.EventStatusActive,
		CreatedBy:     createdBy,
	}
	if d.Date != nil {
		ev.Date = *d.Date
	}
	return ev
}

// sendEventMedia отправляет фотографии события и запоминает их
// как вспомогательные сообщения подсказки
func (w *Wizard) sendEventMedia(ctx context.Context, s *session.Session, chatID int64, images []string) {
	if len(images) == 0 {
		return
	}

	if len(images) == 1 {
		sent, err := w.d.TG.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID: chatID,
			Photo:  &models.InputFileString{Data: images[0]},
		})
		if err != nil {
			w.d.Log.Warn("failed to send event photo", zap.Error(err))
			return
		}
		w.prompts.TrackAux(ctx, s, session.Ref{ChatID: chatID, MessageID: sent.ID})
		return
	}

	media := make([]models.InputMedia, 0, len(images))
	for _, fileID := range images {
		media = append(media, &models.InputMediaPhoto{Media: fileID})
	}
	sent, err := w.d.TG.SendMediaGroup(ctx, &bot.SendMediaGroupParams{
		ChatID: chatID,
		Media:  media,
	})
	if err != nil {
		w.d.Log.Warn("failed to send event media group", zap.Error(err))
		return
	}
	refs := make([]session.Ref, 0, len(sent))
	for _, m := range sent {
		refs = append(refs, session.Ref{ChatID: chatID, MessageID: m.ID})
	}
	w.prompts.TrackAux(ctx, s, refs...)
}

// identity собирает model.Identity из данных Telegram
func identity(from *models.User) model.Identity {
	if from == nil {
		return model.Identity{}
	}
	return model.Identity{
		TelegramID: from.ID,
		Username:   from.Username,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}
}

// deleteUserMessage убирает сообщение пользователя: диалог живёт
// только в активной подсказке
func (w *Wizard) deleteUserMessage(ctx context.Context, msg *models.Message) {
	tg.SafeDelete(ctx, w.d.TG, msg.Chat.ID, msg.ID)
}

// settingsFallback показывает меню модератора новым сообщением
// (после отмены или завершения сценария)
func (w *Wizard) settingsFallback(ctx context.Context, chatID int64, textKey string) {
	_, err := w.d.TG.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        w.d.Texts.T(textKey, nil),
		ReplyMarkup: keyboard.Settings(w.d.Texts),
	})
	if err != nil {
		w.d.Log.Error("failed to send settings menu", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}
