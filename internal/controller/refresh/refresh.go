// Package refresh обновляет устаревшие сообщения. Telegram-клиенты
// тихо теряют кнопки на очень старых сообщениях, а данные под ними
// (места, статус оплаты) успевают уехать. Перед обработкой нажатия
// содержимое старого сообщения перерисовывается актуальными данными.
package refresh

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/controller/callbacks"
	"github.com/velobro/event_bot/internal/controller/views"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/tg"
)

// DefaultThreshold возраст, после которого сообщение считается устаревшим
const DefaultThreshold = 48 * time.Hour

type Refresher struct {
	views     *views.Views
	tg        tg.Client
	log       *zap.Logger
	threshold time.Duration
	now       func() time.Time
}

func New(v *views.Views, client tg.Client, log *zap.Logger, threshold time.Duration) *Refresher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Refresher{
		views:     v,
		tg:        client,
		log:       log,
		threshold: threshold,
		now:       time.Now,
	}
}

// Middleware запускает обновление отдельной горутиной и сразу передаёт
// апдейт дальше: обновление никогда не задерживает и не ломает основной
// обработчик. Порядок между обновлением и обработчиком не гарантирован,
// оба безопасно редактируют одно сообщение.
func (r *Refresher) Middleware() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if cb := update.CallbackQuery; cb != nil {
				if msg := tg.MessageFromCallback(cb); msg != nil && r.Stale(msg) {
					go r.Refresh(context.WithoutCancel(ctx), cb)
				}
			}
			next(ctx, b, update)
		}
	}
}

// Stale сообщение старше порога
func (r *Refresher) Stale(msg *models.Message) bool {
	sent := time.Unix(int64(msg.Date), 0)
	return r.now().Sub(sent) > r.threshold
}

// Refresh перерисовывает сообщение актуальными данными. Все ошибки
// уходят в лог: обновление — оптимизация, а не условие работы бота.
func (r *Refresher) Refresh(ctx context.Context, cb *models.CallbackQuery) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("panic in message refresh", zap.Any("panic", rec))
		}
	}()

	msg := tg.MessageFromCallback(cb)
	if msg == nil {
		return
	}

	view, err := r.renderFor(ctx, callbacks.Parse(cb.Data), cb.From)
	if err != nil {
		r.log.Warn("failed to render refreshed view",
			zap.Error(err), zap.String("data", cb.Data))
		r.touch(ctx, msg)
		return
	}
	if view == nil {
		// Неизвестная кнопка или данных уже нет: хотя бы «трогаем»
		// сообщение, чтобы клавиатура осталась живой
		r.touch(ctx, msg)
		return
	}

	r.apply(ctx, msg, view)
}

// renderFor повторяет рендер экрана, который показывало бы свежее
// нажатие этой же кнопки. nil, nil — форма кнопки не распознана.
func (r *Refresher) renderFor(ctx context.Context, cmd callbacks.Command, from models.User) (*views.Rendered, error) {
	ident := model.Identity{
		TelegramID: from.ID,
		Username:   from.Username,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}

	switch cmd.Kind {
	case callbacks.EventView, callbacks.EventPay, callbacks.EventPromo,
		callbacks.EventRefund, callbacks.EventRegister, callbacks.EventLeave:
		return r.views.EventCard(ctx, cmd.EventID, ident)
	case callbacks.MenuActual:
		return r.views.ActualList(ctx, 0)
	case callbacks.EventListPage:
		return r.views.ActualList(ctx, cmd.Page)
	case callbacks.MainMenu:
		return r.views.MainMenu(ctx, ident)
	case callbacks.MenuSettings:
		return r.views.Settings(), nil
	case callbacks.SettingsManage:
		return r.views.ManageList(ctx, 0)
	case callbacks.ManagePage:
		return r.views.ManageList(ctx, cmd.Page)
	case callbacks.EditEvent:
		return r.views.EditActions(ctx, cmd.EventID)
	case callbacks.EditParticipants:
		return r.views.Participants(ctx, cmd.EventID, 0)
	case callbacks.EditParticipantsPage:
		return r.views.Participants(ctx, cmd.EventID, cmd.Page)
	}
	return nil, nil
}

func (r *Refresher) apply(ctx context.Context, msg *models.Message, view *views.Rendered) {
	_, err := r.tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        view.Text,
		ReplyMarkup: view.Markup,
	})
	if err == nil || tg.IsNotModified(err) {
		return
	}

	// Сообщение могло быть с фотографией: текст не редактируется, подпись — да
	_, capErr := r.tg.EditMessageCaption(ctx, &bot.EditMessageCaptionParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Caption:     view.Text,
		ReplyMarkup: view.Markup,
	})
	if capErr == nil || tg.IsNotModified(capErr) {
		return
	}

	r.log.Debug("failed to refresh stale message",
		zap.Error(err),
		zap.Int64("chat_id", msg.Chat.ID),
		zap.Int("message_id", msg.ID))
}

// touch переотправляет текущую клавиатуру без изменения содержимого
func (r *Refresher) touch(ctx context.Context, msg *models.Message) {
	markup := msg.ReplyMarkup
	_, err := r.tg.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		ReplyMarkup: &markup,
	})
	if err != nil && !tg.IsNotModified(err) {
		r.log.Debug("failed to touch stale message",
			zap.Error(err),
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int("message_id", msg.ID))
	}
}
