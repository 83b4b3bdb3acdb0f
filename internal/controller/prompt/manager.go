// Package prompt управляет «активной подсказкой» диалога — единственным
// сообщением бота, через которое идёт мастер. Новая подсказка убирает
// старую, чтобы в чате не копились шаги.
package prompt

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/session"
	"github.com/velobro/event_bot/internal/tg"
)

// Recorder журнал отправленных сообщений (опционален)
type Recorder interface {
	Track(ctx context.Context, chatID int64, messageID int, sentAt time.Time) error
}

type Manager struct {
	tg  tg.Client
	rec Recorder
	log *zap.Logger
	now func() time.Time
}

func NewManager(client tg.Client, rec Recorder, log *zap.Logger) *Manager {
	return &Manager{
		tg:  client,
		rec: rec,
		log: log,
		now: time.Now,
	}
}

// Render удаляет текущую подсказку вместе со вспомогательными
// сообщениями и отправляет новую. Сессию сохраняет вызывающий.
func (m *Manager) Render(ctx context.Context, s *session.Session, chatID int64, text string, markup models.ReplyMarkup) {
	m.Remove(ctx, s)

	sent, err := m.tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		m.log.Error("failed to send prompt", zap.Error(err), zap.Int64("chat_id", chatID))
		return
	}

	s.Prompt = &session.Ref{ChatID: chatID, MessageID: sent.ID}
	m.record(ctx, chatID, sent.ID)
}

// Update редактирует подсказку на месте. Если подсказки нет или
// редактирование не удалось — отправляет новую.
func (m *Manager) Update(ctx context.Context, s *session.Session, chatID int64, text string, markup models.ReplyMarkup) {
	if s.Prompt == nil {
		m.Render(ctx, s, chatID, text, markup)
		return
	}

	var inline models.ReplyMarkup
	if mk, ok := markup.(*models.InlineKeyboardMarkup); ok {
		inline = mk
	}
	_, err := m.tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      s.Prompt.ChatID,
		MessageID:   s.Prompt.MessageID,
		Text:        text,
		ReplyMarkup: inline,
	})
	if err == nil || tg.IsNotModified(err) {
		return
	}

	m.log.Debug("prompt edit failed, sending a new one",
		zap.Error(err), zap.Int64("chat_id", chatID))
	m.Render(ctx, s, chatID, text, markup)
}

// Remove удаляет подсказку и вспомогательные сообщения
func (m *Manager) Remove(ctx context.Context, s *session.Session) {
	if s.Prompt != nil {
		tg.SafeDelete(ctx, m.tg, s.Prompt.ChatID, s.Prompt.MessageID)
		s.Prompt = nil
	}
	m.ClearAux(ctx, s)
}

// TrackAux запоминает вспомогательные сообщения (медиа превью),
// чтобы убрать их вместе с подсказкой
func (m *Manager) TrackAux(ctx context.Context, s *session.Session, refs ...session.Ref) {
	s.Aux = append(s.Aux, refs...)
	for _, ref := range refs {
		m.record(ctx, ref.ChatID, ref.MessageID)
	}
}

// ClearAux удаляет вспомогательные сообщения
func (m *Manager) ClearAux(ctx context.Context, s *session.Session) {
	for _, ref := range s.Aux {
		tg.SafeDelete(ctx, m.tg, ref.ChatID, ref.MessageID)
	}
	s.Aux = nil
}

func (m *Manager) record(ctx context.Context, chatID int64, messageID int) {
	if m.rec == nil {
		return
	}
	if err := m.rec.Track(ctx, chatID, messageID, m.now()); err != nil {
		m.log.Warn("failed to track bot message", zap.Error(err))
	}
}
