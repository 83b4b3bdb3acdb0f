package tg

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AnswerCallback отвечает на callback без текста (снимает «часики» с кнопки)
func AnswerCallback(ctx context.Context, c Client, callbackID string) {
	_, _ = c.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
	})
}

// AnswerCallbackToast короткий всплывающий ответ на callback
func AnswerCallbackToast(ctx context.Context, c Client, callbackID, text string) {
	_, _ = c.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
}

// AnswerCallbackAlert ответ на callback модальным окном
func AnswerCallbackAlert(ctx context.Context, c Client, callbackID, text string) {
	_, _ = c.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// MessageFromCallback сообщение, на котором нажали кнопку (nil для inline-режима)
func MessageFromCallback(cb *models.CallbackQuery) *models.Message {
	if cb == nil {
		return nil
	}
	return cb.Message.Message
}

// SafeDelete удаляет сообщение, молча глотая ошибки: сообщение могло
// быть уже удалено или старше 48 часов
func SafeDelete(ctx context.Context, c Client, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	_, _ = c.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
}

// SweepRecent удаляет сообщения чата, идя от fromMessageID вниз.
// Останавливается после maxMisses подряд неудачных удалений: значит,
// дальше только чужие или слишком старые сообщения.
func SweepRecent(ctx context.Context, c Client, chatID int64, fromMessageID, depth, maxMisses int) int {
	deleted := 0
	misses := 0
	for id := fromMessageID; id > fromMessageID-depth && id > 0; id-- {
		ok, err := c.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    chatID,
			MessageID: id,
		})
		if err != nil || !ok {
			misses++
			if misses >= maxMisses {
				break
			}
			continue
		}
		deleted++
		misses = 0
	}
	return deleted
}
