// Package controller связывает Telegram-апдейты с обработчиками:
// маршрутизация кнопок, диалоговые сообщения, меню команд.
package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/controller/deps"
	"github.com/velobro/event_bot/internal/controller/handlers"
	"github.com/velobro/event_bot/internal/controller/prompt"
	"github.com/velobro/event_bot/internal/controller/views"
	"github.com/velobro/event_bot/internal/controller/wizard"
)

type BotController struct {
	bot       *bot.Bot
	d         *deps.Deps
	views     *views.Views
	handlers  *handlers.Handlers
	wizard    *wizard.Wizard
	refreshMW bot.Middleware
	log       *zap.Logger
}

// NewBotController собирает контроллер. refreshMW (middleware
// обновления устаревших сообщений) может быть nil.
func NewBotController(botInstance *bot.Bot, d *deps.Deps, v *views.Views, refreshMW bot.Middleware) *BotController {
	prompts := prompt.NewManager(d.TG, d.Messages, d.Log)

	return &BotController{
		bot:       botInstance,
		d:         d,
		views:     v,
		handlers:  handlers.New(d, v),
		wizard:    wizard.New(d, v, prompts),
		refreshMW: refreshMW,
		log:       d.Log,
	}
}

// RegisterHandlers регистрирует все обработчики апдейтов
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handleStart)

	// Текст и фотографии диалогов (мастер создания, редактирование, промокоды)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handleMessage)

	// Нажатия inline-кнопок проходят через обновление устаревших сообщений
	callback := bot.HandlerFunc(c.handleCallback)
	if c.refreshMW != nil {
		callback = c.refreshMW(callback)
	}
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, callback)

	return c.setCommands(ctx)
}

func (c *BotController) handleStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	defer c.recoverPanic("start")
	if update.Message == nil {
		return
	}
	c.handlers.Start(ctx, update.Message)
}

// setCommands устанавливает меню команд бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Главное меню"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.log.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.log.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает получение апдейтов, блокируется до отмены контекста
func (c *BotController) Start(ctx context.Context) {
	c.log.Info("Starting bot...")
	c.bot.Start(ctx)
}
