package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/app"
	"github.com/velobro/event_bot/internal/config"
	"github.com/velobro/event_bot/internal/controller"
	"github.com/velobro/event_bot/internal/controller/deps"
	"github.com/velobro/event_bot/internal/controller/refresh"
	"github.com/velobro/event_bot/internal/controller/views"
	"github.com/velobro/event_bot/internal/notify"
	"github.com/velobro/event_bot/internal/repository"
	"github.com/velobro/event_bot/internal/service"
	"github.com/velobro/event_bot/internal/session"
	"github.com/velobro/event_bot/internal/texts"
	"github.com/velobro/event_bot/internal/webhook"
	"github.com/velobro/event_bot/internal/yookassa"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting event bot",
		"environment", cfg.Environment,
		"token_length", len(cfg.TelegramToken))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// База данных
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, "migrations", logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Локализованные тексты
	tx, err := texts.New()
	if err != nil {
		logger.Fatal("Failed to load texts", zap.Error(err))
	}

	// Диалоговые сессии: Redis, если настроен, иначе память процесса
	var sessions session.Store
	if cfg.RedisAddr != "" {
		rs := session.NewRedisStore(cfg.RedisAddr)
		if err := rs.Ping(ctx); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rs.Close()
		sessions = rs
		logger.Info("Sessions stored in Redis", zap.String("addr", cfg.RedisAddr))
	} else {
		sessions = session.NewMemoryStore()
		logger.Info("Sessions stored in memory")
	}

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	promoRepo := repository.NewPromocodeRepository(pool)
	msgRepo := repository.NewBotMessageRepository(pool)

	// Сервисы
	gateway := yookassa.NewClient(cfg.YooKassaShopID, cfg.YooKassaSecret, cfg.PaymentReturn)
	userSvc := service.NewUserService(userRepo, cfg.IsModerator, logger)
	eventSvc := service.NewEventService(eventRepo, cfg.Location, logger)
	regSvc := service.NewRegistrationService(regRepo, logger)
	paymentSvc := service.NewPaymentService(paymentRepo, regRepo, gateway, logger)
	promoSvc := service.NewPromocodeService(promoRepo, cfg.Location, logger)
	notifier := notify.New(b, userRepo, regRepo, msgRepo, tx, cfg.SupportURL, logger)
	reminderSvc := service.NewReminderService(
		eventRepo, notifier, cfg.Location,
		cfg.ReminderHour, cfg.Reminder3DaysMinutes, cfg.Reminder1DayMinutes,
		logger)

	d := &deps.Deps{
		Events:        eventSvc,
		Users:         userSvc,
		Registrations: regSvc,
		Payments:      paymentSvc,
		Promocodes:    promoSvc,
		Notify:        notifier,
		Messages:      msgRepo,
		Sessions:      sessions,
		TG:            b,
		Texts:         tx,
		Log:           logger,
		CommunityURL:  cfg.CommunityURL,
		SupportURL:    cfg.SupportURL,
		Location:      cfg.Location,
	}

	v := views.New(d)
	refresher := refresh.New(v, b, logger, 0)

	ctrl := controller.NewBotController(b, d, v, refresher.Middleware())
	if err := ctrl.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	// Фоновые задачи
	scheduler, err := app.NewScheduler(reminderSvc, msgRepo, logger)
	if err != nil {
		logger.Fatal("Failed to create scheduler", zap.Error(err))
	}
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// Вебхук ЮKassa
	if cfg.WebhookListen != "" {
		srv := webhook.NewServer(paymentSvc, eventSvc, userSvc, b, tx, cfg.Environment, logger)
		go func() {
			if err := srv.Run(cfg.WebhookListen); err != nil {
				logger.Error("Webhook server stopped", zap.Error(err))
			}
		}()
	}

	ctrl.Start(ctx)
	logger.Info("Bot stopped")
}
