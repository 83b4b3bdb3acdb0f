package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	DBDSN         string
	Environment   string

	// Telegram ID модераторов через запятую (MODERATOR_IDS=123,456)
	ModeratorIDs []int64

	// Адрес Redis для хранения диалоговых сессий.
	// Если пустой — сессии живут в памяти процесса.
	RedisAddr string

	CommunityURL string
	SupportURL   string

	YooKassaShopID string
	YooKassaSecret string
	PaymentReturn  string
	WebhookListen  string

	// Таймзона, в которой считаем даты событий и напоминания
	Location *time.Location

	// Час отправки напоминаний по умолчанию (19:00)
	ReminderHour int

	// Переопределение интервалов напоминаний в минутах (для тестовых стендов).
	// 0 — используется штатный интервал (3 дня / 1 день).
	Reminder3DaysMinutes int
	Reminder1DayMinutes  int
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DBDSN:          os.Getenv("DB_DSN"),
		Environment:    os.Getenv("ENV"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		CommunityURL:   os.Getenv("COMMUNITY_URL"),
		SupportURL:     os.Getenv("SUPPORT_URL"),
		YooKassaShopID: os.Getenv("YOOKASSA_SHOP_ID"),
		YooKassaSecret: os.Getenv("YOOKASSA_SECRET_KEY"),
		PaymentReturn:  os.Getenv("PAYMENT_RETURN_URL"),
		WebhookListen:  os.Getenv("WEBHOOK_LISTEN"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.WebhookListen == "" {
		cfg.WebhookListen = ":8080"
	}

	cfg.ModeratorIDs = parseIDList(os.Getenv("MODERATOR_IDS"))

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = "Europe/Moscow"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	cfg.Location = loc

	cfg.ReminderHour = parseIntDefault(os.Getenv("REMINDER_HOUR"), 19)
	cfg.Reminder3DaysMinutes = parseIntDefault(os.Getenv("REMINDER_3DAYS_MINUTES"), 0)
	cfg.Reminder1DayMinutes = parseIntDefault(os.Getenv("REMINDER_1DAY_MINUTES"), 0)

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

// IsModerator проверяет, входит ли telegram_id в список модераторов
func (c *Config) IsModerator(telegramID int64) bool {
	for _, id := range c.ModeratorIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func parseIDList(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("⚠️  Skipping invalid id %q in MODERATOR_IDS", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
