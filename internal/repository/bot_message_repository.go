package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velobro/event_bot/internal/repository/base"
)

// BotMessageRepository журнал отправленных ботом сообщений.
// Нужен для массовой зачистки чата и периодической уборки старых записей.
type BotMessageRepository struct {
	*base.Repository
}

func NewBotMessageRepository(pool *pgxpool.Pool) *BotMessageRepository {
	return &BotMessageRepository{Repository: base.NewRepository(pool)}
}

// Track запоминает отправленное сообщение
func (r *BotMessageRepository) Track(ctx context.Context, chatID int64, messageID int, sentAt time.Time) error {
	query := `
		INSERT INTO bot_messages (chat_id, message_id, sent_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, message_id) DO NOTHING
	`
	if _, err := r.ExecAffected(ctx, query, chatID, messageID, sentAt); err != nil {
		return fmt.Errorf("track bot message: %w", err)
	}
	return nil
}

// RecentByChat id сообщений чата, отправленных после since (свежие первыми)
func (r *BotMessageRepository) RecentByChat(ctx context.Context, chatID int64, since time.Time) ([]int, error) {
	rows, err := r.Query(ctx,
		`SELECT message_id FROM bot_messages WHERE chat_id = $1 AND sent_at >= $2 ORDER BY message_id DESC`,
		chatID, since)
	if err != nil {
		return nil, fmt.Errorf("list recent bot messages: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan bot message id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bot messages: %w", err)
	}

	return ids, nil
}

// DeleteOlderThan убирает записи о сообщениях, которые Telegram уже не даст удалить
func (r *BotMessageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	affected, err := r.ExecAffected(ctx,
		`DELETE FROM bot_messages WHERE sent_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old bot messages: %w", err)
	}
	return affected, nil
}
