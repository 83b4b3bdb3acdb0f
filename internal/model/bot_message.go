package model

import "time"

// BotMessage отправленное ботом сообщение, которое можно удалить при «очистке» чата
type BotMessage struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	MessageID int       `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}
