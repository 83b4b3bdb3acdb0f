package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusCancelled = "cancelled"
)

// Payment платёж через ЮKassa. ID — идентификатор платежа на стороне шлюза.
type Payment struct {
	ID        string          `json:"id"`
	EventID   int64           `json:"event_id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	MessageID *int            `json:"message_id"` // сообщение с кнопкой оплаты, удаляем после успеха
	CreatedAt time.Time       `json:"created_at"`
	PaidAt    *time.Time      `json:"paid_at"`
}

func (p *Payment) Succeeded() bool {
	return p.Status == PaymentStatusSucceeded
}
