package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Promocode struct {
	ID        int64           `json:"id"`
	EventID   int64           `json:"event_id"`
	Code      string          `json:"code"` // хранится в верхнем регистре
	Discount  decimal.Decimal `json:"discount"`
	ExpiresAt *time.Time      `json:"expires_at"` // nil = бессрочный
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// Expired промокод просрочен к моменту now
func (p *Promocode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(p.ExpiresAt.AddDate(0, 0, 1))
}

// PromoReason причина отказа в применении промокода
type PromoReason int

const (
	PromoOK PromoReason = iota
	PromoNotFound
	PromoExpired
	PromoAlreadyUsed
)

// PromoResult результат применения промокода к событию
type PromoResult struct {
	Reason   PromoReason
	Discount decimal.Decimal // скидка при Reason == PromoOK
}

func (r PromoResult) OK() bool {
	return r.Reason == PromoOK
}
