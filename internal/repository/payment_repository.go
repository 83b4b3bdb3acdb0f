package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/repository/base"
)

type PaymentRepository struct {
	*base.Repository
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{Repository: base.NewRepository(pool)}
}

const paymentColumns = `id, event_id, user_id, amount, status, message_id, created_at, paid_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var (
		p      model.Payment
		amount pgtype.Numeric
	)
	err := row.Scan(
		&p.ID,
		&p.EventID,
		&p.UserID,
		&amount,
		&p.Status,
		&p.MessageID,
		&p.CreatedAt,
		&p.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	if d := decimalOf(amount); d != nil {
		p.Amount = *d
	}
	return &p, nil
}

// Create сохраняет платёж, созданный на стороне шлюза
func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (id, event_id, user_id, amount, status)
		VALUES ($1, $2, $3, $4::numeric, $5)
		RETURNING created_at
	`

	status := p.Status
	if status == "" {
		status = model.PaymentStatusPending
	}

	amount := p.Amount
	err := r.QueryRow(ctx, query, p.ID, p.EventID, p.UserID, numericArg(&amount), status).
		Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	p.Status = status
	return nil
}

// GetByID получает платёж по идентификатору шлюза
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	p, err := scanPayment(r.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// GetSucceeded успешный платёж пользователя за событие (nil, если нет)
func (r *PaymentRepository) GetSucceeded(ctx context.Context, eventID, userID int64) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE event_id = $1 AND user_id = $2 AND status = $3
		ORDER BY paid_at DESC
		LIMIT 1
	`

	p, err := scanPayment(r.QueryRow(ctx, query, eventID, userID, model.PaymentStatusSucceeded))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get succeeded payment: %w", err)
	}
	return p, nil
}

// MarkSucceeded помечает платёж успешным. Возвращает false, если платёж
// уже был помечен раньше (идемпотентность вебхука).
func (r *PaymentRepository) MarkSucceeded(ctx context.Context, id string, paidAt time.Time) (bool, error) {
	affected, err := r.ExecAffected(ctx,
		`UPDATE payments SET status = $2, paid_at = $3 WHERE id = $1 AND status <> $2`,
		id, model.PaymentStatusSucceeded, paidAt)
	if err != nil {
		return false, fmt.Errorf("mark payment succeeded: %w", err)
	}
	return affected > 0, nil
}

// MarkCancelled помечает платёж отменённым (возврат средств)
func (r *PaymentRepository) MarkCancelled(ctx context.Context, id string) error {
	if _, err := r.ExecAffected(ctx,
		`UPDATE payments SET status = $2 WHERE id = $1`,
		id, model.PaymentStatusCancelled); err != nil {
		return fmt.Errorf("mark payment cancelled: %w", err)
	}
	return nil
}

// SetMessageID запоминает сообщение с кнопкой оплаты, чтобы удалить его после успеха
func (r *PaymentRepository) SetMessageID(ctx context.Context, id string, messageID int) error {
	if _, err := r.ExecAffected(ctx,
		`UPDATE payments SET message_id = $2 WHERE id = $1`, id, messageID); err != nil {
		return fmt.Errorf("set payment message id: %w", err)
	}
	return nil
}
