package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/repository/base"
)

type PromocodeRepository struct {
	*base.Repository
}

func NewPromocodeRepository(pool *pgxpool.Pool) *PromocodeRepository {
	return &PromocodeRepository{Repository: base.NewRepository(pool)}
}

const promocodeColumns = `id, event_id, code, discount, expires_at, is_active, created_at`

func scanPromocode(row pgx.Row) (*model.Promocode, error) {
	var (
		p        model.Promocode
		discount pgtype.Numeric
	)
	err := row.Scan(
		&p.ID,
		&p.EventID,
		&p.Code,
		&discount,
		&p.ExpiresAt,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if d := decimalOf(discount); d != nil {
		p.Discount = *d
	}
	return &p, nil
}

// Create добавляет промокод события. Код уникален в рамках события.
func (r *PromocodeRepository) Create(ctx context.Context, p *model.Promocode) error {
	query := `
		INSERT INTO promocodes (event_id, code, discount, expires_at)
		VALUES ($1, $2, $3::numeric, $4)
		ON CONFLICT (event_id, code) DO UPDATE SET
			discount   = EXCLUDED.discount,
			expires_at = EXCLUDED.expires_at,
			is_active  = TRUE
		RETURNING id, is_active, created_at
	`

	discount := p.Discount
	err := r.QueryRow(ctx, query, p.EventID, p.Code, numericArg(&discount), p.ExpiresAt).
		Scan(&p.ID, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create promocode: %w", err)
	}
	return nil
}

// GetByCode активный промокод события по коду (nil, если нет)
func (r *PromocodeRepository) GetByCode(ctx context.Context, eventID int64, code string) (*model.Promocode, error) {
	query := `
		SELECT ` + promocodeColumns + `
		FROM promocodes
		WHERE event_id = $1 AND code = $2 AND is_active
	`

	p, err := scanPromocode(r.QueryRow(ctx, query, eventID, code))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promocode: %w", err)
	}
	return p, nil
}

// ListByEvent все промокоды события
func (r *PromocodeRepository) ListByEvent(ctx context.Context, eventID int64) ([]model.Promocode, error) {
	query := `
		SELECT ` + promocodeColumns + `
		FROM promocodes
		WHERE event_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list promocodes: %w", err)
	}
	defer rows.Close()

	var codes []model.Promocode
	for rows.Next() {
		p, err := scanPromocode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promocode: %w", err)
		}
		codes = append(codes, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promocodes: %w", err)
	}

	return codes, nil
}

// Delete удаляет промокод события по коду
func (r *PromocodeRepository) Delete(ctx context.Context, eventID int64, code string) (bool, error) {
	affected, err := r.ExecAffected(ctx,
		`DELETE FROM promocodes WHERE event_id = $1 AND code = $2`, eventID, code)
	if err != nil {
		return false, fmt.Errorf("delete promocode: %w", err)
	}
	return affected > 0, nil
}

// IsUsedBy применял ли пользователь этот промокод
func (r *PromocodeRepository) IsUsedBy(ctx context.Context, promocodeID, userID int64) (bool, error) {
	var used bool
	err := r.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM promocode_uses WHERE promocode_id = $1 AND user_id = $2)`,
		promocodeID, userID).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("check promocode use: %w", err)
	}
	return used, nil
}

// MarkUsed фиксирует применение промокода пользователем
func (r *PromocodeRepository) MarkUsed(ctx context.Context, promocodeID, userID int64, usedAt time.Time) error {
	query := `
		INSERT INTO promocode_uses (promocode_id, user_id, used_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (promocode_id, user_id) DO NOTHING
	`
	if _, err := r.ExecAffected(ctx, query, promocodeID, userID, usedAt); err != nil {
		return fmt.Errorf("mark promocode used: %w", err)
	}
	return nil
}

// UserDiscount лучшая скидка из применённых пользователем промокодов события
func (r *PromocodeRepository) UserDiscount(ctx context.Context, eventID, userID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(max(p.discount), 0)
		FROM promocode_uses u
		JOIN promocodes p ON p.id = u.promocode_id
		WHERE p.event_id = $1 AND u.user_id = $2
	`

	var discount pgtype.Numeric
	if err := r.QueryRow(ctx, query, eventID, userID).Scan(&discount); err != nil {
		return decimal.Zero, fmt.Errorf("get user discount: %w", err)
	}
	if d := decimalOf(discount); d != nil {
		return *d, nil
	}
	return decimal.Zero, nil
}
