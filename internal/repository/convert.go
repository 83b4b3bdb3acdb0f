package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/velobro/event_bot/internal/model"
)

// Конвертация между типами pgx и моделями.
// Колонки TIME ездят как pgtype.Time, NUMERIC — как pgtype.Numeric.

func pgTime(t *model.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{
		Microseconds: int64(t.Minutes()) * 60 * 1_000_000,
		Valid:        true,
	}
}

func timeOfDay(t pgtype.Time) *model.TimeOfDay {
	if !t.Valid {
		return nil
	}
	mins := int(t.Microseconds / 60_000_000)
	return &model.TimeOfDay{Hour: mins / 60, Minute: mins % 60}
}

func decimalOf(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid || n.NaN {
		return nil
	}
	d := decimal.NewFromBigInt(n.Int, n.Exp)
	return &d
}

// numericArg передаёт decimal в NUMERIC-колонку строкой, SQL кастует ::numeric
func numericArg(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
