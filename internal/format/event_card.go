package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/texts"
)

// DateLayout формат дат в чате (25.12.2026)
const DateLayout = "02.01.2006"

// CardOptions что показывать в карточке для конкретного зрителя
type CardOptions struct {
	Availability *model.Availability
	Discount     *decimal.Decimal // применённая скидка (платные события)
	Registered   bool
	Paid         bool
}

// EventCard собирает текст карточки события.
// Одна и та же функция используется при показе, в превью мастера
// и при обновлении устаревших сообщений.
func EventCard(ev *model.Event, opts CardOptions, tx *texts.Texts) string {
	var lines []string

	title := ev.Title
	if ev.IsCancelled() {
		title += "\n" + tx.T("event.card.cancelled", nil)
	}
	lines = append(lines, "🎟 "+title)
	lines = append(lines, "")

	if ev.EndDate != nil {
		lines = append(lines, tx.T("event.card.date_range", map[string]any{
			"from": ev.Date.Format(DateLayout),
			"to":   ev.EndDate.Format(DateLayout),
		}))
	} else {
		lines = append(lines, tx.T("event.card.date", map[string]any{
			"date": ev.Date.Format(DateLayout),
		}))
	}

	switch {
	case ev.Time != nil && ev.EndTime != nil:
		lines = append(lines, tx.T("event.card.period", map[string]any{
			"from": ev.Time.String(),
			"to":   ev.EndTime.String(),
		}))
	case ev.Time != nil:
		lines = append(lines, tx.T("event.card.time", map[string]any{
			"time": ev.Time.String(),
		}))
	}

	if ev.Place != nil && *ev.Place != "" {
		lines = append(lines, tx.T("event.card.place", map[string]any{"place": *ev.Place}))
	}

	lines = append(lines, costLine(ev, opts.Discount, tx))

	if opts.Availability != nil {
		if line := availabilityLine(*opts.Availability, tx); line != "" {
			lines = append(lines, line)
		}
	}

	if ev.Description != nil && *ev.Description != "" {
		lines = append(lines, "", *ev.Description)
	}

	switch {
	case opts.Paid:
		lines = append(lines, "", tx.T("event.card.paid", nil))
	case opts.Registered:
		lines = append(lines, "", tx.T("event.card.registered", nil))
	}

	return strings.Join(lines, "\n")
}

func costLine(ev *model.Event, discount *decimal.Decimal, tx *texts.Texts) string {
	if !ev.IsPaid() {
		return tx.T("event.card.free", nil)
	}
	cost := *ev.Cost
	if discount != nil && discount.IsPositive() {
		final := cost.Sub(*discount)
		if final.IsNegative() {
			final = decimal.Zero
		}
		return tx.T("event.card.cost_discount", map[string]any{
			"cost":  Money(cost),
			"final": Money(final),
		})
	}
	return tx.T("event.card.cost", map[string]any{"cost": Money(cost)})
}

func availabilityLine(a model.Availability, tx *texts.Texts) string {
	free := a.Free()
	if free == nil {
		if a.Going > 0 {
			return tx.T("event.card.going", map[string]any{"count": a.Going})
		}
		return ""
	}
	if *free == 0 {
		return tx.T("event.card.limit_full", nil)
	}
	return tx.T("event.card.limit", map[string]any{
		"free":  *free,
		"total": *a.Capacity,
	})
}

// Money сумма без лишних нулей: 1500, 1500.5
func Money(d decimal.Decimal) string {
	return d.Truncate(2).String()
}
