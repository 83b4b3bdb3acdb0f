package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velobro/event_bot/internal/format"
	"github.com/velobro/event_bot/internal/model"
)

// Разбор пользовательского ввода шагов мастера. Функции чистые,
// ошибки — ключи текстов, которые показываются как есть.

// ParseError ошибка валидации шага: ключ текста плюс данные шаблона
type ParseError struct {
	Key  string
	Data map[string]any
}

func (e *ParseError) Error() string {
	return e.Key
}

func parseErr(key string, data map[string]any) error {
	return &ParseError{Key: key, Data: data}
}

// дефисы, которые пользователи присылают вместо обычного
var dashReplacer = strings.NewReplacer("—", "-", "–", "-")

// ParseDateRange дата "25.12.2026" или диапазон "25.12.2026-27.12.2026"
func ParseDateRange(input string, loc *time.Location) (time.Time, *time.Time, error) {
	raw := dashReplacer.Replace(strings.TrimSpace(input))

	fromStr, toStr, isRange := strings.Cut(raw, "-")
	from, err := time.ParseInLocation(format.DateLayout, strings.TrimSpace(fromStr), loc)
	if err != nil {
		return time.Time{}, nil, parseErr("create.date_invalid", nil)
	}
	if !isRange {
		return from, nil, nil
	}

	to, err := time.ParseInLocation(format.DateLayout, strings.TrimSpace(toStr), loc)
	if err != nil {
		return time.Time{}, nil, parseErr("create.date_invalid", nil)
	}
	if to.Before(from) {
		return time.Time{}, nil, parseErr("create.date_range_invalid", nil)
	}
	return from, &to, nil
}

// ParseCost стоимость в рублях, неотрицательная. Запятая допускается.
func ParseCost(input string) (decimal.Decimal, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	cost, err := decimal.NewFromString(raw)
	if err != nil || cost.IsNegative() {
		return decimal.Zero, parseErr("create.cost_invalid", nil)
	}
	return cost, nil
}

// ParseTime время начала "18:30"
func ParseTime(input string) (model.TimeOfDay, error) {
	t, err := model.ParseTimeOfDay(input)
	if err != nil {
		return model.TimeOfDay{}, parseErr("create.time_invalid", nil)
	}
	return t, nil
}

// ParsePeriod период "18:30-21:00". Если начало события уже задано,
// начало периода обязано с ним совпадать.
func ParsePeriod(input string, startAt *model.TimeOfDay) (model.TimeOfDay, model.TimeOfDay, error) {
	raw := dashReplacer.Replace(strings.TrimSpace(input))

	fromStr, toStr, ok := strings.Cut(raw, "-")
	if !ok {
		return model.TimeOfDay{}, model.TimeOfDay{}, parseErr("create.period_invalid", nil)
	}
	from, err := model.ParseTimeOfDay(fromStr)
	if err != nil {
		return model.TimeOfDay{}, model.TimeOfDay{}, parseErr("create.period_invalid", nil)
	}
	to, err := model.ParseTimeOfDay(toStr)
	if err != nil {
		return model.TimeOfDay{}, model.TimeOfDay{}, parseErr("create.period_invalid", nil)
	}
	if !from.Before(to) {
		return model.TimeOfDay{}, model.TimeOfDay{}, parseErr("create.period_order", nil)
	}
	if startAt != nil && !from.Equal(*startAt) {
		return model.TimeOfDay{}, model.TimeOfDay{}, parseErr("create.period_mismatch",
			map[string]any{"time": startAt.String()})
	}
	return from, to, nil
}

// ParseLimit лимит участников, целое больше нуля
func ParseLimit(input string) (int, error) {
	limit, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || limit <= 0 {
		return 0, parseErr("create.limit_invalid", nil)
	}
	return limit, nil
}

// ParsePromoAdd строка модератора "КОД СКИДКА [ДД.ММ.ГГГГ]"
func ParsePromoAdd(input string, loc *time.Location) (code string, discount decimal.Decimal, expiresAt *time.Time, err error) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) < 2 || len(fields) > 3 {
		return "", decimal.Zero, nil, parseErr("promo.admin.add_invalid", nil)
	}

	code = strings.ToUpper(fields[0])
	discount, derr := decimal.NewFromString(strings.ReplaceAll(fields[1], ",", "."))
	if derr != nil || !discount.IsPositive() {
		return "", decimal.Zero, nil, parseErr("promo.admin.add_invalid", nil)
	}

	if len(fields) == 3 {
		until, perr := time.ParseInLocation(format.DateLayout, fields[2], loc)
		if perr != nil {
			return "", decimal.Zero, nil, parseErr("promo.admin.add_invalid", nil)
		}
		expiresAt = &until
	}
	return code, discount, expiresAt, nil
}

// ParseEditValue новое значение поля в режиме редактирования
func ParseEditValue(field, input string, ev *model.Event, loc *time.Location) (model.EventUpdate, error) {
	var upd model.EventUpdate
	text := strings.TrimSpace(input)

	switch field {
	case "title":
		if text == "" {
			return upd, parseErr("create.title_empty", nil)
		}
		upd.SetTitle = true
		upd.Title = text
	case "date":
		from, to, err := ParseDateRange(text, loc)
		if err != nil {
			return upd, err
		}
		upd.SetDate = true
		upd.Date = from
		upd.EndDate = to
	case "time":
		t, err := ParseTime(text)
		if err != nil {
			return upd, err
		}
		upd.SetTime = true
		upd.Time = &t
		// Старое окончание могло стать бессмысленным
		if ev.EndTime != nil && !t.Before(*ev.EndTime) {
			upd.SetEndTime = true
			upd.EndTime = nil
		}
	case "place":
		upd.SetPlace = true
		if text != "" {
			upd.Place = &text
		}
	case "description":
		upd.SetDescription = true
		if text != "" {
			upd.Description = &text
		}
	case "cost":
		cost, err := ParseCost(text)
		if err != nil {
			return upd, err
		}
		upd.SetCost = true
		if cost.IsPositive() {
			upd.Cost = &cost
		}
	case "limit":
		limit, err := ParseLimit(text)
		if err != nil {
			return upd, err
		}
		upd.SetLimit = true
		upd.Limit = &limit
	default:
		return upd, fmt.Errorf("unknown field %q", field)
	}
	return upd, nil
}
