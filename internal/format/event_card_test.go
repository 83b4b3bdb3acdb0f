package format

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/texts"
)

func newTexts(t *testing.T) *texts.Texts {
	t.Helper()
	tx, err := texts.New()
	require.NoError(t, err)
	return tx
}

func TestEventCardMinimal(t *testing.T) {
	tx := newTexts(t)
	ev := &model.Event{
		Title:  "Йога в парке",
		Date:   time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC),
		Status: model.EventStatusActive,
	}

	card := EventCard(ev, CardOptions{}, tx)
	assert.Contains(t, card, "Йога в парке")
	assert.Contains(t, card, "25.12.2026")
	// Бесплатное событие без стоимости
	assert.Contains(t, card, tx.T("event.card.free", nil))
}

func TestEventCardFull(t *testing.T) {
	tx := newTexts(t)
	cost := decimal.NewFromInt(1500)
	place := "Парк Горького"
	desc := "Берите коврики"
	limit := 20
	end := time.Date(2026, 12, 27, 0, 0, 0, 0, time.UTC)

	ev := &model.Event{
		Title:       "Ретрит",
		Date:        time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC),
		EndDate:     &end,
		Time:        &model.TimeOfDay{Hour: 18, Minute: 30},
		EndTime:     &model.TimeOfDay{Hour: 21, Minute: 0},
		Place:       &place,
		Description: &desc,
		Cost:        &cost,
		Limit:       &limit,
		Status:      model.EventStatusActive,
	}

	card := EventCard(ev, CardOptions{
		Availability: &model.Availability{Going: 5, Capacity: &limit},
		Registered:   true,
	}, tx)

	assert.Contains(t, card, "25.12.2026")
	assert.Contains(t, card, "27.12.2026")
	assert.Contains(t, card, "18:30")
	assert.Contains(t, card, "21:00")
	assert.Contains(t, card, "Парк Горького")
	assert.Contains(t, card, "1500")
	assert.Contains(t, card, "Берите коврики")
	assert.Contains(t, card, tx.T("event.card.registered", nil))
}

func TestEventCardDiscount(t *testing.T) {
	tx := newTexts(t)
	cost := decimal.NewFromInt(1000)
	discount := decimal.NewFromInt(300)

	ev := &model.Event{
		Title:  "Концерт",
		Date:   time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC),
		Cost:   &cost,
		Status: model.EventStatusActive,
	}

	card := EventCard(ev, CardOptions{Discount: &discount}, tx)
	assert.Contains(t, card, "1000")
	assert.Contains(t, card, "700")

	// Скидка больше стоимости даёт ноль, не отрицательную цену
	big := decimal.NewFromInt(5000)
	card = EventCard(ev, CardOptions{Discount: &big}, tx)
	assert.NotContains(t, card, "-")
	assert.Contains(t, card, "0")
}

func TestEventCardCancelled(t *testing.T) {
	tx := newTexts(t)
	ev := &model.Event{
		Title:  "Отменённое",
		Date:   time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC),
		Status: model.EventStatusCancelled,
	}

	card := EventCard(ev, CardOptions{}, tx)
	assert.Contains(t, card, tx.T("event.card.cancelled", nil))
}

func TestEventCardFullHouse(t *testing.T) {
	tx := newTexts(t)
	limit := 10
	ev := &model.Event{
		Title:  "Аншлаг",
		Date:   time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC),
		Limit:  &limit,
		Status: model.EventStatusActive,
	}

	card := EventCard(ev, CardOptions{
		Availability: &model.Availability{Going: 10, Capacity: &limit},
	}, tx)
	assert.Contains(t, card, tx.T("event.card.limit_full", nil))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "1500", Money(decimal.NewFromInt(1500)))
	assert.Equal(t, "99.9", Money(decimal.RequireFromString("99.90")))
	assert.False(t, strings.Contains(Money(decimal.RequireFromString("10.005")), "005"))
}
