package wizard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velobro/event_bot/internal/model"
)

var msk = time.FixedZone("MSK", 3*60*60)

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange("25.12.2026", msk)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 25, 0, 0, 0, 0, msk), from)
	assert.Nil(t, to)

	from, to, err = ParseDateRange("  25.12.2026 - 27.12.2026 ", msk)
	require.NoError(t, err)
	require.NotNil(t, to)
	assert.Equal(t, time.Date(2026, 12, 25, 0, 0, 0, 0, msk), from)
	assert.Equal(t, time.Date(2026, 12, 27, 0, 0, 0, 0, msk), *to)

	// Длинное тире из мобильной клавиатуры
	_, to, err = ParseDateRange("25.12.2026—27.12.2026", msk)
	require.NoError(t, err)
	require.NotNil(t, to)
}

func TestParseDateRangeErrors(t *testing.T) {
	_, _, err := ParseDateRange("завтра", msk)
	assertParseKey(t, err, "create.date_invalid")

	_, _, err = ParseDateRange("2026-12-25", msk)
	assertParseKey(t, err, "create.date_invalid")

	_, _, err = ParseDateRange("27.12.2026-25.12.2026", msk)
	assertParseKey(t, err, "create.date_range_invalid")
}

func TestParseCost(t *testing.T) {
	cost, err := ParseCost("1500")
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromInt(1500)))

	cost, err = ParseCost("99,90")
	require.NoError(t, err)
	assert.Equal(t, "99.9", cost.String())

	_, err = ParseCost("-5")
	assertParseKey(t, err, "create.cost_invalid")

	_, err = ParseCost("дорого")
	assertParseKey(t, err, "create.cost_invalid")
}

func TestParsePeriod(t *testing.T) {
	from, to, err := ParsePeriod("18:30-21:00", nil)
	require.NoError(t, err)
	assert.Equal(t, model.TimeOfDay{Hour: 18, Minute: 30}, from)
	assert.Equal(t, model.TimeOfDay{Hour: 21, Minute: 0}, to)

	_, _, err = ParsePeriod("18:30", nil)
	assertParseKey(t, err, "create.period_invalid")

	_, _, err = ParsePeriod("21:00-18:30", nil)
	assertParseKey(t, err, "create.period_order")

	// Начало уже задано отдельным шагом и не совпадает
	start := model.TimeOfDay{Hour: 19, Minute: 0}
	_, _, err = ParsePeriod("18:30-21:00", &start)
	assertParseKey(t, err, "create.period_mismatch")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "19:00", pe.Data["time"])
}

func TestParsePromoAdd(t *testing.T) {
	code, discount, expires, err := ParsePromoAdd("лето2026 500", msk)
	require.NoError(t, err)
	assert.Equal(t, "ЛЕТО2026", code)
	assert.True(t, discount.Equal(decimal.NewFromInt(500)))
	assert.Nil(t, expires)

	code, _, expires, err = ParsePromoAdd("EARLY 300 01.06.2026", msk)
	require.NoError(t, err)
	assert.Equal(t, "EARLY", code)
	require.NotNil(t, expires)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, msk), *expires)

	for _, input := range []string{"", "КОД", "КОД ноль", "КОД -5", "КОД 100 завтра", "КОД 100 01.06.2026 лишнее"} {
		_, _, _, err := ParsePromoAdd(input, msk)
		assertParseKey(t, err, "promo.admin.add_invalid")
	}
}

func TestParseEditValue(t *testing.T) {
	ev := &model.Event{
		ID:    7,
		Title: "Старое название",
		Date:  time.Date(2026, 12, 25, 0, 0, 0, 0, msk),
	}

	upd, err := ParseEditValue("title", "Новое название", ev, msk)
	require.NoError(t, err)
	assert.True(t, upd.SetTitle)
	assert.Equal(t, "Новое название", upd.Title)

	_, err = ParseEditValue("title", "   ", ev, msk)
	assertParseKey(t, err, "create.title_empty")

	upd, err = ParseEditValue("cost", "0", ev, msk)
	require.NoError(t, err)
	assert.True(t, upd.SetCost)
	assert.Nil(t, upd.Cost) // ноль означает бесплатное событие

	upd, err = ParseEditValue("place", "", ev, msk)
	require.NoError(t, err)
	assert.True(t, upd.SetPlace)
	assert.Nil(t, upd.Place)

	_, err = ParseEditValue("nonexistent", "x", ev, msk)
	require.Error(t, err)
}

func assertParseKey(t *testing.T, err error, key string) {
	t.Helper()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, key, pe.Key)
}
