package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
)

// MaxEventImages максимум фотографий, прикрепляемых к событию
const MaxEventImages = 10

type Event struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Date        time.Time        `json:"date"`     // только дата, время в Time
	EndDate     *time.Time       `json:"end_date"` // для многодневных событий
	Time        *TimeOfDay       `json:"time"`
	EndTime     *TimeOfDay       `json:"end_time"`
	Place       *string          `json:"place"`
	Description *string          `json:"description"`
	Cost        *decimal.Decimal `json:"cost"`
	Images      []string         `json:"images"` // telegram file_id
	Limit       *int             `json:"limit"`  // max участников, nil = без лимита

	Reminder3Days       bool       `json:"reminder_3days"`
	Reminder1Day        bool       `json:"reminder_1day"`
	Reminder3DaysSentAt *time.Time `json:"reminder_3days_sent_at"`
	Reminder1DaySentAt  *time.Time `json:"reminder_1day_sent_at"`

	Status    string    `json:"status"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// IsPaid событие платное, если стоимость задана и больше нуля
func (e *Event) IsPaid() bool {
	return e.Cost != nil && e.Cost.IsPositive()
}

// StartsAt момент начала события в заданной таймзоне.
// Если время не указано — полночь даты события.
func (e *Event) StartsAt(loc *time.Location) time.Time {
	h, m := 0, 0
	if e.Time != nil {
		h, m = e.Time.Hour, e.Time.Minute
	}
	return time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), h, m, 0, 0, loc)
}

// Started событие уже началось к моменту now
func (e *Event) Started(now time.Time, loc *time.Location) bool {
	return !now.Before(e.StartsAt(loc))
}

// IsCancelled статус события «отменено»
func (e *Event) IsCancelled() bool {
	return e.Status == EventStatusCancelled
}

// EventUpdate частичное обновление события: меняются только поля
// с выставленным флажком Set*, остальные не трогаем.
type EventUpdate struct {
	SetTitle bool
	Title    string

	SetDate bool
	Date    time.Time
	EndDate *time.Time

	SetTime bool
	Time    *TimeOfDay

	SetEndTime bool
	EndTime    *TimeOfDay

	SetPlace bool
	Place    *string

	SetDescription bool
	Description    *string

	SetCost bool
	Cost    *decimal.Decimal

	SetImages bool
	Images    []string

	SetLimit bool
	Limit    *int

	SetReminders  bool
	Reminder3Days bool
	Reminder1Day  bool

	SetReminder3DaysSentAt bool
	Reminder3DaysSentAt    *time.Time

	SetReminder1DaySentAt bool
	Reminder1DaySentAt    *time.Time

	SetStatus bool
	Status    string
}

// Empty обновление не содержит ни одного поля
func (u *EventUpdate) Empty() bool {
	return !(u.SetTitle || u.SetDate || u.SetTime || u.SetEndTime || u.SetPlace ||
		u.SetDescription || u.SetCost || u.SetImages || u.SetLimit || u.SetReminders ||
		u.SetReminder3DaysSentAt || u.SetReminder1DaySentAt || u.SetStatus)
}

// Availability занятость события для карточки и проверки лимита
type Availability struct {
	Going    int  // подтверждённых участников
	Capacity *int // nil = без лимита
}

// Free сколько мест осталось (nil = не ограничено)
func (a Availability) Free() *int {
	if a.Capacity == nil {
		return nil
	}
	free := *a.Capacity - a.Going
	if free < 0 {
		free = 0
	}
	return &free
}

// Full лимит достигнут
func (a Availability) Full() bool {
	f := a.Free()
	return f != nil && *f == 0
}
