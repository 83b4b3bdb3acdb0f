package session

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velobro/event_bot/internal/model"
)

// Key сессия привязана к паре чат+пользователь
type Key struct {
	ChatID int64 `json:"chat_id"`
	UserID int64 `json:"user_id"`
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d", k.ChatID, k.UserID)
}

// Draft черновик события, который собирает мастер создания.
// Сериализуется в JSON для хранения в Redis.
type Draft struct {
	Title         string           `json:"title"`
	Date          *time.Time       `json:"date,omitempty"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
	Time          *model.TimeOfDay `json:"time,omitempty"`
	EndTime       *model.TimeOfDay `json:"end_time,omitempty"`
	Place         *string          `json:"place,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	Images        []string         `json:"images,omitempty"`
	Limit         *int             `json:"limit,omitempty"`
	Reminder3Days bool             `json:"reminder_3days"`
	Reminder1Day  bool             `json:"reminder_1day"`
}

// Screen экран режима редактирования, хранится в стеке возврата
type Screen string

const (
	ScreenActions      Screen = "actions"
	ScreenFields       Screen = "fields"
	ScreenValue        Screen = "value"
	ScreenImages       Screen = "images"
	ScreenReminders    Screen = "reminders"
	ScreenParticipants Screen = "participants"
	ScreenPromocodes   Screen = "promocodes"
	ScreenBroadcast    Screen = "broadcast"
	ScreenCancel       Screen = "cancel"
)

// EditState состояние режима редактирования события
type EditState struct {
	EventID int64    `json:"event_id"`
	Stack   []Screen `json:"stack,omitempty"` // откуда пришли, для кнопки «Назад»
	Field   string   `json:"field,omitempty"` // какое поле сейчас вводится

	// Накопленные фотографии и флаг «пользователь их менял»
	Images []string `json:"images,omitempty"`
	Dirty  bool     `json:"dirty"`

	// Черновик переключателей напоминаний
	Reminder3Days bool `json:"reminder_3days"`
	Reminder1Day  bool `json:"reminder_1day"`
}

// Ref ссылка на сообщение бота (активная подсказка диалога)
type Ref struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// Session всё состояние диалога одного пользователя
type Session struct {
	Step    Step   `json:"step"`
	History []Step `json:"history,omitempty"` // пройденные шаги мастера, для «Назад»
	Draft   Draft  `json:"draft"`

	Prompt *Ref  `json:"prompt,omitempty"` // активная подсказка
	Aux    []Ref `json:"aux,omitempty"`    // вспомогательные сообщения (медиа превью)

	Edit EditState `json:"edit"`

	// Событие, к которому пользователь вводит промокод
	PromoEventID int64 `json:"promo_event_id,omitempty"`
}

// PushHistory запоминает пройденный шаг
func (s *Session) PushHistory(step Step) {
	s.History = append(s.History, step)
}

// PopHistory снимает последний шаг (StepNone, если история пуста)
func (s *Session) PopHistory() Step {
	if len(s.History) == 0 {
		return StepNone
	}
	step := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	return step
}

// PushScreen кладёт экран редактирования в стек возврата
func (s *Session) PushScreen(screen Screen) {
	s.Edit.Stack = append(s.Edit.Stack, screen)
}

// PopScreen снимает верхний экран (ScreenActions, если стек пуст)
func (s *Session) PopScreen() Screen {
	if len(s.Edit.Stack) == 0 {
		return ScreenActions
	}
	screen := s.Edit.Stack[len(s.Edit.Stack)-1]
	s.Edit.Stack = s.Edit.Stack[:len(s.Edit.Stack)-1]
	return screen
}

// ResetEdit возвращает режим редактирования к корневому экрану,
// сбрасывая накопленные черновики
func (s *Session) ResetEdit(eventID int64) {
	s.Edit = EditState{
		EventID: eventID,
		Stack:   []Screen{ScreenActions},
	}
}

// Store хранилище сессий. Конкурентные апдейты разрешаются по принципу
// «последняя запись побеждает» — для диалога одного человека этого достаточно.
type Store interface {
	// Get возвращает копию сессии (пустую, если сессии нет)
	Get(ctx context.Context, key Key) (*Session, error)
	// Put сохраняет сессию целиком
	Put(ctx context.Context, key Key, s *Session) error
	// Clear удаляет сессию
	Clear(ctx context.Context, key Key) error
}
