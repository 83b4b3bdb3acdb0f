package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velobro/event_bot/internal/controller/callbacks"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/session"
)

func seedEvent(env *testEnv, id int64) *model.Event {
	ev := &model.Event{
		ID:     id,
		Title:  "Йога в парке",
		Date:   time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC),
		Status: model.EventStatusActive,
	}
	env.events.events[id] = ev
	return ev
}

func (e *testEnv) editInput(t *testing.T, text string) *session.Session {
	t.Helper()
	ctx := context.Background()
	s := e.load(t)
	require.True(t, e.w.HandleEditMessage(ctx, e.key, s, e.message(text)))
	return e.load(t)
}

// Правка поля: выбор экранов, ввод значения, сброс стека к корню
func TestEditFieldCommit(t *testing.T) {
	env := newTestEnv(t)
	seedEvent(env, 1)
	ctx := context.Background()

	env.w.OpenEdit(ctx, env.key, env.load(t), 1, 5)
	s := env.load(t)
	assert.Equal(t, []session.Screen{session.ScreenActions}, s.Edit.Stack)

	env.w.EditFieldCommand(ctx, env.key, env.load(t), callbacks.Command{
		Kind: callbacks.EditField, EventID: 1, Field: "choose",
	}, 5)
	s = env.load(t)
	assert.Equal(t, []session.Screen{session.ScreenActions, session.ScreenFields}, s.Edit.Stack)

	env.w.EditFieldCommand(ctx, env.key, env.load(t), callbacks.Command{
		Kind: callbacks.EditField, EventID: 1, Field: "title",
	}, 5)
	s = env.load(t)
	assert.Equal(t, session.StepEditValue, s.Step)
	assert.Equal(t, "title", s.Edit.Field)

	s = env.editInput(t, "Йога на крыше")
	require.Len(t, env.events.updates, 1)
	upd := env.events.updates[0]
	assert.True(t, upd.SetTitle)
	assert.Equal(t, "Йога на крыше", upd.Title)

	// После сохранения стек всегда ровно корневой экран
	assert.Equal(t, []session.Screen{session.ScreenActions}, s.Edit.Stack)
	assert.Equal(t, session.StepNone, s.Step)
	assert.Empty(t, s.Edit.Field)
}

// Назад снимает экран со стека, с корня — выход с очисткой сессии
func TestEditBack(t *testing.T) {
	env := newTestEnv(t)
	seedEvent(env, 1)
	ctx := context.Background()

	env.w.OpenEdit(ctx, env.key, env.load(t), 1, 5)
	env.w.EditFieldCommand(ctx, env.key, env.load(t), callbacks.Command{
		Kind: callbacks.EditField, EventID: 1, Field: "choose",
	}, 5)

	env.w.EditBack(ctx, env.key, env.load(t), 5)
	s := env.load(t)
	assert.Equal(t, []session.Screen{session.ScreenActions}, s.Edit.Stack)

	env.w.EditBack(ctx, env.key, env.load(t), 5)
	s = env.load(t)
	assert.Empty(t, s.Edit.Stack)
	assert.Equal(t, session.StepNone, s.Step)
}

// Невалидное значение не трогает событие и оставляет экран ввода
func TestEditValueValidation(t *testing.T) {
	env := newTestEnv(t)
	seedEvent(env, 1)
	ctx := context.Background()

	env.w.OpenEdit(ctx, env.key, env.load(t), 1, 5)
	env.w.EditFieldCommand(ctx, env.key, env.load(t), callbacks.Command{
		Kind: callbacks.EditField, EventID: 1, Field: "cost",
	}, 5)

	s := env.editInput(t, "дорого")
	assert.Empty(t, env.events.updates)
	assert.Equal(t, session.StepEditValue, s.Step)
	assert.Equal(t, "cost", s.Edit.Field)
}

// Потеря контекста: событие удалили, диалог сворачивается
func TestEditValueContextLost(t *testing.T) {
	env := newTestEnv(t)
	seedEvent(env, 1)
	ctx := context.Background()

	env.w.OpenEdit(ctx, env.key, env.load(t), 1, 5)
	env.w.EditFieldCommand(ctx, env.key, env.load(t), callbacks.Command{
		Kind: callbacks.EditField, EventID: 1, Field: "title",
	}, 5)

	delete(env.events.events, 1)
	s := env.editInput(t, "Новое название")
	assert.Empty(t, env.events.updates)
	assert.Equal(t, session.StepNone, s.Step)
	assert.Empty(t, s.Edit.Stack)
}
