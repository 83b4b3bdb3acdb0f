package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetEmpty(t *testing.T) {
	store := NewMemoryStore()

	s, err := store.Get(context.Background(), Key{ChatID: 1, UserID: 2})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, StepNone, s.Step)
	assert.Nil(t, s.Prompt)
}

func TestMemoryStorePutGetIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := Key{ChatID: 1, UserID: 2}

	s := &Session{Step: StepTitle}
	s.Draft.Title = "Йога в парке"
	s.Draft.Images = []string{"file1"}
	s.Prompt = &Ref{ChatID: 1, MessageID: 10}
	require.NoError(t, store.Put(ctx, key, s))

	// Мутация сохранённого оригинала не видна следующему Get
	s.Draft.Title = "другое"
	s.Draft.Images[0] = "mutated"
	s.Prompt.MessageID = 99

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Йога в парке", got.Draft.Title)
	assert.Equal(t, []string{"file1"}, got.Draft.Images)
	assert.Equal(t, 10, got.Prompt.MessageID)

	// И наоборот: правка полученной копии не трогает хранилище
	got.Draft.Title = "ещё одно"
	again, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Йога в парке", again.Draft.Title)
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := Key{ChatID: 5, UserID: 5}

	require.NoError(t, store.Put(ctx, key, &Session{Step: StepDate}))
	require.NoError(t, store.Clear(ctx, key))

	s, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StepNone, s.Step)
}

func TestSessionHistory(t *testing.T) {
	s := &Session{}

	assert.Equal(t, StepNone, s.PopHistory())

	s.PushHistory(StepTitle)
	s.PushHistory(StepDate)
	assert.Equal(t, StepDate, s.PopHistory())
	assert.Equal(t, StepTitle, s.PopHistory())
	assert.Equal(t, StepNone, s.PopHistory())
}

func TestSessionScreenStack(t *testing.T) {
	s := &Session{}
	s.ResetEdit(7)

	assert.Equal(t, int64(7), s.Edit.EventID)
	assert.Equal(t, []Screen{ScreenActions}, s.Edit.Stack)

	s.PushScreen(ScreenFields)
	s.PushScreen(ScreenValue)
	assert.Equal(t, ScreenValue, s.PopScreen())
	assert.Equal(t, ScreenFields, s.PopScreen())
	assert.Equal(t, ScreenActions, s.PopScreen())
	// Пустой стек не ломается
	assert.Equal(t, ScreenActions, s.PopScreen())
}
