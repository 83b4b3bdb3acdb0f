package refresh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/controller/deps"
	"github.com/velobro/event_bot/internal/controller/views"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/session"
	"github.com/velobro/event_bot/internal/texts"
)

// fakeTG записывает вызовы Bot API
type fakeTG struct {
	mu       sync.Mutex
	edits    []*bot.EditMessageTextParams
	captions []*bot.EditMessageCaptionParams
	markups  []*bot.EditMessageReplyMarkupParams
}

func (f *fakeTG) SendMessage(ctx context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	return &models.Message{ID: 1}, nil
}
func (f *fakeTG) SendPhoto(ctx context.Context, p *bot.SendPhotoParams) (*models.Message, error) {
	return &models.Message{ID: 1}, nil
}
func (f *fakeTG) SendMediaGroup(ctx context.Context, p *bot.SendMediaGroupParams) ([]*models.Message, error) {
	return nil, nil
}
func (f *fakeTG) EditMessageText(ctx context.Context, p *bot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, p)
	return &models.Message{ID: p.MessageID}, nil
}
func (f *fakeTG) EditMessageCaption(ctx context.Context, p *bot.EditMessageCaptionParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captions = append(f.captions, p)
	return &models.Message{ID: p.MessageID}, nil
}
func (f *fakeTG) EditMessageReplyMarkup(ctx context.Context, p *bot.EditMessageReplyMarkupParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markups = append(f.markups, p)
	return &models.Message{ID: p.MessageID}, nil
}
func (f *fakeTG) DeleteMessage(ctx context.Context, p *bot.DeleteMessageParams) (bool, error) {
	return true, nil
}
func (f *fakeTG) AnswerCallbackQuery(ctx context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	return true, nil
}

type fakeEvents struct{ events map[int64]*model.Event }

func (f *fakeEvents) Upcoming(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	for _, ev := range f.events {
		out = append(out, *ev)
	}
	return out, nil
}
func (f *fakeEvents) Get(ctx context.Context, id int64) (*model.Event, error) {
	return f.events[id], nil
}
func (f *fakeEvents) Create(ctx context.Context, ev *model.Event) error { return nil }
func (f *fakeEvents) Update(ctx context.Context, id int64, upd model.EventUpdate) (*model.Event, error) {
	return f.events[id], nil
}
func (f *fakeEvents) Cancel(ctx context.Context, id int64) (*model.Event, error) {
	return f.events[id], nil
}

type fakeUsers struct{}

func (fakeUsers) Ensure(ctx context.Context, ident model.Identity) (*model.User, error) {
	return &model.User{ID: 1, TelegramID: ident.TelegramID, FirstName: "Тест", Role: model.RoleUser}, nil
}
func (fakeUsers) ByTelegramID(ctx context.Context, id int64) (*model.User, error) { return nil, nil }
func (fakeUsers) AllTelegramIDs(ctx context.Context) ([]int64, error)             { return nil, nil }

type fakeRegs struct{}

func (fakeRegs) Availability(ctx context.Context, ev *model.Event) (model.Availability, error) {
	return model.Availability{Going: 3}, nil
}
func (fakeRegs) IsRegistered(ctx context.Context, eventID, userID int64) (bool, error) {
	return false, nil
}
func (fakeRegs) Register(ctx context.Context, ev *model.Event, userID int64) error { return nil }
func (fakeRegs) Unregister(ctx context.Context, eventID, userID int64) (bool, error) {
	return false, nil
}
func (fakeRegs) Participants(ctx context.Context, eventID int64) ([]model.Participant, error) {
	return nil, nil
}

type fakePayments struct{}

func (fakePayments) Start(ctx context.Context, ev *model.Event, user *model.User, discount decimal.Decimal) (*model.Payment, string, error) {
	return nil, "", nil
}
func (fakePayments) HasPaid(ctx context.Context, eventID, userID int64) (bool, error) {
	return false, nil
}
func (fakePayments) Refund(ctx context.Context, ev *model.Event, userID int64) error { return nil }
func (fakePayments) AttachMessage(ctx context.Context, paymentID string, messageID int) error {
	return nil
}

type fakePromos struct{}

func (fakePromos) Apply(ctx context.Context, ev *model.Event, userID int64, code string) (model.PromoResult, error) {
	return model.PromoResult{Reason: model.PromoNotFound}, nil
}
func (fakePromos) Discount(ctx context.Context, eventID, userID int64) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (fakePromos) Add(ctx context.Context, eventID int64, code string, discount decimal.Decimal, expiresAt *time.Time) (*model.Promocode, error) {
	return nil, nil
}
func (fakePromos) Remove(ctx context.Context, eventID int64, code string) (bool, error) {
	return false, nil
}
func (fakePromos) List(ctx context.Context, eventID int64) ([]model.Promocode, error) {
	return nil, nil
}

type fakeNotify struct{}

func (fakeNotify) AnnounceNewEvent(ctx context.Context, ev *model.Event, exclude int64) int { return 0 }
func (fakeNotify) NotifyEventUpdated(ctx context.Context, ev *model.Event, field string, exclude int64) int {
	return 0
}
func (fakeNotify) NotifyEventCancelled(ctx context.Context, ev *model.Event, exclude int64) int {
	return 0
}
func (fakeNotify) Broadcast(ctx context.Context, eventID, exclude int64, text string) (int, int, error) {
	return 0, 0, nil
}

type fakeMessages struct{}

func (fakeMessages) Track(ctx context.Context, chatID int64, messageID int, sentAt time.Time) error {
	return nil
}

func newTestEnv(t *testing.T) (*deps.Deps, *views.Views, *fakeTG) {
	t.Helper()

	tx, err := texts.New()
	require.NoError(t, err)

	client := &fakeTG{}
	d := &deps.Deps{
		Events: &fakeEvents{events: map[int64]*model.Event{
			1: {
				ID:     1,
				Title:  "Йога в парке",
				Date:   time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC),
				Status: model.EventStatusActive,
			},
		}},
		Users:         fakeUsers{},
		Registrations: fakeRegs{},
		Payments:      fakePayments{},
		Promocodes:    fakePromos{},
		Notify:        fakeNotify{},
		Messages:      fakeMessages{},
		Sessions:      session.NewMemoryStore(),
		TG:            client,
		Texts:         tx,
		Log:           zap.NewNop(),
		Location:      time.UTC,
	}
	return d, views.New(d), client
}

func callbackAt(data string, sent time.Time) *models.CallbackQuery {
	return &models.CallbackQuery{
		ID:   "cb1",
		From: models.User{ID: 5, FirstName: "Тест"},
		Data: data,
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{
				ID:   10,
				Date: int(sent.Unix()),
				Chat: models.Chat{ID: 5},
			},
		},
	}
}

func TestStale(t *testing.T) {
	_, v, client := newTestEnv(t)
	r := New(v, client, zap.NewNop(), 0)

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	fresh := &models.Message{Date: int(now.Add(-47 * time.Hour).Unix())}
	old := &models.Message{Date: int(now.Add(-49 * time.Hour).Unix())}
	assert.False(t, r.Stale(fresh))
	assert.True(t, r.Stale(old))
}

// Обновлённое сообщение совпадает со свежим рендером того же экрана
func TestRefreshEventCard(t *testing.T) {
	_, v, client := newTestEnv(t)
	r := New(v, client, zap.NewNop(), 0)

	cb := callbackAt("event:view:1", time.Now().Add(-72*time.Hour))
	r.Refresh(context.Background(), cb)

	require.Len(t, client.edits, 1)
	edit := client.edits[0]
	assert.Equal(t, 10, edit.MessageID)

	fresh, err := v.EventCard(context.Background(), 1, model.Identity{TelegramID: 5, FirstName: "Тест"})
	require.NoError(t, err)
	assert.Equal(t, fresh.Text, edit.Text)
}

// Неизвестная кнопка: содержимое не трогаем, клавиатуру оживляем
func TestRefreshUnknownPayloadTouches(t *testing.T) {
	_, v, client := newTestEnv(t)
	r := New(v, client, zap.NewNop(), 0)

	cb := callbackAt("booking:confirm:5", time.Now().Add(-72*time.Hour))
	r.Refresh(context.Background(), cb)

	assert.Empty(t, client.edits)
	require.Len(t, client.markups, 1)
	assert.Equal(t, 10, client.markups[0].MessageID)
}

// Исчезнувшее событие тоже не роняет обработку
func TestRefreshMissingEventTouches(t *testing.T) {
	_, v, client := newTestEnv(t)
	r := New(v, client, zap.NewNop(), 0)

	cb := callbackAt("event:view:404", time.Now().Add(-72*time.Hour))
	r.Refresh(context.Background(), cb)

	assert.Empty(t, client.edits)
	assert.Len(t, client.markups, 1)
}

// Middleware всегда пропускает апдейт к основному обработчику
func TestMiddlewarePassesThrough(t *testing.T) {
	_, v, client := newTestEnv(t)
	r := New(v, client, zap.NewNop(), 0)

	called := 0
	next := func(ctx context.Context, b *bot.Bot, u *models.Update) { called++ }
	wrapped := r.Middleware()(next)

	// Свежее сообщение
	wrapped(context.Background(), nil, &models.Update{
		CallbackQuery: callbackAt("event:view:1", time.Now()),
	})
	// Устаревшее сообщение
	wrapped(context.Background(), nil, &models.Update{
		CallbackQuery: callbackAt("event:view:1", time.Now().Add(-72*time.Hour)),
	})
	// Апдейт без callback
	wrapped(context.Background(), nil, &models.Update{})

	assert.Equal(t, 3, called)
}
