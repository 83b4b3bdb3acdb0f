package wizard

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
	"github.com/velobro/event_bot/internal/controller/prompt"
	"github.com/velobro/event_bot/internal/controller/views"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/session"
	"github.com/velobro/event_bot/internal/texts"
)

type fakeTG struct {
	mu      sync.Mutex
	nextID  int
	sent    []*bot.SendMessageParams
	deleted []int
}

func (f *fakeTG) SendMessage(ctx context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, p)
	return &models.Message{ID: f.nextID}, nil
}
func (f *fakeTG) SendPhoto(ctx context.Context, p *bot.SendPhotoParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return &models.Message{ID: f.nextID}, nil
}
func (f *fakeTG) SendMediaGroup(ctx context.Context, p *bot.SendMediaGroupParams) ([]*models.Message, error) {
	return nil, nil
}
func (f *fakeTG) EditMessageText(ctx context.Context, p *bot.EditMessageTextParams) (*models.Message, error) {
	return &models.Message{ID: p.MessageID}, nil
}
func (f *fakeTG) EditMessageCaption(ctx context.Context, p *bot.EditMessageCaptionParams) (*models.Message, error) {
	return &models.Message{ID: p.MessageID}, nil
}
func (f *fakeTG) EditMessageReplyMarkup(ctx context.Context, p *bot.EditMessageReplyMarkupParams) (*models.Message, error) {
	return &models.Message{ID: p.MessageID}, nil
}
func (f *fakeTG) DeleteMessage(ctx context.Context, p *bot.DeleteMessageParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, p.MessageID)
	return true, nil
}
func (f *fakeTG) AnswerCallbackQuery(ctx context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	return true, nil
}

type fakeEvents struct {
	mu      sync.Mutex
	nextID  int64
	created []*model.Event
	updates []model.EventUpdate
	events  map[int64]*model.Event
}

func (f *fakeEvents) Upcoming(ctx context.Context) ([]model.Event, error) { return nil, nil }
func (f *fakeEvents) Get(ctx context.Context, id int64) (*model.Event, error) {
	if f.events == nil {
		return nil, nil
	}
	return f.events[id], nil
}
func (f *fakeEvents) Create(ctx context.Context, ev *model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ev.ID = f.nextID
	f.created = append(f.created, ev)
	return nil
}
func (f *fakeEvents) Update(ctx context.Context, id int64, upd model.EventUpdate) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, upd)
	if f.events == nil {
		return nil, nil
	}
	return f.events[id], nil
}
func (f *fakeEvents) Cancel(ctx context.Context, id int64) (*model.Event, error) {
	if f.events == nil {
		return nil, nil
	}
	return f.events[id], nil
}

type fakeUsers struct{}

func (fakeUsers) Ensure(ctx context.Context, ident model.Identity) (*model.User, error) {
	return &model.User{ID: 100, TelegramID: ident.TelegramID, Role: model.RoleModerator}, nil
}
func (fakeUsers) ByTelegramID(ctx context.Context, id int64) (*model.User, error) { return nil, nil }
func (fakeUsers) AllTelegramIDs(ctx context.Context) ([]int64, error)             { return nil, nil }

type fakeRegs struct{}

func (fakeRegs) Availability(ctx context.Context, ev *model.Event) (model.Availability, error) {
	return model.Availability{}, nil
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

type testEnv struct {
	w      *Wizard
	d      *deps.Deps
	events *fakeEvents
	tg     *fakeTG
	key    session.Key
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tx, err := texts.New()
	require.NoError(t, err)

	client := &fakeTG{}
	events := &fakeEvents{events: map[int64]*model.Event{}}
	d := &deps.Deps{
		Events:        events,
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

	v := views.New(d)
	w := New(d, v, prompt.NewManager(client, nil, zap.NewNop()))
	return &testEnv{
		w:      w,
		d:      d,
		events: events,
		tg:     client,
		key:    session.Key{ChatID: 5, UserID: 5},
	}
}

// load перечитывает сессию, как это делает роутер на каждом апдейте
func (e *testEnv) load(t *testing.T) *session.Session {
	t.Helper()
	s, err := e.d.Sessions.Get(context.Background(), e.key)
	require.NoError(t, err)
	return s
}

func (e *testEnv) message(text string) *models.Message {
	return &models.Message{
		ID:   500,
		Text: text,
		Chat: models.Chat{ID: 5},
		From: &models.User{ID: 5},
	}
}

func (e *testEnv) callback() *models.CallbackQuery {
	return &models.CallbackQuery{
		ID:   "cb1",
		From: models.User{ID: 5},
	}
}

func (e *testEnv) input(t *testing.T, text string) *session.Session {
	t.Helper()
	ctx := context.Background()
	s := e.load(t)
	require.True(t, e.w.HandleCreateMessage(ctx, e.key, s, e.message(text)))
	return e.load(t)
}

func (e *testEnv) skip(t *testing.T) *session.Session {
	t.Helper()
	s := e.load(t)
	e.w.CreateSkip(context.Background(), e.key, s, 5)
	return e.load(t)
}

// Минимальный сценарий: название и дата, всё остальное пропущено,
// включено напоминание за 3 дня
func TestCreateFlowMinimal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.w.StartCreate(ctx, env.key, 5)
	assert.Equal(t, session.StepTitle, env.load(t).Step)

	s := env.input(t, "Йога в парке")
	assert.Equal(t, session.StepDate, s.Step)
	assert.Equal(t, "Йога в парке", s.Draft.Title)

	s = env.input(t, "25.12.2026")
	assert.Equal(t, session.StepCost, s.Step)

	for _, want := range []session.Step{
		session.StepDescription,
		session.StepTime,
		session.StepPlace,
		session.StepPeriod,
		session.StepImage,
		session.StepLimit,
		session.StepReminders,
	} {
		s = env.skip(t)
		require.Equal(t, want, s.Step)
	}

	env.w.ToggleCreateReminder(ctx, env.key, env.load(t), 5, true)
	env.w.RemindersDone(ctx, env.key, env.load(t), 5)
	s = env.load(t)
	require.Equal(t, session.StepPreview, s.Step)
	assert.True(t, s.Draft.Reminder3Days)
	assert.False(t, s.Draft.Reminder1Day)

	ok := env.w.Publish(ctx, env.key, env.load(t), env.callback(), 5)
	require.True(t, ok)

	require.Len(t, env.events.created, 1)
	ev := env.events.created[0]
	assert.Equal(t, "Йога в парке", ev.Title)
	assert.Equal(t, time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC), ev.Date)
	assert.Nil(t, ev.Cost)
	assert.Nil(t, ev.Limit)
	assert.True(t, ev.Reminder3Days)
	assert.False(t, ev.Reminder1Day)
	assert.Equal(t, model.EventStatusActive, ev.Status)
	assert.Equal(t, int64(100), ev.CreatedBy)

	// Сессия очищена, повторная публикация не создаёт дубликат
	assert.Equal(t, session.StepNone, env.load(t).Step)
	ok = env.w.Publish(ctx, env.key, env.load(t), env.callback(), 5)
	assert.False(t, ok)
	assert.Len(t, env.events.created, 1)
}

// Назад возвращает на предыдущий шаг с сохранённым вводом
func TestCreateBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.w.StartCreate(ctx, env.key, 5)
	env.input(t, "Название")
	s := env.input(t, "25.12.2026")
	require.Equal(t, session.StepCost, s.Step)

	env.w.CreateBack(ctx, env.key, env.load(t), 5)
	s = env.load(t)
	assert.Equal(t, session.StepDate, s.Step)
	assert.Equal(t, "Название", s.Draft.Title)

	env.w.CreateBack(ctx, env.key, env.load(t), 5)
	assert.Equal(t, session.StepTitle, env.load(t).Step)

	// Назад с первого шага сворачивает мастер
	env.w.CreateBack(ctx, env.key, env.load(t), 5)
	assert.Equal(t, session.StepNone, env.load(t).Step)
}

// Невалидный ввод не двигает шаг
func TestCreateValidationKeepsStep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.w.StartCreate(ctx, env.key, 5)
	env.input(t, "Название")

	s := env.input(t, "когда-нибудь")
	assert.Equal(t, session.StepDate, s.Step)
	assert.Nil(t, s.Draft.Date)

	s = env.input(t, "27.12.2026-25.12.2026")
	assert.Equal(t, session.StepDate, s.Step)

	s = env.input(t, "25.12.2026")
	assert.Equal(t, session.StepCost, s.Step)
}

// Обязательный шаг не пропускается
func TestCreateSkipMandatory(t *testing.T) {
	env := newTestEnv(t)
	env.w.StartCreate(context.Background(), env.key, 5)

	s := env.skip(t)
	assert.Equal(t, session.StepTitle, s.Step)
}

// Отмена убирает подсказку и чистит сессию
func TestCreateCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.w.StartCreate(ctx, env.key, 5)
	env.input(t, "Название")

	s := env.load(t)
	promptID := s.Prompt.MessageID
	env.w.CreateCancel(ctx, env.key, s, 5)

	assert.Equal(t, session.StepNone, env.load(t).Step)
	assert.Contains(t, env.tg.deleted, promptID)
}
