// Package deps описывает зависимости обработчиков со стороны потребителя:
// контроллеру нужны не сервисы целиком, а ровно эти операции.
// В тестах вместо сервисов подставляются фейки.
package deps

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/session"
	"github.com/velobro/event_bot/internal/texts"
	"github.com/velobro/event_bot/internal/tg"
)

type Events interface {
	// Upcoming активные события, которые ещё не закончились
	Upcoming(ctx context.Context) ([]model.Event, error)
	// Get событие по id (nil, nil — события нет)
	Get(ctx context.Context, id int64) (*model.Event, error)
	Create(ctx context.Context, ev *model.Event) error
	// Update частичное обновление (nil, nil — события нет)
	Update(ctx context.Context, id int64, upd model.EventUpdate) (*model.Event, error)
	// Cancel переводит событие в статус cancelled
	Cancel(ctx context.Context, id int64) (*model.Event, error)
}

type Users interface {
	// Ensure создаёт или обновляет пользователя по данным апдейта
	Ensure(ctx context.Context, ident model.Identity) (*model.User, error)
	ByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	AllTelegramIDs(ctx context.Context) ([]int64, error)
}

type Registrations interface {
	Availability(ctx context.Context, ev *model.Event) (model.Availability, error)
	IsRegistered(ctx context.Context, eventID, userID int64) (bool, error)
	// Register записывает с проверкой лимита; model.ErrEventFull при переполнении
	Register(ctx context.Context, ev *model.Event, userID int64) error
	Unregister(ctx context.Context, eventID, userID int64) (bool, error)
	Participants(ctx context.Context, eventID int64) ([]model.Participant, error)
}

type Payments interface {
	// Start создаёт платёж на шлюзе, возвращает платёж и ссылку на оплату
	Start(ctx context.Context, ev *model.Event, user *model.User, discount decimal.Decimal) (*model.Payment, string, error)
	HasPaid(ctx context.Context, eventID, userID int64) (bool, error)
	// Refund возвращает успешный платёж и снимает запись
	Refund(ctx context.Context, ev *model.Event, userID int64) error
	AttachMessage(ctx context.Context, paymentID string, messageID int) error
}

type Promocodes interface {
	Apply(ctx context.Context, ev *model.Event, userID int64, code string) (model.PromoResult, error)
	// Discount лучшая применённая пользователем скидка (zero, если нет)
	Discount(ctx context.Context, eventID, userID int64) (decimal.Decimal, error)
	Add(ctx context.Context, eventID int64, code string, discount decimal.Decimal, expiresAt *time.Time) (*model.Promocode, error)
	Remove(ctx context.Context, eventID int64, code string) (bool, error)
	List(ctx context.Context, eventID int64) ([]model.Promocode, error)
}

type Notifier interface {
	// AnnounceNewEvent карточка нового события всем, кроме создателя
	AnnounceNewEvent(ctx context.Context, ev *model.Event, excludeTelegramID int64) int
	// NotifyEventUpdated уведомление участникам об изменении события;
	// текст подбирается по имени изменённого поля
	NotifyEventUpdated(ctx context.Context, ev *model.Event, field string, excludeTelegramID int64) int
	NotifyEventCancelled(ctx context.Context, ev *model.Event, excludeTelegramID int64) int
	// Broadcast произвольный текст участникам; возвращает доставлено/всего
	Broadcast(ctx context.Context, eventID int64, excludeTelegramID int64, text string) (delivered, total int, err error)
}

// Messages журнал отправленных ботом сообщений
type Messages interface {
	Track(ctx context.Context, chatID int64, messageID int, sentAt time.Time) error
}

// Deps всё, что нужно обработчикам. Собирается один раз в main.
type Deps struct {
	Events        Events
	Users         Users
	Registrations Registrations
	Payments      Payments
	Promocodes    Promocodes
	Notify        Notifier
	Messages      Messages

	Sessions session.Store
	TG       tg.Client
	Texts    *texts.Texts
	Log      *zap.Logger

	CommunityURL string
	SupportURL   string
	Location     *time.Location

	// Подменяется в тестах
	Now func() time.Time
}

// Clock текущее время (time.Now, если не переопределено)
func (d *Deps) Clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Moderator пользователь имеет права модератора
func (d *Deps) Moderator(u *model.User) bool {
	return u != nil && u.IsModerator()
}
