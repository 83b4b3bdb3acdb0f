package keyboard

import (
	"github.com/go-telegram/bot/models"

	"github.com/velobro/event_bot/internal/controller/callbacks"
	"github.com/velobro/event_bot/internal/format"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/texts"
)

func cmd(kind callbacks.Kind) string {
	return callbacks.Command{Kind: kind}.Encode()
}

func eventCmd(kind callbacks.Kind, eventID int64) string {
	return callbacks.Command{Kind: kind, EventID: eventID}.Encode()
}

// MainMenu главное меню; раздел настроек виден только модераторам
func MainMenu(tx *texts.Texts, moderator bool) *models.InlineKeyboardMarkup {
	b := NewBuilder().
		Row(Button(tx.T("btn.actual", nil), cmd(callbacks.MenuActual))).
		Row(Button(tx.T("btn.community", nil), cmd(callbacks.MenuCommunity)))
	if moderator {
		b.Row(Button(tx.T("btn.settings", nil), cmd(callbacks.MenuSettings)))
	}
	return b.Build()
}

func BackToMain(tx *texts.Texts) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(tx.T("btn.main_menu", nil), cmd(callbacks.MainMenu))).
		Build()
}

// EventList список событий с пагинацией. Кнопка события ведёт на карточку.
func EventList(tx *texts.Texts, events []model.Event, page, totalPages int) *models.InlineKeyboardMarkup {
	b := NewBuilder()
	for _, ev := range events {
		label := tx.T("event.btn_line", map[string]any{
			"date":  ev.Date.Format(format.DateLayout),
			"title": ev.Title,
		})
		b.Row(Button(label, eventCmd(callbacks.EventView, ev.ID)))
	}
	b.Row(PaginationRow(page, totalPages, func(p int) callbacks.Command {
		return callbacks.Command{Kind: callbacks.EventListPage, Page: p}
	})...)
	b.Row(Button(tx.T("btn.main_menu", nil), cmd(callbacks.MainMenu)))
	return b.Build()
}

// EventCardState что уже известно про зрителя карточки
type EventCardState struct {
	Paid       bool
	Registered bool
	Full       bool
	SupportURL string
}

// EventCard кнопки карточки события для обычного пользователя
func EventCard(tx *texts.Texts, ev *model.Event, st EventCardState) *models.InlineKeyboardMarkup {
	b := NewBuilder()

	if !ev.IsCancelled() {
		switch {
		case ev.IsPaid() && st.Paid:
			b.Row(Button(tx.T("btn.refund", nil), eventCmd(callbacks.EventRefund, ev.ID)))
		case ev.IsPaid():
			if !st.Full {
				b.Row(Button(tx.T("btn.pay", nil), eventCmd(callbacks.EventPay, ev.ID)))
			}
			b.Row(Button(tx.T("btn.promo", nil), eventCmd(callbacks.EventPromo, ev.ID)))
		case st.Registered:
			b.Row(Button(tx.T("btn.cancel", nil), eventCmd(callbacks.EventLeave, ev.ID)))
		default:
			if !st.Full {
				b.Row(Button(tx.T("btn.confirm", nil), eventCmd(callbacks.EventRegister, ev.ID)))
			}
		}
	}

	if st.SupportURL != "" {
		b.Row(URLButton(tx.T("btn.question", nil), st.SupportURL))
	}
	b.Row(Button(tx.T("btn.back_to_list", nil), cmd(callbacks.MenuActual)))
	b.Row(Button(tx.T("btn.main_menu", nil), cmd(callbacks.MainMenu)))
	return b.Build()
}

// PayMethods выбор способа оплаты (пока только карта)
func PayMethods(tx *texts.Texts, eventID int64) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(tx.T("btn.pay_card", nil), eventCmd(callbacks.EventPayCard, eventID))).
		Row(Button(tx.T("btn.back", nil), eventCmd(callbacks.EventView, eventID))).
		Build()
}

// BackToEvent возврат на карточку события
func BackToEvent(tx *texts.Texts, eventID int64) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(tx.T("btn.back", nil), eventCmd(callbacks.EventView, eventID))).
		Build()
}

// EventLink кнопка-ссылка на карточку (для уведомлений)
func EventLink(tx *texts.Texts, eventID int64) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(tx.T("btn.to_event", nil), eventCmd(callbacks.EventView, eventID))).
		Build()
}

// Hide кнопка «Скрыть» под служебными сообщениями
func Hide(tx *texts.Texts) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(tx.T("btn.hide", nil), cmd(callbacks.Hide))).
		Build()
}

// Settings меню модератора
func Settings(tx *texts.Texts) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(tx.T("btn.create_event", nil), cmd(callbacks.SettingsCreate))).
		Row(Button(tx.T("btn.manage_events", nil), cmd(callbacks.SettingsManage))).
		Row(Button(tx.T("btn.main_menu", nil), cmd(callbacks.MainMenu))).
		Build()
}

// ManageList список событий модератора, кнопка ведёт в редактирование
func ManageList(tx *texts.Texts, events []model.Event, page, totalPages int) *models.InlineKeyboardMarkup {
	b := NewBuilder()
	for _, ev := range events {
		label := tx.T("event.btn_line", map[string]any{
			"date":  ev.Date.Format(format.DateLayout),
			"title": ev.Title,
		})
		b.Row(Button(label, eventCmd(callbacks.EditEvent, ev.ID)))
	}
	b.Row(PaginationRow(page, totalPages, func(p int) callbacks.Command {
		return callbacks.Command{Kind: callbacks.ManagePage, Page: p}
	})...)
	b.Row(Button(tx.T("btn.back", nil), cmd(callbacks.MenuSettings)))
	return b.Build()
}
