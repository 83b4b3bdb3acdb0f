// Package views собирает тексты и клавиатуры экранов. Одни и те же
// рендеры используются и при обычном показе, и при обновлении
// устаревших сообщений — контент получается идентичным.
package views

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"github.com/velobro/event_bot/internal/controller/deps"
	"github.com/velobro/event_bot/internal/controller/keyboard"
	"github.com/velobro/event_bot/internal/format"
	"github.com/velobro/event_bot/internal/model"
)

// Rendered готовый к показу экран
type Rendered struct {
	Text   string
	Markup *models.InlineKeyboardMarkup
	Images []string // фотографии карточки события
}

type Views struct {
	d *deps.Deps
}

func New(d *deps.Deps) *Views {
	return &Views{d: d}
}

// MainMenu главное меню для конкретного пользователя
func (v *Views) MainMenu(ctx context.Context, ident model.Identity) (*Rendered, error) {
	user, err := v.d.Users.Ensure(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	name := user.FirstName
	if name == "" {
		name = user.DisplayName()
	}
	return &Rendered{
		Text:   v.d.Texts.T("menu.main", map[string]any{"name": name}),
		Markup: keyboard.MainMenu(v.d.Texts, v.d.Moderator(user)),
	}, nil
}

// Community экран сообщества
func (v *Views) Community() *Rendered {
	text := v.d.Texts.T("menu.community_no_link", nil)
	if v.d.CommunityURL != "" {
		text = v.d.Texts.T("menu.community", map[string]any{"url": v.d.CommunityURL})
	}
	return &Rendered{
		Text:   text,
		Markup: keyboard.BackToMain(v.d.Texts),
	}
}

// Settings меню модератора
func (v *Views) Settings() *Rendered {
	return &Rendered{
		Text:   v.d.Texts.T("menu.settings", nil),
		Markup: keyboard.Settings(v.d.Texts),
	}
}

// ActualList страница списка актуальных событий
func (v *Views) ActualList(ctx context.Context, page int) (*Rendered, error) {
	events, err := v.d.Events.Upcoming(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	if len(events) == 0 {
		return &Rendered{
			Text:   v.d.Texts.T("menu.actual_empty", nil),
			Markup: keyboard.BackToMain(v.d.Texts),
		}, nil
	}

	total := keyboard.TotalPages(len(events))
	page = clampPage(page, total)
	from, to := keyboard.PageSlice(len(events), page)
	return &Rendered{
		Text:   v.d.Texts.T("menu.actual_title", nil),
		Markup: keyboard.EventList(v.d.Texts, events[from:to], page, total),
	}, nil
}

// ManageList страница списка событий для модератора
func (v *Views) ManageList(ctx context.Context, page int) (*Rendered, error) {
	events, err := v.d.Events.Upcoming(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	if len(events) == 0 {
		return &Rendered{
			Text:   v.d.Texts.T("menu.manage_empty", nil),
			Markup: keyboard.Settings(v.d.Texts),
		}, nil
	}

	total := keyboard.TotalPages(len(events))
	page = clampPage(page, total)
	from, to := keyboard.PageSlice(len(events), page)
	return &Rendered{
		Text:   v.d.Texts.T("menu.manage_title", nil),
		Markup: keyboard.ManageList(v.d.Texts, events[from:to], page, total),
	}, nil
}

// EventCard карточка события глазами пользователя.
// nil, nil — событие не найдено.
func (v *Views) EventCard(ctx context.Context, eventID int64, ident model.Identity) (*Rendered, error) {
	ev, err := v.d.Events.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ev == nil {
		return nil, nil
	}

	user, err := v.d.Users.Ensure(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	avail, err := v.d.Registrations.Availability(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("get availability: %w", err)
	}

	registered, err := v.d.Registrations.IsRegistered(ctx, ev.ID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("check registration: %w", err)
	}

	var paid bool
	var discount *decimal.Decimal
	if ev.IsPaid() {
		paid, err = v.d.Payments.HasPaid(ctx, ev.ID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check payment: %w", err)
		}
		// Скидка показывается, пока оплата не прошла
		if !paid {
			d, err := v.d.Promocodes.Discount(ctx, ev.ID, user.ID)
			if err != nil {
				return nil, fmt.Errorf("get discount: %w", err)
			}
			if d.IsPositive() {
				discount = &d
			}
		}
	}

	text := format.EventCard(ev, format.CardOptions{
		Availability: &avail,
		Discount:     discount,
		Registered:   registered,
		Paid:         paid,
	}, v.d.Texts)

	markup := keyboard.EventCard(v.d.Texts, ev, keyboard.EventCardState{
		Paid:       paid,
		Registered: registered,
		Full:       avail.Full() && !registered && !paid,
		SupportURL: v.d.SupportURL,
	})

	return &Rendered{Text: text, Markup: markup, Images: ev.Images}, nil
}

// EditActions корневой экран редактирования события.
// nil, nil — событие не найдено.
func (v *Views) EditActions(ctx context.Context, eventID int64) (*Rendered, error) {
	ev, err := v.d.Events.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ev == nil {
		return nil, nil
	}

	return &Rendered{
		Text:   v.d.Texts.T("edit.actions", map[string]any{"title": ev.Title}),
		Markup: keyboard.EditActions(v.d.Texts, ev.ID),
	}, nil
}

// Participants страница списка участников события.
// nil, nil — событие не найдено.
func (v *Views) Participants(ctx context.Context, eventID int64, page int) (*Rendered, error) {
	ev, err := v.d.Events.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ev == nil {
		return nil, nil
	}

	participants, err := v.d.Registrations.Participants(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	if len(participants) == 0 {
		return &Rendered{
			Text:   v.d.Texts.T("edit.participants_empty", nil),
			Markup: keyboard.Participants(v.d.Texts, eventID, nil, 0, 1),
		}, nil
	}

	total := keyboard.TotalPages(len(participants))
	page = clampPage(page, total)
	from, to := keyboard.PageSlice(len(participants), page)
	return &Rendered{
		Text:   v.d.Texts.T("edit.participants_title", map[string]any{"title": ev.Title}),
		Markup: keyboard.Participants(v.d.Texts, eventID, participants[from:to], page, total),
	}, nil
}

func clampPage(page, total int) int {
	if page < 0 {
		return 0
	}
	if page >= total {
		return total - 1
	}
	return page
}
