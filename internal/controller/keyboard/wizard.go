package keyboard

import (
	"github.com/go-telegram/bot/models"

	"github.com/velobro/event_bot/internal/controller/callbacks"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/session"
	"github.com/velobro/event_bot/internal/texts"
)

// CreateStep кнопки под шагом мастера создания:
// назад (кроме первого шага), пропустить (необязательные поля),
// подтвердить (шаг фотографий), отменить — всегда.
func CreateStep(tx *texts.Texts, step session.Step, hasHistory bool) *models.InlineKeyboardMarkup {
	b := NewBuilder()
	if step == session.StepImage {
		b.Row(Button(tx.T("btn.confirm", nil), cmd(callbacks.CreateImagesConfirm)))
	}

	var nav []models.InlineKeyboardButton
	if hasHistory {
		nav = append(nav, Button(tx.T("btn.back", nil), cmd(callbacks.CreateBack)))
	}
	if step.Optional() {
		nav = append(nav, Button(tx.T("btn.skip", nil), cmd(callbacks.CreateSkip)))
	}
	b.Row(nav...)
	b.Row(Button(tx.T("btn.cancel", nil), cmd(callbacks.CreateCancel)))
	return b.Build()
}

// CreateReminders экран выбора напоминаний мастера
func CreateReminders(tx *texts.Texts, sel3, sel1 bool) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(reminderLabel(tx, "days3", sel3), cmd(callbacks.CreateReminder3))).
		Row(Button(reminderLabel(tx, "day1", sel1), cmd(callbacks.CreateReminder1))).
		Row(Button(tx.T("btn.done", nil), cmd(callbacks.CreateRemindersDone))).
		Row(
			Button(tx.T("btn.back", nil), cmd(callbacks.CreateBack)),
			Button(tx.T("btn.cancel", nil), cmd(callbacks.CreateCancel)),
		).
		Build()
}

// CreatePreview кнопки под превью события
func CreatePreview(tx *texts.Texts) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(tx.T("btn.publish", nil), cmd(callbacks.CreatePublish))).
		Row(
			Button(tx.T("btn.back", nil), cmd(callbacks.CreateBack)),
			Button(tx.T("btn.cancel", nil), cmd(callbacks.CreateCancel)),
		).
		Build()
}

func reminderLabel(tx *texts.Texts, kind string, selected bool) string {
	state := "_off"
	if selected {
		state = "_on"
	}
	return tx.T("btn.reminder."+kind+state, nil)
}

// EditActions корневой экран редактирования события
func EditActions(tx *texts.Texts, eventID int64) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(tx.T("btn.edit.fields", nil), callbacks.Command{
			Kind: callbacks.EditField, EventID: eventID, Field: "choose",
		}.Encode())).
		Row(Button(tx.T("btn.participants", nil), eventCmd(callbacks.EditParticipants, eventID))).
		Row(Button(tx.T("btn.promo_menu", nil), eventCmd(callbacks.PromoMenu, eventID))).
		Row(Button(tx.T("btn.broadcast", nil), eventCmd(callbacks.EditBroadcast, eventID))).
		Row(Button(tx.T("btn.cancel_event", nil), eventCmd(callbacks.EditCancelEvent, eventID))).
		Row(Button(tx.T("btn.back", nil), cmd(callbacks.SettingsManage))).
		Build()
}

// editableFields порядок полей в выборе, по две кнопки в ряд
var editableFields = []string{
	"title", "date",
	"time", "place",
	"description", "cost",
	"images", "limit",
	"reminders",
}

// EditFields выбор редактируемого поля
func EditFields(tx *texts.Texts, eventID int64) *models.InlineKeyboardMarkup {
	b := NewBuilder()
	for i := 0; i < len(editableFields); i += 2 {
		row := []models.InlineKeyboardButton{fieldButton(tx, eventID, editableFields[i])}
		if i+1 < len(editableFields) {
			row = append(row, fieldButton(tx, eventID, editableFields[i+1]))
		}
		b.Row(row...)
	}
	b.Row(Button(tx.T("btn.back", nil), cmd(callbacks.EditBack)))
	return b.Build()
}

func fieldButton(tx *texts.Texts, eventID int64, field string) models.InlineKeyboardButton {
	return Button(tx.T("btn.edit."+field, nil), callbacks.Command{
		Kind: callbacks.EditField, EventID: eventID, Field: field,
	}.Encode())
}

// EditValue кнопки под запросом нового значения поля
func EditValue(tx *texts.Texts) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(tx.T("btn.back", nil), cmd(callbacks.EditBack))).
		Build()
}

// EditImages экран фотографий: очистка при наличии фото,
// сохранение — только если что-то менялось
func EditImages(tx *texts.Texts, hasImages, dirty bool) *models.InlineKeyboardMarkup {
	b := NewBuilder()
	if hasImages {
		b.Row(Button(tx.T("btn.clear_images", nil), cmd(callbacks.EditClearImages)))
	}
	if dirty {
		b.Row(Button(tx.T("btn.save", nil), cmd(callbacks.EditSave)))
	}
	b.Row(Button(tx.T("btn.back", nil), cmd(callbacks.EditBack)))
	return b.Build()
}

// EditReminders переключатели напоминаний в режиме редактирования
func EditReminders(tx *texts.Texts, sel3, sel1 bool) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(reminderLabel(tx, "days3", sel3), cmd(callbacks.EditReminder3))).
		Row(Button(reminderLabel(tx, "day1", sel1), cmd(callbacks.EditReminder1))).
		Row(Button(tx.T("btn.save", nil), cmd(callbacks.EditSave))).
		Row(Button(tx.T("btn.back", nil), cmd(callbacks.EditBack))).
		Build()
}

// Participants список участников: кнопка снимает человека с события
func Participants(tx *texts.Texts, eventID int64, page []model.Participant, pageNum, totalPages int) *models.InlineKeyboardMarkup {
	b := NewBuilder()
	for _, p := range page {
		label := tx.T("btn.remove", map[string]any{"name": p.User.DisplayName()})
		b.Row(Button(label, callbacks.Command{
			Kind:    callbacks.EditParticipantRemove,
			EventID: eventID,
			UserID:  p.User.ID,
		}.Encode()))
	}
	b.Row(PaginationRow(pageNum, totalPages, func(p int) callbacks.Command {
		return callbacks.Command{Kind: callbacks.EditParticipantsPage, EventID: eventID, Page: p}
	})...)
	b.Row(Button(tx.T("btn.back", nil), cmd(callbacks.EditBack)))
	return b.Build()
}

// CancelConfirm подтверждение отмены события
func CancelConfirm(tx *texts.Texts, eventID int64) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(tx.T("btn.confirm", nil), eventCmd(callbacks.EditConfirmCancel, eventID))).
		Row(Button(tx.T("btn.back", nil), cmd(callbacks.EditBack))).
		Build()
}

// PromoMenu меню промокодов события
func PromoMenu(tx *texts.Texts, eventID int64) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(Button(tx.T("btn.promo_add", nil), eventCmd(callbacks.PromoAdd, eventID))).
		Row(Button(tx.T("btn.promo_delete", nil), eventCmd(callbacks.PromoDelete, eventID))).
		Row(Button(tx.T("btn.promo_list", nil), eventCmd(callbacks.PromoList, eventID))).
		Row(Button(tx.T("btn.back", nil), cmd(callbacks.EditBack))).
		Build()
}
