package wizard

import (
	"context"
	"strings"

	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/controller/callbacks"
	"github.com/velobro/event_bot/internal/controller/keyboard"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/session"
)

// OpenEdit вход в режим редактирования события
func (w *Wizard) OpenEdit(ctx context.Context, key session.Key, s *session.Session, eventID, chatID int64) {
	ev, err := w.d.Events.Get(ctx, eventID)
	if err != nil || ev == nil {
		w.d.Log.Warn("failed to open event for editing",
			zap.Error(err), zap.Int64("event_id", eventID))
		return
	}

	s.Step = session.StepNone
	s.History = nil
	s.ResetEdit(eventID)
	w.renderEditScreen(ctx, s, chatID, "")
	w.save(ctx, key, s)
}

// ensureEditContext восстанавливает контекст события, если сессия
// потерялась (рестарт бота, очень старая кнопка)
func (w *Wizard) ensureEditContext(s *session.Session, eventID int64) {
	if eventID != 0 && s.Edit.EventID != eventID {
		s.ResetEdit(eventID)
	}
	if len(s.Edit.Stack) == 0 {
		s.Edit.Stack = []session.Screen{session.ScreenActions}
	}
}

func (w *Wizard) topScreen(s *session.Session) session.Screen {
	if len(s.Edit.Stack) == 0 {
		return session.ScreenActions
	}
	return s.Edit.Stack[len(s.Edit.Stack)-1]
}

func (w *Wizard) pushScreen(s *session.Session, screen session.Screen) {
	if w.topScreen(s) != screen {
		s.PushScreen(screen)
	}
}

// EditFieldCommand нажатие в выборе поля (или открытие выбора)
func (w *Wizard) EditFieldCommand(ctx context.Context, key session.Key, s *session.Session, cmd callbacks.Command, chatID int64) {
	w.ensureEditContext(s, cmd.EventID)

	switch cmd.Field {
	case "choose":
		s.Step = session.StepNone
		w.pushScreen(s, session.ScreenFields)
	case "images":
		ev, err := w.d.Events.Get(ctx, cmd.EventID)
		if err != nil || ev == nil {
			w.d.Log.Warn("failed to load event images", zap.Error(err), zap.Int64("event_id", cmd.EventID))
			return
		}
		s.Edit.Images = append([]string(nil), ev.Images...)
		s.Edit.Dirty = false
		s.Step = session.StepEditImages
		w.pushScreen(s, session.ScreenImages)
	case "reminders":
		ev, err := w.d.Events.Get(ctx, cmd.EventID)
		if err != nil || ev == nil {
			w.d.Log.Warn("failed to load event reminders", zap.Error(err), zap.Int64("event_id", cmd.EventID))
			return
		}
		s.Edit.Reminder3Days = ev.Reminder3Days
		s.Edit.Reminder1Day = ev.Reminder1Day
		s.Step = session.StepNone
		w.pushScreen(s, session.ScreenReminders)
	default:
		s.Edit.Field = cmd.Field
		s.Step = session.StepEditValue
		w.pushScreen(s, session.ScreenValue)
	}

	w.renderEditScreen(ctx, s, chatID, "")
	w.save(ctx, key, s)
}

// EditBack шаг назад по стеку экранов редактирования.
// Назад с корневого экрана — выход в меню модератора.
func (w *Wizard) EditBack(ctx context.Context, key session.Key, s *session.Session, chatID int64) {
	s.PopScreen()
	if len(s.Edit.Stack) == 0 {
		w.prompts.Remove(ctx, s)
		w.clear(ctx, key)
		w.settingsFallback(ctx, chatID, "menu.settings")
		return
	}

	s.Step = screenStep(w.topScreen(s))
	s.Edit.Field = ""
	w.renderEditScreen(ctx, s, chatID, "")
	w.save(ctx, key, s)
}

// screenStep какой ввод ожидает экран
func screenStep(screen session.Screen) session.Step {
	switch screen {
	case session.ScreenImages:
		return session.StepEditImages
	case session.ScreenBroadcast:
		return session.StepEditBroadcast
	}
	return session.StepNone
}

// EditSave сохранение листового экрана (фотографии или напоминания)
func (w *Wizard) EditSave(ctx context.Context, key session.Key, s *session.Session, cb *models.CallbackQuery, chatID int64) {
	switch w.topScreen(s) {
	case session.ScreenImages:
		if !s.Edit.Dirty {
			return
		}
		upd := model.EventUpdate{SetImages: true, Images: s.Edit.Images}
		w.commitUpdate(ctx, key, s, cb, chatID, "images", upd)
	case session.ScreenReminders:
		upd := model.EventUpdate{
			SetReminders:  true,
			Reminder3Days: s.Edit.Reminder3Days,
			Reminder1Day:  s.Edit.Reminder1Day,
		}
		w.commitUpdate(ctx, key, s, cb, chatID, "reminders", upd)
	}
}

// ToggleEditReminder переключатель на экране напоминаний
func (w *Wizard) ToggleEditReminder(ctx context.Context, key session.Key, s *session.Session, chatID int64, threeDays bool) {
	if w.topScreen(s) != session.ScreenReminders {
		return
	}

	if threeDays {
		s.Edit.Reminder3Days = !s.Edit.Reminder3Days
	} else {
		s.Edit.Reminder1Day = !s.Edit.Reminder1Day
	}
	w.prompts.Update(ctx, s, chatID,
		w.d.Texts.T("edit.reminders", nil),
		keyboard.EditReminders(w.d.Texts, s.Edit.Reminder3Days, s.Edit.Reminder1Day))
	w.save(ctx, key, s)
}

// ClearImages очистка фотографий на экране редактирования
func (w *Wizard) ClearImages(ctx context.Context, key session.Key, s *session.Session, chatID int64) {
	if w.topScreen(s) != session.ScreenImages {
		return
	}

	s.Edit.Images = nil
	s.Edit.Dirty = true
	w.renderEditScreen(ctx, s, chatID, "")
	w.save(ctx, key, s)
}

// HandleEditMessage текстовый или фото-ввод в режиме редактирования
func (w *Wizard) HandleEditMessage(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) bool {
	switch s.Step {
	case session.StepEditValue:
		w.inputEditValue(ctx, key, s, msg)
	case session.StepEditImages:
		w.inputEditImage(ctx, key, s, msg)
	case session.StepEditBroadcast:
		w.inputBroadcast(ctx, key, s, msg)
	case session.StepPromoAdd:
		w.inputPromoAdd(ctx, key, s, msg)
	case session.StepPromoDelete:
		w.inputPromoDelete(ctx, key, s, msg)
	default:
		return false
	}
	return true
}

func (w *Wizard) inputEditValue(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	ev, err := w.d.Events.Get(ctx, s.Edit.EventID)
	if err != nil || ev == nil {
		w.d.Log.Warn("failed to load edited event", zap.Error(err), zap.Int64("event_id", s.Edit.EventID))
		// Событие исчезло под редактором: сворачиваем диалог
		w.prompts.Remove(ctx, s)
		w.clear(ctx, key)
		w.settingsFallback(ctx, msg.Chat.ID, "error.not_found")
		return
	}

	upd, err := ParseEditValue(s.Edit.Field, msg.Text, ev, w.d.Location)
	if err != nil {
		w.showParseError(ctx, s, msg.Chat.ID, err, keyboard.EditValue(w.d.Texts))
		w.save(ctx, key, s)
		return
	}

	w.commitUpdate(ctx, key, s, nil, msg.Chat.ID, s.Edit.Field, upd)
}

func (w *Wizard) inputEditImage(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	if len(msg.Photo) == 0 {
		return
	}
	if len(s.Edit.Images) >= model.MaxEventImages {
		w.prompts.Update(ctx, s, msg.Chat.ID,
			w.d.Texts.T("create.images_limit", map[string]any{"max": model.MaxEventImages}),
			keyboard.EditImages(w.d.Texts, len(s.Edit.Images) > 0, s.Edit.Dirty))
		w.save(ctx, key, s)
		return
	}

	s.Edit.Images = append(s.Edit.Images, msg.Photo[len(msg.Photo)-1].FileID)
	s.Edit.Dirty = true
	w.renderEditImages(ctx, s, msg.Chat.ID)
	w.save(ctx, key, s)
}

func (w *Wizard) inputBroadcast(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		w.prompts.Update(ctx, s, msg.Chat.ID,
			w.d.Texts.T("edit.broadcast_empty", nil),
			keyboard.EditValue(w.d.Texts))
		w.save(ctx, key, s)
		return
	}

	var exclude int64
	if msg.From != nil {
		exclude = msg.From.ID
	}
	delivered, total, err := w.d.Notify.Broadcast(ctx, s.Edit.EventID, exclude, text)
	if err != nil {
		w.d.Log.Error("failed to broadcast", zap.Error(err), zap.Int64("event_id", s.Edit.EventID))
		w.prompts.Update(ctx, s, msg.Chat.ID,
			w.d.Texts.T("error.internal", nil),
			keyboard.EditValue(w.d.Texts))
		w.save(ctx, key, s)
		return
	}

	// Ноль получателей и ноль доставленных — разные исходы
	var result string
	switch {
	case total == 0:
		result = w.d.Texts.T("edit.broadcast_none", nil)
	case delivered == 0:
		result = w.d.Texts.T("edit.broadcast_failed", map[string]any{"total": total})
	default:
		result = w.d.Texts.T("edit.broadcast_sent", map[string]any{"delivered": delivered, "total": total})
	}

	s.Edit.Stack = []session.Screen{session.ScreenActions}
	s.Step = session.StepNone
	w.renderEditScreen(ctx, s, msg.Chat.ID, result)
	w.save(ctx, key, s)
}

// commitUpdate применяет изменение, уведомляет участников и
// возвращает редактор к корневому экрану
func (w *Wizard) commitUpdate(ctx context.Context, key session.Key, s *session.Session, cb *models.CallbackQuery, chatID int64, field string, upd model.EventUpdate) {
	ev, err := w.d.Events.Update(ctx, s.Edit.EventID, upd)
	if err != nil {
		w.d.Log.Error("failed to update event", zap.Error(err), zap.Int64("event_id", s.Edit.EventID))
		w.renderEditScreen(ctx, s, chatID, w.d.Texts.T("error.internal", nil))
		w.save(ctx, key, s)
		return
	}
	if ev == nil {
		w.renderEditScreen(ctx, s, chatID, w.d.Texts.T("error.not_found", nil))
		w.save(ctx, key, s)
		return
	}

	var exclude int64
	if cb != nil {
		exclude = cb.From.ID
	}
	go func() {
		delivered := w.d.Notify.NotifyEventUpdated(context.WithoutCancel(ctx), ev, field, exclude)
		w.d.Log.Info("event update notices sent",
			zap.Int64("event_id", ev.ID),
			zap.Int("delivered", delivered))
	}()

	// После сохранения стек всегда ровно ["actions"]
	s.Edit.Stack = []session.Screen{session.ScreenActions}
	s.Edit.Field = ""
	s.Edit.Dirty = false
	s.Step = session.StepNone
	w.renderEditScreen(ctx, s, chatID, w.d.Texts.T("edit.saved", nil))
	w.save(ctx, key, s)
}

// OpenBroadcast запрос текста рассылки
func (w *Wizard) OpenBroadcast(ctx context.Context, key session.Key, s *session.Session, eventID, chatID int64) {
	w.ensureEditContext(s, eventID)
	s.Step = session.StepEditBroadcast
	w.pushScreen(s, session.ScreenBroadcast)
	w.renderEditScreen(ctx, s, chatID, "")
	w.save(ctx, key, s)
}

// OpenParticipants список участников события
func (w *Wizard) OpenParticipants(ctx context.Context, key session.Key, s *session.Session, eventID int64, page int, chatID int64) {
	w.ensureEditContext(s, eventID)
	s.Step = session.StepNone
	w.pushScreen(s, session.ScreenParticipants)

	view, err := w.v.Participants(ctx, eventID, page)
	if err != nil || view == nil {
		w.d.Log.Warn("failed to render participants", zap.Error(err), zap.Int64("event_id", eventID))
		return
	}
	w.prompts.Render(ctx, s, chatID, view.Text, view.Markup)
	w.save(ctx, key, s)
}

// RemoveParticipant снимает участника и перерисовывает список
func (w *Wizard) RemoveParticipant(ctx context.Context, key session.Key, s *session.Session, cmd callbacks.Command, chatID int64) {
	removed, err := w.d.Registrations.Unregister(ctx, cmd.EventID, cmd.UserID)
	if err != nil {
		w.d.Log.Error("failed to remove participant",
			zap.Error(err), zap.Int64("event_id", cmd.EventID), zap.Int64("user_id", cmd.UserID))
		return
	}
	if removed {
		w.d.Log.Info("participant removed by moderator",
			zap.Int64("event_id", cmd.EventID), zap.Int64("user_id", cmd.UserID))
	}
	w.OpenParticipants(ctx, key, s, cmd.EventID, 0, chatID)
}

// OpenCancelConfirm подтверждение отмены события
func (w *Wizard) OpenCancelConfirm(ctx context.Context, key session.Key, s *session.Session, eventID, chatID int64) {
	w.ensureEditContext(s, eventID)
	s.Step = session.StepNone
	w.pushScreen(s, session.ScreenCancel)
	w.renderEditScreen(ctx, s, chatID, "")
	w.save(ctx, key, s)
}

// ConfirmCancel отменяет событие и уведомляет участников
func (w *Wizard) ConfirmCancel(ctx context.Context, key session.Key, s *session.Session, cb *models.CallbackQuery, eventID, chatID int64) {
	ev, err := w.d.Events.Cancel(ctx, eventID)
	if err != nil {
		w.d.Log.Error("failed to cancel event", zap.Error(err), zap.Int64("event_id", eventID))
		return
	}
	if ev == nil {
		w.renderEditScreen(ctx, s, chatID, w.d.Texts.T("error.not_found", nil))
		w.save(ctx, key, s)
		return
	}

	w.prompts.Remove(ctx, s)
	w.clear(ctx, key)
	w.settingsFallback(ctx, chatID, "edit.cancel_done")

	go func(exclude int64) {
		delivered := w.d.Notify.NotifyEventCancelled(context.WithoutCancel(ctx), ev, exclude)
		w.d.Log.Info("event cancellation notices sent",
			zap.Int64("event_id", ev.ID),
			zap.Int("delivered", delivered))
	}(cb.From.ID)
}

// renderEditScreen рисует верхний экран стека; prefix добавляется
// над текстом (результат только что выполненного действия)
func (w *Wizard) renderEditScreen(ctx context.Context, s *session.Session, chatID int64, prefix string) {
	tx := w.d.Texts

	var text string
	var markup models.ReplyMarkup

	switch w.topScreen(s) {
	case session.ScreenActions:
		view, err := w.v.EditActions(ctx, s.Edit.EventID)
		if err != nil || view == nil {
			w.d.Log.Warn("failed to render edit actions", zap.Error(err), zap.Int64("event_id", s.Edit.EventID))
			return
		}
		text, markup = view.Text, view.Markup
	case session.ScreenFields:
		text = tx.T("edit.fields", nil)
		markup = keyboard.EditFields(tx, s.Edit.EventID)
	case session.ScreenValue:
		text, markup = w.valuePrompt(s)
	case session.ScreenImages:
		w.renderEditImages(ctx, s, chatID)
		return
	case session.ScreenReminders:
		text = tx.T("edit.reminders", nil)
		markup = keyboard.EditReminders(tx, s.Edit.Reminder3Days, s.Edit.Reminder1Day)
	case session.ScreenBroadcast:
		text = tx.T("edit.broadcast_prompt", nil)
		markup = keyboard.EditValue(tx)
	case session.ScreenParticipants:
		view, err := w.v.Participants(ctx, s.Edit.EventID, 0)
		if err != nil || view == nil {
			return
		}
		text, markup = view.Text, view.Markup
	case session.ScreenPromocodes:
		text, markup = w.promoMenuView(ctx, s)
		if text == "" {
			return
		}
	case session.ScreenCancel:
		ev, err := w.d.Events.Get(ctx, s.Edit.EventID)
		if err != nil || ev == nil {
			return
		}
		text = tx.T("edit.cancel_confirm", map[string]any{"title": ev.Title})
		markup = keyboard.CancelConfirm(tx, ev.ID)
	default:
		return
	}

	if prefix != "" {
		text = prefix + "\n\n" + text
	}
	w.prompts.Render(ctx, s, chatID, text, markup)
}

// valuePrompt подсказка ввода значения поля или промокода
func (w *Wizard) valuePrompt(s *session.Session) (string, models.ReplyMarkup) {
	tx := w.d.Texts
	switch s.Step {
	case session.StepPromoAdd:
		return tx.T("promo.admin.add_prompt", nil), keyboard.EditValue(tx)
	case session.StepPromoDelete:
		return tx.T("promo.admin.delete_prompt", nil), keyboard.EditValue(tx)
	}
	return tx.T("edit.prompt."+s.Edit.Field, nil), keyboard.EditValue(tx)
}

func (w *Wizard) renderEditImages(ctx context.Context, s *session.Session, chatID int64) {
	w.prompts.Render(ctx, s, chatID,
		w.d.Texts.T("edit.images", map[string]any{"count": len(s.Edit.Images)}),
		keyboard.EditImages(w.d.Texts, len(s.Edit.Images) > 0, s.Edit.Dirty))
	w.sendEventMedia(ctx, s, chatID, s.Edit.Images)
}
