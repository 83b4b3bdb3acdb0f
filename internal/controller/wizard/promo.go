package wizard

import (
	"context"
	"strings"

	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/controller/keyboard"
	"github.com/velobro/event_bot/internal/format"
	"github.com/velobro/event_bot/internal/session"
)

// OpenPromoMenu управление промокодами события
func (w *Wizard) OpenPromoMenu(ctx context.Context, key session.Key, s *session.Session, eventID, chatID int64) {
	w.ensureEditContext(s, eventID)
	s.Step = session.StepNone
	w.pushScreen(s, session.ScreenPromocodes)

	text, markup := w.promoMenuView(ctx, s)
	if text == "" {
		return
	}
	w.prompts.Render(ctx, s, chatID, text, markup)
	w.save(ctx, key, s)
}

func (w *Wizard) promoMenuView(ctx context.Context, s *session.Session) (string, models.ReplyMarkup) {
	ev, err := w.d.Events.Get(ctx, s.Edit.EventID)
	if err != nil || ev == nil {
		w.d.Log.Warn("failed to load event for promo menu", zap.Error(err), zap.Int64("event_id", s.Edit.EventID))
		return "", nil
	}
	return w.d.Texts.T("promo.admin.menu", map[string]any{"title": ev.Title}),
		keyboard.PromoMenu(w.d.Texts, ev.ID)
}

// OpenPromoAdd запрос строки "КОД скидка [дата]"
func (w *Wizard) OpenPromoAdd(ctx context.Context, key session.Key, s *session.Session, eventID, chatID int64) {
	w.ensureEditContext(s, eventID)
	s.Step = session.StepPromoAdd
	w.pushScreen(s, session.ScreenValue)
	w.renderEditScreen(ctx, s, chatID, "")
	w.save(ctx, key, s)
}

// OpenPromoDelete запрос кода на удаление
func (w *Wizard) OpenPromoDelete(ctx context.Context, key session.Key, s *session.Session, eventID, chatID int64) {
	w.ensureEditContext(s, eventID)
	s.Step = session.StepPromoDelete
	w.pushScreen(s, session.ScreenValue)
	w.renderEditScreen(ctx, s, chatID, "")
	w.save(ctx, key, s)
}

// ShowPromoList список промокодов события; экран остаётся в меню
// промокодов, кнопка назад ведёт в него напрямую
func (w *Wizard) ShowPromoList(ctx context.Context, key session.Key, s *session.Session, eventID, chatID int64) {
	w.ensureEditContext(s, eventID)

	codes, err := w.d.Promocodes.List(ctx, eventID)
	if err != nil {
		w.d.Log.Error("failed to list promocodes", zap.Error(err), zap.Int64("event_id", eventID))
		return
	}

	tx := w.d.Texts
	var b strings.Builder
	b.WriteString(tx.T("promo.admin.list_title", nil))
	if len(codes) == 0 {
		b.WriteString("\n\n")
		b.WriteString(tx.T("promo.admin.list_empty", nil))
	}
	for _, pc := range codes {
		expires := ""
		if pc.ExpiresAt != nil {
			expires = tx.T("promo.admin.list_expires", map[string]any{
				"date": pc.ExpiresAt.Format(format.DateLayout),
			})
		}
		b.WriteString("\n")
		b.WriteString(tx.T("promo.admin.list_line", map[string]any{
			"code":     pc.Code,
			"discount": format.Money(pc.Discount),
			"expires":  expires,
		}))
	}

	w.prompts.Render(ctx, s, chatID, b.String(), keyboard.PromoMenu(tx, eventID))
	w.save(ctx, key, s)
}

func (w *Wizard) inputPromoAdd(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	code, discount, expiresAt, err := ParsePromoAdd(msg.Text, w.d.Location)
	if err != nil {
		w.showParseError(ctx, s, msg.Chat.ID, err, keyboard.EditValue(w.d.Texts))
		w.save(ctx, key, s)
		return
	}

	if _, err := w.d.Promocodes.Add(ctx, s.Edit.EventID, code, discount, expiresAt); err != nil {
		w.d.Log.Error("failed to add promocode", zap.Error(err), zap.Int64("event_id", s.Edit.EventID))
		w.prompts.Update(ctx, s, msg.Chat.ID, w.d.Texts.T("error.internal", nil), keyboard.EditValue(w.d.Texts))
		w.save(ctx, key, s)
		return
	}

	s.Edit.Stack = []session.Screen{session.ScreenActions}
	s.Step = session.StepNone
	w.renderEditScreen(ctx, s, msg.Chat.ID, w.d.Texts.T("promo.admin.added", map[string]any{
		"code":     code,
		"discount": format.Money(discount),
	}))
	w.save(ctx, key, s)
}

func (w *Wizard) inputPromoDelete(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	code := strings.ToUpper(strings.TrimSpace(msg.Text))
	if code == "" {
		return
	}

	removed, err := w.d.Promocodes.Remove(ctx, s.Edit.EventID, code)
	if err != nil {
		w.d.Log.Error("failed to delete promocode", zap.Error(err), zap.Int64("event_id", s.Edit.EventID))
		w.prompts.Update(ctx, s, msg.Chat.ID, w.d.Texts.T("error.internal", nil), keyboard.EditValue(w.d.Texts))
		w.save(ctx, key, s)
		return
	}
	if !removed {
		w.prompts.Update(ctx, s, msg.Chat.ID, w.d.Texts.T("promo.admin.not_found", nil), keyboard.EditValue(w.d.Texts))
		w.save(ctx, key, s)
		return
	}

	s.Edit.Stack = []session.Screen{session.ScreenActions}
	s.Step = session.StepNone
	w.renderEditScreen(ctx, s, msg.Chat.ID, w.d.Texts.T("promo.admin.deleted", map[string]any{"code": code}))
	w.save(ctx, key, s)
}
