package wizard

import (
	"context"
	"strings"

	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/controller/keyboard"
	"github.com/velobro/event_bot/internal/format"
	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/session"
)

// ключи подсказок шагов мастера
var createPromptKeys = map[session.Step]string{
	session.StepTitle:       "create.title",
	session.StepDate:        "create.date",
	session.StepCost:        "create.cost",
	session.StepDescription: "create.description",
	session.StepTime:        "create.time",
	session.StepPlace:       "create.place",
	session.StepPeriod:      "create.period",
	session.StepLimit:       "create.limit",
}

// StartCreate начинает мастер с чистого листа
func (w *Wizard) StartCreate(ctx context.Context, key session.Key, chatID int64) {
	s := &session.Session{Step: session.StepTitle}
	w.renderCreateStep(ctx, s, chatID)
	w.save(ctx, key, s)
}

// HandleCreateMessage текстовый или фото-ввод на шаге мастера.
// Возвращает false, если текущее состояние не относится к созданию.
func (w *Wizard) HandleCreateMessage(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) bool {
	switch s.Step {
	case session.StepTitle:
		w.inputTitle(ctx, key, s, msg)
	case session.StepDate:
		w.inputDate(ctx, key, s, msg)
	case session.StepCost:
		w.inputCost(ctx, key, s, msg)
	case session.StepDescription:
		w.inputText(ctx, key, s, msg, func(text string) { s.Draft.Description = &text })
	case session.StepTime:
		w.inputTime(ctx, key, s, msg)
	case session.StepPlace:
		w.inputText(ctx, key, s, msg, func(text string) { s.Draft.Place = &text })
	case session.StepPeriod:
		w.inputPeriod(ctx, key, s, msg)
	case session.StepImage:
		w.inputImage(ctx, key, s, msg)
	case session.StepLimit:
		w.inputLimit(ctx, key, s, msg)
	default:
		return false
	}
	return true
}

func (w *Wizard) inputTitle(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		w.prompts.Update(ctx, s, msg.Chat.ID,
			w.d.Texts.T("create.title_empty", nil),
			keyboard.CreateStep(w.d.Texts, s.Step, len(s.History) > 0))
		w.save(ctx, key, s)
		return
	}

	s.Draft.Title = text
	w.advance(ctx, key, s, msg.Chat.ID)
}

func (w *Wizard) inputDate(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	from, to, err := ParseDateRange(msg.Text, w.d.Location)
	if err != nil {
		w.showParseError(ctx, s, msg.Chat.ID, err,
			keyboard.CreateStep(w.d.Texts, s.Step, len(s.History) > 0))
		w.save(ctx, key, s)
		return
	}

	s.Draft.Date = &from
	s.Draft.EndDate = to
	// Новая дата обнуляет ранее введённое время
	s.Draft.Time = nil
	s.Draft.EndTime = nil
	w.advance(ctx, key, s, msg.Chat.ID)
}

func (w *Wizard) inputCost(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	cost, err := ParseCost(msg.Text)
	if err != nil {
		w.showParseError(ctx, s, msg.Chat.ID, err,
			keyboard.CreateStep(w.d.Texts, s.Step, len(s.History) > 0))
		w.save(ctx, key, s)
		return
	}

	if cost.IsPositive() {
		s.Draft.Cost = &cost
	} else {
		s.Draft.Cost = nil
	}
	w.advance(ctx, key, s, msg.Chat.ID)
}

// inputText шаги со свободным текстом (описание, место)
func (w *Wizard) inputText(ctx context.Context, key session.Key, s *session.Session, msg *models.Message, store func(string)) {
	defer w.deleteUserMessage(ctx, msg)

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		w.prompts.Update(ctx, s, msg.Chat.ID,
			w.d.Texts.T("create.title_empty", nil),
			keyboard.CreateStep(w.d.Texts, s.Step, len(s.History) > 0))
		w.save(ctx, key, s)
		return
	}

	store(text)
	w.advance(ctx, key, s, msg.Chat.ID)
}

func (w *Wizard) inputTime(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	t, err := ParseTime(msg.Text)
	if err != nil {
		w.showParseError(ctx, s, msg.Chat.ID, err,
			keyboard.CreateStep(w.d.Texts, s.Step, len(s.History) > 0))
		w.save(ctx, key, s)
		return
	}

	s.Draft.Time = &t
	w.advance(ctx, key, s, msg.Chat.ID)
}

func (w *Wizard) inputPeriod(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	from, to, err := ParsePeriod(msg.Text, s.Draft.Time)
	if err != nil {
		w.showParseError(ctx, s, msg.Chat.ID, err,
			keyboard.CreateStep(w.d.Texts, s.Step, len(s.History) > 0))
		w.save(ctx, key, s)
		return
	}

	s.Draft.Time = &from
	s.Draft.EndTime = &to
	w.advance(ctx, key, s, msg.Chat.ID)
}

func (w *Wizard) inputImage(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	// Текстовые команды шага фотографий
	switch strings.ToLower(strings.TrimSpace(msg.Text)) {
	case "очистить", "clear":
		s.Draft.Images = nil
		w.updateImagePrompt(ctx, s, msg.Chat.ID)
		w.save(ctx, key, s)
		return
	case "подтвердить", "confirm", "готово":
		w.advance(ctx, key, s, msg.Chat.ID)
		return
	}

	if len(msg.Photo) == 0 {
		w.prompts.Update(ctx, s, msg.Chat.ID,
			w.d.Texts.T("create.image_expected", nil),
			keyboard.CreateStep(w.d.Texts, s.Step, len(s.History) > 0))
		w.save(ctx, key, s)
		return
	}

	if len(s.Draft.Images) >= model.MaxEventImages {
		w.prompts.Update(ctx, s, msg.Chat.ID,
			w.d.Texts.T("create.images_limit", map[string]any{"max": model.MaxEventImages}),
			keyboard.CreateStep(w.d.Texts, s.Step, len(s.History) > 0))
		w.save(ctx, key, s)
		return
	}

	// Telegram присылает варианты размеров, берём самый крупный
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	s.Draft.Images = append(s.Draft.Images, fileID)
	w.updateImagePrompt(ctx, s, msg.Chat.ID)
	w.save(ctx, key, s)
}

func (w *Wizard) updateImagePrompt(ctx context.Context, s *session.Session, chatID int64) {
	w.prompts.Update(ctx, s, chatID,
		w.d.Texts.T("create.image", map[string]any{
			"max":   model.MaxEventImages,
			"count": len(s.Draft.Images),
		}),
		keyboard.CreateStep(w.d.Texts, session.StepImage, len(s.History) > 0))
}

func (w *Wizard) inputLimit(ctx context.Context, key session.Key, s *session.Session, msg *models.Message) {
	defer w.deleteUserMessage(ctx, msg)

	limit, err := ParseLimit(msg.Text)
	if err != nil {
		w.showParseError(ctx, s, msg.Chat.ID, err,
			keyboard.CreateStep(w.d.Texts, s.Step, len(s.History) > 0))
		w.save(ctx, key, s)
		return
	}

	s.Draft.Limit = &limit
	w.advance(ctx, key, s, msg.Chat.ID)
}

// advance фиксирует пройденный шаг в истории и двигает мастер вперёд
func (w *Wizard) advance(ctx context.Context, key session.Key, s *session.Session, chatID int64) {
	s.PushHistory(s.Step)
	s.Step = session.NextCreateStep(s.Step)
	w.renderCreateStep(ctx, s, chatID)
	w.save(ctx, key, s)
}

// CreateBack возврат на предыдущий шаг. Пустая история — выход из мастера.
func (w *Wizard) CreateBack(ctx context.Context, key session.Key, s *session.Session, chatID int64) {
	if s.Step == session.StepNone {
		return
	}

	prev := s.PopHistory()
	if prev == session.StepNone {
		w.abortCreate(ctx, key, s, chatID)
		return
	}

	s.Step = prev
	w.renderCreateStep(ctx, s, chatID)
	w.save(ctx, key, s)
}

// CreateSkip пропуск необязательного шага: поле остаётся пустым,
// но шаг попадает в историю и откатывается как обычный
func (w *Wizard) CreateSkip(ctx context.Context, key session.Key, s *session.Session, chatID int64) {
	if !s.Step.Optional() {
		return
	}

	switch s.Step {
	case session.StepCost:
		s.Draft.Cost = nil
	case session.StepDescription:
		s.Draft.Description = nil
	case session.StepTime:
		s.Draft.Time = nil
		s.Draft.EndTime = nil
	case session.StepPlace:
		s.Draft.Place = nil
	case session.StepPeriod:
		s.Draft.EndTime = nil
	case session.StepLimit:
		s.Draft.Limit = nil
	}
	w.advance(ctx, key, s, chatID)
}

// CreateCancel полный сброс мастера
func (w *Wizard) CreateCancel(ctx context.Context, key session.Key, s *session.Session, chatID int64) {
	w.abortCreate(ctx, key, s, chatID)
}

func (w *Wizard) abortCreate(ctx context.Context, key session.Key, s *session.Session, chatID int64) {
	w.prompts.Remove(ctx, s)
	w.clear(ctx, key)
	w.settingsFallback(ctx, chatID, "create.cancelled")
}

// ImagesConfirm подтверждение набора фотографий кнопкой
func (w *Wizard) ImagesConfirm(ctx context.Context, key session.Key, s *session.Session, chatID int64) {
	if s.Step != session.StepImage {
		return
	}
	w.advance(ctx, key, s, chatID)
}

// ToggleCreateReminder переключатель напоминания на шаге мастера
func (w *Wizard) ToggleCreateReminder(ctx context.Context, key session.Key, s *session.Session, chatID int64, threeDays bool) {
	if s.Step != session.StepReminders {
		return
	}

	if threeDays {
		s.Draft.Reminder3Days = !s.Draft.Reminder3Days
	} else {
		s.Draft.Reminder1Day = !s.Draft.Reminder1Day
	}
	w.prompts.Update(ctx, s, chatID,
		w.d.Texts.T("create.reminders", nil),
		keyboard.CreateReminders(w.d.Texts, s.Draft.Reminder3Days, s.Draft.Reminder1Day))
	w.save(ctx, key, s)
}

// RemindersDone переход с выбора напоминаний на превью
func (w *Wizard) RemindersDone(ctx context.Context, key session.Key, s *session.Session, chatID int64) {
	if s.Step != session.StepReminders {
		return
	}
	w.advance(ctx, key, s, chatID)
}

// Publish создаёт событие из черновика и анонсирует его всем.
// Повтор нажатия на устаревшем превью — no-op: сессия уже очищена.
func (w *Wizard) Publish(ctx context.Context, key session.Key, s *session.Session, cb *models.CallbackQuery, chatID int64) bool {
	if s.Step != session.StepPreview {
		return false
	}

	user, err := w.d.Users.Ensure(ctx, identity(&cb.From))
	if err != nil {
		w.d.Log.Error("failed to ensure moderator", zap.Error(err))
		return false
	}

	ev := draftEvent(s.Draft, user.ID)
	if err := w.d.Events.Create(ctx, ev); err != nil {
		w.d.Log.Error("failed to create event", zap.Error(err))
		w.prompts.Update(ctx, s, chatID,
			w.d.Texts.T("error.internal", nil),
			keyboard.CreatePreview(w.d.Texts))
		w.save(ctx, key, s)
		return false
	}

	w.prompts.Remove(ctx, s)
	w.clear(ctx, key)
	w.settingsFallback(ctx, chatID, "create.published")

	// Анонс не задерживает ответ модератору
	go func(ev *model.Event, exclude int64) {
		delivered := w.d.Notify.AnnounceNewEvent(context.WithoutCancel(ctx), ev, exclude)
		w.d.Log.Info("new event announced",
			zap.Int64("event_id", ev.ID),
			zap.Int("delivered", delivered))
	}(ev, user.TelegramID)

	return true
}

// renderCreateStep рисует подсказку текущего шага
func (w *Wizard) renderCreateStep(ctx context.Context, s *session.Session, chatID int64) {
	tx := w.d.Texts

	switch s.Step {
	case session.StepImage:
		w.prompts.Render(ctx, s, chatID,
			tx.T("create.image", map[string]any{
				"max":   model.MaxEventImages,
				"count": len(s.Draft.Images),
			}),
			keyboard.CreateStep(tx, s.Step, len(s.History) > 0))
	case session.StepReminders:
		w.prompts.Render(ctx, s, chatID,
			tx.T("create.reminders", nil),
			keyboard.CreateReminders(tx, s.Draft.Reminder3Days, s.Draft.Reminder1Day))
	case session.StepPreview:
		w.renderPreview(ctx, s, chatID)
	default:
		key, ok := createPromptKeys[s.Step]
		if !ok {
			return
		}
		w.prompts.Render(ctx, s, chatID,
			tx.T(key, nil),
			keyboard.CreateStep(tx, s.Step, len(s.History) > 0))
	}
}

// renderPreview карточка будущего события с медиа и кнопкой публикации
func (w *Wizard) renderPreview(ctx context.Context, s *session.Session, chatID int64) {
	ev := draftEvent(s.Draft, 0)
	text := w.d.Texts.T("create.preview", nil) + "\n\n" +
		format.EventCard(ev, format.CardOptions{}, w.d.Texts)

	// Render чистит прошлые aux-сообщения, медиа шлём после него
	w.prompts.Render(ctx, s, chatID, text, keyboard.CreatePreview(w.d.Texts))
	w.sendEventMedia(ctx, s, chatID, s.Draft.Images)
}
