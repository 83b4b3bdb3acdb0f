package session

// Step состояние диалога пользователя. Один пользователь в один момент
// находится ровно в одном состоянии; StepNone — диалога нет.
type Step int

const (
	StepNone Step = iota

	// Мастер создания события
	StepTitle
	StepDate
	StepCost
	StepDescription
	StepTime
	StepPlace
	StepPeriod
	StepImage
	StepLimit
	StepReminders
	StepPreview

	// Редактирование события
	StepEditField
	StepEditValue
	StepEditImages
	StepEditReminders
	StepEditParticipants
	StepEditBroadcast
	StepEditCancelConfirm

	// Промокоды
	StepPromoCode   // пользователь вводит промокод
	StepPromoAdd    // модератор добавляет промокод
	StepPromoDelete // модератор удаляет промокод
)

var stepNames = map[Step]string{
	StepNone:              "none",
	StepTitle:             "title",
	StepDate:              "date",
	StepCost:              "cost",
	StepDescription:       "description",
	StepTime:              "time",
	StepPlace:             "place",
	StepPeriod:            "period",
	StepImage:             "image",
	StepLimit:             "limit",
	StepReminders:         "reminders",
	StepPreview:           "preview",
	StepEditField:         "edit_field",
	StepEditValue:         "edit_value",
	StepEditImages:        "edit_images",
	StepEditReminders:     "edit_reminders",
	StepEditParticipants:  "edit_participants",
	StepEditBroadcast:     "edit_broadcast",
	StepEditCancelConfirm: "edit_cancel_confirm",
	StepPromoCode:         "promo_code",
	StepPromoAdd:          "promo_add",
	StepPromoDelete:       "promo_delete",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// CreateOrder порядок шагов мастера создания события
var CreateOrder = []Step{
	StepTitle,
	StepDate,
	StepCost,
	StepDescription,
	StepTime,
	StepPlace,
	StepPeriod,
	StepImage,
	StepLimit,
	StepReminders,
	StepPreview,
}

// Optional шаг можно пропустить кнопкой «Пропустить»
func (s Step) Optional() bool {
	switch s {
	case StepCost, StepDescription, StepTime, StepPlace, StepPeriod, StepImage, StepLimit:
		return true
	}
	return false
}

// NextCreateStep следующий шаг мастера (StepNone после последнего)
func NextCreateStep(s Step) Step {
	for i, step := range CreateOrder {
		if step == s && i+1 < len(CreateOrder) {
			return CreateOrder[i+1]
		}
	}
	return StepNone
}
