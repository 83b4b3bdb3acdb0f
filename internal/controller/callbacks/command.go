package callbacks

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind типизированное действие кнопки. Callback data разбирается
// ровно один раз на входе, дальше по коду ходит Command.
type Kind int

const (
	Unknown Kind = iota
	Noop

	MainMenu
	MenuActual
	MenuCommunity
	MenuSettings

	EventView     // EventID
	EventListPage // Page
	EventPay      // EventID
	EventPayCard  // EventID
	EventPromo    // EventID
	EventRefund   // EventID
	EventRegister // EventID
	EventLeave    // EventID

	SettingsCreate
	SettingsManage
	ManagePage // Page

	CreateBack
	CreateSkip
	CreateCancel
	CreateImagesConfirm
	CreateReminder3
	CreateReminder1
	CreateRemindersDone
	CreatePublish

	EditEvent // EventID
	EditField // EventID, Field
	EditBack
	EditSave
	EditClearImages
	EditReminder3
	EditReminder1
	EditBroadcast         // EventID
	EditParticipants      // EventID
	EditParticipantsPage  // EventID, Page
	EditParticipantRemove // EventID, UserID
	EditCancelEvent       // EventID
	EditConfirmCancel     // EventID

	PromoMenu   // EventID
	PromoAdd    // EventID
	PromoDelete // EventID
	PromoList   // EventID

	Hide
)

// Command разобранная кнопка
type Command struct {
	Kind    Kind
	EventID int64
	UserID  int64
	Page    int
	Field   string
}

// Литералы callback data. Формат исторический, менять нельзя:
// кнопки со старым форматом живут в чатах годами.
const (
	dataMainMenu      = "main:start"
	dataMenuActual    = "menu:actual"
	dataMenuCommunity = "menu:community"
	dataMenuSettings  = "menu:settings"

	prefEventView     = "event:view:"
	prefEventListPage = "event:list:page:"
	prefEventPay      = "event:payment:"
	prefEventPayCard  = "event:payment:method:card:"
	prefEventPromo    = "event:promocode:"
	prefEventRefund   = "event:refund:"
	prefEventRegister = "event:register:"
	prefEventLeave    = "event:leave:"

	dataSettingsCreate = "settings:create"
	dataSettingsManage = "settings:manage"
	prefManagePage     = "manage:page:"

	dataCreateBack          = "create:back"
	dataCreateSkip          = "create:skip"
	dataCreateCancel        = "create:cancel"
	dataCreateImagesConfirm = "create:images:confirm"
	dataCreateReminder3     = "create:reminder:3"
	dataCreateReminder1     = "create:reminder:1"
	dataCreateRemindersDone = "create:reminder:done"
	dataCreatePublish       = "create:publish"

	prefEditEvent           = "edit:event:"
	prefEditField           = "edit:field:"
	dataEditBack            = "edit:back"
	dataEditSave            = "edit:save"
	dataEditClearImages     = "edit:images:clear"
	dataEditReminder3       = "edit:reminder:3"
	dataEditReminder1       = "edit:reminder:1"
	prefEditBroadcast       = "edit:broadcast:"
	prefEditParticipants    = "edit:participants:"
	prefEditParticipantsPg  = "edit:participants:page:"
	prefEditParticipantRm   = "edit:participant:remove:"
	prefEditCancelEvent     = "edit:cancel:event:"
	prefEditConfirmCancel   = "edit:confirm_cancel:"

	prefPromoMenu   = "promocode:menu:"
	prefPromoAdd    = "promocode:add:"
	prefPromoDelete = "promocode:delete:"
	prefPromoList   = "promocode:list:"

	dataHide = "hide"
	dataNoop = "noop"
)

// Parse разбирает callback data. Нераспознанные данные дают Unknown,
// решение о реакции принимает роутер.
func Parse(data string) Command {
	switch data {
	case dataNoop:
		return Command{Kind: Noop}
	case dataMainMenu:
		return Command{Kind: MainMenu}
	case dataMenuActual:
		return Command{Kind: MenuActual}
	case dataMenuCommunity:
		return Command{Kind: MenuCommunity}
	case dataMenuSettings:
		return Command{Kind: MenuSettings}
	case dataSettingsCreate:
		return Command{Kind: SettingsCreate}
	case dataSettingsManage:
		return Command{Kind: SettingsManage}
	case dataCreateBack:
		return Command{Kind: CreateBack}
	case dataCreateSkip:
		return Command{Kind: CreateSkip}
	case dataCreateCancel:
		return Command{Kind: CreateCancel}
	case dataCreateImagesConfirm:
		return Command{Kind: CreateImagesConfirm}
	case dataCreateReminder3:
		return Command{Kind: CreateReminder3}
	case dataCreateReminder1:
		return Command{Kind: CreateReminder1}
	case dataCreateRemindersDone:
		return Command{Kind: CreateRemindersDone}
	case dataCreatePublish:
		return Command{Kind: CreatePublish}
	case dataEditBack:
		return Command{Kind: EditBack}
	case dataEditSave:
		return Command{Kind: EditSave}
	case dataEditClearImages:
		return Command{Kind: EditClearImages}
	case dataEditReminder3:
		return Command{Kind: EditReminder3}
	case dataEditReminder1:
		return Command{Kind: EditReminder1}
	case dataHide:
		return Command{Kind: Hide}
	}

	// Порядок проверки префиксов важен: более длинные раньше,
	// иначе "edit:participants:page:..." уедет в "edit:participants:".
	switch {
	case strings.HasPrefix(data, prefEventPayCard):
		return withEvent(EventPayCard, data, prefEventPayCard)
	case strings.HasPrefix(data, prefEventListPage):
		return withPage(EventListPage, data, prefEventListPage)
	case strings.HasPrefix(data, prefEventView):
		return withEvent(EventView, data, prefEventView)
	case strings.HasPrefix(data, prefEventPay):
		return withEvent(EventPay, data, prefEventPay)
	case strings.HasPrefix(data, prefEventPromo):
		return withEvent(EventPromo, data, prefEventPromo)
	case strings.HasPrefix(data, prefEventRefund):
		return withEvent(EventRefund, data, prefEventRefund)
	case strings.HasPrefix(data, prefEventRegister):
		return withEvent(EventRegister, data, prefEventRegister)
	case strings.HasPrefix(data, prefEventLeave):
		return withEvent(EventLeave, data, prefEventLeave)
	case strings.HasPrefix(data, prefManagePage):
		return withPage(ManagePage, data, prefManagePage)
	case strings.HasPrefix(data, prefEditField):
		return parseEditField(data)
	case strings.HasPrefix(data, prefEditParticipantsPg):
		return parseEventPage(EditParticipantsPage, data, prefEditParticipantsPg)
	case strings.HasPrefix(data, prefEditParticipantRm):
		return parseEventUser(EditParticipantRemove, data, prefEditParticipantRm)
	case strings.HasPrefix(data, prefEditParticipants):
		return withEvent(EditParticipants, data, prefEditParticipants)
	case strings.HasPrefix(data, prefEditBroadcast):
		return withEvent(EditBroadcast, data, prefEditBroadcast)
	case strings.HasPrefix(data, prefEditCancelEvent):
		return withEvent(EditCancelEvent, data, prefEditCancelEvent)
	case strings.HasPrefix(data, prefEditConfirmCancel):
		return withEvent(EditConfirmCancel, data, prefEditConfirmCancel)
	case strings.HasPrefix(data, prefEditEvent):
		return withEvent(EditEvent, data, prefEditEvent)
	case strings.HasPrefix(data, prefPromoMenu):
		return withEvent(PromoMenu, data, prefPromoMenu)
	case strings.HasPrefix(data, prefPromoAdd):
		return withEvent(PromoAdd, data, prefPromoAdd)
	case strings.HasPrefix(data, prefPromoDelete):
		return withEvent(PromoDelete, data, prefPromoDelete)
	case strings.HasPrefix(data, prefPromoList):
		return withEvent(PromoList, data, prefPromoList)
	}

	return Command{Kind: Unknown}
}

// Encode собирает callback data обратно. Parse(cmd.Encode()) == cmd.
func (c Command) Encode() string {
	switch c.Kind {
	case Noop:
		return dataNoop
	case MainMenu:
		return dataMainMenu
	case MenuActual:
		return dataMenuActual
	case MenuCommunity:
		return dataMenuCommunity
	case MenuSettings:
		return dataMenuSettings
	case SettingsCreate:
		return dataSettingsCreate
	case SettingsManage:
		return dataSettingsManage
	case ManagePage:
		return prefManagePage + strconv.Itoa(c.Page)
	case EventView:
		return prefEventView + strconv.FormatInt(c.EventID, 10)
	case EventListPage:
		return prefEventListPage + strconv.Itoa(c.Page)
	case EventPay:
		return prefEventPay + strconv.FormatInt(c.EventID, 10)
	case EventPayCard:
		return prefEventPayCard + strconv.FormatInt(c.EventID, 10)
	case EventPromo:
		return prefEventPromo + strconv.FormatInt(c.EventID, 10)
	case EventRefund:
		return prefEventRefund + strconv.FormatInt(c.EventID, 10)
	case EventRegister:
		return prefEventRegister + strconv.FormatInt(c.EventID, 10)
	case EventLeave:
		return prefEventLeave + strconv.FormatInt(c.EventID, 10)
	case CreateBack:
		return dataCreateBack
	case CreateSkip:
		return dataCreateSkip
	case CreateCancel:
		return dataCreateCancel
	case CreateImagesConfirm:
		return dataCreateImagesConfirm
	case CreateReminder3:
		return dataCreateReminder3
	case CreateReminder1:
		return dataCreateReminder1
	case CreateRemindersDone:
		return dataCreateRemindersDone
	case CreatePublish:
		return dataCreatePublish
	case EditEvent:
		return prefEditEvent + strconv.FormatInt(c.EventID, 10)
	case EditField:
		return fmt.Sprintf("%s%d:%s", prefEditField, c.EventID, c.Field)
	case EditBack:
		return dataEditBack
	case EditSave:
		return dataEditSave
	case EditClearImages:
		return dataEditClearImages
	case EditReminder3:
		return dataEditReminder3
	case EditReminder1:
		return dataEditReminder1
	case EditBroadcast:
		return prefEditBroadcast + strconv.FormatInt(c.EventID, 10)
	case EditParticipants:
		return prefEditParticipants + strconv.FormatInt(c.EventID, 10)
	case EditParticipantsPage:
		return fmt.Sprintf("%s%d:%d", prefEditParticipantsPg, c.EventID, c.Page)
	case EditParticipantRemove:
		return fmt.Sprintf("%s%d:%d", prefEditParticipantRm, c.EventID, c.UserID)
	case EditCancelEvent:
		return prefEditCancelEvent + strconv.FormatInt(c.EventID, 10)
	case EditConfirmCancel:
		return prefEditConfirmCancel + strconv.FormatInt(c.EventID, 10)
	case PromoMenu:
		return prefPromoMenu + strconv.FormatInt(c.EventID, 10)
	case PromoAdd:
		return prefPromoAdd + strconv.FormatInt(c.EventID, 10)
	case PromoDelete:
		return prefPromoDelete + strconv.FormatInt(c.EventID, 10)
	case PromoList:
		return prefPromoList + strconv.FormatInt(c.EventID, 10)
	case Hide:
		return dataHide
	}
	return ""
}

func withEvent(kind Kind, data, prefix string) Command {
	id, err := strconv.ParseInt(data[len(prefix):], 10, 64)
	if err != nil {
		return Command{Kind: Unknown}
	}
	return Command{Kind: kind, EventID: id}
}

func withPage(kind Kind, data, prefix string) Command {
	page, err := strconv.Atoi(data[len(prefix):])
	if err != nil || page < 0 {
		return Command{Kind: Unknown}
	}
	return Command{Kind: kind, Page: page}
}

func parseEditField(data string) Command {
	rest := data[len(prefEditField):]
	idStr, field, ok := strings.Cut(rest, ":")
	if !ok || field == "" {
		return Command{Kind: Unknown}
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return Command{Kind: Unknown}
	}
	return Command{Kind: EditField, EventID: id, Field: field}
}

func parseEventPage(kind Kind, data, prefix string) Command {
	rest := data[len(prefix):]
	idStr, pageStr, ok := strings.Cut(rest, ":")
	if !ok {
		return Command{Kind: Unknown}
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return Command{Kind: Unknown}
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 0 {
		return Command{Kind: Unknown}
	}
	return Command{Kind: kind, EventID: id, Page: page}
}

func parseEventUser(kind Kind, data, prefix string) Command {
	rest := data[len(prefix):]
	idStr, userStr, ok := strings.Cut(rest, ":")
	if !ok {
		return Command{Kind: Unknown}
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return Command{Kind: Unknown}
	}
	userID, err := strconv.ParseInt(userStr, 10, 64)
	if err != nil {
		return Command{Kind: Unknown}
	}
	return Command{Kind: kind, EventID: id, UserID: userID}
}
