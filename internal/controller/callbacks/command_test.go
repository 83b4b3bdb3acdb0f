package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEncodeRoundtrip(t *testing.T) {
	commands := []Command{
		{Kind: Noop},
		{Kind: MainMenu},
		{Kind: MenuActual},
		{Kind: MenuCommunity},
		{Kind: MenuSettings},
		{Kind: SettingsCreate},
		{Kind: SettingsManage},
		{Kind: ManagePage, Page: 3},
		{Kind: EventView, EventID: 42},
		{Kind: EventListPage, Page: 1},
		{Kind: EventPay, EventID: 42},
		{Kind: EventPayCard, EventID: 42},
		{Kind: EventPromo, EventID: 42},
		{Kind: EventRefund, EventID: 42},
		{Kind: EventRegister, EventID: 42},
		{Kind: EventLeave, EventID: 42},
		{Kind: CreateBack},
		{Kind: CreateSkip},
		{Kind: CreateCancel},
		{Kind: CreateImagesConfirm},
		{Kind: CreateReminder3},
		{Kind: CreateReminder1},
		{Kind: CreateRemindersDone},
		{Kind: CreatePublish},
		{Kind: EditEvent, EventID: 7},
		{Kind: EditField, EventID: 7, Field: "title"},
		{Kind: EditBack},
		{Kind: EditSave},
		{Kind: EditClearImages},
		{Kind: EditReminder3},
		{Kind: EditReminder1},
		{Kind: EditBroadcast, EventID: 7},
		{Kind: EditParticipants, EventID: 7},
		{Kind: EditParticipantsPage, EventID: 7, Page: 2},
		{Kind: EditParticipantRemove, EventID: 7, UserID: 99},
		{Kind: EditCancelEvent, EventID: 7},
		{Kind: EditConfirmCancel, EventID: 7},
		{Kind: PromoMenu, EventID: 7},
		{Kind: PromoAdd, EventID: 7},
		{Kind: PromoDelete, EventID: 7},
		{Kind: PromoList, EventID: 7},
		{Kind: Hide},
	}

	for _, cmd := range commands {
		data := cmd.Encode()
		require.NotEmpty(t, data, "kind %d", cmd.Kind)
		assert.Equal(t, cmd, Parse(data), "roundtrip %q", data)
	}
}

// Пересекающиеся префиксы: более конкретные данные не должны
// разбираться менее конкретным правилом.
func TestParsePrefixPrecedence(t *testing.T) {
	cases := []struct {
		data string
		want Command
	}{
		{"event:payment:42", Command{Kind: EventPay, EventID: 42}},
		{"event:payment:method:card:42", Command{Kind: EventPayCard, EventID: 42}},
		{"event:view:5", Command{Kind: EventView, EventID: 5}},
		{"event:list:page:0", Command{Kind: EventListPage}},
		{"edit:participants:7", Command{Kind: EditParticipants, EventID: 7}},
		{"edit:participants:page:7:2", Command{Kind: EditParticipantsPage, EventID: 7, Page: 2}},
		{"edit:participant:remove:7:99", Command{Kind: EditParticipantRemove, EventID: 7, UserID: 99}},
		{"edit:event:7", Command{Kind: EditEvent, EventID: 7}},
		{"edit:field:7:cost", Command{Kind: EditField, EventID: 7, Field: "cost"}},
		{"edit:cancel:event:7", Command{Kind: EditCancelEvent, EventID: 7}},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Parse(tc.data), "data %q", tc.data)
	}
}

func TestParseUnknown(t *testing.T) {
	for _, data := range []string{
		"",
		"garbage",
		"event:view:",
		"event:view:abc",
		"event:list:page:-1",
		"edit:field:7",
		"edit:field:abc:title",
		"edit:participants:page:7",
		"booking:confirm:5",
	} {
		assert.Equal(t, Unknown, Parse(data).Kind, "data %q", data)
	}
}
