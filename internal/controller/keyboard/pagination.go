package keyboard

import (
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/velobro/event_bot/internal/controller/callbacks"
)

// PageSize событий на страницу списка
const PageSize = 5

// PaginationRow ряд кнопок листания. pageCmd вызывается для номера
// страницы и отдаёт готовую команду (списки и участники листаются
// разными командами).
func PaginationRow(page, totalPages int, pageCmd func(page int) callbacks.Command) []models.InlineKeyboardButton {
	if totalPages <= 1 {
		return nil
	}

	var buttons []models.InlineKeyboardButton

	if page > 0 {
		buttons = append(buttons, Button("⏪", pageCmd(page-1).Encode()))
	}

	buttons = append(buttons, Button(
		fmt.Sprintf("📄 %d/%d", page+1, totalPages),
		callbacks.Command{Kind: callbacks.Noop}.Encode(),
	))

	if page < totalPages-1 {
		buttons = append(buttons, Button("⏩", pageCmd(page+1).Encode()))
	}

	return buttons
}

// TotalPages количество страниц при PageSize элементах на странице
func TotalPages(items int) int {
	if items <= 0 {
		return 1
	}
	return (items + PageSize - 1) / PageSize
}

// PageSlice границы страницы page в слайсе из n элементов
func PageSlice(n, page int) (from, to int) {
	from = page * PageSize
	if from > n {
		from = n
	}
	to = from + PageSize
	if to > n {
		to = n
	}
	return from, to
}
