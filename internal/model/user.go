package model

import (
	"strconv"
	"time"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
)

type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// Identity данные пользователя, которые приходят с каждым апдейтом Telegram
type Identity struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

// IsModerator права на модераторские разделы бота
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// DisplayName имя для списков участников: @username либо имя и фамилия
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		return "id" + strconv.FormatInt(u.TelegramID, 10)
	}
	return name
}
