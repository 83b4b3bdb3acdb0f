package tg

import "strings"

// IsNotModified ошибка "message is not modified" — не настоящая ошибка:
// контент уже такой, каким мы его хотим видеть
func IsNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
