package model

import "errors"

var (
	// ErrEventFull лимит участников исчерпан
	ErrEventFull = errors.New("event is full")
	// ErrNoPayment у пользователя нет успешного платежа за событие
	ErrNoPayment = errors.New("no succeeded payment")
)
