package model

import "time"

type Registration struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant строка в списке участников события
type Participant struct {
	User         User
	RegisteredAt time.Time
}
