package session

import (
	"context"
	"sync"
)

// MemoryStore хранит сессии в памяти процесса. Дефолт для одного инстанса.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[Key]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[Key]*Session),
	}
}

func (m *MemoryStore) Get(_ context.Context, key Key) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[key]
	if !ok {
		return &Session{}, nil
	}
	return clone(s), nil
}

func (m *MemoryStore) Put(_ context.Context, key Key, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[key] = clone(s)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, key)
	return nil
}

// clone глубокая копия, чтобы вызывающий не делил слайсы с хранилищем
func clone(s *Session) *Session {
	c := *s
	c.History = append([]Step(nil), s.History...)
	c.Aux = append([]Ref(nil), s.Aux...)
	c.Draft.Images = append([]string(nil), s.Draft.Images...)
	c.Edit.Stack = append([]Screen(nil), s.Edit.Stack...)
	c.Edit.Images = append([]string(nil), s.Edit.Images...)
	if s.Prompt != nil {
		p := *s.Prompt
		c.Prompt = &p
	}
	return &c
}
