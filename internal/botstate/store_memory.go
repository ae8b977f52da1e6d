package botstate

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type MemoryStore struct {
	mu     sync.RWMutex
	states map[int64]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[int64]State{}}
}

func (m *MemoryStore) Get(_ context.Context, telegramID int64) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[telegramID]
	if !ok {
		return State{TelegramID: telegramID}, nil
	}
	return st, nil
}

func (m *MemoryStore) SetState(_ context.Context, telegramID int64, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.states[telegramID]
	st.TelegramID = telegramID
	st.State = state
	st.UpdatedAt = time.Now()
	m.states[telegramID] = st
	return nil
}

func (m *MemoryStore) SetData(_ context.Context, telegramID int64, data json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.states[telegramID]
	st.TelegramID = telegramID
	st.Data = data
	st.UpdatedAt = time.Now()
	m.states[telegramID] = st
	return nil
}

func (m *MemoryStore) Set(_ context.Context, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st.UpdatedAt = time.Now()
	m.states[st.TelegramID] = st
	return nil
}
