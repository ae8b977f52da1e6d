package quiz

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps everything in maps behind one mutex. Used by tests
// and as the fallback when no database is configured.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[int64]User
	tests        map[string]Test
	questions    map[string]Question
	orderByTest  map[string][]string // question ids in insertion order
	options      map[string]Option
	sessions     map[string]Session
	answers      []UserAnswer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       map[int64]User{},
		tests:       map[string]Test{},
		questions:   map[string]Question{},
		orderByTest: map[string][]string{},
		options:     map[string]Option{},
		sessions:    map[string]Session{},
	}
}

func (m *MemoryStore) UpsertUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.users[u.TelegramID]; ok {
		prev.FirstName = u.FirstName
		prev.LastName = u.LastName
		m.users[u.TelegramID] = prev
		return prev, nil
	}
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now()
	}
	m.users[u.TelegramID] = u
	return u, nil
}

func (m *MemoryStore) GetUser(_ context.Context, telegramID int64) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[telegramID]
	if !ok {
		return User{}, errf(KindNotFound, "user %d not found", telegramID)
	}
	return u, nil
}

func (m *MemoryStore) CreateTest(_ context.Context, t Test) (Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.tests[t.ID] = t
	return t, nil
}

func (m *MemoryStore) GetTest(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, errf(KindNotFound, "test %s not found", id)
	}
	return t, nil
}

func (m *MemoryStore) ListTests(_ context.Context) ([]TestSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TestSummary, 0, len(m.tests))
	for _, t := range m.tests {
		out = append(out, TestSummary{
			ID:             t.ID,
			Name:           t.Name,
			Description:    t.Description,
			QuestionsCount: len(m.orderByTest[t.ID]),
			CreatedAt:      t.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) AddQuestion(_ context.Context, q Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[q.ID]; !ok {
		m.orderByTest[q.TestID] = append(m.orderByTest[q.TestID], q.ID)
	}
	m.questions[q.ID] = q
	for _, o := range q.Options {
		o.QuestionID = q.ID
		m.options[o.ID] = o
	}
	return nil
}

func (m *MemoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, errf(KindNotFound, "question %s not found", id)
	}
	return q, nil
}

func (m *MemoryStore) ListQuestions(_ context.Context, testID string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.orderByTest[testID]
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.questions[id])
	}
	return out, nil
}

func (m *MemoryStore) ListQuestionIDs(_ context.Context, testID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.orderByTest[testID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (m *MemoryStore) GetOption(_ context.Context, optionID string) (Option, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.options[optionID]
	if !ok {
		return Option{}, errf(KindNotFound, "option %s not found", optionID)
	}
	return o, nil
}

func (m *MemoryStore) ClearQuestions(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = map[string]Question{}
	m.options = map[string]Option{}
	m.orderByTest = map[string][]string{}
	return nil
}

func (m *MemoryStore) CreateSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, errf(KindNotFound, "session %s not found", id)
	}
	s.QuestionOrder = append([]string(nil), s.QuestionOrder...)
	return s, nil
}

func (m *MemoryStore) RecordAnswer(_ context.Context, a UserAnswer, expectIndex int) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[a.SessionID]
	if !ok {
		return Session{}, errf(KindNotFound, "session %s not found", a.SessionID)
	}
	if s.CurrentIndex != expectIndex || s.FinishedAt != nil {
		return Session{}, errStaleSession
	}
	m.answers = append(m.answers, a)
	s.CurrentIndex++
	if a.IsCorrect {
		s.CorrectCount++
	}
	m.sessions[a.SessionID] = s
	return s, nil
}

func (m *MemoryStore) FinishSession(_ context.Context, id string, at time.Time) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, errf(KindNotFound, "session %s not found", id)
	}
	if s.FinishedAt == nil {
		t := at
		s.FinishedAt = &t
		m.sessions[id] = s
	}
	return s, nil
}

func (m *MemoryStore) ListFinishedSessions(_ context.Context, telegramID int64) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Session
	for _, s := range m.sessions {
		if s.UserTelegramID == telegramID && s.FinishedAt != nil {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (m *MemoryStore) CountStats(_ context.Context) (AdminStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := AdminStats{
		QuestionsCount: len(m.questions),
		UsersCount:     len(m.users),
		TotalSessions:  len(m.sessions),
		TotalAnswers:   len(m.answers),
	}
	for _, s := range m.sessions {
		if s.FinishedAt != nil {
			st.FinishedSessions++
		} else {
			st.ActiveSessions++
		}
	}
	return st, nil
}
