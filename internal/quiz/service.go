package quiz

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultTestID is the sentinel test the legacy import path (no explicit
// test id) creates and reuses.
const DefaultTestID = "default"

// Service is the use-case facade the transport layer talks to. It holds
// no state of its own: cross-entity checks, then store/engine calls.
type Service struct {
	store    Store
	engine   *Engine
	validate *validator.Validate
}

func NewService(store Store) *Service {
	return &Service{
		store:    store,
		engine:   NewEngine(store),
		validate: validator.New(),
	}
}

func (s *Service) RegisterUser(ctx context.Context, telegramID int64, firstName, lastName string) (User, error) {
	return s.store.UpsertUser(ctx, User{TelegramID: telegramID, FirstName: firstName, LastName: lastName})
}

// GetUserStats aggregates over finished sessions only. A registered user
// with no finished sessions gets zeroed stats, not an error.
func (s *Service) GetUserStats(ctx context.Context, telegramID int64) (UserStats, error) {
	u, err := s.store.GetUser(ctx, telegramID)
	if err != nil {
		return UserStats{}, err
	}
	sessions, err := s.store.ListFinishedSessions(ctx, telegramID)
	if err != nil {
		return UserStats{}, err
	}
	stats := UserStats{
		TelegramID:   u.TelegramID,
		FullName:     u.FullName(),
		RegisteredAt: u.RegisteredAt.Format(time.RFC3339),
		Attempts:     len(sessions),
	}
	for i, sess := range sessions {
		score := scorePercent(sess.CorrectCount, sess.TotalCount)
		if i == 0 {
			stats.LastScorePercent = score // list is started_at desc
		}
		if score > stats.BestScorePercent {
			stats.BestScorePercent = score
		}
	}
	return stats, nil
}

func (s *Service) CreateTest(ctx context.Context, name, description string) (Test, error) {
	if name == "" {
		return Test{}, errf(KindValidation, "test name is required")
	}
	return s.store.CreateTest(ctx, Test{ID: uuid.NewString(), Name: name, Description: description})
}

func (s *Service) ListTests(ctx context.Context) ([]TestSummary, error) {
	return s.store.ListTests(ctx)
}

// ImportQuestions loads a batch into the given test. With an empty test
// id it falls back to the legacy path: wipe all questions and attach the
// batch to the sentinel "default" test.
func (s *Service) ImportQuestions(ctx context.Context, testID string, batch []QuestionInput) (int, error) {
	if len(batch) == 0 {
		return 0, errf(KindValidation, "no questions provided")
	}
	if testID == "" {
		if err := s.store.ClearQuestions(ctx); err != nil {
			return 0, err
		}
		if _, err := s.store.GetTest(ctx, DefaultTestID); IsNotFound(err) {
			if _, err := s.store.CreateTest(ctx, Test{
				ID:          DefaultTestID,
				Name:        "Imported Questions",
				Description: "Questions imported without specific test assignment",
			}); err != nil {
				return 0, err
			}
		} else if err != nil {
			return 0, err
		}
		testID = DefaultTestID
	}
	if _, err := s.store.GetTest(ctx, testID); err != nil {
		return 0, err
	}
	for _, q := range batch {
		if err := s.validate.Struct(q); err != nil {
			return 0, errf(KindValidation, "question %s: %v", q.ID, err)
		}
		if q.correctCount() != 1 {
			return 0, errf(KindValidation, "question %s must have exactly one correct answer", q.ID)
		}
	}
	imported := 0
	for _, q := range batch {
		if err := s.store.AddQuestion(ctx, q.toQuestion(testID)); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (s *Service) ListQuestions(ctx context.Context, testID string) ([]Question, error) {
	if testID != "" {
		if _, err := s.store.GetTest(ctx, testID); err != nil {
			return nil, err
		}
		return s.store.ListQuestions(ctx, testID)
	}
	tests, err := s.store.ListTests(ctx)
	if err != nil {
		return nil, err
	}
	var out []Question
	for _, t := range tests {
		qs, err := s.store.ListQuestions(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, qs...)
	}
	return out, nil
}

func (s *Service) ClearQuestions(ctx context.Context) error {
	return s.store.ClearQuestions(ctx)
}

func (s *Service) AdminStats(ctx context.Context) (AdminStats, error) {
	return s.store.CountStats(ctx)
}

func (s *Service) StartSession(ctx context.Context, telegramID int64, testID string, shuffle bool) (Session, error) {
	return s.engine.CreateSession(ctx, telegramID, testID, shuffle)
}

func (s *Service) GetNextQuestion(ctx context.Context, sessionID string) (*QuestionView, error) {
	return s.engine.NextQuestion(ctx, sessionID)
}

func (s *Service) SubmitAnswer(ctx context.Context, sessionID, optionID string) (AnswerResult, error) {
	return s.engine.SubmitAnswer(ctx, sessionID, optionID)
}

func (s *Service) FinishSession(ctx context.Context, sessionID string) (ScoreSummary, error) {
	return s.engine.FinishSession(ctx, sessionID)
}

func (s *Service) GetSessionInfo(ctx context.Context, sessionID string) (SessionInfo, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return SessionInfo{}, err
	}
	return SessionInfo{
		SessionID:       sess.ID,
		UserTelegramID:  sess.UserTelegramID,
		TestID:          sess.TestID,
		StartedAt:       sess.StartedAt,
		FinishedAt:      sess.FinishedAt,
		CurrentQuestion: sess.CurrentIndex + 1,
		TotalQuestions:  sess.TotalCount,
		CorrectCount:    sess.CorrectCount,
		IsFinished:      sess.Finished(),
	}, nil
}
