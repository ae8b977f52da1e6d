package quiz

import (
	"context"
	"time"
)

// Store is the record-store contract the engine and service run on.
// Absence is reported as a typed not_found error, never a panic or a
// bare sql error. The SQL and in-memory implementations must agree on
// semantics; tests run the same scenarios against both.
type Store interface {
	// Users.
	UpsertUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, telegramID int64) (User, error)

	// Tests.
	CreateTest(ctx context.Context, t Test) (Test, error)
	GetTest(ctx context.Context, id string) (Test, error)
	ListTests(ctx context.Context) ([]TestSummary, error)

	// Questions and options. AddQuestion persists the question with all
	// of its options; insertion order is the natural question order.
	AddQuestion(ctx context.Context, q Question) error
	GetQuestion(ctx context.Context, id string) (Question, error)
	ListQuestions(ctx context.Context, testID string) ([]Question, error)
	ListQuestionIDs(ctx context.Context, testID string) ([]string, error)
	GetOption(ctx context.Context, optionID string) (Option, error)
	ClearQuestions(ctx context.Context) error

	// Sessions.
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (Session, error)

	// RecordAnswer appends the answer and advances the session in one
	// unit of work, guarded by the expected current_question_index.
	// Returns errStaleSession when the guard fails (lost race with a
	// duplicate submission, or the session was already finished); the
	// counters are left untouched then.
	RecordAnswer(ctx context.Context, a UserAnswer, expectIndex int) (Session, error)

	// FinishSession sets finished_at if unset and returns the session
	// either way.
	FinishSession(ctx context.Context, id string, at time.Time) (Session, error)

	// ListFinishedSessions returns a user's finished sessions ordered by
	// started_at descending.
	ListFinishedSessions(ctx context.Context, telegramID int64) ([]Session, error)

	CountStats(ctx context.Context) (AdminStats, error)
}
