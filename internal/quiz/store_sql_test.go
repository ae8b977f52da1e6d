package quiz

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/quizbotio/quizbot/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) (*SQLStore, context.Context) {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "quiz_test.db")
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return NewSQLStore(dbh, "sqlite"), ctx
}

func TestSQLStoreUserUpsert(t *testing.T) {
	store, ctx := newSQLiteStore(t)

	_, err := store.GetUser(ctx, 5)
	assert.Equal(t, KindNotFound, KindOf(err))

	u, err := store.UpsertUser(ctx, User{TelegramID: 5, FirstName: "Olga", LastName: "K"})
	require.NoError(t, err)
	assert.Equal(t, "Olga K", u.FullName())

	u2, err := store.UpsertUser(ctx, User{TelegramID: 5, FirstName: "Olya", LastName: "K"})
	require.NoError(t, err)
	assert.Equal(t, "Olya K", u2.FullName())
	assert.Equal(t, u.RegisteredAt.Unix(), u2.RegisteredAt.Unix())
}

func seedSQL(t *testing.T, store *SQLStore, ctx context.Context) Session {
	t.Helper()
	_, err := store.UpsertUser(ctx, User{TelegramID: 1, FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	_, err = store.CreateTest(ctx, Test{ID: "t1", Name: "T"})
	require.NoError(t, err)
	require.NoError(t, store.AddQuestion(ctx, Question{
		ID: "q1", TestID: "t1", Title: "Q1", Text: "?",
		Options: []Option{
			{ID: "o1", Text: "yes", IsCorrect: true, Comment: "right"},
			{ID: "o2", Text: "no", IsCorrect: false, Comment: "wrong"},
		},
	}))
	require.NoError(t, store.AddQuestion(ctx, Question{
		ID: "q2", TestID: "t1", Title: "Q2", Text: "?",
		Options: []Option{{ID: "o3", Text: "x", IsCorrect: true, Comment: ""}},
	}))

	sess := Session{
		ID: "sess-1", UserTelegramID: 1, TestID: "t1",
		StartedAt: time.Now(), QuestionOrder: []string{"q1", "q2"}, TotalCount: 2,
	}
	require.NoError(t, store.CreateSession(ctx, sess))
	return sess
}

func TestSQLStoreQuestionOrderAndOptions(t *testing.T) {
	store, ctx := newSQLiteStore(t)
	seedSQL(t, store, ctx)

	ids, err := store.ListQuestionIDs(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2"}, ids)

	q, err := store.GetQuestion(ctx, "q1")
	require.NoError(t, err)
	require.Len(t, q.Options, 2)
	assert.Equal(t, "o1", q.Options[0].ID)
	assert.True(t, q.Options[0].IsCorrect)

	tests, err := store.ListTests(ctx)
	require.NoError(t, err)
	require.Len(t, tests, 1)
	assert.Equal(t, 2, tests[0].QuestionsCount)
}

func TestSQLStoreRecordAnswerGuard(t *testing.T) {
	store, ctx := newSQLiteStore(t)
	sess := seedSQL(t, store, ctx)

	answer := UserAnswer{
		SessionID: sess.ID, UserTelegramID: 1, QuestionID: "q1",
		ChosenOptionID: "o1", IsCorrect: true, AnsweredAt: time.Now(),
	}
	updated, err := store.RecordAnswer(ctx, answer, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentIndex)
	assert.Equal(t, 1, updated.CorrectCount)

	// Replay with the stale index: rejected, counters untouched.
	_, err = store.RecordAnswer(ctx, answer, 0)
	assert.Equal(t, errStaleSession, err)

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentIndex)
	assert.Equal(t, 1, got.CorrectCount)

	_, err = store.RecordAnswer(ctx, UserAnswer{SessionID: "missing", AnsweredAt: time.Now()}, 0)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSQLStoreFinishAndStats(t *testing.T) {
	store, ctx := newSQLiteStore(t)
	sess := seedSQL(t, store, ctx)

	at := time.Now()
	first, err := store.FinishSession(ctx, sess.ID, at)
	require.NoError(t, err)
	require.NotNil(t, first.FinishedAt)

	later, err := store.FinishSession(ctx, sess.ID, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.FinishedAt.Unix(), later.FinishedAt.Unix())

	finished, err := store.ListFinishedSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, sess.ID, finished[0].ID)

	st, err := store.CountStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.QuestionsCount)
	assert.Equal(t, 1, st.UsersCount)
	assert.Equal(t, 1, st.FinishedSessions)
	assert.Equal(t, 0, st.ActiveSessions)
}

func TestSQLStoreClearQuestions(t *testing.T) {
	store, ctx := newSQLiteStore(t)
	seedSQL(t, store, ctx)

	require.NoError(t, store.ClearQuestions(ctx))

	ids, err := store.ListQuestionIDs(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = store.GetOption(ctx, "o1")
	assert.Equal(t, KindNotFound, KindOf(err))
}
