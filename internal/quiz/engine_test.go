package quiz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) (*MemoryStore, context.Context) {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.UpsertUser(ctx, User{TelegramID: 42, FirstName: "Ivan", LastName: "Petrov"})
	require.NoError(t, err)
	_, err = store.CreateTest(ctx, Test{ID: "t1", Name: "T1"})
	require.NoError(t, err)

	require.NoError(t, store.AddQuestion(ctx, Question{
		ID: "q1", TestID: "t1", Title: "Q1", Text: "First question?",
		Options: []Option{
			{ID: "o1", Text: "right", IsCorrect: true, Comment: "well done"},
			{ID: "o2", Text: "wrong", IsCorrect: false, Comment: "nope"},
		},
	}))
	require.NoError(t, store.AddQuestion(ctx, Question{
		ID: "q2", TestID: "t1", Title: "Q2", Text: "Second question?",
		Options: []Option{
			{ID: "o3", Text: "wrong", IsCorrect: false, Comment: "still nope"},
			{ID: "o4", Text: "right", IsCorrect: true, Comment: "correct"},
		},
	}))
	return store, ctx
}

func TestCreateSessionPreservesOrderWithoutShuffle(t *testing.T) {
	store, ctx := seedStore(t)
	eng := NewEngine(store)

	sess, err := eng.CreateSession(ctx, 42, "t1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2"}, sess.QuestionOrder)
	assert.Equal(t, 2, sess.TotalCount)
	assert.Equal(t, 0, sess.CurrentIndex)
	assert.Nil(t, sess.FinishedAt)
	assert.NotEmpty(t, sess.ID)
}

func TestCreateSessionShufflePermutesSameSet(t *testing.T) {
	store, ctx := seedStore(t)
	eng := NewEngine(store)

	sess, err := eng.CreateSession(ctx, 42, "t1", true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q2"}, sess.QuestionOrder)
}

func TestCreateSessionErrors(t *testing.T) {
	store, ctx := seedStore(t)
	eng := NewEngine(store)

	_, err := eng.CreateSession(ctx, 999, "t1", false)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = eng.CreateSession(ctx, 42, "missing", false)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = store.CreateTest(ctx, Test{ID: "empty", Name: "Empty"})
	require.NoError(t, err)
	_, err = eng.CreateSession(ctx, 42, "empty", false)
	assert.Equal(t, KindEmptyTest, KindOf(err))
}

func TestNextQuestionIsIdempotentAndConfidential(t *testing.T) {
	store, ctx := seedStore(t)
	eng := NewEngine(store)
	sess, err := eng.CreateSession(ctx, 42, "t1", false)
	require.NoError(t, err)

	first, err := eng.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "q1", first.QuestionID)
	assert.Equal(t, 1, first.Current)
	assert.Equal(t, 2, first.Total)
	assert.Equal(t, []OptionView{{ID: "o1", Text: "right"}, {ID: "o2", Text: "wrong"}}, first.Options)

	again, err := eng.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestNextQuestionNilForMissingAndExhausted(t *testing.T) {
	store, ctx := seedStore(t)
	eng := NewEngine(store)

	view, err := eng.NextQuestion(ctx, "no-such-session")
	require.NoError(t, err)
	assert.Nil(t, view)

	sess, err := eng.CreateSession(ctx, 42, "t1", false)
	require.NoError(t, err)
	_, err = eng.SubmitAnswer(ctx, sess.ID, "o1")
	require.NoError(t, err)
	_, err = eng.SubmitAnswer(ctx, sess.ID, "o4")
	require.NoError(t, err)

	view, err = eng.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestSubmitAnswerProgressAndComments(t *testing.T) {
	store, ctx := seedStore(t)
	eng := NewEngine(store)
	sess, err := eng.CreateSession(ctx, 42, "t1", false)
	require.NoError(t, err)

	res, err := eng.SubmitAnswer(ctx, sess.ID, "o1")
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, "well done", res.Comment)
	assert.Equal(t, Progress{Current: 1, Total: 2, Correct: 1}, res.Progress)

	res, err = eng.SubmitAnswer(ctx, sess.ID, "o3")
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, "still nope", res.Comment)
	assert.Equal(t, Progress{Current: 2, Total: 2, Correct: 1}, res.Progress)
}

func TestSubmitAnswerRejectsForeignOption(t *testing.T) {
	store, ctx := seedStore(t)
	eng := NewEngine(store)
	sess, err := eng.CreateSession(ctx, 42, "t1", false)
	require.NoError(t, err)

	// o3 belongs to q2, the current question is q1.
	_, err = eng.SubmitAnswer(ctx, sess.ID, "o3")
	assert.Equal(t, KindInvalidOption, KindOf(err))

	_, err = eng.SubmitAnswer(ctx, sess.ID, "no-such-option")
	assert.Equal(t, KindInvalidOption, KindOf(err))

	// State untouched by the rejected submissions.
	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentIndex)
	assert.Equal(t, 0, got.CorrectCount)
}

func TestSubmitAnswerExhaustedAndMissing(t *testing.T) {
	store, ctx := seedStore(t)
	eng := NewEngine(store)
	sess, err := eng.CreateSession(ctx, 42, "t1", false)
	require.NoError(t, err)

	_, err = eng.SubmitAnswer(ctx, sess.ID, "o1")
	require.NoError(t, err)
	_, err = eng.SubmitAnswer(ctx, sess.ID, "o4")
	require.NoError(t, err)

	_, err = eng.SubmitAnswer(ctx, sess.ID, "o1")
	assert.Equal(t, KindSessionExhausted, KindOf(err))

	_, err = eng.SubmitAnswer(ctx, "no-such-session", "o1")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSubmitAnswerDuplicateLosesRace(t *testing.T) {
	store, ctx := seedStore(t)
	eng := NewEngine(store)
	sess, err := eng.CreateSession(ctx, 42, "t1", false)
	require.NoError(t, err)

	// Simulate the double-tap: advance underneath a stale engine view.
	stale, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	_, err = eng.SubmitAnswer(ctx, sess.ID, "o1")
	require.NoError(t, err)

	_, err = store.RecordAnswer(ctx, UserAnswer{SessionID: sess.ID, QuestionID: "q1", ChosenOptionID: "o1", IsCorrect: true}, stale.CurrentIndex)
	assert.Equal(t, errStaleSession, err)

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentIndex)
	assert.Equal(t, 1, got.CorrectCount)
}

func TestFinishSessionIdempotent(t *testing.T) {
	store, ctx := seedStore(t)
	eng := NewEngine(store)
	sess, err := eng.CreateSession(ctx, 42, "t1", false)
	require.NoError(t, err)

	_, err = eng.SubmitAnswer(ctx, sess.ID, "o1")
	require.NoError(t, err)

	// Early finish is allowed and freezes the counts.
	first, err := eng.FinishSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, first.ScorePercent)
	assert.Equal(t, 1, first.CorrectCount)
	assert.Equal(t, 2, first.TotalCount)

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FinishedAt)
	finishedAt := *got.FinishedAt

	second, err := eng.FinishSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	got, err = store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, finishedAt, *got.FinishedAt)

	_, err = eng.FinishSession(ctx, "no-such-session")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestFullQuizScenario(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)

	_, err := svc.RegisterUser(ctx, 42, "Ivan", "Petrov")
	require.NoError(t, err)
	testRec, err := svc.CreateTest(ctx, "T1", "")
	require.NoError(t, err)
	n, err := svc.ImportQuestions(ctx, testRec.ID, []QuestionInput{{
		ID: "Q1", Title: "Only question", Text: "Pick one",
		Answers: []OptionInput{
			{ID: "O1", Text: "yes", IsCorrect: true, Comment: "right"},
			{ID: "O2", Text: "no", IsCorrect: false, Comment: "wrong"},
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sess, err := svc.StartSession(ctx, 42, testRec.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.TotalCount)

	view, err := svc.GetNextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "Q1", view.QuestionID)
	assert.Equal(t, []OptionView{{ID: "O1", Text: "yes"}, {ID: "O2", Text: "no"}}, view.Options)

	res, err := svc.SubmitAnswer(ctx, sess.ID, "O1")
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, Progress{Current: 1, Total: 1, Correct: 1}, res.Progress)

	sum, err := svc.FinishSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, sum.ScorePercent)
	assert.Equal(t, 1, sum.CorrectCount)
	assert.Equal(t, 1, sum.TotalCount)
	assert.Equal(t, sess.ID, sum.SessionID)
}

func TestScorePercentRounding(t *testing.T) {
	assert.Equal(t, 0.0, scorePercent(0, 0))
	assert.Equal(t, 33.3, scorePercent(1, 3))
	assert.Equal(t, 66.7, scorePercent(2, 3))
	assert.Equal(t, 100.0, scorePercent(3, 3))
}
