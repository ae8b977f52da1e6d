package quiz

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Engine owns the session lifecycle: creation, question sequencing,
// answer recording and finalization. It never touches the database
// directly; everything goes through the Store.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// CreateSession fixes the question order up front. With shuffle the
// order is a Fisher-Yates permutation, otherwise insertion order.
func (e *Engine) CreateSession(ctx context.Context, telegramID int64, testID string, shuffle bool) (Session, error) {
	if _, err := e.store.GetUser(ctx, telegramID); err != nil {
		return Session{}, err
	}
	test, err := e.store.GetTest(ctx, testID)
	if err != nil {
		return Session{}, err
	}
	order, err := e.store.ListQuestionIDs(ctx, testID)
	if err != nil {
		return Session{}, err
	}
	if len(order) == 0 {
		return Session{}, errf(KindEmptyTest, "no questions available for test %q", test.Name)
	}
	if shuffle {
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	sess := Session{
		ID:             uuid.NewString(),
		UserTelegramID: telegramID,
		TestID:         testID,
		StartedAt:      e.now(),
		QuestionOrder:  order,
		CurrentIndex:   0,
		CorrectCount:   0,
		TotalCount:     len(order),
	}
	if err := e.store.CreateSession(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// NextQuestion is a pure read: calling it repeatedly returns the same
// view, which is how the bot restores its screen after a reconnect.
// A missing session and an exhausted session both yield (nil, nil) --
// the bot treats either as "nothing left to ask".
func (e *Engine) NextQuestion(ctx context.Context, sessionID string) (*QuestionView, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if sess.Exhausted() {
		return nil, nil
	}
	q, err := e.store.GetQuestion(ctx, sess.QuestionOrder[sess.CurrentIndex])
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	opts := make([]OptionView, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, OptionView{ID: o.ID, Text: o.Text})
	}
	return &QuestionView{
		QuestionID: q.ID,
		Title:      q.Title,
		Text:       q.Text,
		Options:    opts,
		Current:    sess.CurrentIndex + 1,
		Total:      sess.TotalCount,
	}, nil
}

// SubmitAnswer records the answer and advances the session. The store
// applies both writes in one guarded unit of work; a duplicate
// submission that loses the race is rejected without touching state.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID, optionID string) (AnswerResult, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	if sess.Exhausted() {
		return AnswerResult{}, errf(KindSessionExhausted, "no more questions in this session")
	}
	questionID := sess.QuestionOrder[sess.CurrentIndex]
	opt, err := e.store.GetOption(ctx, optionID)
	if err != nil || opt.QuestionID != questionID {
		if err != nil && !IsNotFound(err) {
			return AnswerResult{}, err
		}
		return AnswerResult{}, errf(KindInvalidOption, "invalid answer option")
	}
	updated, err := e.store.RecordAnswer(ctx, UserAnswer{
		SessionID:      sess.ID,
		UserTelegramID: sess.UserTelegramID,
		QuestionID:     questionID,
		ChosenOptionID: opt.ID,
		IsCorrect:      opt.IsCorrect,
		AnsweredAt:     e.now(),
	}, sess.CurrentIndex)
	if err == errStaleSession {
		return AnswerResult{}, errf(KindInvalidOption, "answer already recorded for this question")
	}
	if err != nil {
		return AnswerResult{}, err
	}
	return AnswerResult{
		IsCorrect: opt.IsCorrect,
		Comment:   opt.Comment,
		Progress: Progress{
			Current: updated.CurrentIndex,
			Total:   updated.TotalCount,
			Correct: updated.CorrectCount,
		},
	}, nil
}

// FinishSession is idempotent and allowed at any point; finishing early
// freezes the session at its current counts.
func (e *Engine) FinishSession(ctx context.Context, sessionID string) (ScoreSummary, error) {
	sess, err := e.store.FinishSession(ctx, sessionID, e.now())
	if err != nil {
		return ScoreSummary{}, err
	}
	return ScoreSummary{
		ScorePercent: scorePercent(sess.CorrectCount, sess.TotalCount),
		CorrectCount: sess.CorrectCount,
		TotalCount:   sess.TotalCount,
		SessionID:    sess.ID,
	}, nil
}

// scorePercent rounds to one decimal place.
func scorePercent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}
