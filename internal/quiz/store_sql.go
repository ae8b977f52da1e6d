package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLStore runs on database/sql with either the pgx or the modernc
// sqlite driver. $N placeholders work for both.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) UpsertUser(ctx context.Context, u User) (User, error) {
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (telegram_id,first_name,last_name,registered_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (telegram_id) DO UPDATE SET first_name=EXCLUDED.first_name, last_name=EXCLUDED.last_name`,
		u.TelegramID, u.FirstName, u.LastName, u.RegisteredAt.Unix())
	if err != nil {
		return User{}, err
	}
	return s.GetUser(ctx, u.TelegramID)
}

func (s *SQLStore) GetUser(ctx context.Context, telegramID int64) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT telegram_id,first_name,last_name,registered_at FROM users WHERE telegram_id=$1`, telegramID)
	var u User
	var reg int64
	if err := row.Scan(&u.TelegramID, &u.FirstName, &u.LastName, &reg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, errf(KindNotFound, "user %d not found", telegramID)
		}
		return User{}, err
	}
	u.RegisteredAt = time.Unix(reg, 0)
	return u, nil
}

func (s *SQLStore) CreateTest(ctx context.Context, t Test) (Test, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO tests (id,name,description,created_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, description=EXCLUDED.description`,
		t.ID, t.Name, t.Description, t.CreatedAt.Unix())
	if err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,name,description,created_at FROM tests WHERE id=$1`, id)
	var t Test
	var created int64
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, errf(KindNotFound, "test %s not found", id)
		}
		return Test{}, err
	}
	t.CreatedAt = time.Unix(created, 0)
	return t, nil
}

func (s *SQLStore) ListTests(ctx context.Context) ([]TestSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id,t.name,t.description,t.created_at,
		(SELECT COUNT(*) FROM questions q WHERE q.test_id=t.id)
		FROM tests t ORDER BY t.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []TestSummary{}
	for rows.Next() {
		var ts TestSummary
		var created int64
		if err := rows.Scan(&ts.ID, &ts.Name, &ts.Description, &created, &ts.QuestionsCount); err != nil {
			return nil, err
		}
		ts.CreatedAt = time.Unix(created, 0)
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *SQLStore) AddQuestion(ctx context.Context, q Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seq int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq),0)+1 FROM questions WHERE test_id=$1`, q.TestID).Scan(&seq); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO questions (id,test_id,title,text,seq) VALUES ($1,$2,$3,$4,$5)`,
		q.ID, q.TestID, q.Title, q.Text, seq); err != nil {
		return err
	}
	for i, o := range q.Options {
		if _, err := tx.ExecContext(ctx, `INSERT INTO answer_options (id,question_id,text,is_correct,comment,seq)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, q.ID, o.Text, o.IsCorrect, o.Comment, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,test_id,title,text FROM questions WHERE id=$1`, id)
	var q Question
	if err := row.Scan(&q.ID, &q.TestID, &q.Title, &q.Text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, errf(KindNotFound, "question %s not found", id)
		}
		return Question{}, err
	}
	opts, err := s.listOptions(ctx, id)
	if err != nil {
		return Question{}, err
	}
	q.Options = opts
	return q, nil
}

func (s *SQLStore) listOptions(ctx context.Context, questionID string) ([]Option, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,question_id,text,is_correct,comment FROM answer_options
		WHERE question_id=$1 ORDER BY seq`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Option
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect, &o.Comment); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListQuestions(ctx context.Context, testID string) ([]Question, error) {
	ids, err := s.ListQuestionIDs(ctx, testID)
	if err != nil {
		return nil, err
	}
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		q, err := s.GetQuestion(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *SQLStore) ListQuestionIDs(ctx context.Context, testID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM questions WHERE test_id=$1 ORDER BY seq`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetOption(ctx context.Context, optionID string) (Option, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,question_id,text,is_correct,comment FROM answer_options WHERE id=$1`, optionID)
	var o Option
	if err := row.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect, &o.Comment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Option{}, errf(KindNotFound, "option %s not found", optionID)
		}
		return Option{}, err
	}
	return o, nil
}

func (s *SQLStore) ClearQuestions(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM answer_options`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) CreateSession(ctx context.Context, sess Session) error {
	oj, err := json.Marshal(sess.QuestionOrder)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_sessions
		(id,user_telegram_id,test_id,started_at,question_order,current_question_index,correct_count,total_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		sess.ID, sess.UserTelegramID, sess.TestID, sess.StartedAt.Unix(), string(oj),
		sess.CurrentIndex, sess.CorrectCount, sess.TotalCount)
	return err
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,user_telegram_id,test_id,started_at,finished_at,
		question_order,current_question_index,correct_count,total_count
		FROM quiz_sessions WHERE id=$1`, id)
	return scanSession(row)
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSession(row rowScanner) (Session, error) {
	var sess Session
	var started int64
	var finished sql.NullInt64
	var orderJSON string
	err := row.Scan(&sess.ID, &sess.UserTelegramID, &sess.TestID, &started, &finished,
		&orderJSON, &sess.CurrentIndex, &sess.CorrectCount, &sess.TotalCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, errf(KindNotFound, "session not found")
		}
		return Session{}, err
	}
	sess.StartedAt = time.Unix(started, 0)
	if finished.Valid {
		t := time.Unix(finished.Int64, 0)
		sess.FinishedAt = &t
	}
	if err := json.Unmarshal([]byte(orderJSON), &sess.QuestionOrder); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLStore) RecordAnswer(ctx context.Context, a UserAnswer, expectIndex int) (Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, err
	}
	defer tx.Rollback()

	inc := 0
	if a.IsCorrect {
		inc = 1
	}
	// Optimistic guard on the index: a duplicate submission that lost the
	// race updates zero rows and the answer insert is rolled back with it.
	res, err := tx.ExecContext(ctx, `UPDATE quiz_sessions
		SET current_question_index=current_question_index+1, correct_count=correct_count+$1
		WHERE id=$2 AND current_question_index=$3 AND finished_at IS NULL`,
		inc, a.SessionID, expectIndex)
	if err != nil {
		return Session{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Session{}, err
	}
	if n == 0 {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM quiz_sessions WHERE id=$1`, a.SessionID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, errf(KindNotFound, "session not found")
		}
		if err != nil {
			return Session{}, err
		}
		return Session{}, errStaleSession
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO user_answers
		(session_id,user_telegram_id,question_id,chosen_option_id,is_correct,answered_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.SessionID, a.UserTelegramID, a.QuestionID, a.ChosenOptionID, a.IsCorrect, a.AnsweredAt.Unix()); err != nil {
		return Session{}, err
	}
	if err := tx.Commit(); err != nil {
		return Session{}, err
	}
	return s.GetSession(ctx, a.SessionID)
}

func (s *SQLStore) FinishSession(ctx context.Context, id string, at time.Time) (Session, error) {
	// Only the first call writes the timestamp; later calls are reads.
	if _, err := s.db.ExecContext(ctx, `UPDATE quiz_sessions SET finished_at=$1 WHERE id=$2 AND finished_at IS NULL`,
		at.Unix(), id); err != nil {
		return Session{}, err
	}
	return s.GetSession(ctx, id)
}

func (s *SQLStore) ListFinishedSessions(ctx context.Context, telegramID int64) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,user_telegram_id,test_id,started_at,finished_at,
		question_order,current_question_index,correct_count,total_count
		FROM quiz_sessions WHERE user_telegram_id=$1 AND finished_at IS NOT NULL
		ORDER BY started_at DESC`, telegramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountStats(ctx context.Context) (AdminStats, error) {
	var st AdminStats
	row := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM questions),
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM quiz_sessions),
		(SELECT COUNT(*) FROM quiz_sessions WHERE finished_at IS NOT NULL),
		(SELECT COUNT(*) FROM quiz_sessions WHERE finished_at IS NULL),
		(SELECT COUNT(*) FROM user_answers)`)
	if err := row.Scan(&st.QuestionsCount, &st.UsersCount, &st.TotalSessions,
		&st.FinishedSessions, &st.ActiveSessions, &st.TotalAnswers); err != nil {
		return AdminStats{}, err
	}
	return st, nil
}
