package quiz

import "time"

// Test is a named collection of questions presented as one quiz.
type Test struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TestSummary is the listing shape served to the bot's test picker.
type TestSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	QuestionsCount int       `json:"questions_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type Question struct {
	ID      string   `json:"id"`
	TestID  string   `json:"test_id"`
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	Comment    string `json:"comment"`
}

type User struct {
	TelegramID   int64     `json:"telegram_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (u User) FullName() string { return u.FirstName + " " + u.LastName }

// Session is one user's attempt at a test. QuestionOrder is fixed at
// creation; CurrentIndex and CorrectCount only ever grow.
type Session struct {
	ID             string     `json:"id"`
	UserTelegramID int64      `json:"user_telegram_id"`
	TestID         string     `json:"test_id"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	QuestionOrder  []string   `json:"question_order"`
	CurrentIndex   int        `json:"current_question_index"`
	CorrectCount   int        `json:"correct_count"`
	TotalCount     int        `json:"total_count"`
}

func (s Session) Finished() bool  { return s.FinishedAt != nil }
func (s Session) Exhausted() bool { return s.CurrentIndex >= s.TotalCount }

// UserAnswer is an append-only log entry, one per submitted answer.
type UserAnswer struct {
	SessionID      string    `json:"session_id"`
	UserTelegramID int64     `json:"user_telegram_id"`
	QuestionID     string    `json:"question_id"`
	ChosenOptionID string    `json:"chosen_option_id"`
	IsCorrect      bool      `json:"is_correct"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// OptionView deliberately omits is_correct and comment: the player must
// never see correctness information before answering.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type QuestionView struct {
	QuestionID string       `json:"question_id"`
	Title      string       `json:"title"`
	Text       string       `json:"text"`
	Options    []OptionView `json:"options"`
	Current    int          `json:"current"` // 1-based position for display
	Total      int          `json:"total"`
}

type Progress struct {
	Current int `json:"current"` // questions completed so far
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

type AnswerResult struct {
	IsCorrect bool     `json:"is_correct"`
	Comment   string   `json:"comment"`
	Progress  Progress `json:"progress"`
}

type ScoreSummary struct {
	ScorePercent float64 `json:"score_percent"`
	CorrectCount int     `json:"correct_count"`
	TotalCount   int     `json:"total_count"`
	SessionID    string  `json:"session_id"`
}

type SessionInfo struct {
	SessionID       string     `json:"session_id"`
	UserTelegramID  int64      `json:"user_id"`
	TestID          string     `json:"test_id"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at"`
	CurrentQuestion int        `json:"current_question"`
	TotalQuestions  int        `json:"total_questions"`
	CorrectCount    int        `json:"correct_count"`
	IsFinished      bool       `json:"is_finished"`
}

type UserStats struct {
	TelegramID       int64   `json:"telegram_id"`
	FullName         string  `json:"full_name"`
	RegisteredAt     string  `json:"registered_at"`
	Attempts         int     `json:"attempts"`
	LastScorePercent float64 `json:"last_score_percent"`
	BestScorePercent float64 `json:"best_score_percent"`
}

// AdminStats is the counters dump behind /admin/stats.
type AdminStats struct {
	QuestionsCount   int `json:"questions_count"`
	UsersCount       int `json:"users_count"`
	TotalSessions    int `json:"total_sessions"`
	FinishedSessions int `json:"finished_sessions"`
	ActiveSessions   int `json:"active_sessions"`
	TotalAnswers     int `json:"total_answers"`
}
