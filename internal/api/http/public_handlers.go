package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/quizbotio/quizbot/internal/quiz"

	"github.com/go-chi/chi/v5"
)

func RegisterUserHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TelegramID int64  `json:"telegram_id"`
			FirstName  string `json:"first_name"`
			LastName   string `json:"last_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.TelegramID == 0 {
			http.Error(w, "telegram_id required", 400)
			return
		}
		u, err := svc.RegisterUser(r.Context(), req.TelegramID, req.FirstName, req.LastName)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{
			"success":     true,
			"message":     "User " + u.FullName() + " registered successfully",
			"telegram_id": u.TelegramID,
		})
	}
}

func UserStatsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "telegramID"), 10, 64)
		if err != nil {
			http.Error(w, "bad telegram id", 400)
			return
		}
		stats, err := svc.GetUserStats(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, stats)
	}
}

func ListTestsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tests, err := svc.ListTests(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, tests)
	}
}

func StartSessionHandler(svc *quiz.Service, shuffleDefault bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TelegramID int64  `json:"telegram_id"`
			TestID     string `json:"test_id"`
			Shuffle    *bool  `json:"shuffle"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		shuffle := shuffleDefault
		if req.Shuffle != nil {
			shuffle = *req.Shuffle
		}
		sess, err := svc.StartSession(r.Context(), req.TelegramID, req.TestID, shuffle)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"session_id": sess.ID, "total": sess.TotalCount})
	}
}

// NextQuestionHandler writes JSON null both when the session is unknown
// and when it has no questions left; the bot relies on that shape.
func NextQuestionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.GetNextQuestion(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if view == nil {
			writeJSON(w, 200, nil)
			return
		}
		writeJSON(w, 200, view)
	}
}

func SubmitAnswerHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OptionID string `json:"option_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		res, err := svc.SubmitAnswer(r.Context(), chi.URLParam(r, "sessionID"), req.OptionID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, res)
	}
}

func FinishSessionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.FinishSession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, sum)
	}
}

func SessionInfoHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := svc.GetSessionInfo(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, info)
	}
}
