package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/quizbotio/quizbot/internal/quiz"

	"github.com/go-chi/chi/v5"
)

func CreateTestHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		t, err := svc.CreateTest(r.Context(), req.Name, req.Description)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, t)
	}
}

// ImportQuestionsHandler serves both the per-test route (testID from the
// URL) and the legacy route, where an empty test id routes the batch to
// the sentinel default test.
func ImportQuestionsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var batch []quiz.QuestionInput
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		n, err := svc.ImportQuestions(r.Context(), chi.URLParam(r, "testID"), batch)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{
			"success": true,
			"message": fmt.Sprintf("Successfully imported %d questions", n),
		})
	}
}

func ListQuestionsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := svc.ListQuestions(r.Context(), r.URL.Query().Get("test_id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, qs)
	}
}

func ClearQuestionsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearQuestions(r.Context()); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{
			"success": true,
			"message": "All questions cleared successfully",
		})
	}
}

func AdminStatsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.AdminStats(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, st)
	}
}
