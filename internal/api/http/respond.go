package http

import (
	"encoding/json"
	"net/http"

	"github.com/quizbotio/quizbot/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the error taxonomy to status codes. Untyped errors are
// store/infra failures and come back as 500 without leaking details.
func writeErr(w http.ResponseWriter, err error) {
	switch quiz.KindOf(err) {
	case quiz.KindNotFound:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case quiz.KindValidation, quiz.KindEmptyTest, quiz.KindSessionExhausted, quiz.KindInvalidOption:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
