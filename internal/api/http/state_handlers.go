package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/quizbotio/quizbot/internal/botstate"

	"github.com/go-chi/chi/v5"
)

// Conversation-state endpoints for the bot process. Gated by the same
// admin credential as the import tooling: the bot is a trusted service.

func GetBotStateHandler(store botstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "telegramID"), 10, 64)
		if err != nil {
			http.Error(w, "bad telegram id", 400)
			return
		}
		st, err := store.Get(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, st)
	}
}

func PutBotStateHandler(store botstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "telegramID"), 10, 64)
		if err != nil {
			http.Error(w, "bad telegram id", 400)
			return
		}
		var req struct {
			State string          `json:"state"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if err := store.Set(r.Context(), botstate.State{TelegramID: id, State: req.State, Data: req.Data}); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"success": true})
	}
}
