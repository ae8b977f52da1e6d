// Package botstate persists per-user conversation state for the chat
// front end, so a stateless transport can resume a dialog after a
// restart. It is independent of the quiz session state machine: just a
// state tag plus an opaque data blob, keyed by telegram id, with upsert
// semantics.
package botstate

import (
	"context"
	"encoding/json"
	"time"
)

type State struct {
	TelegramID int64           `json:"telegram_id"`
	State      string          `json:"state"`
	Data       json.RawMessage `json:"data,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type Store interface {
	// Get returns a zero-value State (not an error) for unknown users.
	Get(ctx context.Context, telegramID int64) (State, error)
	SetState(ctx context.Context, telegramID int64, state string) error
	SetData(ctx context.Context, telegramID int64, data json.RawMessage) error
	// Set replaces both fields at once.
	Set(ctx context.Context, st State) error
}
