package botstate

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/quizbotio/quizbot/internal/db"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "state_test.db")
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLStore(dbh),
	}
}

func TestUnknownUserYieldsZeroState(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			st, err := store.Get(context.Background(), 99)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if st.TelegramID != 99 || st.State != "" || st.Data != nil {
				t.Fatalf("expected zero state, got %+v", st)
			}
		})
	}
}

func TestUpsertSemantics(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.SetState(ctx, 7, "in_quiz"); err != nil {
				t.Fatalf("set state: %v", err)
			}
			if err := store.SetData(ctx, 7, json.RawMessage(`{"session_id":"s1"}`)); err != nil {
				t.Fatalf("set data: %v", err)
			}

			st, err := store.Get(ctx, 7)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if st.State != "in_quiz" {
				t.Fatalf("expected state in_quiz, got %q", st.State)
			}
			var data map[string]string
			if err := json.Unmarshal(st.Data, &data); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if data["session_id"] != "s1" {
				t.Fatalf("expected session_id s1, got %+v", data)
			}

			// Second write replaces, not duplicates.
			if err := store.SetState(ctx, 7, "awaiting_name"); err != nil {
				t.Fatalf("set state again: %v", err)
			}
			st, err = store.Get(ctx, 7)
			if err != nil {
				t.Fatalf("get again: %v", err)
			}
			if st.State != "awaiting_name" {
				t.Fatalf("expected awaiting_name, got %q", st.State)
			}
		})
	}
}

func TestSetReplacesBothFields(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Set(ctx, State{TelegramID: 3, State: "idle", Data: json.RawMessage(`{}`)}); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(ctx, State{TelegramID: 3, State: "in_quiz"}); err != nil {
				t.Fatalf("set again: %v", err)
			}
			st, err := store.Get(ctx, 3)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if st.State != "in_quiz" || st.Data != nil {
				t.Fatalf("expected replaced state with empty data, got %+v", st)
			}
		})
	}
}
