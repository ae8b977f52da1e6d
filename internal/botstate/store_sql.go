package botstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Get(ctx context.Context, telegramID int64) (State, error) {
	row := s.db.QueryRowContext(ctx, `SELECT telegram_id,state,data,updated_at FROM user_states WHERE telegram_id=$1`, telegramID)
	var st State
	var state, data sql.NullString
	var updated int64
	if err := row.Scan(&st.TelegramID, &state, &data, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return State{TelegramID: telegramID}, nil
		}
		return State{}, err
	}
	st.State = state.String
	if data.Valid {
		st.Data = json.RawMessage(data.String)
	}
	st.UpdatedAt = time.Unix(updated, 0)
	return st, nil
}

func (s *SQLStore) SetState(ctx context.Context, telegramID int64, state string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_states (telegram_id,state,updated_at) VALUES ($1,$2,$3)
		ON CONFLICT (telegram_id) DO UPDATE SET state=EXCLUDED.state, updated_at=EXCLUDED.updated_at`,
		telegramID, state, time.Now().Unix())
	return err
}

func (s *SQLStore) SetData(ctx context.Context, telegramID int64, data json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_states (telegram_id,data,updated_at) VALUES ($1,$2,$3)
		ON CONFLICT (telegram_id) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		telegramID, string(data), time.Now().Unix())
	return err
}

func (s *SQLStore) Set(ctx context.Context, st State) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_states (telegram_id,state,data,updated_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (telegram_id) DO UPDATE SET state=EXCLUDED.state, data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		st.TelegramID, st.State, nullableJSON(st.Data), time.Now().Unix())
	return err
}

func nullableJSON(data json.RawMessage) any {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
