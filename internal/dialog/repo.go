package dialog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Get(ctx context.Context, userID uuid.UUID, screen Screen) (*Draft, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT state, payload, COALESCE(message,''), updated_at
		FROM dialog_states WHERE user_id = $1 AND screen = $2
	`, userID, string(screen))

	d := Draft{UserID: userID, Screen: screen}
	var state string
	var raw []byte
	if err := row.Scan(&state, &raw, &d.Message, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			d.State = StateIdle
			d.Payload = Payload{}
			return &d, nil
		}
		return nil, err
	}
	d.State = State(state)
	d.Payload = Payload{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &d.Payload); err != nil {
			return nil, err
		}
	}
	if d.Payload == nil {
		d.Payload = Payload{}
	}
	return &d, nil
}

func (r *Repo) Set(ctx context.Context, d Draft) error {
	raw, err := json.Marshal(d.Payload)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO dialog_states (user_id, screen, state, payload, message, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
		ON CONFLICT (user_id, screen) DO UPDATE SET
		  state=$3, payload=$4, message=$5, updated_at=now()
	`, d.UserID, string(d.Screen), string(d.State), raw, d.Message)
	return err
}

func (r *Repo) Reset(ctx context.Context, userID uuid.UUID, screen Screen) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM dialog_states WHERE user_id = $1 AND screen = $2`, userID, string(screen))
	return err
}
