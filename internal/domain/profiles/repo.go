package profiles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const columns = `id, user_id, COALESCE(business_name,''), COALESCE(full_name,''), COALESCE(email,''),
	COALESCE(phone,''), COALESCE(country,''), currency_code, exchange_rate, created_at, updated_at`

func scan(row pgx.Row) (*Profile, error) {
	var p Profile
	if err := row.Scan(&p.ID, &p.UserID, &p.BusinessName, &p.FullName, &p.Email,
		&p.Phone, &p.Country, &p.CurrencyCode, &p.ExchangeRate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM profiles WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *Repo) Upsert(ctx context.Context, userID uuid.UUID, in Input) (*Profile, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return scan(r.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, business_name, full_name, email, phone, country, currency_code, exchange_rate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id)
		DO UPDATE SET
			business_name = EXCLUDED.business_name,
			full_name     = EXCLUDED.full_name,
			email         = EXCLUDED.email,
			phone         = EXCLUDED.phone,
			country       = EXCLUDED.country,
			currency_code = EXCLUDED.currency_code,
			exchange_rate = EXCLUDED.exchange_rate,
			updated_at    = now()
		RETURNING `+columns,
		userID, in.BusinessName, in.FullName, in.Email, in.Phone, in.Country, in.CurrencyCode, in.ExchangeRate))
}
