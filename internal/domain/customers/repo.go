package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/shopdesk/internal/domain"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const columns = `id, user_id, name, COALESCE(email,''), COALESCE(phone,''), COALESCE(address,''), created_at, updated_at`

func scan(row pgx.Row) (*Customer, error) {
	var c Customer
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) List(ctx context.Context, userID uuid.UUID) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM customers WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, userID, id uuid.UUID) (*Customer, error) {
	c, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM customers WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *Repo) Create(ctx context.Context, userID uuid.UUID, in Input) (*Customer, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return scan(r.pool.QueryRow(ctx, `
		INSERT INTO customers (user_id, name, email, phone, address)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+columns,
		userID, in.Name, domain.NullIfEmpty(in.Email), domain.NullIfEmpty(in.Phone), domain.NullIfEmpty(in.Address)))
}

func (r *Repo) Update(ctx context.Context, userID, id uuid.UUID, in Input) (*Customer, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := scan(r.pool.QueryRow(ctx, `
		UPDATE customers SET name=$3, email=$4, phone=$5, address=$6, updated_at=now()
		WHERE id=$1 AND user_id=$2
		RETURNING `+columns,
		id, userID, in.Name, domain.NullIfEmpty(in.Email), domain.NullIfEmpty(in.Phone), domain.NullIfEmpty(in.Address)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// Delete keeps past sales: their customer_id is set to NULL by the schema and
// they show up as walk-in sales afterwards.
func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
