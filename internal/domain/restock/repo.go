package restock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const columns = `id, user_id, order_number, supplier_name, COALESCE(supplier_contact,''), total_cost,
	status, order_date, received_date, COALESCE(notes,''), created_at, updated_at`

func scan(row pgx.Row) (*Order, error) {
	var o Order
	if err := row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.SupplierName, &o.SupplierContact, &o.TotalCost,
		&o.Status, &o.OrderDate, &o.ReceivedDate, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) List(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM restock_orders WHERE user_id = $1 ORDER BY order_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, userID, id uuid.UUID) (*Order, error) {
	o, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM restock_orders WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

func (r *Repo) Items(ctx context.Context, userID, orderID uuid.UUID) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.restock_order_id, i.product_id, COALESCE(p.name,''), i.quantity, i.unit_cost, i.total_cost, i.created_at
		FROM restock_items i
		JOIN restock_orders o ON o.id = i.restock_order_id
		LEFT JOIN products p ON p.id = i.product_id
		WHERE o.user_id = $1 AND i.restock_order_id = $2
		ORDER BY i.created_at
	`, userID, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity,
			&it.UnitCost, &it.TotalCost, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, userID uuid.UUID, no NewOrder) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scan(tx.QueryRow(ctx, `
		INSERT INTO restock_orders (user_id, order_number, supplier_name, supplier_contact, total_cost, status, order_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+columns,
		userID, no.OrderNumber, no.SupplierName, domain.NullIfEmpty(no.SupplierContact), no.TotalCost,
		string(StatusPending), no.OrderDate, domain.NullIfEmpty(no.Notes)))
	if err != nil {
		if domain.IsUniqueViolation(err) {
			return nil, fmt.Errorf("order %s: %w", no.OrderNumber, domain.ErrDuplicate)
		}
		return nil, fmt.Errorf("insert restock order: %w", err)
	}

	for _, it := range no.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO restock_items (restock_order_id, product_id, quantity, unit_cost, total_cost)
			VALUES ($1,$2,$3,$4,$5)
		`, o.ID, it.ProductID, it.Quantity, it.UnitCost, it.TotalCost); err != nil {
			return nil, fmt.Errorf("insert restock item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// lockPending locks the order row and checks it is still pending.
func lockPending(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*Order, error) {
	o, err := scan(tx.QueryRow(ctx, `SELECT `+columns+` FROM restock_orders WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, fmt.Errorf("%s is %s: %w", o.OrderNumber, o.Status, ErrNotPending)
	}
	return o, nil
}

func (r *Repo) Receive(ctx context.Context, userID, id uuid.UUID, at time.Time) (*Order, []inventory.Adjusted, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := lockPending(ctx, tx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	rows, err := tx.Query(ctx, `SELECT product_id, quantity, unit_cost FROM restock_items WHERE restock_order_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, nil, err
	}
	type line struct {
		productID uuid.UUID
		qty       int
		unitCost  decimal.Decimal
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.qty, &l.unitCost); err != nil {
			rows.Close()
			return nil, nil, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	adjusted := make([]inventory.Adjusted, 0, len(lines))
	for _, l := range lines {
		ref := o.ID
		a, err := inventory.Apply(ctx, tx, inventory.Movement{
			UserID:      userID,
			ProductID:   l.productID,
			Delta:       l.qty,
			Type:        inventory.TxRestock,
			UnitCost:    decimal.NewNullDecimal(l.unitCost),
			ReferenceID: &ref,
			Notes:       ReceiveNote(o.OrderNumber),
		})
		if err != nil {
			return nil, nil, err
		}
		adjusted = append(adjusted, a)
	}

	o, err = scan(tx.QueryRow(ctx, `
		UPDATE restock_orders SET status = $2, received_date = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+columns, id, string(StatusReceived), at))
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return o, adjusted, nil
}

func (r *Repo) Cancel(ctx context.Context, userID, id uuid.UUID) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := lockPending(ctx, tx, userID, id); err != nil {
		return nil, err
	}
	o, err := scan(tx.QueryRow(ctx, `
		UPDATE restock_orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+columns, id, string(StatusCancelled)))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM restock_orders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
