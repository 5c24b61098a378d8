package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/shopdesk/internal/domain"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Apply changes a product's stock inside tx and appends the audit row.
// The new quantity is computed by the database, so concurrent writers never
// act on a stale read.
func Apply(ctx context.Context, tx pgx.Tx, m Movement) (Adjusted, error) {
	if m.Delta == 0 {
		return Adjusted{}, ErrZeroDelta
	}

	q := `
		UPDATE products
		SET stock_quantity = stock_quantity + $3, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND NOT is_service`
	if m.Guard {
		q += ` AND stock_quantity + $3 >= 0`
	}
	q += ` RETURNING name, sku, stock_quantity, low_stock_threshold`

	a := Adjusted{ProductID: m.ProductID}
	err := tx.QueryRow(ctx, q, m.ProductID, m.UserID, m.Delta).Scan(&a.Name, &a.SKU, &a.After, &a.Threshold)
	if errors.Is(err, pgx.ErrNoRows) {
		return Adjusted{}, explainMiss(ctx, tx, m)
	}
	if err != nil {
		return Adjusted{}, fmt.Errorf("update stock: %w", err)
	}
	a.Before = a.After - m.Delta

	if err := Record(ctx, tx, m, a.Before, a.After); err != nil {
		return Adjusted{}, err
	}
	return a, nil
}

// Record appends an audit row for a change that was already applied.
func Record(ctx context.Context, tx pgx.Tx, m Movement, before, after int) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_transactions
			(user_id, product_id, transaction_type, quantity_change, quantity_before, quantity_after,
			 unit_cost, total_cost, reference_id, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, m.UserID, m.ProductID, string(m.Type), m.Delta, before, after,
		m.UnitCost, m.TotalCost(), m.ReferenceID, domain.NullIfEmpty(m.Notes)); err != nil {
		return fmt.Errorf("insert stock transaction: %w", err)
	}
	return nil
}

func explainMiss(ctx context.Context, tx pgx.Tx, m Movement) error {
	var isService bool
	err := tx.QueryRow(ctx, `SELECT is_service FROM products WHERE id = $1 AND user_id = $2`,
		m.ProductID, m.UserID).Scan(&isService)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("product %s: %w", m.ProductID, domain.ErrNotFound)
	case err != nil:
		return err
	case isService:
		return fmt.Errorf("product %s: %w", m.ProductID, ErrService)
	default:
		return fmt.Errorf("product %s: %w", m.ProductID, ErrInsufficientStock)
	}
}

// List returns the audit trail newest first, optionally for one product.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, productID *uuid.UUID) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.user_id, t.product_id, COALESCE(p.name,''), t.transaction_type,
		       t.quantity_change, t.quantity_before, t.quantity_after,
		       t.unit_cost, t.total_cost, t.reference_id, COALESCE(t.notes,''), t.created_at
		FROM stock_transactions t
		LEFT JOIN products p ON p.id = t.product_id
		WHERE t.user_id = $1 AND ($2::uuid IS NULL OR t.product_id = $2)
		ORDER BY t.created_at DESC
	`, userID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.ProductID, &t.ProductName, &t.Type,
			&t.QuantityChange, &t.QuantityBefore, &t.QuantityAfter,
			&t.UnitCost, &t.TotalCost, &t.ReferenceID, &t.Notes, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
