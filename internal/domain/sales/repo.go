package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
)

type Repo struct {
	pool *pgxpool.Pool
	// guardStock makes a sale fail instead of driving stock below zero.
	guardStock bool
}

func NewRepo(pool *pgxpool.Pool, allowNegativeStock bool) *Repo {
	return &Repo{pool: pool, guardStock: !allowNegativeStock}
}

const columns = `s.id, s.user_id, s.customer_id, COALESCE(c.name,''), s.invoice_number,
	s.subtotal, s.tax_rate, s.tax_amount, s.discount_amount, s.total_amount,
	s.payment_method, s.status, COALESCE(s.notes,''), s.sale_date, s.created_at, s.updated_at`

const from = ` FROM sales s LEFT JOIN customers c ON c.id = s.customer_id`

func scan(row pgx.Row) (*Sale, error) {
	var s Sale
	if err := row.Scan(
		&s.ID, &s.UserID, &s.CustomerID, &s.CustomerName, &s.InvoiceNumber,
		&s.Subtotal, &s.TaxRate, &s.TaxAmount, &s.DiscountAmount, &s.TotalAmount,
		&s.PaymentMethod, &s.Status, &s.Notes, &s.SaleDate, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func collect(rows pgx.Rows) ([]Sale, error) {
	defer rows.Close()
	var out []Sale
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *Repo) List(ctx context.Context, userID uuid.UUID) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+from+` WHERE s.user_id = $1 ORDER BY s.sale_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+from+`
		WHERE s.user_id = $1 AND s.sale_date >= $2 ORDER BY s.sale_date`, userID, since)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repo) Get(ctx context.Context, userID, id uuid.UUID) (*Sale, error) {
	s, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+from+` WHERE s.id = $1 AND s.user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

const itemQuery = `
	SELECT i.id, i.sale_id, i.product_id, COALESCE(p.name,''), i.quantity, i.unit_price, i.total_price,
	       s.sale_date, i.created_at
	FROM sale_items i
	JOIN sales s ON s.id = i.sale_id
	LEFT JOIN products p ON p.id = i.product_id`

func collectItems(rows pgx.Rows) ([]Item, error) {
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity,
			&it.UnitPrice, &it.TotalPrice, &it.SaleDate, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) Items(ctx context.Context, userID, saleID uuid.UUID) ([]Item, error) {
	rows, err := r.pool.Query(ctx, itemQuery+` WHERE s.user_id = $1 AND i.sale_id = $2 ORDER BY i.created_at`, userID, saleID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func (r *Repo) ItemsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]Item, error) {
	rows, err := r.pool.Query(ctx, itemQuery+` WHERE s.user_id = $1 AND s.sale_date >= $2`, userID, since)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func (r *Repo) Create(ctx context.Context, userID uuid.UUID, ns NewSale) (*Sale, []inventory.Adjusted, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO sales (user_id, customer_id, invoice_number, subtotal, tax_rate, tax_amount,
		                   discount_amount, total_amount, payment_method, status, notes, sale_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id
	`, userID, ns.CustomerID, ns.InvoiceNumber, ns.Subtotal, ns.TaxRate, ns.TaxAmount,
		ns.DiscountAmount, ns.TotalAmount, string(ns.PaymentMethod), string(StatusCompleted),
		domain.NullIfEmpty(ns.Notes), ns.SaleDate).Scan(&id)
	if err != nil {
		if domain.IsUniqueViolation(err) {
			return nil, nil, fmt.Errorf("invoice %s: %w", ns.InvoiceNumber, domain.ErrDuplicate)
		}
		return nil, nil, fmt.Errorf("insert sale: %w", err)
	}

	var adjusted []inventory.Adjusted
	for _, it := range ns.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, total_price)
			VALUES ($1,$2,$3,$4,$5)
		`, id, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice); err != nil {
			return nil, nil, fmt.Errorf("insert sale item: %w", err)
		}
		if it.IsService {
			continue
		}
		ref := id
		a, err := inventory.Apply(ctx, tx, inventory.Movement{
			UserID:      userID,
			ProductID:   it.ProductID,
			Delta:       -it.Quantity,
			Type:        inventory.TxSale,
			ReferenceID: &ref,
			Notes:       StockNote(ns.InvoiceNumber),
			Guard:       r.guardStock,
		})
		if err != nil {
			return nil, nil, err
		}
		adjusted = append(adjusted, a)
	}

	s, err := scan(tx.QueryRow(ctx, `SELECT `+columns+from+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return s, adjusted, nil
}

func (r *Repo) Update(ctx context.Context, userID, id uuid.UUID, u HeaderUpdate) (*Sale, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sales SET
			customer_id=$3, payment_method=$4, status=$5, notes=$6,
			tax_rate=$7, tax_amount=$8, discount_amount=$9, total_amount=$10, updated_at=now()
		WHERE id=$1 AND user_id=$2
	`, id, userID, u.CustomerID, string(u.PaymentMethod), string(u.Status), domain.NullIfEmpty(u.Notes),
		u.TaxRate, u.TaxAmount, u.DiscountAmount, u.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.Get(ctx, userID, id)
}

// Delete removes the header and (by cascade) its items. Stock and the audit
// trail are left as they are.
func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sales WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
