package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const columns = `id, user_id, name, sku, COALESCE(barcode,''), COALESCE(description,''), COALESCE(category,''),
	price, cost, stock_quantity, low_stock_threshold, product_type, is_service, created_at, updated_at`

func scan(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.SKU, &p.Barcode, &p.Description, &p.Category,
		&p.Price, &p.Cost, &p.StockQuantity, &p.LowStockThreshold, &p.ProductType, &p.IsService,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func collect(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) List(ctx context.Context, userID uuid.UUID) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM products WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repo) Get(ctx context.Context, userID, id uuid.UUID) (*Product, error) {
	p, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM products WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// GetMany silently skips ids that are absent or owned by someone else.
func (r *Repo) GetMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM products WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repo) Create(ctx context.Context, userID uuid.UUID, in Input) (*Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return scan(r.pool.QueryRow(ctx, `
		INSERT INTO products (user_id, name, sku, barcode, description, category, price, cost,
		                      stock_quantity, low_stock_threshold, product_type, is_service)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING `+columns,
		userID, in.Name, in.SKU, domain.NullIfEmpty(in.Barcode), domain.NullIfEmpty(in.Description),
		domain.NullIfEmpty(in.Category), in.Price, in.Cost, in.StockQuantity, in.LowStockThreshold,
		string(in.ProductType), in.ProductType == TypeService))
}

// Update rewrites the product. A changed stock quantity of a physical product is
// written to the audit trail as an adjustment in the same transaction.
func (r *Repo) Update(ctx context.Context, userID, id uuid.UUID, in Input) (*Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var before int
	var wasService bool
	err = tx.QueryRow(ctx, `SELECT stock_quantity, is_service FROM products WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID).Scan(&before, &wasService)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p, err := scan(tx.QueryRow(ctx, `
		UPDATE products SET
			name=$3, sku=$4, barcode=$5, description=$6, category=$7, price=$8, cost=$9,
			stock_quantity=$10, low_stock_threshold=$11, product_type=$12, is_service=$13, updated_at=now()
		WHERE id=$1 AND user_id=$2
		RETURNING `+columns,
		id, userID, in.Name, in.SKU, domain.NullIfEmpty(in.Barcode), domain.NullIfEmpty(in.Description),
		domain.NullIfEmpty(in.Category), in.Price, in.Cost, in.StockQuantity, in.LowStockThreshold,
		string(in.ProductType), in.ProductType == TypeService))
	if err != nil {
		return nil, err
	}

	if from, to := AdjustmentDelta(before, wasService, *p); from != to {
		m := inventory.Movement{
			UserID:    userID,
			ProductID: id,
			Delta:     to - from,
			Type:      inventory.TxAdjustment,
			Notes:     "Manual stock adjustment",
		}
		if err := inventory.Record(ctx, tx, m, from, to); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// AdjustmentDelta is the audit-worthy stock change of an edit. A service
// counts as zero stock, so switching between service and product is audited
// like any other edit.
func AdjustmentDelta(before int, wasService bool, after Product) (from, to int) {
	if !wasService {
		from = before
	}
	if !after.IsService {
		to = after.StockQuantity
	}
	return from, to
}

func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND user_id = $2`, id, userID)
	if domain.IsForeignKeyViolation(err) {
		return fmt.Errorf("product is referenced by sales or restock orders: %w", domain.ErrInUse)
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) Categories(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT category FROM products
		WHERE user_id = $1 AND category IS NOT NULL AND category <> ''
		ORDER BY category
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) LowStock(ctx context.Context, userID uuid.UUID) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+` FROM products
		WHERE user_id = $1 AND NOT is_service AND stock_quantity <= low_stock_threshold
		ORDER BY stock_quantity, name
	`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}
