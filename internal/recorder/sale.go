package recorder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
	"github.com/Spok95/shopdesk/internal/domain/sales"
)

type SaleLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	// UnitPrice defaults to the product's current price.
	UnitPrice decimal.NullDecimal `json:"unit_price"`
}

type SaleInput struct {
	// CustomerID is nil for a walk-in sale.
	CustomerID     *uuid.UUID          `json:"customer_id"`
	Items          []SaleLine          `json:"items"`
	PaymentMethod  sales.PaymentMethod `json:"payment_method"`
	TaxRate        decimal.Decimal     `json:"tax_rate"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	Notes          string              `json:"notes"`
}

// SaleUpdate edits a sale header. Customer and notes are replaced as given;
// empty or null fields keep their stored values.
type SaleUpdate struct {
	CustomerID     *uuid.UUID          `json:"customer_id"`
	PaymentMethod  sales.PaymentMethod `json:"payment_method"`
	Status         sales.Status        `json:"status"`
	Notes          string              `json:"notes"`
	TaxRate        decimal.NullDecimal `json:"tax_rate"`
	DiscountAmount decimal.NullDecimal `json:"discount_amount"`
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return invalid(ErrInvalidTaxRate, "got %s", rate)
	}
	return nil
}

func validateDiscount(t Totals) error {
	if t.Discount.IsNegative() {
		return invalid(ErrNegativeDiscount, "got %s", t.Discount)
	}
	if t.Total.IsNegative() {
		return invalid(ErrDiscountTooLarge, "discount %s, subtotal %s, tax %s", t.Discount, t.Subtotal, t.Tax)
	}
	return nil
}

func (r *Recorder) checkCustomer(ctx context.Context, userID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	c, err := r.customers.Get(ctx, userID, *id)
	if err != nil {
		return err
	}
	if c == nil {
		return invalid(ErrUnknownCustomer, "%s", *id)
	}
	return nil
}

// prepareSale validates in and builds the priced document; it never writes.
func (r *Recorder) prepareSale(ctx context.Context, userID uuid.UUID, in SaleInput) (sales.NewSale, error) {
	if len(in.Items) == 0 {
		return sales.NewSale{}, &ValidationError{Err: ErrNoItems}
	}
	ids := make([]uuid.UUID, 0, len(in.Items))
	for i, it := range in.Items {
		switch {
		case it.ProductID == uuid.Nil:
			return sales.NewSale{}, invalid(ErrMissingProduct, "item %d", i+1)
		case it.Quantity <= 0:
			return sales.NewSale{}, invalid(ErrNonPositiveQty, "item %d has quantity %d", i+1, it.Quantity)
		case it.UnitPrice.Valid && it.UnitPrice.Decimal.IsNegative():
			return sales.NewSale{}, invalid(ErrNegativePrice, "item %d", i+1)
		}
		ids = append(ids, it.ProductID)
	}

	method := in.PaymentMethod
	if method == "" {
		method = sales.PayCash
	}
	if !method.Valid() {
		return sales.NewSale{}, invalid(ErrInvalidPaymentMethod, "%q", method)
	}
	if err := validateRate(in.TaxRate); err != nil {
		return sales.NewSale{}, err
	}
	if in.DiscountAmount.IsNegative() {
		return sales.NewSale{}, invalid(ErrNegativeDiscount, "got %s", in.DiscountAmount)
	}

	catalog, err := r.loadProducts(ctx, userID, ids)
	if err != nil {
		return sales.NewSale{}, err
	}
	if err := r.checkCustomer(ctx, userID, in.CustomerID); err != nil {
		return sales.NewSale{}, err
	}

	ns := sales.NewSale{
		CustomerID:    in.CustomerID,
		TaxRate:       in.TaxRate,
		PaymentMethod: method,
		Notes:         strings.TrimSpace(in.Notes),
		Items:         make([]sales.NewItem, 0, len(in.Items)),
	}
	subtotal := decimal.Zero
	for _, it := range in.Items {
		p := catalog[it.ProductID]
		price := p.Price
		if it.UnitPrice.Valid {
			price = it.UnitPrice.Decimal
		}
		line := LineTotal(it.Quantity, price)
		subtotal = subtotal.Add(line)
		ns.Items = append(ns.Items, sales.NewItem{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  price,
			TotalPrice: line,
			IsService:  p.IsService,
		})
	}

	t := ComputeTotals(subtotal, in.TaxRate, in.DiscountAmount)
	if err := validateDiscount(t); err != nil {
		return sales.NewSale{}, err
	}
	ns.Subtotal, ns.TaxAmount, ns.DiscountAmount, ns.TotalAmount = t.Subtotal, t.Tax, t.Discount, t.Total
	return ns, nil
}

// RecordSale stores a completed sale with its items and decrements stock of
// every physical product sold, appending one audit row per line.
func (r *Recorder) RecordSale(ctx context.Context, userID uuid.UUID, in SaleInput) (*sales.Sale, error) {
	ns, err := r.prepareSale(ctx, userID, in)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return nil, r.reject("record_sale", err)
		}
		return nil, fmt.Errorf("record sale: %w", err)
	}

	now := r.now()
	ns.SaleDate = now

	var (
		sale     *sales.Sale
		adjusted []inventory.Adjusted
	)
	for attempt := 1; ; attempt++ {
		ns.InvoiceNumber = Number(invoicePrefix, now, r.suffix())
		sale, adjusted, err = r.sales.Create(ctx, userID, ns)
		if errors.Is(err, domain.ErrDuplicate) && attempt < numberAttempts {
			r.log.Debug("invoice number taken, retrying", "invoice", ns.InvoiceNumber)
			continue
		}
		break
	}
	if err != nil {
		return nil, fmt.Errorf("record sale: %w", err)
	}

	r.metrics.SaleRecorded(sale.TotalAmount)
	r.metrics.StockMoved(string(inventory.TxSale), len(adjusted))
	r.log.Info("sale recorded",
		"user_id", userID,
		"invoice", sale.InvoiceNumber,
		"items", len(ns.Items),
		"total", sale.TotalAmount.StringFixed(2),
	)
	r.alertLowStock(ctx, adjusted)
	return sale, nil
}

// UpdateSale edits the header of a stored sale. Tax and total are re-derived
// from the stored subtotal; items and stock are never touched.
func (r *Recorder) UpdateSale(ctx context.Context, userID, id uuid.UUID, in SaleUpdate) (*sales.Sale, error) {
	cur, err := r.sales.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("update sale: %w", err)
	}
	if cur == nil {
		return nil, domain.ErrNotFound
	}

	u := sales.HeaderUpdate{
		CustomerID:    in.CustomerID,
		PaymentMethod: cur.PaymentMethod,
		Status:        cur.Status,
		Notes:         strings.TrimSpace(in.Notes),
		TaxRate:       cur.TaxRate,
	}
	if in.PaymentMethod != "" {
		if !in.PaymentMethod.Valid() {
			return nil, r.reject("update_sale", invalid(ErrInvalidPaymentMethod, "%q", in.PaymentMethod))
		}
		u.PaymentMethod = in.PaymentMethod
	}
	if in.Status != "" {
		if !in.Status.Valid() {
			return nil, r.reject("update_sale", invalid(ErrInvalidStatus, "%q", in.Status))
		}
		u.Status = in.Status
	}
	if in.TaxRate.Valid {
		if err := validateRate(in.TaxRate.Decimal); err != nil {
			return nil, r.reject("update_sale", err)
		}
		u.TaxRate = in.TaxRate.Decimal
	}
	discount := cur.DiscountAmount
	if in.DiscountAmount.Valid {
		discount = in.DiscountAmount.Decimal
	}

	t := ComputeTotals(cur.Subtotal, u.TaxRate, discount)
	if err := validateDiscount(t); err != nil {
		return nil, r.reject("update_sale", err)
	}
	if err := r.checkCustomer(ctx, userID, in.CustomerID); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return nil, r.reject("update_sale", err)
		}
		return nil, fmt.Errorf("update sale: %w", err)
	}
	u.TaxAmount, u.DiscountAmount, u.TotalAmount = t.Tax, t.Discount, t.Total

	sale, err := r.sales.Update(ctx, userID, id, u)
	if err != nil {
		return nil, fmt.Errorf("update sale: %w", err)
	}
	r.log.Info("sale updated", "user_id", userID, "invoice", sale.InvoiceNumber, "status", sale.Status)
	return sale, nil
}
