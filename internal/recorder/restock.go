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
	"github.com/Spok95/shopdesk/internal/domain/restock"
)

type RestockLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	// UnitCost defaults to the product's cost.
	UnitCost decimal.NullDecimal `json:"unit_cost"`
}

type RestockInput struct {
	SupplierName    string        `json:"supplier_name"`
	SupplierContact string        `json:"supplier_contact"`
	Notes           string        `json:"notes"`
	Items           []RestockLine `json:"items"`
}

func (r *Recorder) prepareRestock(ctx context.Context, userID uuid.UUID, in RestockInput) (restock.NewOrder, error) {
	no := restock.NewOrder{
		SupplierName:    strings.TrimSpace(in.SupplierName),
		SupplierContact: strings.TrimSpace(in.SupplierContact),
		Notes:           strings.TrimSpace(in.Notes),
	}
	if no.SupplierName == "" {
		return no, &ValidationError{Err: ErrMissingSupplier}
	}
	if len(in.Items) == 0 {
		return no, &ValidationError{Err: ErrNoItems}
	}
	ids := make([]uuid.UUID, 0, len(in.Items))
	for i, it := range in.Items {
		switch {
		case it.ProductID == uuid.Nil:
			return no, invalid(ErrMissingProduct, "item %d", i+1)
		case it.Quantity <= 0:
			return no, invalid(ErrNonPositiveQty, "item %d has quantity %d", i+1, it.Quantity)
		case it.UnitCost.Valid && it.UnitCost.Decimal.IsNegative():
			return no, invalid(ErrNegativeCost, "item %d", i+1)
		}
		ids = append(ids, it.ProductID)
	}

	catalog, err := r.loadProducts(ctx, userID, ids)
	if err != nil {
		return no, err
	}

	total := decimal.Zero
	no.Items = make([]restock.NewItem, 0, len(in.Items))
	for _, it := range in.Items {
		p := catalog[it.ProductID]
		if p.IsService {
			return no, invalid(ErrServiceNotStockable, "%s", p.Name)
		}
		cost := p.Cost
		if it.UnitCost.Valid {
			cost = it.UnitCost.Decimal
		}
		line := LineTotal(it.Quantity, cost)
		total = total.Add(line)
		no.Items = append(no.Items, restock.NewItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  cost,
			TotalCost: line,
		})
	}
	no.TotalCost = total
	return no, nil
}

// CreateRestock places a pending order. Stock is unaffected until the order
// is received.
func (r *Recorder) CreateRestock(ctx context.Context, userID uuid.UUID, in RestockInput) (*restock.Order, error) {
	no, err := r.prepareRestock(ctx, userID, in)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return nil, r.reject("create_restock", err)
		}
		return nil, fmt.Errorf("create restock: %w", err)
	}

	now := r.now()
	no.OrderDate = now

	var o *restock.Order
	for attempt := 1; ; attempt++ {
		no.OrderNumber = Number(orderPrefix, now, r.suffix())
		o, err = r.restocks.Create(ctx, userID, no)
		if errors.Is(err, domain.ErrDuplicate) && attempt < numberAttempts {
			r.log.Debug("order number taken, retrying", "order", no.OrderNumber)
			continue
		}
		break
	}
	if err != nil {
		return nil, fmt.Errorf("create restock: %w", err)
	}

	r.metrics.RestockCreated()
	r.log.Info("restock order created",
		"user_id", userID,
		"order", o.OrderNumber,
		"supplier", o.SupplierName,
		"total_cost", o.TotalCost.StringFixed(2),
	)
	return o, nil
}

// ReceiveRestock moves a pending order to received and adds every item's
// quantity to stock with an audit row.
func (r *Recorder) ReceiveRestock(ctx context.Context, userID, id uuid.UUID) (*restock.Order, error) {
	o, adjusted, err := r.restocks.Receive(ctx, userID, id, r.now())
	if err != nil {
		return nil, fmt.Errorf("receive restock: %w", err)
	}
	r.metrics.RestockReceived()
	r.metrics.StockMoved(string(inventory.TxRestock), len(adjusted))
	r.log.Info("restock order received", "user_id", userID, "order", o.OrderNumber, "items", len(adjusted))
	return o, nil
}

func (r *Recorder) CancelRestock(ctx context.Context, userID, id uuid.UUID) (*restock.Order, error) {
	o, err := r.restocks.Cancel(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("cancel restock: %w", err)
	}
	r.log.Info("restock order cancelled", "user_id", userID, "order", o.OrderNumber)
	return o, nil
}
