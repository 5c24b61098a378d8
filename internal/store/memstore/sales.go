package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
	"github.com/Spok95/shopdesk/internal/domain/sales"
)

type Sales struct{ db *DB }

// view fills the joined customer name. Callers hold db.mu.
func (s *Sales) view(sale sales.Sale) sales.Sale {
	sale.CustomerName = ""
	if sale.CustomerID != nil {
		sale.CustomerName = s.db.customers[*sale.CustomerID].Name
	}
	return sale
}

func (s *Sales) filter(userID uuid.UUID, since *time.Time) []sales.Sale {
	var out []sales.Sale
	for _, sale := range s.db.sales {
		if sale.UserID != userID {
			continue
		}
		if since != nil && sale.SaleDate.Before(*since) {
			continue
		}
		out = append(out, s.view(sale))
	}
	return out
}

func (s *Sales) List(_ context.Context, userID uuid.UUID) ([]sales.Sale, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := s.filter(userID, nil)
	sort.Slice(out, func(i, j int) bool { return out[i].SaleDate.After(out[j].SaleDate) })
	return out, nil
}

func (s *Sales) ListSince(_ context.Context, userID uuid.UUID, since time.Time) ([]sales.Sale, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := s.filter(userID, &since)
	sort.Slice(out, func(i, j int) bool { return out[i].SaleDate.Before(out[j].SaleDate) })
	return out, nil
}

func (s *Sales) Get(_ context.Context, userID, id uuid.UUID) (*sales.Sale, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	sale, ok := s.db.sales[id]
	if !ok || sale.UserID != userID {
		return nil, nil
	}
	v := s.view(sale)
	return &v, nil
}

func (s *Sales) items(sale sales.Sale) []sales.Item {
	out := make([]sales.Item, 0, len(s.db.saleItems[sale.ID]))
	for _, it := range s.db.saleItems[sale.ID] {
		it.ProductName = s.db.products[it.ProductID].Name
		it.SaleDate = sale.SaleDate
		out = append(out, it)
	}
	return out
}

func (s *Sales) Items(_ context.Context, userID, saleID uuid.UUID) ([]sales.Item, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	sale, ok := s.db.sales[saleID]
	if !ok || sale.UserID != userID {
		return nil, nil
	}
	return s.items(sale), nil
}

func (s *Sales) ItemsSince(_ context.Context, userID uuid.UUID, since time.Time) ([]sales.Item, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []sales.Item
	for _, sale := range s.filter(userID, &since) {
		out = append(out, s.items(sale)...)
	}
	return out, nil
}

func (s *Sales) Create(_ context.Context, userID uuid.UUID, ns sales.NewSale) (*sales.Sale, []inventory.Adjusted, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.sales {
		if existing.UserID == userID && existing.InvoiceNumber == ns.InvoiceNumber {
			return nil, nil, fmt.Errorf("invoice %s: %w", ns.InvoiceNumber, domain.ErrDuplicate)
		}
	}

	at := s.db.now()
	sale := sales.Sale{
		ID:             uuid.New(),
		UserID:         userID,
		CustomerID:     ns.CustomerID,
		InvoiceNumber:  ns.InvoiceNumber,
		Subtotal:       ns.Subtotal,
		TaxRate:        ns.TaxRate,
		TaxAmount:      ns.TaxAmount,
		DiscountAmount: ns.DiscountAmount,
		TotalAmount:    ns.TotalAmount,
		PaymentMethod:  ns.PaymentMethod,
		Status:         sales.StatusCompleted,
		Notes:          ns.Notes,
		SaleDate:       ns.SaleDate,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = at
	}

	b := s.db.batch()
	var adjusted []inventory.Adjusted
	items := make([]sales.Item, 0, len(ns.Items))
	for _, it := range ns.Items {
		if p, ok := s.db.products[it.ProductID]; !ok || p.UserID != userID {
			return nil, nil, fmt.Errorf("product %s: %w", it.ProductID, domain.ErrNotFound)
		}
		items = append(items, sales.Item{
			ID:         uuid.New(),
			SaleID:     sale.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
			CreatedAt:  s.db.now(),
		})
		if it.IsService {
			continue
		}
		ref := sale.ID
		a, err := b.apply(inventory.Movement{
			UserID:      userID,
			ProductID:   it.ProductID,
			Delta:       -it.Quantity,
			Type:        inventory.TxSale,
			ReferenceID: &ref,
			Notes:       sales.StockNote(ns.InvoiceNumber),
			Guard:       s.db.guardStock,
		})
		if err != nil {
			return nil, nil, err
		}
		adjusted = append(adjusted, a)
	}

	s.db.sales[sale.ID] = sale
	s.db.saleItems[sale.ID] = items
	b.commit()

	v := s.view(sale)
	return &v, adjusted, nil
}

func (s *Sales) Update(_ context.Context, userID, id uuid.UUID, u sales.HeaderUpdate) (*sales.Sale, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	sale, ok := s.db.sales[id]
	if !ok || sale.UserID != userID {
		return nil, domain.ErrNotFound
	}
	sale.CustomerID = u.CustomerID
	sale.PaymentMethod = u.PaymentMethod
	sale.Status = u.Status
	sale.Notes = u.Notes
	sale.TaxRate = u.TaxRate
	sale.TaxAmount = u.TaxAmount
	sale.DiscountAmount = u.DiscountAmount
	sale.TotalAmount = u.TotalAmount
	sale.UpdatedAt = s.db.now()
	s.db.sales[id] = sale

	v := s.view(sale)
	return &v, nil
}

func (s *Sales) Delete(_ context.Context, userID, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	sale, ok := s.db.sales[id]
	if !ok || sale.UserID != userID {
		return domain.ErrNotFound
	}
	delete(s.db.sales, id)
	delete(s.db.saleItems, id)
	return nil
}
