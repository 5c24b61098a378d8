package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
	"github.com/Spok95/shopdesk/internal/domain/restock"
)

type Restocks struct{ db *DB }

func (s *Restocks) List(_ context.Context, userID uuid.UUID) ([]restock.Order, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []restock.Order
	for _, o := range s.db.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (s *Restocks) Get(_ context.Context, userID, id uuid.UUID) (*restock.Order, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	o, ok := s.db.orders[id]
	if !ok || o.UserID != userID {
		return nil, nil
	}
	return &o, nil
}

func (s *Restocks) Items(_ context.Context, userID, orderID uuid.UUID) ([]restock.Item, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	o, ok := s.db.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, nil
	}
	out := make([]restock.Item, 0, len(s.db.orderItems[orderID]))
	for _, it := range s.db.orderItems[orderID] {
		it.ProductName = s.db.products[it.ProductID].Name
		out = append(out, it)
	}
	return out, nil
}

func (s *Restocks) Create(_ context.Context, userID uuid.UUID, no restock.NewOrder) (*restock.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.orders {
		if existing.UserID == userID && existing.OrderNumber == no.OrderNumber {
			return nil, fmt.Errorf("order %s: %w", no.OrderNumber, domain.ErrDuplicate)
		}
	}

	at := s.db.now()
	o := restock.Order{
		ID:              uuid.New(),
		UserID:          userID,
		OrderNumber:     no.OrderNumber,
		SupplierName:    no.SupplierName,
		SupplierContact: no.SupplierContact,
		TotalCost:       no.TotalCost,
		Status:          restock.StatusPending,
		OrderDate:       no.OrderDate,
		Notes:           no.Notes,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = at
	}

	items := make([]restock.Item, 0, len(no.Items))
	for _, it := range no.Items {
		if p, ok := s.db.products[it.ProductID]; !ok || p.UserID != userID {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, domain.ErrNotFound)
		}
		items = append(items, restock.Item{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			TotalCost: it.TotalCost,
			CreatedAt: s.db.now(),
		})
	}

	s.db.orders[o.ID] = o
	s.db.orderItems[o.ID] = items
	return &o, nil
}

// pending returns the order if it may move to the given status. Callers hold db.mu.
func (s *Restocks) pending(userID, id uuid.UUID, to restock.Status) (restock.Order, error) {
	o, ok := s.db.orders[id]
	if !ok || o.UserID != userID {
		return o, domain.ErrNotFound
	}
	if !restock.CanTransition(o.Status, to) {
		return o, fmt.Errorf("%s is %s: %w", o.OrderNumber, o.Status, restock.ErrNotPending)
	}
	return o, nil
}

func (s *Restocks) Receive(_ context.Context, userID, id uuid.UUID, at time.Time) (*restock.Order, []inventory.Adjusted, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	o, err := s.pending(userID, id, restock.StatusReceived)
	if err != nil {
		return nil, nil, err
	}

	b := s.db.batch()
	adjusted := make([]inventory.Adjusted, 0, len(s.db.orderItems[id]))
	for _, it := range s.db.orderItems[id] {
		ref := o.ID
		a, err := b.apply(inventory.Movement{
			UserID:      userID,
			ProductID:   it.ProductID,
			Delta:       it.Quantity,
			Type:        inventory.TxRestock,
			UnitCost:    decimal.NewNullDecimal(it.UnitCost),
			ReferenceID: &ref,
			Notes:       restock.ReceiveNote(o.OrderNumber),
		})
		if err != nil {
			return nil, nil, err
		}
		adjusted = append(adjusted, a)
	}

	o.Status = restock.StatusReceived
	o.ReceivedDate = &at
	o.UpdatedAt = s.db.now()
	s.db.orders[id] = o
	b.commit()
	return &o, adjusted, nil
}

func (s *Restocks) Cancel(_ context.Context, userID, id uuid.UUID) (*restock.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	o, err := s.pending(userID, id, restock.StatusCancelled)
	if err != nil {
		return nil, err
	}
	o.Status = restock.StatusCancelled
	o.UpdatedAt = s.db.now()
	s.db.orders[id] = o
	return &o, nil
}

func (s *Restocks) Delete(_ context.Context, userID, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	o, ok := s.db.orders[id]
	if !ok || o.UserID != userID {
		return domain.ErrNotFound
	}
	delete(s.db.orders, id)
	delete(s.db.orderItems, id)
	return nil
}
