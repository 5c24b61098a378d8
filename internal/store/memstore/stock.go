package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
	"github.com/Spok95/shopdesk/internal/domain/products"
)

// stockBatch stages stock changes so a failing movement leaves nothing behind.
type stockBatch struct {
	db      *DB
	staged  map[uuid.UUID]products.Product
	entries []inventory.Transaction
}

func (db *DB) batch() *stockBatch {
	return &stockBatch{db: db, staged: map[uuid.UUID]products.Product{}}
}

func (b *stockBatch) apply(m inventory.Movement) (inventory.Adjusted, error) {
	if m.Delta == 0 {
		return inventory.Adjusted{}, inventory.ErrZeroDelta
	}
	p, ok := b.staged[m.ProductID]
	if !ok {
		p, ok = b.db.products[m.ProductID]
		if !ok || p.UserID != m.UserID {
			return inventory.Adjusted{}, fmt.Errorf("product %s: %w", m.ProductID, domain.ErrNotFound)
		}
	}
	if p.IsService {
		return inventory.Adjusted{}, fmt.Errorf("product %s: %w", m.ProductID, inventory.ErrService)
	}

	before := p.StockQuantity
	after := before + m.Delta
	if m.Guard && after < 0 {
		return inventory.Adjusted{}, fmt.Errorf("product %s: %w", m.ProductID, inventory.ErrInsufficientStock)
	}

	at := b.db.now()
	p.StockQuantity = after
	p.UpdatedAt = at
	b.staged[p.ID] = p
	b.record(m, before, after)

	return inventory.Adjusted{
		ProductID: p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Before:    before,
		After:     after,
		Threshold: p.LowStockThreshold,
	}, nil
}

func (b *stockBatch) record(m inventory.Movement, before, after int) {
	b.entries = append(b.entries, inventory.Transaction{
		ID:             uuid.New(),
		UserID:         m.UserID,
		ProductID:      m.ProductID,
		Type:           m.Type,
		QuantityChange: m.Delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		UnitCost:       m.UnitCost,
		TotalCost:      m.TotalCost(),
		ReferenceID:    m.ReferenceID,
		Notes:          m.Notes,
		CreatedAt:      b.db.now(),
	})
}

func (b *stockBatch) commit() {
	for id, p := range b.staged {
		b.db.products[id] = p
	}
	b.db.stock = append(b.db.stock, b.entries...)
}

type StockTransactions struct{ db *DB }

func (s *StockTransactions) List(_ context.Context, userID uuid.UUID, productID *uuid.UUID) ([]inventory.Transaction, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []inventory.Transaction
	for _, t := range s.db.stock {
		if t.UserID != userID {
			continue
		}
		if productID != nil && t.ProductID != *productID {
			continue
		}
		t.ProductName = s.db.products[t.ProductID].Name
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
