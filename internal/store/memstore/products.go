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

type Products struct{ db *DB }

func (s *Products) owned(userID uuid.UUID, keep func(products.Product) bool) []products.Product {
	var out []products.Product
	for _, p := range s.db.products {
		if p.UserID == userID && (keep == nil || keep(p)) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Products) List(_ context.Context, userID uuid.UUID) ([]products.Product, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := s.owned(userID, nil)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Products) Get(_ context.Context, userID, id uuid.UUID) (*products.Product, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	p, ok := s.db.products[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	return &p, nil
}

func (s *Products) GetMany(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]products.Product, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	seen := map[uuid.UUID]bool{}
	var out []products.Product
	for _, id := range ids {
		p, ok := s.db.products[id]
		if !ok || p.UserID != userID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, p)
	}
	return out, nil
}

func apply(p *products.Product, in products.Input) {
	p.Name = in.Name
	p.SKU = in.SKU
	p.Barcode = in.Barcode
	p.Description = in.Description
	p.Category = in.Category
	p.Price = in.Price
	p.Cost = in.Cost
	p.StockQuantity = in.StockQuantity
	p.LowStockThreshold = in.LowStockThreshold
	p.ProductType = in.ProductType
	p.IsService = in.ProductType == products.TypeService
}

func (s *Products) Create(_ context.Context, userID uuid.UUID, in products.Input) (*products.Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	at := s.db.now()
	p := products.Product{ID: uuid.New(), UserID: userID, CreatedAt: at, UpdatedAt: at}
	apply(&p, in)
	s.db.products[p.ID] = p
	return &p, nil
}

func (s *Products) Update(_ context.Context, userID, id uuid.UUID, in products.Input) (*products.Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.products[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	before, wasService := p.StockQuantity, p.IsService
	apply(&p, in)
	p.UpdatedAt = s.db.now()

	b := s.db.batch()
	b.staged[id] = p
	if from, to := products.AdjustmentDelta(before, wasService, p); from != to {
		b.record(inventory.Movement{
			UserID:    userID,
			ProductID: id,
			Delta:     to - from,
			Type:      inventory.TxAdjustment,
			Notes:     "Manual stock adjustment",
		}, from, to)
	}
	b.commit()
	return &p, nil
}

func (s *Products) Delete(_ context.Context, userID, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.products[id]
	if !ok || p.UserID != userID {
		return domain.ErrNotFound
	}
	for _, items := range s.db.saleItems {
		for _, it := range items {
			if it.ProductID == id {
				return fmt.Errorf("product is referenced by sales or restock orders: %w", domain.ErrInUse)
			}
		}
	}
	for _, items := range s.db.orderItems {
		for _, it := range items {
			if it.ProductID == id {
				return fmt.Errorf("product is referenced by sales or restock orders: %w", domain.ErrInUse)
			}
		}
	}

	delete(s.db.products, id)
	kept := s.db.stock[:0]
	for _, t := range s.db.stock {
		if t.ProductID != id {
			kept = append(kept, t)
		}
	}
	s.db.stock = kept
	return nil
}

func (s *Products) Categories(_ context.Context, userID uuid.UUID) ([]string, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	set := map[string]bool{}
	for _, p := range s.owned(userID, nil) {
		if p.Category != "" {
			set[p.Category] = true
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Products) LowStock(_ context.Context, userID uuid.UUID) ([]products.Product, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := s.owned(userID, products.Product.IsLowStock)
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockQuantity != out[j].StockQuantity {
			return out[i].StockQuantity < out[j].StockQuantity
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
