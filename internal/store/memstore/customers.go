package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Spok95/shopdesk/internal/domain"
	"github.com/Spok95/shopdesk/internal/domain/customers"
)

type Customers struct{ db *DB }

func (s *Customers) List(_ context.Context, userID uuid.UUID) ([]customers.Customer, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []customers.Customer
	for _, c := range s.db.customers {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Customers) Get(_ context.Context, userID, id uuid.UUID) (*customers.Customer, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	c, ok := s.db.customers[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	return &c, nil
}

func (s *Customers) Create(_ context.Context, userID uuid.UUID, in customers.Input) (*customers.Customer, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	at := s.db.now()
	c := customers.Customer{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: at,
		UpdatedAt: at,
	}
	s.db.customers[c.ID] = c
	return &c, nil
}

func (s *Customers) Update(_ context.Context, userID, id uuid.UUID, in customers.Input) (*customers.Customer, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.customers[id]
	if !ok || c.UserID != userID {
		return nil, domain.ErrNotFound
	}
	c.Name, c.Email, c.Phone, c.Address = in.Name, in.Email, in.Phone, in.Address
	c.UpdatedAt = s.db.now()
	s.db.customers[id] = c
	return &c, nil
}

func (s *Customers) Delete(_ context.Context, userID, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.customers[id]
	if !ok || c.UserID != userID {
		return domain.ErrNotFound
	}
	delete(s.db.customers, id)
	for sid, sale := range s.db.sales {
		if sale.CustomerID != nil && *sale.CustomerID == id {
			sale.CustomerID = nil
			s.db.sales[sid] = sale
		}
	}
	return nil
}
