package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/Spok95/shopdesk/internal/domain/profiles"
)

type Profiles struct{ db *DB }

func (s *Profiles) Get(_ context.Context, userID uuid.UUID) (*profiles.Profile, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	p, ok := s.db.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Profiles) Upsert(_ context.Context, userID uuid.UUID, in profiles.Input) (*profiles.Profile, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	at := s.db.now()
	p, ok := s.db.profiles[userID]
	if !ok {
		p = profiles.Profile{ID: uuid.New(), UserID: userID, CreatedAt: at}
	}
	p.BusinessName = in.BusinessName
	p.FullName = in.FullName
	p.Email = in.Email
	p.Phone = in.Phone
	p.Country = in.Country
	p.CurrencyCode = in.CurrencyCode
	p.ExchangeRate = in.ExchangeRate
	p.UpdatedAt = at
	s.db.profiles[userID] = p
	return &p, nil
}
