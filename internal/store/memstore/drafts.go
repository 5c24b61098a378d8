package memstore

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Spok95/shopdesk/internal/dialog"
)

type Drafts struct{ db *DB }

func (s *Drafts) Get(_ context.Context, userID uuid.UUID, screen dialog.Screen) (*dialog.Draft, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	d, ok := s.db.drafts[draftKey{userID, screen}]
	if !ok {
		return &dialog.Draft{UserID: userID, Screen: screen, State: dialog.StateIdle, Payload: dialog.Payload{}}, nil
	}
	return &d, nil
}

// Set stores a deep copy of the payload, the way a JSONB round trip would.
func (s *Drafts) Set(_ context.Context, d dialog.Draft) error {
	raw, err := json.Marshal(d.Payload)
	if err != nil {
		return err
	}
	p := dialog.Payload{}
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	if p == nil {
		p = dialog.Payload{}
	}
	d.Payload = p

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	d.UpdatedAt = s.db.now()
	s.db.drafts[draftKey{d.UserID, d.Screen}] = d
	return nil
}

func (s *Drafts) Reset(_ context.Context, userID uuid.UUID, screen dialog.Screen) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.drafts, draftKey{userID, screen})
	return nil
}
