package customers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Input struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

var ErrInvalid = errors.New("customers: invalid input")

func (in Input) Normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	return in
}

func (in Input) Validate() error {
	if in.Name == "" {
		return errors.Join(ErrInvalid, errors.New("name is required"))
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return errors.Join(ErrInvalid, errors.New("email is malformed"))
	}
	return nil
}

type Store interface {
	List(ctx context.Context, userID uuid.UUID) ([]Customer, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Customer, error)
	Create(ctx context.Context, userID uuid.UUID, in Input) (*Customer, error)
	Update(ctx context.Context, userID, id uuid.UUID, in Input) (*Customer, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
