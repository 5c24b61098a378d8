package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Profile holds the business settings of one user.
type Profile struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	BusinessName string          `json:"business_name"`
	FullName     string          `json:"full_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Country      string          `json:"country"`
	CurrencyCode string          `json:"currency_code"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Default is what a user without a saved profile sees.
func Default(userID uuid.UUID, email string) Profile {
	return Profile{
		UserID:       userID,
		Email:        email,
		CurrencyCode: "USD",
		ExchangeRate: decimal.NewFromInt(1),
	}
}

type Input struct {
	BusinessName string          `json:"business_name"`
	FullName     string          `json:"full_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Country      string          `json:"country"`
	CurrencyCode string          `json:"currency_code"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

var ErrInvalid = errors.New("profiles: invalid input")

func (in Input) Normalize() Input {
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Country = strings.TrimSpace(in.Country)
	in.CurrencyCode = strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	if in.CurrencyCode == "" {
		in.CurrencyCode = "USD"
	}
	if in.ExchangeRate.IsZero() {
		in.ExchangeRate = decimal.NewFromInt(1)
	}
	return in
}

func (in Input) Validate() error {
	if len(in.CurrencyCode) != 3 {
		return errors.Join(ErrInvalid, errors.New("currency_code must be a 3-letter code"))
	}
	if !in.ExchangeRate.IsPositive() {
		return errors.Join(ErrInvalid, errors.New("exchange_rate must be > 0"))
	}
	return nil
}

type Store interface {
	// Get returns nil when the user has not saved a profile yet.
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Upsert(ctx context.Context, userID uuid.UUID, in Input) (*Profile, error)
}
