package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TxType string

const (
	TxSale       TxType = "sale"
	TxRestock    TxType = "restock"
	TxAdjustment TxType = "adjustment"
)

// Transaction is one row of the stock audit trail. Rows are append-only.
type Transaction struct {
	ID             uuid.UUID           `json:"id"`
	UserID         uuid.UUID           `json:"user_id"`
	ProductID      uuid.UUID           `json:"product_id"`
	ProductName    string              `json:"product_name"`
	Type           TxType              `json:"transaction_type"`
	QuantityChange int                 `json:"quantity_change"`
	QuantityBefore int                 `json:"quantity_before"`
	QuantityAfter  int                 `json:"quantity_after"`
	UnitCost       decimal.NullDecimal `json:"unit_cost"`
	TotalCost      decimal.NullDecimal `json:"total_cost"`
	ReferenceID    *uuid.UUID          `json:"reference_id"`
	Notes          string              `json:"notes"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Movement is a requested stock change for one product.
type Movement struct {
	UserID      uuid.UUID
	ProductID   uuid.UUID
	Delta       int
	Type        TxType
	UnitCost    decimal.NullDecimal
	ReferenceID *uuid.UUID
	Notes       string
	// Guard rejects the movement when it would take stock below zero.
	Guard bool
}

// TotalCost is unit cost times the absolute quantity, when a unit cost is known.
func (m Movement) TotalCost() decimal.NullDecimal {
	if !m.UnitCost.Valid {
		return decimal.NullDecimal{}
	}
	q := m.Delta
	if q < 0 {
		q = -q
	}
	return decimal.NewNullDecimal(m.UnitCost.Decimal.Mul(decimal.NewFromInt(int64(q))))
}

// Adjusted is the outcome of an applied movement.
type Adjusted struct {
	ProductID uuid.UUID
	Name      string
	SKU       string
	Before    int
	After     int
	Threshold int
}

func (a Adjusted) IsLow() bool { return a.After <= a.Threshold }

var (
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	ErrService           = errors.New("inventory: services carry no stock")
	ErrZeroDelta         = errors.New("inventory: quantity change must not be zero")
)

type Store interface {
	List(ctx context.Context, userID uuid.UUID, productID *uuid.UUID) ([]Transaction, error)
}
