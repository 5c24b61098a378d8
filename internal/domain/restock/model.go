package restock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/shopdesk/internal/domain/inventory"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// ErrNotPending is returned when receiving or cancelling an order that has
// already left the pending state.
var ErrNotPending = errors.New("restock: order is not pending")

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	OrderNumber     string          `json:"order_number"`
	SupplierName    string          `json:"supplier_name"`
	SupplierContact string          `json:"supplier_contact"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	Status          Status          `json:"status"`
	OrderDate       time.Time       `json:"order_date"`
	ReceivedDate    *time.Time      `json:"received_date"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Item struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"restock_order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	CreatedAt   time.Time       `json:"created_at"`
}

type NewItem struct {
	ProductID uuid.UUID
	Quantity  int
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal
}

type NewOrder struct {
	OrderNumber     string
	SupplierName    string
	SupplierContact string
	Notes           string
	TotalCost       decimal.Decimal
	OrderDate       time.Time
	Items           []NewItem
}

// CanTransition reports whether an order in state from may move to to.
// Only pending orders move, and never back.
func CanTransition(from, to Status) bool {
	return from == StatusPending && (to == StatusReceived || to == StatusCancelled)
}

func ReceiveNote(orderNumber string) string { return "Restock order received: " + orderNumber }

type Store interface {
	List(ctx context.Context, userID uuid.UUID) ([]Order, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Order, error)
	Items(ctx context.Context, userID, orderID uuid.UUID) ([]Item, error)
	Create(ctx context.Context, userID uuid.UUID, o NewOrder) (*Order, error)
	// Receive increments stock for every item, appends audit rows and marks the
	// order received, all or nothing.
	Receive(ctx context.Context, userID, id uuid.UUID, at time.Time) (*Order, []inventory.Adjusted, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) (*Order, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
