package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/shopdesk/internal/domain/inventory"
)

type PaymentMethod string

const (
	PayCash    PaymentMethod = "cash"
	PayCard    PaymentMethod = "card"
	PayCheck   PaymentMethod = "check"
	PayDigital PaymentMethod = "digital"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCard, PayCheck, PayDigital:
		return true
	}
	return false
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Sale is the header of an invoice. TotalAmount always equals
// Subtotal + TaxAmount - DiscountAmount.
type Sale struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	CustomerID     *uuid.UUID      `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	InvoiceNumber  string          `json:"invoice_number"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Status         Status          `json:"status"`
	Notes          string          `json:"notes"`
	SaleDate       time.Time       `json:"sale_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Item struct {
	ID          uuid.UUID       `json:"id"`
	SaleID      uuid.UUID       `json:"sale_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	SaleDate    time.Time       `json:"sale_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewItem is a priced line ready to be stored. IsService lines skip stock.
type NewItem struct {
	ProductID  uuid.UUID
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	IsService  bool
}

// NewSale carries fully computed values; the store does no arithmetic on money.
type NewSale struct {
	CustomerID     *uuid.UUID
	InvoiceNumber  string
	Subtotal       decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PaymentMethod  PaymentMethod
	Notes          string
	SaleDate       time.Time
	Items          []NewItem
}

// HeaderUpdate replaces the editable header fields of a sale.
type HeaderUpdate struct {
	CustomerID     *uuid.UUID
	PaymentMethod  PaymentMethod
	Status         Status
	Notes          string
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
}

// StockNote is the audit note of a sale line.
func StockNote(invoice string) string { return "Sale: " + invoice }

type Store interface {
	List(ctx context.Context, userID uuid.UUID) ([]Sale, error)
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]Sale, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Sale, error)
	Items(ctx context.Context, userID, saleID uuid.UUID) ([]Item, error)
	ItemsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]Item, error)
	// Create writes header, items, stock changes and audit rows atomically.
	Create(ctx context.Context, userID uuid.UUID, s NewSale) (*Sale, []inventory.Adjusted, error)
	Update(ctx context.Context, userID, id uuid.UUID, u HeaderUpdate) (*Sale, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
