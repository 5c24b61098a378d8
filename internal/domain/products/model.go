package products

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeProduct Type = "product"
	TypeService Type = "service"
)

type Product struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Barcode           string          `json:"barcode"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	ProductType       Type            `json:"product_type"`
	IsService         bool            `json:"is_service"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// IsLowStock is never true for services: they have no stock to run out of.
func (p Product) IsLowStock() bool {
	return !p.IsService && p.StockQuantity <= p.LowStockThreshold
}

// Input is the editable part of a product.
type Input struct {
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Barcode           string          `json:"barcode"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	ProductType       Type            `json:"product_type"`
}

var ErrInvalid = errors.New("products: invalid input")

// Normalize trims text fields and zeroes stock fields of services.
func (in Input) Normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Category = strings.TrimSpace(in.Category)
	if in.ProductType == "" {
		in.ProductType = TypeProduct
	}
	if in.ProductType == TypeService {
		in.StockQuantity = 0
		in.LowStockThreshold = 0
	}
	return in
}

func (in Input) Validate() error {
	switch {
	case in.Name == "":
		return errors.Join(ErrInvalid, errors.New("name is required"))
	case in.ProductType != TypeProduct && in.ProductType != TypeService:
		return errors.Join(ErrInvalid, errors.New("product_type must be product or service"))
	case in.Price.IsNegative():
		return errors.Join(ErrInvalid, errors.New("price must be >= 0"))
	case in.Cost.IsNegative():
		return errors.Join(ErrInvalid, errors.New("cost must be >= 0"))
	case in.StockQuantity < 0:
		return errors.Join(ErrInvalid, errors.New("stock_quantity must be >= 0"))
	case in.LowStockThreshold < 0:
		return errors.Join(ErrInvalid, errors.New("low_stock_threshold must be >= 0"))
	}
	return nil
}

// Store is implemented by Repo and by the in-memory store.
type Store interface {
	List(ctx context.Context, userID uuid.UUID) ([]Product, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Product, error)
	GetMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	Create(ctx context.Context, userID uuid.UUID, in Input) (*Product, error)
	Update(ctx context.Context, userID, id uuid.UUID, in Input) (*Product, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Categories(ctx context.Context, userID uuid.UUID) ([]string, error)
	LowStock(ctx context.Context, userID uuid.UUID) ([]Product, error)
}
