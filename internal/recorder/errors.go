package recorder

import (
	"errors"
	"fmt"
)

var (
	ErrNoItems              = errors.New("at least one item is required")
	ErrMissingProduct       = errors.New("item has no product")
	ErrNonPositiveQty       = errors.New("item quantity must be greater than zero")
	ErrNegativePrice        = errors.New("unit price must not be negative")
	ErrNegativeCost         = errors.New("unit cost must not be negative")
	ErrInvalidTaxRate       = errors.New("tax rate must be between 0 and 100")
	ErrNegativeDiscount     = errors.New("discount must not be negative")
	ErrDiscountTooLarge     = errors.New("discount exceeds subtotal plus tax")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrInvalidStatus        = errors.New("unknown sale status")
	ErrUnknownProduct       = errors.New("product not found")
	ErrUnknownCustomer      = errors.New("customer not found")
	ErrServiceNotStockable  = errors.New("services cannot be restocked")
	ErrMissingSupplier      = errors.New("supplier name is required")
)

// ValidationError is returned before anything is written.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, format string, args ...any) error {
	return &ValidationError{Err: err, Details: fmt.Sprintf(format, args...)}
}
