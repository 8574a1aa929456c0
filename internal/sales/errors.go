package sales

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a record with the given ID does not exist.
var ErrNotFound = errors.New("not found")

// ErrInsufficientStock is matched by InsufficientStockError.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidQuantity is returned when the requested quantity is not positive.
var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// Kinds of records a NotFoundError can refer to.
const (
	KindUser    = "user"
	KindProduct = "product"
	KindSale    = "sale"
)

// NotFoundError reports a missing user, product or sale.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InsufficientStockError reports a stock check failure.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// notFound converts a store ErrNotFound into a NotFoundError for kind/id and
// wraps anything else.
func notFound(err error, kind, id string) error {
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return fmt.Errorf("failed to read %s %s: %w", kind, id, err)
}
