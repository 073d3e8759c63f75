package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrEmptyOrder            = errors.New("order must contain at least one item")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInvalidID             = errors.New("invalid id")
	ErrCartItemNotFound      = errors.New("cart item not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUserNotFound          = errors.New("user not found")
	ErrFarmerProfileRequired = errors.New("farmer profile required")
	ErrUnknownTrackingStatus = errors.New("unknown tracking status")
	ErrTrackingOutOfOrder    = errors.New("previous tracking step not completed")
	ErrTrackingStepCompleted = errors.New("tracking step already completed")
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")
)

// InsufficientStockError names the product that could not cover the
// requested quantity so clients can adjust their cart.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
