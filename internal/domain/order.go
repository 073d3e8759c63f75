package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCOD  PaymentMethod = "cod"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodUPI  PaymentMethod = "upi"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodUPI:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// PaymentStatusFor is pending only for cash on delivery; every other
// method settles at checkout.
func PaymentStatusFor(m PaymentMethod) PaymentStatus {
	if m == PaymentMethodCOD {
		return PaymentStatusPending
	}
	return PaymentStatusCompleted
}

// ShippingInfo is a snapshot of the delivery address taken at checkout.
type ShippingInfo struct {
	Address string
	City    string
	State   string
	Pincode string
}

// Order is a committed purchase. TotalCents and the line item prices are
// snapshots fixed at creation; the header is never deleted, only its
// status advances.
type Order struct {
	ID            string
	UserID        string
	TotalCents    int64
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	Status        TrackingStatus
	Shipping      ShippingInfo
	CreatedAt     time.Time
}

type OrderItem struct {
	ID             string
	OrderID        string
	ProductID      string
	ProductName    string
	Quantity       int
	UnitPriceCents int64
	TotalCents     int64
}

type Payment struct {
	ID          string
	OrderID     string
	UserID      string
	AmountCents int64
	Method      PaymentMethod
	Status      PaymentStatus
	CreatedAt   time.Time
}

// OrderSummary is the list-view projection: header plus item count.
type OrderSummary struct {
	Order
	ItemCount int
}
