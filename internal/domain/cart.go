package domain

import "time"

// CartItem is one (product, quantity) line in a user's pending cart.
// FarmerID is captured when the item is added. Name, Unit and PriceCents
// are joined from the catalog on reads; checkout re-reads prices under
// the placing transaction and ignores these.
type CartItem struct {
	UserID     string
	ProductID  string
	FarmerID   string
	Quantity   int
	AddedAt    time.Time
	Name       string
	Unit       string
	PriceCents int64
}
