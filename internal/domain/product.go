package domain

import "time"

type ProductStatus string

const (
	ProductStatusAvailable  ProductStatus = "available"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

// Product is a farmer's listing. Prices are integer minor units to keep
// order totals exact. QuantityAvailable is mutated only by order commits
// and listing edits; status flips to out_of_stock when it reaches zero.
type Product struct {
	ID                string
	FarmerID          string
	Name              string
	Unit              string
	PriceCents        int64
	QuantityAvailable int
	Status            ProductStatus
	CreatedAt         time.Time
}
