package app

import (
	"context"

	"github.com/farmdirect/api/internal/clock"
	"github.com/farmdirect/api/internal/domain"
)

type CartRepository interface {
	UpsertItem(ctx context.Context, item domain.CartItem) error
	RemoveItem(ctx context.Context, userID, productID string) error
	ListItems(ctx context.Context, userID string) ([]domain.CartItem, error)
}

// ProductGetter is the slice of the catalog the cart needs to resolve a
// product and its owning farmer at add time.
type ProductGetter interface {
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
}

type CartService struct {
	repo    CartRepository
	catalog ProductGetter
	clock   clock.Clock
}

func NewCartService(repo CartRepository, catalog ProductGetter, clk clock.Clock) *CartService {
	return &CartService{
		repo:    repo,
		catalog: catalog,
		clock:   clk,
	}
}

// AddItem puts quantity of a product in the user's cart, replacing any
// existing quantity for the same product. Stock is not reserved here;
// availability is enforced at checkout.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, domain.ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartItem{}, err
	}

	item := domain.CartItem{
		UserID:     userID,
		ProductID:  product.ID,
		FarmerID:   product.FarmerID,
		Quantity:   quantity,
		AddedAt:    s.clock.Now(),
		Name:       product.Name,
		Unit:       product.Unit,
		PriceCents: product.PriceCents,
	}
	if err := s.repo.UpsertItem(ctx, item); err != nil {
		return domain.CartItem{}, err
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) error {
	return s.repo.RemoveItem(ctx, userID, productID)
}

func (s *CartService) ListItems(ctx context.Context, userID string) ([]domain.CartItem, error) {
	return s.repo.ListItems(ctx, userID)
}
