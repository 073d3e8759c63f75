package app

import (
	"context"

	"github.com/farmdirect/api/internal/clock"
	"github.com/farmdirect/api/internal/domain"
)

type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) error
	GetFarmerByUserID(ctx context.Context, userID string) (domain.Farmer, error)
}

// ProductCache is an optional read-through cache in front of single
// product lookups. Cache failures are treated as misses.
type ProductCache interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Set(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, productID string) error
}

type CatalogService struct {
	repo  CatalogRepository
	cache ProductCache
	clock clock.Clock
}

func NewCatalogService(repo CatalogRepository, cache ProductCache, clk clock.Clock) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		clock: clk,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

// GetProduct reads through the cache when one is configured. Cached
// entries are short-lived; the ordering path never uses them.
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, productID); err == nil && cached != nil {
			return *cached, nil
		}
	}

	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, product)
	}
	return product, nil
}

type CreateProductInput struct {
	Name       string
	Unit       string
	PriceCents int64
	Quantity   int
}

// CreateProduct lists a product under the calling user's farmer profile.
func (s *CatalogService) CreateProduct(ctx context.Context, userID string, in CreateProductInput) (domain.Product, error) {
	if in.PriceCents <= 0 {
		return domain.Product{}, domain.ErrInvalidPrice
	}
	if in.Quantity < 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}

	farmer, err := s.repo.GetFarmerByUserID(ctx, userID)
	if err != nil {
		return domain.Product{}, err
	}

	status := domain.ProductStatusAvailable
	if in.Quantity == 0 {
		status = domain.ProductStatusOutOfStock
	}
	product := domain.Product{
		ID:                newID(),
		FarmerID:          farmer.ID,
		Name:              in.Name,
		Unit:              in.Unit,
		PriceCents:        in.PriceCents,
		QuantityAvailable: in.Quantity,
		Status:            status,
		CreatedAt:         s.clock.Now(),
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}
