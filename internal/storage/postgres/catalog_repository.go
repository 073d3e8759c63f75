package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmdirect/api/internal/domain"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id, farmer_id, name, unit, price_cents, quantity_available, status, created_at
FROM products
ORDER BY created_at DESC`

	rows, err := query(ctx, r.pool, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.FarmerID, &p.Name, &p.Unit, &p.PriceCents,
			&p.QuantityAvailable, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	const q = `
SELECT id, farmer_id, name, unit, price_cents, quantity_available, status, created_at
FROM products
WHERE id = $1`

	var p domain.Product
	err := queryRow(ctx, r.pool, q, productID).Scan(&p.ID, &p.FarmerID, &p.Name, &p.Unit,
		&p.PriceCents, &p.QuantityAvailable, &p.Status, &p.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, product domain.Product) error {
	const stmt = `
INSERT INTO products (id, farmer_id, name, unit, price_cents, quantity_available, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := exec(ctx, r.pool, stmt,
		product.ID, product.FarmerID, product.Name, product.Unit, product.PriceCents,
		product.QuantityAvailable, product.Status, product.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrFarmerProfileRequired
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetFarmerByUserID(ctx context.Context, userID string) (domain.Farmer, error) {
	const q = `
SELECT id, user_id, farm_name, farm_location, created_at
FROM farmers
WHERE user_id = $1`

	var f domain.Farmer
	err := queryRow(ctx, r.pool, q, userID).Scan(&f.ID, &f.UserID, &f.FarmName, &f.FarmLocation, &f.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return domain.Farmer{}, domain.ErrFarmerProfileRequired
		}
		return domain.Farmer{}, fmt.Errorf("get farmer: %w", err)
	}
	return f, nil
}
