package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmdirect/api/internal/domain"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// UpsertItem replaces the quantity for the product if it is already in
// the cart.
func (r *CartRepository) UpsertItem(ctx context.Context, item domain.CartItem) error {
	const stmt = `
INSERT INTO cart_items (user_id, product_id, farmer_id, quantity, added_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = EXCLUDED.quantity, added_at = EXCLUDED.added_at`

	_, err := exec(ctx, r.pool, stmt,
		item.UserID, item.ProductID, item.FarmerID, item.Quantity, item.AddedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, userID, productID string) error {
	const stmt = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	tag, err := exec(ctx, r.pool, stmt, userID, productID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrCartItemNotFound
		}
		return fmt.Errorf("remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) ListItems(ctx context.Context, userID string) ([]domain.CartItem, error) {
	const q = `
SELECT ci.user_id, ci.product_id, ci.farmer_id, ci.quantity, ci.added_at,
       p.name, p.unit, p.price_cents
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.user_id = $1
ORDER BY ci.added_at DESC`

	rows, err := query(ctx, r.pool, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var out []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.FarmerID, &item.Quantity,
			&item.AddedAt, &item.Name, &item.Unit, &item.PriceCents); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
