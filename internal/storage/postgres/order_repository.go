package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmdirect/api/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error) {
	const q = `
SELECT id, farmer_id, name, unit, price_cents, quantity_available, status
FROM products
WHERE id = $1
FOR UPDATE`

	var p domain.Product
	var status string
	err := queryRow(ctx, r.pool, q, productID).
		Scan(&p.ID, &p.FarmerID, &p.Name, &p.Unit, &p.PriceCents, &p.QuantityAvailable, &status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product for update: %w", err)
	}
	p.Status = domain.ProductStatus(status)
	return p, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order, items []domain.OrderItem) error {
	const headerStmt = `
INSERT INTO orders (
	id, user_id, total_cents, payment_method, payment_status, order_status,
	shipping_address, shipping_city, shipping_state, shipping_pincode, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := exec(ctx, r.pool, headerStmt,
		order.ID,
		order.UserID,
		order.TotalCents,
		order.PaymentMethod,
		order.PaymentStatus,
		order.Status,
		order.Shipping.Address,
		order.Shipping.City,
		order.Shipping.State,
		order.Shipping.Pincode,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	const itemStmt = `
INSERT INTO order_items (id, order_id, product_id, quantity, price_per_unit_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range items {
		_, err := exec(ctx, r.pool, itemStmt,
			item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPriceCents, item.TotalCents)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrProductNotFound
			}
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

// DecrementStock subtracts quantity and flips the product to
// out_of_stock in the same statement when it hits zero.
func (r *OrderRepository) DecrementStock(ctx context.Context, productID string, quantity int) error {
	const stmt = `
UPDATE products
SET quantity_available = quantity_available - $2,
    status = CASE WHEN quantity_available - $2 <= 0 THEN 'out_of_stock' ELSE status END
WHERE id = $1 AND quantity_available >= $2`

	tag, err := exec(ctx, r.pool, stmt, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.InsufficientStockError{ProductID: productID, Requested: quantity}
	}
	return nil
}

func (r *OrderRepository) CreatePayment(ctx context.Context, payment domain.Payment) error {
	const stmt = `
INSERT INTO payments (id, order_id, user_id, amount_cents, payment_method, payment_status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := exec(ctx, r.pool, stmt,
		payment.ID, payment.OrderID, payment.UserID, payment.AmountCents,
		payment.Method, payment.Status, payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *OrderRepository) InsertTrackingSteps(ctx context.Context, orderID string, steps domain.TrackingHistory) error {
	const stmt = `
INSERT INTO tracking_steps (order_id, seq, status, description, completed, completed_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	for _, step := range steps {
		_, err := exec(ctx, r.pool, stmt,
			orderID, step.Seq, step.Status, step.Description, step.Completed, step.CompletedAt)
		if err != nil {
			return fmt.Errorf("insert tracking step %d: %w", step.Seq, err)
		}
	}
	return nil
}

func (r *OrderRepository) ClearCart(ctx context.Context, userID string) error {
	const stmt = `DELETE FROM cart_items WHERE user_id = $1`
	if _, err := exec(ctx, r.pool, stmt, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *OrderRepository) CreateNotification(ctx context.Context, n domain.Notification) error {
	const stmt = `
INSERT INTO notifications (id, user_id, title, message, link, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := exec(ctx, r.pool, stmt, n.ID, n.UserID, n.Title, n.Message, n.Link, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *OrderRepository) FarmerUserIDs(ctx context.Context, farmerIDs []string) (map[string]string, error) {
	if len(farmerIDs) == 0 {
		return map[string]string{}, nil
	}

	const q = `SELECT id, user_id FROM farmers WHERE id = ANY($1)`
	rows, err := query(ctx, r.pool, q, farmerIDs)
	if err != nil {
		return nil, fmt.Errorf("farmer user ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(farmerIDs))
	for rows.Next() {
		var farmerID, userID string
		if err := rows.Scan(&farmerID, &userID); err != nil {
			return nil, fmt.Errorf("scan farmer user id: %w", err)
		}
		out[farmerID] = userID
	}
	return out, rows.Err()
}

func (r *OrderRepository) GetOrder(ctx context.Context, userID, orderID string) (domain.Order, []domain.OrderItem, domain.TrackingHistory, error) {
	const q = `
SELECT id, user_id, total_cents, payment_method, payment_status, order_status,
       shipping_address, shipping_city, shipping_state, shipping_pincode, created_at
FROM orders
WHERE id = $1 AND user_id = $2`

	var o domain.Order
	err := queryRow(ctx, r.pool, q, orderID, userID).Scan(
		&o.ID, &o.UserID, &o.TotalCents, &o.PaymentMethod, &o.PaymentStatus, &o.Status,
		&o.Shipping.Address, &o.Shipping.City, &o.Shipping.State, &o.Shipping.Pincode, &o.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return domain.Order{}, nil, nil, domain.ErrOrderNotFound
		}
		return domain.Order{}, nil, nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.orderItems(ctx, orderID)
	if err != nil {
		return domain.Order{}, nil, nil, err
	}
	tracking, err := r.trackingSteps(ctx, orderID, false)
	if err != nil {
		return domain.Order{}, nil, nil, err
	}
	return o, items, tracking, nil
}

func (r *OrderRepository) GetPayment(ctx context.Context, orderID string) (domain.Payment, error) {
	const q = `
SELECT id, order_id, user_id, amount_cents, payment_method, payment_status, created_at
FROM payments
WHERE order_id = $1`

	var p domain.Payment
	err := queryRow(ctx, r.pool, q, orderID).Scan(
		&p.ID, &p.OrderID, &p.UserID, &p.AmountCents, &p.Method, &p.Status, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Payment{}, domain.ErrOrderNotFound
		}
		return domain.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context, userID string) ([]domain.OrderSummary, error) {
	const q = `
SELECT o.id, o.user_id, o.total_cents, o.payment_method, o.payment_status, o.order_status,
       o.shipping_address, o.shipping_city, o.shipping_state, o.shipping_pincode, o.created_at,
       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
FROM orders o
WHERE o.user_id = $1
ORDER BY o.created_at DESC`

	rows, err := query(ctx, r.pool, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.OrderSummary
	for rows.Next() {
		var s domain.OrderSummary
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.TotalCents, &s.PaymentMethod, &s.PaymentStatus, &s.Status,
			&s.Shipping.Address, &s.Shipping.City, &s.Shipping.State, &s.Shipping.Pincode,
			&s.CreatedAt, &s.ItemCount,
		); err != nil {
			return nil, fmt.Errorf("scan order summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *OrderRepository) GetTrackingForUpdate(ctx context.Context, orderID string) (domain.TrackingHistory, error) {
	return r.trackingSteps(ctx, orderID, true)
}

func (r *OrderRepository) CompleteTrackingStep(ctx context.Context, orderID string, step domain.TrackingStep) error {
	const stmt = `
UPDATE tracking_steps
SET completed = TRUE, completed_at = $3, description = $4
WHERE order_id = $1 AND seq = $2`

	tag, err := exec(ctx, r.pool, stmt, orderID, step.Seq, step.CompletedAt, step.Description)
	if err != nil {
		return fmt.Errorf("complete tracking step: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.TrackingStatus) error {
	const stmt = `UPDATE orders SET order_status = $2 WHERE id = $1`

	tag, err := exec(ctx, r.pool, stmt, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) orderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const q = `
SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price_per_unit_cents, oi.total_cents
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = $1
ORDER BY oi.id`

	rows, err := query(ctx, r.pool, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPriceCents, &item.TotalCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *OrderRepository) trackingSteps(ctx context.Context, orderID string, forUpdate bool) (domain.TrackingHistory, error) {
	q := `
SELECT seq, status, description, completed, completed_at
FROM tracking_steps
WHERE order_id = $1
ORDER BY seq`
	if forUpdate {
		q += `
FOR UPDATE`
	}

	rows, err := query(ctx, r.pool, q, orderID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("tracking steps: %w", err)
	}
	defer rows.Close()

	var history domain.TrackingHistory
	for rows.Next() {
		var step domain.TrackingStep
		if err := rows.Scan(&step.Seq, &step.Status, &step.Description, &step.Completed, &step.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan tracking step: %w", err)
		}
		history = append(history, step)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	if len(history) == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return history, nil
}
