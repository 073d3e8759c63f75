package app

import (
	"context"
	"errors"

	"github.com/farmdirect/api/internal/domain"
)

// fakeOrderRepo keeps all order state in memory. WithTx snapshots the
// maps before running fn and restores them when fn fails, so tests can
// assert that a failed placement leaves nothing behind.
type fakeOrderRepo struct {
	products      map[string]domain.Product
	orders        map[string]domain.Order
	orderItems    map[string][]domain.OrderItem
	payments      map[string]domain.Payment
	tracking      map[string]domain.TrackingHistory
	cartItems     map[string][]string
	notifications []domain.Notification
	farmerUsers   map[string]string
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		products:    make(map[string]domain.Product),
		orders:      make(map[string]domain.Order),
		orderItems:  make(map[string][]domain.OrderItem),
		payments:    make(map[string]domain.Payment),
		tracking:    make(map[string]domain.TrackingHistory),
		cartItems:   make(map[string][]string),
		farmerUsers: make(map[string]string),
	}
}

func (r *fakeOrderRepo) addProduct(p domain.Product) {
	if p.Status == "" {
		p.Status = domain.ProductStatusAvailable
	}
	r.products[p.ID] = p
}

func (r *fakeOrderRepo) snapshot() *fakeOrderRepo {
	s := newFakeOrderRepo()
	for k, v := range r.products {
		s.products[k] = v
	}
	for k, v := range r.orders {
		s.orders[k] = v
	}
	for k, v := range r.orderItems {
		s.orderItems[k] = append([]domain.OrderItem(nil), v...)
	}
	for k, v := range r.payments {
		s.payments[k] = v
	}
	for k, v := range r.tracking {
		s.tracking[k] = append(domain.TrackingHistory(nil), v...)
	}
	for k, v := range r.cartItems {
		s.cartItems[k] = append([]string(nil), v...)
	}
	s.notifications = append([]domain.Notification(nil), r.notifications...)
	for k, v := range r.farmerUsers {
		s.farmerUsers[k] = v
	}
	return s
}

func (r *fakeOrderRepo) restore(s *fakeOrderRepo) {
	r.products = s.products
	r.orders = s.orders
	r.orderItems = s.orderItems
	r.payments = s.payments
	r.tracking = s.tracking
	r.cartItems = s.cartItems
	r.notifications = s.notifications
	r.farmerUsers = s.farmerUsers
}

func (r *fakeOrderRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	before := r.snapshot()
	if err := fn(ctx); err != nil {
		r.restore(before)
		return err
	}
	return nil
}

func (r *fakeOrderRepo) GetProductForUpdate(_ context.Context, productID string) (domain.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order domain.Order, items []domain.OrderItem) error {
	r.orders[order.ID] = order
	r.orderItems[order.ID] = append([]domain.OrderItem(nil), items...)
	return nil
}

func (r *fakeOrderRepo) DecrementStock(_ context.Context, productID string, quantity int) error {
	p, ok := r.products[productID]
	if !ok || p.QuantityAvailable < quantity {
		return &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: p.QuantityAvailable}
	}
	p.QuantityAvailable -= quantity
	if p.QuantityAvailable <= 0 {
		p.Status = domain.ProductStatusOutOfStock
	}
	r.products[productID] = p
	return nil
}

func (r *fakeOrderRepo) CreatePayment(_ context.Context, payment domain.Payment) error {
	if _, exists := r.payments[payment.OrderID]; exists {
		return errors.New("duplicate payment")
	}
	r.payments[payment.OrderID] = payment
	return nil
}

func (r *fakeOrderRepo) InsertTrackingSteps(_ context.Context, orderID string, steps domain.TrackingHistory) error {
	r.tracking[orderID] = append(domain.TrackingHistory(nil), steps...)
	return nil
}

func (r *fakeOrderRepo) ClearCart(_ context.Context, userID string) error {
	delete(r.cartItems, userID)
	return nil
}

func (r *fakeOrderRepo) CreateNotification(_ context.Context, n domain.Notification) error {
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeOrderRepo) FarmerUserIDs(_ context.Context, farmerIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(farmerIDs))
	for _, id := range farmerIDs {
		if userID, ok := r.farmerUsers[id]; ok {
			out[id] = userID
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetOrder(_ context.Context, userID, orderID string) (domain.Order, []domain.OrderItem, domain.TrackingHistory, error) {
	order, ok := r.orders[orderID]
	if !ok || order.UserID != userID {
		return domain.Order{}, nil, nil, domain.ErrOrderNotFound
	}
	return order, r.orderItems[orderID], r.tracking[orderID], nil
}

func (r *fakeOrderRepo) GetPayment(_ context.Context, orderID string) (domain.Payment, error) {
	payment, ok := r.payments[orderID]
	if !ok {
		return domain.Payment{}, domain.ErrOrderNotFound
	}
	return payment, nil
}

func (r *fakeOrderRepo) ListOrders(_ context.Context, userID string) ([]domain.OrderSummary, error) {
	var out []domain.OrderSummary
	for id, order := range r.orders {
		if order.UserID != userID {
			continue
		}
		out = append(out, domain.OrderSummary{Order: order, ItemCount: len(r.orderItems[id])})
	}
	return out, nil
}

func (r *fakeOrderRepo) GetTrackingForUpdate(_ context.Context, orderID string) (domain.TrackingHistory, error) {
	history, ok := r.tracking[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return append(domain.TrackingHistory(nil), history...), nil
}

func (r *fakeOrderRepo) CompleteTrackingStep(_ context.Context, orderID string, step domain.TrackingStep) error {
	history, ok := r.tracking[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	for i := range history {
		if history[i].Seq == step.Seq {
			history[i] = step
			return nil
		}
	}
	return domain.ErrOrderNotFound
}

func (r *fakeOrderRepo) UpdateOrderStatus(_ context.Context, orderID string, status domain.TrackingStatus) error {
	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	r.orders[orderID] = order
	return nil
}
