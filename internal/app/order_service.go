package app

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/farmdirect/api/internal/clock"
	"github.com/farmdirect/api/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error)
	CreateOrder(ctx context.Context, order domain.Order, items []domain.OrderItem) error
	DecrementStock(ctx context.Context, productID string, quantity int) error
	CreatePayment(ctx context.Context, payment domain.Payment) error
	InsertTrackingSteps(ctx context.Context, orderID string, steps domain.TrackingHistory) error
	ClearCart(ctx context.Context, userID string) error
	CreateNotification(ctx context.Context, n domain.Notification) error
	FarmerUserIDs(ctx context.Context, farmerIDs []string) (map[string]string, error)
	GetOrder(ctx context.Context, userID, orderID string) (domain.Order, []domain.OrderItem, domain.TrackingHistory, error)
	GetPayment(ctx context.Context, orderID string) (domain.Payment, error)
	ListOrders(ctx context.Context, userID string) ([]domain.OrderSummary, error)
	GetTrackingForUpdate(ctx context.Context, orderID string) (domain.TrackingHistory, error)
	CompleteTrackingStep(ctx context.Context, orderID string, step domain.TrackingStep) error
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.TrackingStatus) error
}

// EventPublisher fans order events out to interested consumers.
// Publishing is best effort and never blocks or fails an order.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

type OrderService struct {
	repo      OrderRepository
	clock     clock.Clock
	publisher EventPublisher
}

func NewOrderService(repo OrderRepository, clk clock.Clock, publisher EventPublisher) *OrderService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &OrderService{
		repo:      repo,
		clock:     clk,
		publisher: publisher,
	}
}

type OrderItemInput struct {
	ProductID string
	Quantity  int
}

type PlaceOrderInput struct {
	UserID        string
	Items         []OrderItemInput
	Shipping      domain.ShippingInfo
	PaymentMethod domain.PaymentMethod
}

type PlaceOrderResult struct {
	Order    domain.Order
	Items    []domain.OrderItem
	Tracking domain.TrackingHistory
}

// PlaceOrder commits a validated cart as one transaction: stock is
// re-read under row locks, prices are snapshotted, the header, line
// items, payment, tracking steps, cart clear and notifications all
// persist together or not at all.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (PlaceOrderResult, error) {
	items, err := mergeItems(in.Items)
	if err != nil {
		return PlaceOrderResult{}, err
	}
	if !domain.ValidPaymentMethod(in.PaymentMethod) {
		return PlaceOrderResult{}, domain.ErrUnknownPaymentMethod
	}

	now := s.clock.Now()
	var result PlaceOrderResult

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order := domain.Order{
			ID:            newID(),
			UserID:        in.UserID,
			PaymentMethod: in.PaymentMethod,
			PaymentStatus: domain.PaymentStatusFor(in.PaymentMethod),
			Status:        domain.TrackingOrderPlaced,
			Shipping:      in.Shipping,
			CreatedAt:     now,
		}

		lines := make([]domain.OrderItem, 0, len(items))
		farmerIDs := make(map[string]struct{})
		var total int64
		for _, item := range items {
			product, err := s.repo.GetProductForUpdate(txCtx, item.ProductID)
			if err != nil {
				return err
			}
			if product.QuantityAvailable < item.Quantity {
				return &domain.InsufficientStockError{
					ProductID: product.ID,
					Requested: item.Quantity,
					Available: product.QuantityAvailable,
				}
			}

			lineTotal := int64(item.Quantity) * product.PriceCents
			lines = append(lines, domain.OrderItem{
				ID:             newID(),
				OrderID:        order.ID,
				ProductID:      product.ID,
				ProductName:    product.Name,
				Quantity:       item.Quantity,
				UnitPriceCents: product.PriceCents,
				TotalCents:     lineTotal,
			})
			total += lineTotal
			farmerIDs[product.FarmerID] = struct{}{}
		}
		order.TotalCents = total

		if err := s.repo.CreateOrder(txCtx, order, lines); err != nil {
			return err
		}
		for _, line := range lines {
			if err := s.repo.DecrementStock(txCtx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		if err := s.repo.CreatePayment(txCtx, domain.Payment{
			ID:          newID(),
			OrderID:     order.ID,
			UserID:      in.UserID,
			AmountCents: total,
			Method:      in.PaymentMethod,
			Status:      order.PaymentStatus,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		tracking := domain.NewTrackingHistory(now)
		if err := s.repo.InsertTrackingSteps(txCtx, order.ID, tracking); err != nil {
			return err
		}

		if err := s.repo.ClearCart(txCtx, in.UserID); err != nil {
			return err
		}

		if err := s.notifyOrderPlaced(txCtx, order, farmerIDs, now); err != nil {
			return err
		}

		result = PlaceOrderResult{Order: order, Items: lines, Tracking: tracking}
		return nil
	})
	if err != nil {
		return PlaceOrderResult{}, err
	}

	go s.publishEvent("order.placed", orderEvent{
		OrderID:    result.Order.ID,
		UserID:     result.Order.UserID,
		Status:     string(result.Order.Status),
		TotalCents: result.Order.TotalCents,
		OccurredAt: now,
	})

	return result, nil
}

// notifyOrderPlaced writes one notification for the buyer and one per
// distinct farmer owning a product in the order.
func (s *OrderService) notifyOrderPlaced(ctx context.Context, order domain.Order, farmerIDs map[string]struct{}, now time.Time) error {
	if err := s.repo.CreateNotification(ctx, domain.Notification{
		ID:        newID(),
		UserID:    order.UserID,
		Title:     "Order Placed Successfully",
		Message:   "Your order #" + order.ID + " has been placed successfully.",
		Link:      "/track-order/" + order.ID,
		CreatedAt: now,
	}); err != nil {
		return err
	}

	ids := make([]string, 0, len(farmerIDs))
	for id := range farmerIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	userIDs, err := s.repo.FarmerUserIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, farmerID := range ids {
		userID, ok := userIDs[farmerID]
		if !ok {
			continue
		}
		if err := s.repo.CreateNotification(ctx, domain.Notification{
			ID:        newID(),
			UserID:    userID,
			Title:     "New Order Received",
			Message:   "You have received a new order #" + order.ID + ".",
			Link:      "/farmer/orders/" + order.ID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
	}
	return nil
}

type OrderDetail struct {
	Order    domain.Order
	Items    []domain.OrderItem
	Tracking domain.TrackingHistory
	Payment  domain.Payment
}

// GetOrder returns the full order view for its owner. A foreign or
// unknown order id is ErrOrderNotFound either way.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (OrderDetail, error) {
	order, items, tracking, err := s.repo.GetOrder(ctx, userID, orderID)
	if err != nil {
		return OrderDetail{}, err
	}
	payment, err := s.repo.GetPayment(ctx, order.ID)
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{Order: order, Items: items, Tracking: tracking, Payment: payment}, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.OrderSummary, error) {
	return s.repo.ListOrders(ctx, userID)
}

// AdvanceTracking completes the named fulfillment step for an order.
// The tracking rows are locked for the duration so concurrent
// advancements serialize and the prefix invariant holds.
func (s *OrderService) AdvanceTracking(ctx context.Context, orderID string, status domain.TrackingStatus) (domain.TrackingHistory, error) {
	now := s.clock.Now()
	var tracking domain.TrackingHistory

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		history, err := s.repo.GetTrackingForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		step, err := history.Advance(status, now)
		if err != nil {
			return err
		}
		if err := s.repo.CompleteTrackingStep(txCtx, orderID, step); err != nil {
			return err
		}
		if err := s.repo.UpdateOrderStatus(txCtx, orderID, status); err != nil {
			return err
		}
		tracking = history
		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.publishEvent("order.status_advanced", orderEvent{
		OrderID:    orderID,
		Status:     string(status),
		OccurredAt: now,
	})

	return tracking, nil
}

type orderEvent struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id,omitempty"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (s *OrderService) publishEvent(routingKey string, event orderEvent) {
	if err := s.publisher.Publish(context.Background(), routingKey, event); err != nil {
		log.Printf("WARN: publish %s for order %s: %v", routingKey, event.OrderID, err)
	}
}

// mergeItems validates quantities and folds duplicate product lines into
// one so stock is checked against the cumulative quantity.
func mergeItems(items []OrderItemInput) ([]OrderItemInput, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	merged := make([]OrderItemInput, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			return nil, domain.ErrProductNotFound
		}
		if item.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}
