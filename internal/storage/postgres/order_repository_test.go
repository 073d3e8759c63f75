package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/farmdirect/api/internal/app"
	"github.com/farmdirect/api/internal/clock"
	"github.com/farmdirect/api/internal/domain"
	"github.com/farmdirect/api/internal/testutil"
)

func TestOrderRepository_PlaceOrderFlow(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	buyerID := testutil.InsertUser(t, ctx, pool, "Asha", "asha@example.com", domain.RoleConsumer)
	farmerID, farmerUserID := testutil.InsertFarmer(t, ctx, pool, "Ravi", "ravi@example.com")
	productA := testutil.InsertProduct(t, ctx, pool, farmerID, "Basmati Rice", 4500, 20)
	productB := testutil.InsertProduct(t, ctx, pool, farmerID, "Fresh Tomatoes", 3000, 10)
	testutil.InsertCartItem(t, ctx, pool, buyerID, productA, farmerID, 10)
	testutil.InsertCartItem(t, ctx, pool, buyerID, productB, farmerID, 5)

	now := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	repo := NewOrderRepository(pool)
	svc := app.NewOrderService(repo, clock.NewFixed(now), nil)

	res, err := svc.PlaceOrder(ctx, app.PlaceOrderInput{
		UserID: buyerID,
		Items: []app.OrderItemInput{
			{ProductID: productA, Quantity: 10},
			{ProductID: productB, Quantity: 5},
		},
		Shipping:      domain.ShippingInfo{Address: "12 Farm Lane", City: "Thane", State: "MH", Pincode: "400601"},
		PaymentMethod: domain.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if res.Order.TotalCents != 60000 {
		t.Fatalf("expected total 60000, got %d", res.Order.TotalCents)
	}

	order, items, tracking, err := repo.GetOrder(ctx, buyerID, res.Order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.TotalCents != 60000 || order.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.Shipping.City != "Thane" {
		t.Fatalf("unexpected shipping: %+v", order.Shipping)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if len(tracking) != 5 || !tracking[0].Completed || tracking[1].Completed {
		t.Fatalf("unexpected tracking: %+v", tracking)
	}

	payment, err := repo.GetPayment(ctx, res.Order.ID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.AmountCents != 60000 || payment.Method != domain.PaymentMethodCOD {
		t.Fatalf("unexpected payment: %+v", payment)
	}

	catalog := NewCatalogRepository(pool)
	product, err := catalog.GetProduct(ctx, productA)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.QuantityAvailable != 10 || product.Status != domain.ProductStatusAvailable {
		t.Fatalf("unexpected product after decrement: %+v", product)
	}

	cart := NewCartRepository(pool)
	cartItems, err := cart.ListItems(ctx, buyerID)
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(cartItems) != 0 {
		t.Fatalf("expected cart cleared, got %d items", len(cartItems))
	}

	notifications := NewNotificationRepository(pool)
	buyerNotes, err := notifications.ListByUser(ctx, buyerID)
	if err != nil {
		t.Fatalf("list buyer notifications: %v", err)
	}
	if len(buyerNotes) != 1 || buyerNotes[0].Title != "Order Placed Successfully" {
		t.Fatalf("unexpected buyer notifications: %+v", buyerNotes)
	}
	farmerNotes, err := notifications.ListByUser(ctx, farmerUserID)
	if err != nil {
		t.Fatalf("list farmer notifications: %v", err)
	}
	if len(farmerNotes) != 1 || farmerNotes[0].Title != "New Order Received" {
		t.Fatalf("unexpected farmer notifications: %+v", farmerNotes)
	}

	summaries, err := repo.ListOrders(ctx, buyerID)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ItemCount != 2 {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
}

func TestOrderRepository_InsufficientStockRollsBack(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	buyerID := testutil.InsertUser(t, ctx, pool, "Asha", "asha@example.com", domain.RoleConsumer)
	farmerID, _ := testutil.InsertFarmer(t, ctx, pool, "Ravi", "ravi@example.com")
	productA := testutil.InsertProduct(t, ctx, pool, farmerID, "Rice", 4500, 20)
	productB := testutil.InsertProduct(t, ctx, pool, farmerID, "Okra", 2000, 3)
	testutil.InsertCartItem(t, ctx, pool, buyerID, productA, farmerID, 2)

	repo := NewOrderRepository(pool)
	svc := app.NewOrderService(repo, clock.NewSystem(), nil)

	_, err := svc.PlaceOrder(ctx, app.PlaceOrderInput{
		UserID: buyerID,
		Items: []app.OrderItemInput{
			{ProductID: productA, Quantity: 2},
			{ProductID: productB, Quantity: 5},
		},
		PaymentMethod: domain.PaymentMethodUPI,
	})

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != productB || stockErr.Available != 3 {
		t.Fatalf("unexpected error detail: %+v", stockErr)
	}

	catalog := NewCatalogRepository(pool)
	product, err := catalog.GetProduct(ctx, productA)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.QuantityAvailable != 20 {
		t.Fatalf("expected stock untouched, got %d", product.QuantityAvailable)
	}

	summaries, err := repo.ListOrders(ctx, buyerID)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected no orders, got %d", len(summaries))
	}

	cart := NewCartRepository(pool)
	cartItems, err := cart.ListItems(ctx, buyerID)
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(cartItems) != 1 {
		t.Fatalf("expected cart untouched, got %d items", len(cartItems))
	}
}

// Two buyers race for the last unit. The row lock serializes them so
// exactly one order commits.
func TestOrderRepository_ConcurrentPlacement(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	buyer1 := testutil.InsertUser(t, ctx, pool, "Asha", "asha@example.com", domain.RoleConsumer)
	buyer2 := testutil.InsertUser(t, ctx, pool, "Binod", "binod@example.com", domain.RoleConsumer)
	farmerID, _ := testutil.InsertFarmer(t, ctx, pool, "Ravi", "ravi@example.com")
	productID := testutil.InsertProduct(t, ctx, pool, farmerID, "Last Mango Crate", 9900, 1)

	repo := NewOrderRepository(pool)
	svc := app.NewOrderService(repo, clock.NewSystem(), nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, buyer := range []string{buyer1, buyer2} {
		wg.Add(1)
		go func(i int, buyer string) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(ctx, app.PlaceOrderInput{
				UserID:        buyer,
				Items:         []app.OrderItemInput{{ProductID: productID, Quantity: 1}},
				PaymentMethod: domain.PaymentMethodUPI,
			})
		}(i, buyer)
	}
	wg.Wait()

	var okCount, stockCount int
	for _, err := range errs {
		var stockErr *domain.InsufficientStockError
		switch {
		case err == nil:
			okCount++
		case errors.As(err, &stockErr):
			stockCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || stockCount != 1 {
		t.Fatalf("expected exactly one success, got %d successes and %d stock failures", okCount, stockCount)
	}

	catalog := NewCatalogRepository(pool)
	product, err := catalog.GetProduct(ctx, productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.QuantityAvailable != 0 {
		t.Fatalf("expected stock 0, got %d", product.QuantityAvailable)
	}
	if product.Status != domain.ProductStatusOutOfStock {
		t.Fatalf("expected out_of_stock, got %s", product.Status)
	}
}

func TestOrderRepository_AdvanceTracking(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	buyerID := testutil.InsertUser(t, ctx, pool, "Asha", "asha@example.com", domain.RoleConsumer)
	farmerID, _ := testutil.InsertFarmer(t, ctx, pool, "Ravi", "ravi@example.com")
	productID := testutil.InsertProduct(t, ctx, pool, farmerID, "Rice", 4500, 5)

	repo := NewOrderRepository(pool)
	svc := app.NewOrderService(repo, clock.NewSystem(), nil)

	res, err := svc.PlaceOrder(ctx, app.PlaceOrderInput{
		UserID:        buyerID,
		Items:         []app.OrderItemInput{{ProductID: productID, Quantity: 1}},
		PaymentMethod: domain.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	orderID := res.Order.ID

	// Skipping ahead is rejected before anything is written.
	if _, err := svc.AdvanceTracking(ctx, orderID, domain.TrackingOutForDelivery); !errors.Is(err, domain.ErrTrackingOutOfOrder) {
		t.Fatalf("expected ErrTrackingOutOfOrder, got %v", err)
	}

	for _, status := range []domain.TrackingStatus{
		domain.TrackingOrderConfirmed,
		domain.TrackingPreparing,
		domain.TrackingOutForDelivery,
		domain.TrackingDelivered,
	} {
		tracking, err := svc.AdvanceTracking(ctx, orderID, status)
		if err != nil {
			t.Fatalf("advance to %s: %v", status, err)
		}
		if tracking.CurrentStatus() != status {
			t.Fatalf("expected %s, got %s", status, tracking.CurrentStatus())
		}
	}

	// Repeating the final step is a conflict.
	if _, err := svc.AdvanceTracking(ctx, orderID, domain.TrackingDelivered); !errors.Is(err, domain.ErrTrackingStepCompleted) {
		t.Fatalf("expected ErrTrackingStepCompleted, got %v", err)
	}

	order, _, tracking, err := repo.GetOrder(ctx, buyerID, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != domain.TrackingDelivered {
		t.Fatalf("expected Delivered, got %s", order.Status)
	}
	if !tracking.Delivered() {
		t.Fatalf("expected all steps completed: %+v", tracking)
	}
}
