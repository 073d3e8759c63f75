package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/farmdirect/api/internal/app"
	"github.com/farmdirect/api/internal/domain"
)

// OrderService is the slice of the order engine the handlers need.
type OrderService interface {
	PlaceOrder(ctx context.Context, in app.PlaceOrderInput) (app.PlaceOrderResult, error)
	GetOrder(ctx context.Context, userID, orderID string) (app.OrderDetail, error)
	ListOrders(ctx context.Context, userID string) ([]domain.OrderSummary, error)
	AdvanceTracking(ctx context.Context, orderID string, status domain.TrackingStatus) (domain.TrackingHistory, error)
}

// HandleOrders serves POST /orders (checkout) and GET /orders (list).
func HandleOrders(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodPost:
			placeOrder(w, r, svc, identity.UserID)
		case http.MethodGet:
			listOrders(w, r, svc, identity.UserID)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleOrder serves GET /orders/{id} and POST /orders/{id}/advance.
func HandleOrder(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		orderID, advance, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case advance && r.Method == http.MethodPost:
			advanceTracking(w, r, svc, orderID)
		case !advance && r.Method == http.MethodGet:
			getOrder(w, r, svc, identity.UserID, orderID)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func placeOrder(w http.ResponseWriter, r *http.Request, svc OrderService, userID string) {
	var req placeOrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	items := make([]app.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, app.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	res, err := svc.PlaceOrder(r.Context(), app.PlaceOrderInput{
		UserID: userID,
		Items:  items,
		Shipping: domain.ShippingInfo{
			Address: req.ShippingAddress,
			City:    req.ShippingCity,
			State:   req.ShippingState,
			Pincode: req.ShippingPincode,
		},
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(placeOrderResponse{
		OrderID:       res.Order.ID,
		Status:        string(res.Order.Status),
		PaymentStatus: string(res.Order.PaymentStatus),
		TotalCents:    res.Order.TotalCents,
		Tracking:      trackingResponse(res.Tracking),
	})
}

func listOrders(w http.ResponseWriter, r *http.Request, svc OrderService, userID string) {
	orders, err := svc.ListOrders(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]orderSummaryResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderSummaryResponse{
			ID:            o.ID,
			Status:        string(o.Status),
			PaymentMethod: string(o.PaymentMethod),
			PaymentStatus: string(o.PaymentStatus),
			TotalCents:    o.TotalCents,
			ItemCount:     o.ItemCount,
			CreatedAt:     o.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(listOrdersResponse{Orders: out})
}

func getOrder(w http.ResponseWriter, r *http.Request, svc OrderService, userID, orderID string) {
	detail, err := svc.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]orderItemResponse, 0, len(detail.Items))
	for _, item := range detail.Items {
		items = append(items, orderItemResponse{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(orderDetailResponse{
		ID:            detail.Order.ID,
		Status:        string(detail.Order.Status),
		PaymentMethod: string(detail.Order.PaymentMethod),
		PaymentStatus: string(detail.Order.PaymentStatus),
		TotalCents:    detail.Order.TotalCents,
		Shipping: shippingResponse{
			Address: detail.Order.Shipping.Address,
			City:    detail.Order.Shipping.City,
			State:   detail.Order.Shipping.State,
			Pincode: detail.Order.Shipping.Pincode,
		},
		Items:     items,
		Tracking:  trackingResponse(detail.Tracking),
		CreatedAt: detail.Order.CreatedAt,
	})
}

func advanceTracking(w http.ResponseWriter, r *http.Request, svc OrderService, orderID string) {
	var req advanceTrackingRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "status is required")
		return
	}

	tracking, err := svc.AdvanceTracking(r.Context(), orderID, domain.TrackingStatus(req.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(advanceTrackingResponse{
		OrderID:  orderID,
		Status:   string(tracking.CurrentStatus()),
		Tracking: trackingResponse(tracking),
	})
}

func parseOrderPath(path string) (orderID string, advance bool, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[0] == "orders" && parts[1] != "":
		return parts[1], false, true
	case len(parts) == 3 && parts[0] == "orders" && parts[1] != "" && parts[2] == "advance":
		return parts[1], true, true
	}
	return "", false, false
}

type placeOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	ShippingAddress string             `json:"shipping_address"`
	ShippingCity    string             `json:"shipping_city"`
	ShippingState   string             `json:"shipping_state"`
	ShippingPincode string             `json:"shipping_pincode"`
	PaymentMethod   string             `json:"payment_method"`
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type placeOrderResponse struct {
	OrderID       string                 `json:"order_id"`
	Status        string                 `json:"status"`
	PaymentStatus string                 `json:"payment_status"`
	TotalCents    int64                  `json:"total_cents"`
	Tracking      []trackingStepResponse `json:"tracking"`
}

type listOrdersResponse struct {
	Orders []orderSummaryResponse `json:"orders"`
}

type orderSummaryResponse struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	TotalCents    int64     `json:"total_cents"`
	ItemCount     int       `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type orderDetailResponse struct {
	ID            string                 `json:"id"`
	Status        string                 `json:"status"`
	PaymentMethod string                 `json:"payment_method"`
	PaymentStatus string                 `json:"payment_status"`
	TotalCents    int64                  `json:"total_cents"`
	Shipping      shippingResponse       `json:"shipping"`
	Items         []orderItemResponse    `json:"items"`
	Tracking      []trackingStepResponse `json:"tracking"`
	CreatedAt     time.Time              `json:"created_at"`
}

type shippingResponse struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type orderItemResponse struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

type advanceTrackingRequest struct {
	Status string `json:"status"`
}

type advanceTrackingResponse struct {
	OrderID  string                 `json:"order_id"`
	Status   string                 `json:"status"`
	Tracking []trackingStepResponse `json:"tracking"`
}

type trackingStepResponse struct {
	Seq         int        `json:"seq"`
	Status      string     `json:"status"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func trackingResponse(history domain.TrackingHistory) []trackingStepResponse {
	out := make([]trackingStepResponse, 0, len(history))
	for _, step := range history {
		out = append(out, trackingStepResponse{
			Seq:         step.Seq,
			Status:      string(step.Status),
			Description: step.Description,
			Completed:   step.Completed,
			CompletedAt: step.CompletedAt,
		})
	}
	return out
}
