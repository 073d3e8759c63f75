package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/farmdirect/api/internal/domain"
)

// CartService is the slice of the cart the handlers need.
type CartService interface {
	AddItem(ctx context.Context, userID, productID string, quantity int) (domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, productID string) error
	ListItems(ctx context.Context, userID string) ([]domain.CartItem, error)
}

// HandleCart serves GET /cart.
func HandleCart(svc CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		items, err := svc.ListItems(r.Context(), identity.UserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]cartItemResponse, 0, len(items))
		var total int64
		for _, item := range items {
			out = append(out, toCartItemResponse(item))
			total += int64(item.Quantity) * item.PriceCents
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cartResponse{Items: out, TotalCents: total})
	}
}

// HandleCartItems serves POST /cart/items and DELETE /cart/items/{productId}.
func HandleCartItems(svc CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodPost:
			var req addCartItemRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if req.ProductID == "" {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "product_id is required")
				return
			}

			item, err := svc.AddItem(r.Context(), identity.UserID, req.ProductID, req.Quantity)
			if err != nil {
				writeDomainError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toCartItemResponse(item))

		case http.MethodDelete:
			productID, ok := parseCartItemPath(r.URL.Path)
			if !ok {
				writeError(w, http.StatusNotFound, codeNotFound, "not found")
				return
			}
			if err := svc.RemoveItem(r.Context(), identity.UserID, productID); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseCartItemPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "cart" || parts[1] != "items" || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	Items      []cartItemResponse `json:"items"`
	TotalCents int64              `json:"total_cents"`
}

type cartItemResponse struct {
	ProductID  string    `json:"product_id"`
	FarmerID   string    `json:"farmer_id"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int       `json:"quantity"`
	AddedAt    time.Time `json:"added_at"`
}

func toCartItemResponse(item domain.CartItem) cartItemResponse {
	return cartItemResponse{
		ProductID:  item.ProductID,
		FarmerID:   item.FarmerID,
		Name:       item.Name,
		Unit:       item.Unit,
		PriceCents: item.PriceCents,
		Quantity:   item.Quantity,
		AddedAt:    item.AddedAt,
	}
}
