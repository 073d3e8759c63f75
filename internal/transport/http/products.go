package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/farmdirect/api/internal/app"
	"github.com/farmdirect/api/internal/domain"
)

// CatalogService is the slice of the catalog the product handlers need.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	CreateProduct(ctx context.Context, userID string, in app.CreateProductInput) (domain.Product, error)
}

// HandleProducts serves GET /products and POST /products.
func HandleProducts(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			products, err := svc.ListProducts(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			out := make([]productResponse, 0, len(products))
			for _, p := range products {
				out = append(out, toProductResponse(p))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(listProductsResponse{Products: out})

		case http.MethodPost:
			identity, ok := requireIdentity(w, r)
			if !ok {
				return
			}

			var req createProductRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if err := req.validate(); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
				return
			}

			product, err := svc.CreateProduct(r.Context(), identity.UserID, app.CreateProductInput{
				Name:       req.Name,
				Unit:       req.Unit,
				PriceCents: req.PriceCents,
				Quantity:   req.Quantity,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toProductResponse(product))

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleProduct serves GET /products/{id}.
func HandleProduct(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		productID, ok := parseProductPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				writeError(w, http.StatusNotFound, codeNotFound, err.Error())
				return
			}
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toProductResponse(product))
	}
}

func parseProductPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "products" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type createProductRequest struct {
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

func (r createProductRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.PriceCents <= 0 {
		return domain.ErrInvalidPrice
	}
	if r.Quantity < 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}

type listProductsResponse struct {
	Products []productResponse `json:"products"`
}

type productResponse struct {
	ID                string    `json:"id"`
	FarmerID          string    `json:"farmer_id"`
	Name              string    `json:"name"`
	Unit              string    `json:"unit"`
	PriceCents        int64     `json:"price_cents"`
	QuantityAvailable int       `json:"quantity_available"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:                p.ID,
		FarmerID:          p.FarmerID,
		Name:              p.Name,
		Unit:              p.Unit,
		PriceCents:        p.PriceCents,
		QuantityAvailable: p.QuantityAvailable,
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt,
	}
}
