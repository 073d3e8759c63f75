package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/farmdirect/api/internal/domain"
)

const (
	codeMethodNotAllowed      = "METHOD_NOT_ALLOWED"
	codeNotFound              = "NOT_FOUND"
	codeInvalidRequestBody    = "INVALID_REQUEST_BODY"
	codeUnauthenticated       = "UNAUTHENTICATED"
	codeForbidden             = "FORBIDDEN"
	codeEmptyOrder            = "EMPTY_ORDER"
	codeInvalidItem           = "INVALID_ITEM"
	codeInvalidQuantity       = "INVALID_QUANTITY"
	codeInvalidPrice          = "INVALID_PRICE"
	codeInsufficientStock     = "INSUFFICIENT_STOCK"
	codeUnknownPaymentMethod  = "UNKNOWN_PAYMENT_METHOD"
	codeTrackingOutOfOrder    = "TRACKING_OUT_OF_ORDER"
	codeTrackingStepCompleted = "TRACKING_STEP_COMPLETED"
	codeUnknownTrackingStatus = "UNKNOWN_TRACKING_STATUS"
	codeEmailTaken            = "EMAIL_TAKEN"
	codeInvalidCredentials    = "INVALID_CREDENTIALS"
	codeFarmerProfileRequired = "FARMER_PROFILE_REQUIRED"
	codeCartItemNotFound      = "CART_ITEM_NOT_FOUND"
	codeInternalError         = "INTERNAL_ERROR"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	ProductID string `json:"product_id,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorResponse(w, status, errorResponse{Error: msg, Code: code})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(resp)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"INTERNAL_ERROR"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps service errors onto the API's error codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeErrorResponse(w, http.StatusConflict, errorResponse{
			Error:     stockErr.Error(),
			Code:      codeInsufficientStock,
			ProductID: stockErr.ProductID,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		writeError(w, http.StatusBadRequest, codeEmptyOrder, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusBadRequest, codeInvalidItem, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrUnknownPaymentMethod):
		writeError(w, http.StatusBadRequest, codeUnknownPaymentMethod, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, domain.ErrCartItemNotFound):
		writeError(w, http.StatusNotFound, codeCartItemNotFound, err.Error())
	case errors.Is(err, domain.ErrTrackingOutOfOrder):
		writeError(w, http.StatusConflict, codeTrackingOutOfOrder, err.Error())
	case errors.Is(err, domain.ErrTrackingStepCompleted):
		writeError(w, http.StatusConflict, codeTrackingStepCompleted, err.Error())
	case errors.Is(err, domain.ErrUnknownTrackingStatus):
		writeError(w, http.StatusBadRequest, codeUnknownTrackingStatus, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, codeEmailTaken, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, err.Error())
	case errors.Is(err, domain.ErrFarmerProfileRequired):
		writeError(w, http.StatusForbidden, codeFarmerProfileRequired, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
