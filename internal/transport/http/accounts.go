package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/farmdirect/api/internal/app"
	"github.com/farmdirect/api/internal/domain"
)

// AccountService is the slice of the auth service the account handlers need.
type AccountService interface {
	Signup(ctx context.Context, in app.SignupInput) (app.AuthResult, error)
	Login(ctx context.Context, email, password string) (app.AuthResult, error)
}

// HandleSignup returns an HTTP handler for user registration.
func HandleSignup(svc AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req signupRequest
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

		res, err := svc.Signup(r.Context(), app.SignupInput{
			Name:         req.Name,
			Email:        req.Email,
			Password:     req.Password,
			Phone:        req.Phone,
			Role:         domain.UserRole(req.Role),
			Address:      req.Address,
			City:         req.City,
			State:        req.State,
			Pincode:      req.Pincode,
			FarmName:     req.FarmName,
			FarmLocation: req.FarmLocation,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeAuthResponse(w, http.StatusCreated, res)
	}
}

// HandleLogin returns an HTTP handler for credential login.
func HandleLogin(svc AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req loginRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "email and password are required")
			return
		}

		res, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeAuthResponse(w, http.StatusOK, res)
	}
}

type signupRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	FarmName     string `json:"farm_name"`
	FarmLocation string `json:"farm_location"`
}

func (r signupRequest) validate() error {
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return errors.New("name, email and password are required")
	}
	switch r.Role {
	case "", string(domain.RoleConsumer), string(domain.RoleFarmer):
		return nil
	}
	return errors.New("role must be consumer or farmer")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func writeAuthResponse(w http.ResponseWriter, status int, res app.AuthResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(authResponse{
		Token: res.Token,
		User: userResponse{
			ID:    res.User.ID,
			Name:  res.User.Name,
			Email: res.User.Email,
			Role:  string(res.User.Role),
		},
	})
}
