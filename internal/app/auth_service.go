package app

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/farmdirect/api/internal/auth"
	"github.com/farmdirect/api/internal/clock"
	"github.com/farmdirect/api/internal/domain"
)

type AccountRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateUser(ctx context.Context, user domain.User) error
	CreateFarmer(ctx context.Context, farmer domain.Farmer) error
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type AuthService struct {
	repo   AccountRepository
	clock  clock.Clock
	issuer *auth.Issuer
}

func NewAuthService(repo AccountRepository, clk clock.Clock, issuer *auth.Issuer) *AuthService {
	return &AuthService{
		repo:   repo,
		clock:  clk,
		issuer: issuer,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     domain.UserRole
	Address  string
	City     string
	State    string
	Pincode  string

	// Farm fields apply when Role is farmer.
	FarmName     string
	FarmLocation string
}

type AuthResult struct {
	User  domain.User
	Token string
}

// Signup registers a user, and for the farmer role its selling profile,
// in one transaction, then issues a token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, err
	}

	role := in.Role
	if role == "" {
		role = domain.RoleConsumer
	}
	user := domain.User{
		ID:           newID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		Role:         role,
		Address:      in.Address,
		City:         in.City,
		State:        in.State,
		Pincode:      in.Pincode,
		CreatedAt:    s.clock.Now(),
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateUser(txCtx, user); err != nil {
			return err
		}
		if role == domain.RoleFarmer {
			return s.repo.CreateFarmer(txCtx, domain.Farmer{
				ID:           newID(),
				UserID:       user.ID,
				FarmName:     in.FarmName,
				FarmLocation: in.FarmLocation,
				CreatedAt:    user.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a token. Unknown emails and bad
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}
