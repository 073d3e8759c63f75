package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmdirect/api/internal/domain"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *AccountRepository) CreateUser(ctx context.Context, user domain.User) error {
	const stmt = `
INSERT INTO users (id, name, email, password_hash, phone, role, address, city, state, pincode, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := exec(ctx, r.pool, stmt,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Phone, user.Role,
		user.Address, user.City, user.State, user.Pincode, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *AccountRepository) CreateFarmer(ctx context.Context, farmer domain.Farmer) error {
	const stmt = `
INSERT INTO farmers (id, user_id, farm_name, farm_location, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := exec(ctx, r.pool, stmt,
		farmer.ID, farmer.UserID, farmer.FarmName, farmer.FarmLocation, farmer.CreatedAt)
	if err != nil {
		return fmt.Errorf("create farmer: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = `
SELECT id, name, email, password_hash, phone, role, address, city, state, pincode, created_at
FROM users
WHERE email = $1`

	var u domain.User
	err := queryRow(ctx, r.pool, q, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role,
		&u.Address, &u.City, &u.State, &u.Pincode, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}
