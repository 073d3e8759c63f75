package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/farmdirect/api/internal/domain"
	"github.com/farmdirect/api/internal/testutil"
)

func TestAccountRepository_Users(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewAccountRepository(pool)

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: "x",
		Role:         domain.RoleConsumer,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	dup := user
	dup.ID = uuid.NewString()
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.ID != user.ID || got.Role != domain.RoleConsumer {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountRepository_FarmerSignupTx(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewAccountRepository(pool)

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         "Ravi",
		Email:        "ravi@example.com",
		PasswordHash: "x",
		Role:         domain.RoleFarmer,
		CreatedAt:    time.Now().UTC(),
	}

	forced := errors.New("forced rollback")
	err := repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := repo.CreateUser(txCtx, user); err != nil {
			return err
		}
		return forced
	})
	if !errors.Is(err, forced) {
		t.Fatalf("expected forced error, got %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, "ravi@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected rollback to discard the user, got %v", err)
	}

	err = repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := repo.CreateUser(txCtx, user); err != nil {
			return err
		}
		return repo.CreateFarmer(txCtx, domain.Farmer{
			ID:           uuid.NewString(),
			UserID:       user.ID,
			FarmName:     "Green Acres",
			FarmLocation: "Nashik",
			CreatedAt:    user.CreatedAt,
		})
	})
	if err != nil {
		t.Fatalf("signup tx: %v", err)
	}

	catalog := NewCatalogRepository(pool)
	farmer, err := catalog.GetFarmerByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get farmer: %v", err)
	}
	if farmer.FarmName != "Green Acres" {
		t.Fatalf("unexpected farmer: %+v", farmer)
	}
}
