package mockapi

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/controlsys/defect-web/internal/core/domain"
	"github.com/controlsys/defect-web/internal/core/ports"
)

// SeedAccount is a confirmed account created at start-up.
type SeedAccount struct {
	Username string
	Email    string
	FullName string
	Role     domain.Role
	Password string
}

// DevAccounts is one confirmed account per role, for local use only.
func DevAccounts() []SeedAccount {
	return []SeedAccount{
		{Username: "admin", Email: "admin@example.com", FullName: "Alex Admin", Role: domain.RoleAdmin, Password: "Admin1234"},
		{Username: "manager", Email: "manager@example.com", FullName: "Mary Manager", Role: domain.RoleManager, Password: "Manager1234"},
		{Username: "engineer", Email: "engineer@example.com", FullName: "Evan Engineer", Role: domain.RoleEngineer, Password: "Engineer1234"},
		{Username: "observer", Email: "observer@example.com", FullName: "Olga Observer", Role: domain.RoleObserver, Password: "Observer1234"},
	}
}

// Seed creates the given accounts when the repository is empty and reports
// how many were created.
func Seed(ctx context.Context, repo ports.AccountRepository, seeds []SeedAccount) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, sa := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(sa.Password), bcrypt.DefaultCost)
		if err != nil {
			return 0, fmt.Errorf("seed %s: %w", sa.Username, err)
		}
		_, err = repo.Create(ctx, &domain.Account{
			Username:     sa.Username,
			Email:        sa.Email,
			FullName:     sa.FullName,
			Role:         string(sa.Role),
			PasswordHash: string(hash),
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return 0, fmt.Errorf("seed %s: %w", sa.Username, err)
		}
	}
	return len(seeds), nil
}
