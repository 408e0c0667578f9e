package ports

import (
	"context"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// AccountRepository persists the reference API's accounts.
type AccountRepository interface {
	// Create assigns the account an id. It fails with domain.ErrUsernameTaken
	// or domain.ErrEmailTaken on a duplicate.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByRegToken(ctx context.Context, token string) (*domain.Account, error)
	// Confirm clears the pending registration token.
	Confirm(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Account, error)
}
