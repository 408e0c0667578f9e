package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// AccountRepository keeps accounts in process memory.
type AccountRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		nextID: 1,
		byID:   make(map[int64]domain.Account),
	}
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.byID {
		if a.Username == account.Username {
			return nil, domain.ErrUsernameTaken
		}
		if strings.EqualFold(a.Email, account.Email) {
			return nil, domain.ErrEmailTaken
		}
	}

	created := *account
	created.ID = r.nextID
	r.nextID++
	r.byID[created.ID] = created
	return &created, nil
}

func (r *AccountRepository) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.Username == username })
}

func (r *AccountRepository) FindByRegToken(_ context.Context, token string) (*domain.Account, error) {
	if token == "" {
		return nil, domain.ErrAccountNotFound
	}
	return r.find(func(a domain.Account) bool { return a.RegToken == token })
}

func (r *AccountRepository) Confirm(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.RegToken = ""
	r.byID[id] = a
	return nil
}

// List returns every account ordered by id.
func (r *AccountRepository) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AccountRepository) find(match func(domain.Account) bool) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if match(a) {
			return &a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}
