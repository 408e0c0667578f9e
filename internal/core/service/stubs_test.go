package service

import (
	"context"
	"sync"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub session store
// ---------------------------------------------------------------------------

type stubStore struct {
	mu      sync.Mutex
	slots   map[string]domain.Session
	loadErr error
	clears  int
}

func newStubStore() *stubStore {
	return &stubStore{slots: make(map[string]domain.Session)}
}

func (s *stubStore) Save(_ context.Context, sid string, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[sid] = session
	return nil
}

func (s *stubStore) Load(_ context.Context, sid string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	session, ok := s.slots[sid]
	if !ok || !session.Complete() {
		delete(s.slots, sid)
		return nil, domain.ErrNoSession
	}
	return &session, nil
}

func (s *stubStore) Clear(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	delete(s.slots, sid)
	return nil
}

func (s *stubStore) has(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.slots[sid]
	return ok
}

// ---------------------------------------------------------------------------
// Stub remote API
// ---------------------------------------------------------------------------

type stubAPI struct {
	mu    sync.Mutex
	calls map[string]int

	loginFn    func(creds domain.Credentials) (*domain.LoginResult, error)
	registerFn func(req domain.RegistrationRequest) (*domain.RegisterResult, error)
	meFn       func(token string) (*domain.UserProfile, error)

	projects []domain.Project
	defects  []domain.Defect
	stats    *domain.DefectStatistics
	users    []domain.UserProfile
	errs     map[string]error
}

func (a *stubAPI) record(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.calls == nil {
		a.calls = make(map[string]int)
	}
	a.calls[name]++
}

func (a *stubAPI) count(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[name]
}

func (a *stubAPI) Login(_ context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	a.record("login")
	return a.loginFn(creds)
}

func (a *stubAPI) Register(_ context.Context, req domain.RegistrationRequest) (*domain.RegisterResult, error) {
	a.record("register")
	return a.registerFn(req)
}

func (a *stubAPI) Me(_ context.Context, token string) (*domain.UserProfile, error) {
	a.record("me")
	return a.meFn(token)
}

func (a *stubAPI) Projects(context.Context, string) ([]domain.Project, error) {
	a.record("projects")
	return a.projects, a.errs["projects"]
}

func (a *stubAPI) Defects(context.Context, string) ([]domain.Defect, error) {
	a.record("defects")
	return a.defects, a.errs["defects"]
}

func (a *stubAPI) DefectStatistics(context.Context, string) (*domain.DefectStatistics, error) {
	a.record("statistics")
	return a.stats, a.errs["statistics"]
}

func (a *stubAPI) Users(context.Context, string) ([]domain.UserProfile, error) {
	a.record("users")
	return a.users, a.errs["users"]
}
