package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/controlsys/defect-web/internal/core/domain"
	"github.com/controlsys/defect-web/internal/core/service"
	"github.com/controlsys/defect-web/internal/infrastructure/db/memory"
)

type stubVerifier struct {
	profile *domain.UserProfile
	err     error
	calls   int
}

func (s *stubVerifier) VerifySession(_ context.Context, _, _ string) (*domain.UserProfile, error) {
	s.calls++
	return s.profile, s.err
}

func newGuard(t *testing.T, v *stubVerifier) (*service.Guard, *memory.SessionStore) {
	t.Helper()
	store := memory.NewSessionStore(0)
	return service.NewGuard(store, v, zerolog.Nop()), store
}

func TestSessionGuard_Authenticated(t *testing.T) {
	v := &stubVerifier{profile: &domain.UserProfile{ID: 7, Username: "eve", RoleCode: "engineer"}}
	guard, store := newGuard(t, v)
	require.NoError(t, store.Save(context.Background(), "abc", domain.Session{Token: "tok", Identity: "7"}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := SessionGuard(guard, CookieConfig{})(func(c echo.Context) error {
		called = true
		check, ok := Check(c)
		require.True(t, ok)
		assert.Equal(t, "eve", check.Profile().Username)
		assert.Equal(t, "tok", check.Token())
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, v.calls)
}

func TestSessionGuard_NoCookieRedirects(t *testing.T) {
	v := &stubVerifier{}
	guard, _ := newGuard(t, v)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := SessionGuard(guard, CookieConfig{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Zero(t, v.calls, "an empty slot must not reach the server")
}

func TestSessionGuard_RejectedTokenClearsSlot(t *testing.T) {
	v := &stubVerifier{err: domain.ErrSessionInvalid}
	guard, store := newGuard(t, v)
	require.NoError(t, store.Save(context.Background(), "abc", domain.Session{Token: "stale", Identity: "a@x.io"}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := SessionGuard(guard, CookieConfig{Secure: true})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Len(t, rec.Header().Values("Set-Cookie"), 1)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")

	_, err := store.Load(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrNoSession)
}
