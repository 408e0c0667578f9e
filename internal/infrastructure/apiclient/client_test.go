package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/controlsys/defect-web/internal/core/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "://bad"} {
		_, err := New(Config{BaseURL: raw}, zerolog.Nop())
		assert.Error(t, err, raw)
	}
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)

		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bob", body.Username)

		writeJSON(w, http.StatusOK, `{"access_token":"tok","token_type":"bearer","user":{"id":3,"username":"bob","email":"bob@x.io","role":"engineer"}}`)
	})

	res, err := c.Login(context.Background(), domain.Credentials{Username: "bob", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, int64(3), res.User.ID)
	assert.Equal(t, domain.RoleEngineer, res.User.Role())
}

func TestLogin_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Incorrect username or password"}`)
	})

	_, err := c.Login(context.Background(), domain.Credentials{Username: "bob", Password: "nope"})

	var ae *domain.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.Equal(t, "Incorrect username or password", ae.Error())
}

func TestLogin_Malformed(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"access_token":"","user":{"id":1,"username":"a"}}`,
		`{"access_token":"tok"}`,
		`{"access_token":"tok","user":{"username":"a"}}`,
	}
	for _, body := range bodies {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, body)
		})

		_, err := c.Login(context.Background(), domain.Credentials{Username: "a", Password: "b"})
		assert.ErrorIs(t, err, domain.ErrMalformedResponse, body)
	}
}

func TestRegister_OmitsConfirmation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "confirm_password")
		assert.Equal(t, "Bob Builder", body["full_name"])

		writeJSON(w, http.StatusOK, `{"detail":"Confirm your e-mail","user":{"id":9,"username":"bob"}}`)
	})

	res, err := c.Register(context.Background(), domain.RegistrationRequest{
		FullName:        "Bob Builder",
		Email:           "bob@x.io",
		Username:        "bob",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Confirm your e-mail", res.Detail)
	require.NotNil(t, res.User)
	assert.Equal(t, int64(9), res.User.ID)
}

func TestRegister_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"detail":"Username already registered"}`)
	})

	_, err := c.Register(context.Background(), domain.RegistrationRequest{Username: "bob"})

	var ae *domain.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "Username already registered", ae.Detail)
}

func TestMe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":1,"username":"admin","role":"admin"}`)
	})

	user, err := c.Me(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = c.Me(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)
}

func TestMe_EmptyUser(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"user":{}}`,
		`{"user":{"role":"admin"}}`,
		`{"user":{"username":"ghost","role":"admin"}}`,
		`{"role":"admin"}`,
	}
	for _, body := range bodies {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, body)
		})

		user, err := c.Me(context.Background(), "tok")
		assert.ErrorIs(t, err, domain.ErrMalformedResponse, body)
		assert.Nil(t, user, body)
	}
}

func TestConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: base}, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.Login(context.Background(), domain.Credentials{Username: "a", Password: "b"})
	assert.ErrorIs(t, err, domain.ErrConnection)

	_, err = c.Me(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrConnection)
	assert.False(t, errors.Is(err, domain.ErrSessionInvalid))

	assert.ErrorIs(t, c.Ping(context.Background()), domain.ErrConnection)
}

func TestDataEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/projects":
			writeJSON(w, http.StatusOK, `[{"id":1,"name":"Tower A"}]`)
		case "/api/defects":
			writeJSON(w, http.StatusOK, `[{"id":5,"project_id":1,"title":"Crack","status":"new","reported_by":3}]`)
		case "/api/reports/defects-statistics":
			writeJSON(w, http.StatusOK, `{"total":1,"by_status":{"new":1}}`)
		case "/api/users":
			writeJSON(w, http.StatusForbidden, `{"detail":"Not enough permissions"}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	projects, err := c.Projects(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Tower A", projects[0].Name)

	defects, err := c.Defects(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, defects, 1)
	assert.Equal(t, int64(3), defects[0].ReportedBy)

	stats, err := c.DefectStatistics(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ByStatus["new"])

	_, err = c.Users(ctx, "tok")
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "users", apiErr.Endpoint)
	assert.True(t, apiErr.Forbidden())
	assert.False(t, apiErr.Unauthorized())
}

func TestDataEndpoints_Malformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"not":"a list"}`)
	})

	_, err := c.Projects(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestPing(t *testing.T) {
	var down atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, `{"status":"healthy"}`)
	})

	require.NoError(t, c.Ping(context.Background()))
	down.Store(true)
	assert.Error(t, c.Ping(context.Background()))
}
