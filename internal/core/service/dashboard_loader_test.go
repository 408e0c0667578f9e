package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// authenticatedCheck returns a check that has run against profile.
func authenticatedCheck(t *testing.T, profile domain.UserProfile) *PageCheck {
	t.Helper()
	store, _, guard := newCheckFixture(t, func(string) (*domain.UserProfile, error) {
		p := profile
		return &p, nil
	})
	require.NoError(t, store.Save(context.Background(), "sid", domain.Session{Token: "tok", Identity: "x"}))

	check := guard.NewCheck("sid", nil)
	require.Equal(t, StateAuthenticated, check.Run(context.Background()))
	return check
}

func sampleAPI() *stubAPI {
	return &stubAPI{
		projects: []domain.Project{{ID: 1, Name: "North"}, {ID: 2, Name: "Plaza"}},
		defects: []domain.Defect{
			{ID: 1, ProjectID: 1, Status: "new", ReportedBy: 5},
			{ID: 2, ProjectID: 1, Status: "closed", ReportedBy: 5},
			{ID: 3, ProjectID: 1, Status: "closed", ReportedBy: 6},
		},
		stats: &domain.DefectStatistics{Total: 3, ByStatus: map[string]int{"new": 1, "closed": 2}},
		users: []domain.UserProfile{{ID: 5}, {ID: 6}},
	}
}

func TestDashboardLoader_RefusesUnauthenticated(t *testing.T) {
	loader := NewDashboardLoader(sampleAPI(), zerolog.Nop())

	_, err := loader.Load(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, _, guard := newCheckFixture(t, nil)
	check := guard.NewCheck("nobody", nil)
	check.Run(context.Background())

	_, err = loader.Load(context.Background(), check)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestDashboardLoader_Engineer(t *testing.T) {
	api := sampleAPI()
	loader := NewDashboardLoader(api, zerolog.Nop())

	dash, err := loader.Load(context.Background(), authenticatedCheck(t, domain.UserProfile{ID: 5, RoleCode: "engineer"}))
	require.NoError(t, err)

	assert.Equal(t, "Engineer", dash.RoleLabel)
	assert.Len(t, dash.Defects, 3)
	assert.Len(t, dash.MyDefects, 2)
	assert.Equal(t, map[string]int{"new": 1, "closed": 1}, dash.MyStatusCounts)
	assert.Equal(t, []domain.ProjectProgress{
		{ProjectID: 1, Defects: 3, Closed: 2, Percent: 67},
		{ProjectID: 2, Defects: 0, Closed: 0, Percent: 0},
	}, dash.Progress)
	assert.Nil(t, dash.Users)
	assert.Zero(t, api.count("users"), "engineers lack users:view")
}

func TestDashboardLoader_ManagerGetsUsers(t *testing.T) {
	api := sampleAPI()
	loader := NewDashboardLoader(api, zerolog.Nop())

	dash, err := loader.Load(context.Background(), authenticatedCheck(t, domain.UserProfile{ID: 9, RoleCode: "manager"}))
	require.NoError(t, err)

	assert.Len(t, dash.Users, 2)
	assert.Nil(t, dash.MyDefects)
	assert.Contains(t, dash.Permissions, domain.PermUsersView)
}

func TestDashboardLoader_PartialFailure(t *testing.T) {
	api := sampleAPI()
	api.errs = map[string]error{
		"defects":    domain.ErrConnection,
		"statistics": &domain.APIError{Endpoint: "statistics", Status: 500},
	}
	loader := NewDashboardLoader(api, zerolog.Nop())

	dash, err := loader.Load(context.Background(), authenticatedCheck(t, domain.UserProfile{ID: 1, RoleCode: "observer"}))
	require.Error(t, err)
	require.NotNil(t, dash)

	assert.ErrorIs(t, err, domain.ErrConnection)
	assert.Equal(t, []string{"defects", "statistics"}, dash.FailedSections)
	assert.Len(t, dash.Projects, 2, "a failed collection must not blank the others")
	assert.NotNil(t, dash.Defects)
	assert.Empty(t, dash.Defects)
}

func TestDashboardLoader_Users(t *testing.T) {
	loader := NewDashboardLoader(sampleAPI(), zerolog.Nop())

	_, err := loader.Users(context.Background(), authenticatedCheck(t, domain.UserProfile{ID: 1, RoleCode: "observer"}))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	users, err := loader.Users(context.Background(), authenticatedCheck(t, domain.UserProfile{ID: 1, RoleCode: "admin"}))
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
