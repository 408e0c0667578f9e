package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/controlsys/defect-web/internal/core/domain"
	"github.com/controlsys/defect-web/internal/core/ports"
	"github.com/controlsys/defect-web/internal/pkg/metrics"
	"github.com/controlsys/defect-web/pkg/logger"
)

// DashboardLoader fetches the role-scoped collections behind the dashboard.
type DashboardLoader struct {
	api ports.DashboardAPI
	log zerolog.Logger
}

func NewDashboardLoader(api ports.DashboardAPI, log zerolog.Logger) *DashboardLoader {
	return &DashboardLoader{
		api: api,
		log: logger.Component(log, "dashboard"),
	}
}

// Load builds the dashboard for an authenticated check. The collections are
// fetched independently; one that fails is left empty, named in
// FailedSections, and included in the returned error while the rest still
// render.
func (l *DashboardLoader) Load(ctx context.Context, check *PageCheck) (*domain.Dashboard, error) {
	if check == nil || check.State() != StateAuthenticated {
		return nil, domain.ErrNotAuthenticated
	}
	user := *check.Profile()
	token := check.Token()

	var (
		projects []domain.Project
		defects  []domain.Defect
		stats    *domain.DefectStatistics
		users    []domain.UserProfile

		mu     sync.Mutex
		failed []string
		errs   []error
	)
	record := func(section string, err error) {
		metrics.DashboardSectionErrorsTotal.WithLabelValues(section).Inc()
		l.log.Warn().Err(err).Str("section", section).Int64("user_id", user.ID).Msg("dashboard section failed")

		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, section)
		errs = append(errs, fmt.Errorf("%s: %w", section, err))
	}

	// Goroutines report through record and never fail the group.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if projects, err = l.api.Projects(ctx, token); err != nil {
			record("projects", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if defects, err = l.api.Defects(ctx, token); err != nil {
			record("defects", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if stats, err = l.api.DefectStatistics(ctx, token); err != nil {
			record("statistics", err)
		}
		return nil
	})
	if user.Can(domain.PermUsersView) {
		g.Go(func() error {
			var err error
			if users, err = l.api.Users(ctx, token); err != nil {
				record("users", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(failed)

	dash := &domain.Dashboard{
		User:           user,
		RoleLabel:      domain.DisplayName(user.RoleCode),
		Permissions:    domain.Permissions(user.Role()),
		Projects:       nonNil(projects),
		Defects:        nonNil(defects),
		Statistics:     stats,
		Users:          users,
		FailedSections: failed,
	}
	dash.Progress = domain.Progress(dash.Projects, dash.Defects)

	if user.Role() == domain.RoleEngineer {
		dash.MyDefects = domain.ReportedBy(dash.Defects, user.ID)
		dash.MyStatusCounts = domain.CountByStatus(dash.MyDefects)
	}

	return dash, errors.Join(errs...)
}

// Users returns the account list for roles holding users:view.
func (l *DashboardLoader) Users(ctx context.Context, check *PageCheck) ([]domain.UserProfile, error) {
	if check == nil || check.State() != StateAuthenticated {
		return nil, domain.ErrNotAuthenticated
	}
	if !check.Profile().Can(domain.PermUsersView) {
		return nil, domain.ErrForbidden
	}
	users, err := l.api.Users(ctx, check.Token())
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return nonNil(users), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
