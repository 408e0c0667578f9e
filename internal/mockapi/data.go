package mockapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// dataset is the read-only project and defect data served to every
// authenticated caller.
type dataset struct {
	projects []domain.Project
	defects  []domain.Defect
}

func seedData() *dataset {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return &dataset{
		projects: []domain.Project{
			{
				ID:          1,
				Name:        "North Residential Complex",
				Description: "Multi-storey residential complex",
				Address:     "15 Builders St",
				Status:      "active",
				CreatedBy:   1,
				CreatedAt:   &created,
			},
			{
				ID:          2,
				Name:        "Plaza Business Center",
				Description: "Class A office center",
				Address:     "28 Mira Ave",
				Status:      "active",
				CreatedBy:   1,
				CreatedAt:   &created,
			},
		},
		defects: []domain.Defect{
			{
				ID:          1,
				ProjectID:   1,
				Title:       "Crack in a load-bearing wall",
				Description: "Vertical crack in a load-bearing wall on the 3rd floor",
				Priority:    "high",
				Status:      "new",
				ReportedBy:  1,
				CreatedAt:   &created,
			},
			{
				ID:          2,
				ProjectID:   1,
				Title:       "Roof leak",
				Description: "Leak near the ventilation shafts",
				Priority:    "medium",
				Status:      "in_progress",
				ReportedBy:  1,
				CreatedAt:   &created,
			},
		},
	}
}

func (s *Server) projects(c echo.Context) error {
	return c.JSON(http.StatusOK, s.data.projects)
}

func (s *Server) defects(c echo.Context) error {
	return c.JSON(http.StatusOK, s.data.defects)
}

func (s *Server) statistics(c echo.Context) error {
	stats := domain.DefectStatistics{
		Total:      len(s.data.defects),
		ByStatus:   domain.CountByStatus(s.data.defects),
		ByPriority: make(map[string]int),
	}
	for _, d := range s.data.defects {
		stats.ByPriority[d.Priority]++
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) users(c echo.Context) error {
	accounts, err := s.accounts.List(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]domain.UserProfile, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Profile())
	}
	return c.JSON(http.StatusOK, out)
}
