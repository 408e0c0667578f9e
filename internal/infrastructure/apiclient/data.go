package apiclient

import (
	"context"

	"github.com/controlsys/defect-web/internal/core/domain"
)

func (c *Client) Projects(ctx context.Context, token string) ([]domain.Project, error) {
	var out []domain.Project
	if err := c.getJSON(ctx, "projects", "/api/projects", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Defects(ctx context.Context, token string) ([]domain.Defect, error) {
	var out []domain.Defect
	if err := c.getJSON(ctx, "defects", "/api/defects", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DefectStatistics(ctx context.Context, token string) (*domain.DefectStatistics, error) {
	var out domain.DefectStatistics
	if err := c.getJSON(ctx, "statistics", "/api/reports/defects-statistics", token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Users(ctx context.Context, token string) ([]domain.UserProfile, error) {
	var out []domain.UserProfile
	if err := c.getJSON(ctx, "users", "/api/users", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}
