package services

import (
	"context"

	"github.com/lborres/facturo/core"
)

// DashboardService serves the dashboard counters. Invoicing does not
// exist yet, so only the caller's email is real.
type DashboardService struct{}

func NewDashboardService() *DashboardService {
	return &DashboardService{}
}

func (s *DashboardService) Summary(_ context.Context, id core.Identity) (*core.DashboardSummary, error) {
	if id.IsZero() {
		return nil, core.ErrUnauthorized
	}
	return &core.DashboardSummary{Email: id.Email}, nil
}
