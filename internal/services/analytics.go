package services

import (
	"context"
	"fmt"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
)

// Periods accepted by the workflow series.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// AnalyticsService calls the /analytics endpoints.
type AnalyticsService struct {
	api *apiclient.Client
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(client *apiclient.Client) *AnalyticsService {
	return &AnalyticsService{api: client}
}

// Dashboard returns the headline metrics.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*api.DashboardMetrics, error) {
	var out api.DashboardMetrics
	if err := s.api.Get(ctx, "/analytics/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Workflow returns the incoming/processed series for period.
func (s *AnalyticsService) Workflow(ctx context.Context, period string) ([]api.WorkflowPoint, error) {
	switch period {
	case "":
		period = PeriodWeek
	case PeriodWeek, PeriodMonth, PeriodYear:
	default:
		return nil, fmt.Errorf("unknown period %q (want week, month or year)", period)
	}
	var out []api.WorkflowPoint
	opts := &apiclient.RequestOptions{Params: apiclient.Params{"period": period}}
	if err := s.api.Get(ctx, "/analytics/workflow", opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Types returns the document-type distribution.
func (s *AnalyticsService) Types(ctx context.Context) ([]api.TypeShare, error) {
	var out []api.TypeShare
	if err := s.api.Get(ctx, "/analytics/types", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DocumentsFlow returns the daily flow over the last days days (1 to 365).
func (s *AnalyticsService) DocumentsFlow(ctx context.Context, days int) ([]api.FlowPoint, error) {
	if days < 1 || days > 365 {
		return nil, fmt.Errorf("days must be between 1 and 365, got %d", days)
	}
	var out []api.FlowPoint
	opts := &apiclient.RequestOptions{Params: apiclient.Params{"days": days}}
	if err := s.api.Get(ctx, "/analytics/documents-flow", opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Metrics returns every analytics series in one call.
func (s *AnalyticsService) Metrics(ctx context.Context) (*api.Metrics, error) {
	var out api.Metrics
	if err := s.api.Get(ctx, "/analytics/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
