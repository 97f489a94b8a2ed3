package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alexjbarnes/admin-console/internal/gateway"
	"github.com/alexjbarnes/admin-console/internal/models"
)

// AnalyticsFilter narrows the trend and breakdown endpoints.
type AnalyticsFilter struct {
	DateFrom string
	DateTo   string
	GroupBy  string
	Metric   string
}

func (f AnalyticsFilter) query() url.Values {
	q := url.Values{}
	setString(q, "dateFrom", f.DateFrom)
	setString(q, "dateTo", f.DateTo)
	setString(q, "groupBy", f.GroupBy)
	setString(q, "metric", f.Metric)

	return q
}

// AnalyticsService covers the read-only /analytics endpoints.
type AnalyticsService struct {
	client *gateway.Client
}

// NewAnalyticsService creates an AnalyticsService over client.
func NewAnalyticsService(client *gateway.Client) *AnalyticsService {
	return &AnalyticsService{client: client}
}

func (s *AnalyticsService) get(ctx context.Context, path, what string, out any, f AnalyticsFilter) error {
	if err := s.client.Get(ctx, path, out, gateway.WithQuery(f.query())); err != nil {
		return fmt.Errorf("fetching %s: %w", what, err)
	}

	return nil
}

func (s *AnalyticsService) Overview(ctx context.Context) (*models.AnalyticsOverview, error) {
	var out models.AnalyticsOverview
	if err := s.get(ctx, "/analytics/overview", "analytics overview", &out, AnalyticsFilter{}); err != nil {
		return nil, err
	}

	return &out, nil
}

func (s *AnalyticsService) MonthlyTrends(ctx context.Context, f AnalyticsFilter) ([]models.MonthlyTrend, error) {
	var out []models.MonthlyTrend
	if err := s.get(ctx, "/analytics/trends/monthly", "monthly trends", &out, f); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *AnalyticsService) CreditScoreDistribution(ctx context.Context) ([]models.CreditScoreBucket, error) {
	var out []models.CreditScoreBucket
	if err := s.get(ctx, "/analytics/credit-score/distribution", "credit score distribution", &out, AnalyticsFilter{}); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *AnalyticsService) LoanDistribution(ctx context.Context) ([]models.LoanTypeShare, error) {
	var out []models.LoanTypeShare
	if err := s.get(ctx, "/analytics/loans/distribution", "loan distribution", &out, AnalyticsFilter{}); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *AnalyticsService) Geographic(ctx context.Context, f AnalyticsFilter) ([]models.GeographicData, error) {
	var out []models.GeographicData
	if err := s.get(ctx, "/analytics/geographic", "geographic breakdown", &out, f); err != nil {
		return nil, err
	}

	return out, nil
}

// TimeSeries returns one metric over time. metric is a path segment,
// not a query parameter.
func (s *AnalyticsService) TimeSeries(ctx context.Context, metric string, f AnalyticsFilter) ([]models.TimeSeriesPoint, error) {
	var out []models.TimeSeriesPoint
	if err := s.get(ctx, "/analytics/timeseries/"+url.PathEscape(metric), metric+" time series", &out, f); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *AnalyticsService) RevenueTrends(ctx context.Context, f AnalyticsFilter) ([]models.TimeSeriesPoint, error) {
	var out []models.TimeSeriesPoint
	if err := s.get(ctx, "/analytics/revenue/trends", "revenue trends", &out, f); err != nil {
		return nil, err
	}

	return out, nil
}
