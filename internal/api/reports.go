package api

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/alexjbarnes/admin-console/internal/gateway"
	"github.com/alexjbarnes/admin-console/internal/models"
)

// ReportFilter narrows GET /reports. Dates are passed through as the
// backend expects them (YYYY-MM-DD).
type ReportFilter struct {
	Search   string
	Status   string
	DateFrom string
	DateTo   string
	MinScore int
	MaxScore int
	Page     int
	Limit    int
}

func (f ReportFilter) query() url.Values {
	q := url.Values{}
	setString(q, "search", f.Search)
	setString(q, "status", f.Status)
	setString(q, "dateFrom", f.DateFrom)
	setString(q, "dateTo", f.DateTo)
	setInt(q, "minScore", f.MinScore)
	setInt(q, "maxScore", f.MaxScore)
	setInt(q, "page", f.Page)
	setInt(q, "limit", f.Limit)

	return q
}

// ReportService covers the /reports endpoints.
type ReportService struct {
	client *gateway.Client
}

// NewReportService creates a ReportService over client.
func NewReportService(client *gateway.Client) *ReportService {
	return &ReportService{client: client}
}

func reportPath(id string) string {
	return "/reports/" + url.PathEscape(id)
}

// List returns one page of credit reports.
func (s *ReportService) List(ctx context.Context, f ReportFilter) (*models.ReportList, error) {
	var out models.ReportList
	if err := s.client.Get(ctx, "/reports", &out, gateway.WithQuery(f.query())); err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	return &out, nil
}

// Get returns one report with its bureau detail.
func (s *ReportService) Get(ctx context.Context, id string) (*models.CreditReport, error) {
	var out models.CreditReport
	if err := s.client.Get(ctx, reportPath(id), &out); err != nil {
		return nil, fmt.Errorf("fetching report %s: %w", id, err)
	}

	return &out, nil
}

// Generate requests a new report.
func (s *ReportService) Generate(ctx context.Context, req models.GenerateReportRequest) (*models.CreditReport, error) {
	var out models.CreditReport
	if err := s.client.Post(ctx, "/reports/generate", req, &out); err != nil {
		return nil, fmt.Errorf("generating report for %s: %w", req.UserID, err)
	}

	return &out, nil
}

// Download streams the report PDF to w.
func (s *ReportService) Download(ctx context.Context, id string, w io.Writer) error {
	if err := s.client.Download(ctx, reportPath(id)+"/download", w); err != nil {
		return fmt.Errorf("downloading report %s: %w", id, err)
	}

	return nil
}

// Stats returns the report counters.
func (s *ReportService) Stats(ctx context.Context) (*models.ReportStats, error) {
	var out models.ReportStats
	if err := s.client.Get(ctx, "/reports/stats", &out); err != nil {
		return nil, fmt.Errorf("fetching report stats: %w", err)
	}

	return &out, nil
}

// UpdateStatus moves a report to status (Active, Pending, Expired or
// Disputed).
func (s *ReportService) UpdateStatus(ctx context.Context, id, status string) (*models.CreditReport, error) {
	if !models.ValidReportStatus(status) {
		return nil, fmt.Errorf("unknown report status %q", status)
	}

	var out models.CreditReport
	if err := s.client.Patch(ctx, reportPath(id)+"/status", map[string]string{"status": status}, &out); err != nil {
		return nil, fmt.Errorf("updating report %s: %w", id, err)
	}

	return &out, nil
}

// Delete removes a report.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, reportPath(id), nil); err != nil {
		return fmt.Errorf("deleting report %s: %w", id, err)
	}

	return nil
}
