package api

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	apperrors "github.com/alexjbarnes/admin-console/internal/errors"
	"github.com/alexjbarnes/admin-console/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_ListQuery(t *testing.T) {
	b := newBackend(t, ok(map[string]any{
		"users":      []map[string]any{{"_id": "U1", "name": "Ada"}},
		"pagination": map[string]any{"page": 2, "limit": 10, "total": 11, "totalPages": 2},
	}))

	list, err := NewUserService(b.client("T1")).List(context.Background(), UserFilter{
		Search: "ada lovelace", Status: "Active", Page: 2, Limit: 10, SortBy: "createdAt", SortOrder: "desc",
	})
	require.NoError(t, err)

	require.Len(t, list.Users, 1)
	assert.Equal(t, "U1", list.Users[0].ID)
	assert.Equal(t, 2, list.Pagination.PageCount())

	q, err := url.ParseQuery(b.last().Query)
	require.NoError(t, err)
	assert.Equal(t, url.Values{
		"search":    {"ada lovelace"},
		"status":    {"Active"},
		"page":      {"2"},
		"limit":     {"10"},
		"sortBy":    {"createdAt"},
		"sortOrder": {"desc"},
	}, q)
}

func TestUsers_EmptyFilterSendsNoQuery(t *testing.T) {
	b := newBackend(t, ok(map[string]any{"users": []any{}}))

	_, err := NewUserService(b.client("T1")).List(context.Background(), UserFilter{})
	require.NoError(t, err)
	assert.Empty(t, b.last().Query)
}

func TestUsers_IDsArePathEscaped(t *testing.T) {
	b := newBackend(t, ok(map[string]any{"id": "a/b"}))

	svc := NewUserService(b.client("T1"))
	ctx := context.Background()

	_, err := svc.Get(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/users/a%2Fb", b.last().Path)

	require.NoError(t, svc.Suspend(ctx, "U1"))
	assert.Equal(t, "/users/U1/suspend", b.last().Path)
	assert.Equal(t, http.MethodPost, b.last().Method)

	require.NoError(t, svc.Activate(ctx, "U1"))
	assert.Equal(t, "/users/U1/activate", b.last().Path)

	require.NoError(t, svc.Delete(ctx, "U1"))
	assert.Equal(t, http.MethodDelete, b.last().Method)
}

func TestUsers_ProfileAndPassword(t *testing.T) {
	b := newBackend(t, ok(map[string]any{"id": "U1", "name": "Ada Lovelace", "department": "R&D"}))

	svc := NewUserService(b.client("T1"))
	name := "Ada Lovelace"

	profile, err := svc.UpdateProfile(context.Background(), models.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "R&D", profile.Department)
	assert.Equal(t, http.MethodPut, b.last().Method)
	assert.Equal(t, "/users/profile", b.last().Path)
	assert.Equal(t, map[string]any{"name": "Ada Lovelace"}, b.last().Body)

	require.NoError(t, svc.ChangePassword(context.Background(), models.ChangePasswordRequest{
		CurrentPassword: "old", NewPassword: "new-secret", ConfirmPassword: "new-secret",
	}))
	assert.Equal(t, "/users/change-password", b.last().Path)
	assert.Equal(t, "new-secret", b.last().Body["confirmPassword"])
}

func TestUsers_Stats(t *testing.T) {
	b := newBackend(t, ok(map[string]any{"total": 12, "active": 9, "suspended": 2, "inactive": 1, "newThisMonth": 3}))

	stats, err := NewUserService(b.client("T1")).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{Total: 12, Active: 9, Suspended: 2, Inactive: 1, NewThisMonth: 3}, *stats)
}

func TestRoles(t *testing.T) {
	b := newBackend(t, ok(map[string]any{
		"_id":         "R1",
		"name":        "Editor",
		"isActive":    true,
		"permissions": []any{"P1", map[string]any{"_id": "P2", "name": "users:read"}},
	}))

	svc := NewRoleService(b.client("T1"))
	ctx := context.Background()

	role, err := svc.Get(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, role.Permissions.IDs())

	active := false
	_, err = svc.Update(ctx, "R1", models.UpdateRoleRequest{IsActive: &active}, true)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, b.last().Method)
	assert.Equal(t, map[string]any{"isActive": false}, b.last().Body)

	_, err = svc.Update(ctx, "R1", models.UpdateRoleRequest{}, false)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, b.last().Method)

	require.NoError(t, svc.Assign(ctx, "U1", "R1"))
	assert.Equal(t, "/roles/assign", b.last().Path)
	assert.Equal(t, map[string]any{"userId": "U1", "roleId": "R1"}, b.last().Body)

	_, err = svc.List(ctx, RoleFilter{IsActive: &active, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, "isActive=false&limit=5", b.last().Query)
}

func TestPermissions(t *testing.T) {
	b := newBackend(t, ok([]map[string]any{{"_id": "P1", "name": "users:read", "module": "users", "action": "read"}}))

	svc := NewPermissionService(b.client("T1"))
	ctx := context.Background()

	perms, err := svc.ByModule(ctx, "users")
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "P1", perms[0].ID)
	assert.Equal(t, "/permissions/module/users", b.last().Path)

	require.NoError(t, svc.Assign(ctx, "U1", []string{"P1", "P2"}))
	assert.Equal(t, map[string]any{"userId": "U1", "permissionIds": []any{"P1", "P2"}}, b.last().Body)
}

func TestPermissions_ForbiddenKeepsStatus(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusForbidden, nil)
	})

	err := NewPermissionService(b.client("T1")).Delete(context.Background(), "P1")

	he, ok := apperrors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindForbidden, he.Kind())
}

func TestDashboard_Stats(t *testing.T) {
	day := func(d int) string {
		return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	}

	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))

		switch r.URL.Path {
		case "/users":
			writeEnvelope(w, http.StatusOK, map[string]any{"users": []map[string]any{
				{"_id": "U1", "isVerified": true, "type": "admin", "createdAt": day(1)},
				{"_id": "U2", "isVerified": true, "createdAt": day(7)},
				{"_id": "U3", "createdAt": day(3)},
				{"_id": "U4"},
				{"_id": "U5", "createdAt": day(5)},
				{"_id": "U6", "type": "admin", "createdAt": day(6)},
			}})
		case "/roles":
			writeEnvelope(w, http.StatusOK, map[string]any{"roles": []map[string]any{
				{"_id": "R1", "isActive": true}, {"_id": "R2", "isActive": false},
			}})
		case "/permissions":
			writeEnvelope(w, http.StatusOK, map[string]any{"permissions": []map[string]any{
				{"_id": "P1", "isActive": true}, {"_id": "P2", "isActive": true}, {"_id": "P3"},
			}})
		default:
			http.NotFound(w, r)
		}
	})

	client := b.client("T1")
	svc := NewDashboardService(NewUserService(client), NewRoleService(client), NewPermissionService(client))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalUsers)
	assert.Equal(t, 2, stats.VerifiedUsers)
	assert.Equal(t, 2, stats.AdminUsers)
	assert.Equal(t, 2, stats.TotalRoles)
	assert.Equal(t, 1, stats.ActiveRoles)
	assert.Equal(t, 3, stats.TotalPermissions)
	assert.Equal(t, 2, stats.ActivePermissions)

	ids := make([]string, 0, len(stats.RecentUsers))
	for _, u := range stats.RecentUsers {
		ids = append(ids, u.ID)
	}

	assert.Equal(t, []string{"U2", "U6", "U5", "U3", "U1"}, ids)
}

func TestDashboard_OneFailureFailsAll(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/roles" {
			writeEnvelope(w, http.StatusInternalServerError, nil)
			return
		}

		writeEnvelope(w, http.StatusOK, map[string]any{})
	})

	client := b.client("T1")
	svc := NewDashboardService(NewUserService(client), NewRoleService(client), NewPermissionService(client))

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
}

func TestReports_ListQueryAndItems(t *testing.T) {
	b := newBackend(t, ok(map[string]any{
		"data": []map[string]any{
			{"id": "CR1", "userId": "U1", "userName": "Ada", "pan": "ABCDE1234F", "creditScore": 742, "status": "Active"},
		},
		"pagination": map[string]any{"page": 1, "limit": 20, "total": 1, "totalPages": 1},
	}))

	list, err := NewReportService(b.client("T1")).List(context.Background(), ReportFilter{
		Status: "Active", DateFrom: "2026-01-01", MinScore: 700, MaxScore: 800, Limit: 20,
	})
	require.NoError(t, err)

	require.Len(t, list.Reports, 1)
	assert.Equal(t, "CR1", list.Reports[0].ID)
	assert.Equal(t, 742, list.Reports[0].CreditScore)
	assert.Equal(t, 1, list.Pagination.PageCount())

	q, err := url.ParseQuery(b.last().Query)
	require.NoError(t, err)
	assert.Equal(t, url.Values{
		"status":   {"Active"},
		"dateFrom": {"2026-01-01"},
		"minScore": {"700"},
		"maxScore": {"800"},
		"limit":    {"20"},
	}, q)
}

func TestReports_Lifecycle(t *testing.T) {
	b := newBackend(t, ok(map[string]any{"id": "CR1", "status": "Disputed", "creditScore": 690}))

	svc := NewReportService(b.client("T1"))
	ctx := context.Background()

	report, err := svc.Generate(ctx, models.GenerateReportRequest{UserID: "U1", PAN: "ABCDE1234F"})
	require.NoError(t, err)
	assert.Equal(t, "CR1", report.ID)
	assert.Equal(t, "/reports/generate", b.last().Path)
	assert.Equal(t, map[string]any{"userId": "U1", "pan": "ABCDE1234F"}, b.last().Body)

	_, err = svc.Get(ctx, "CR/1")
	require.NoError(t, err)
	assert.Equal(t, "/reports/CR%2F1", b.last().Path)

	report, err = svc.UpdateStatus(ctx, "CR1", models.ReportDisputed)
	require.NoError(t, err)
	assert.Equal(t, models.ReportDisputed, report.Status)
	assert.Equal(t, http.MethodPatch, b.last().Method)
	assert.Equal(t, "/reports/CR1/status", b.last().Path)
	assert.Equal(t, map[string]any{"status": "Disputed"}, b.last().Body)

	require.NoError(t, svc.Delete(ctx, "CR1"))
	assert.Equal(t, http.MethodDelete, b.last().Method)
}

func TestReports_UnknownStatusIsNotSent(t *testing.T) {
	b := newBackend(t, ok(nil))

	_, err := NewReportService(b.client("T1")).UpdateStatus(context.Background(), "CR1", "Archived")
	require.Error(t, err)
	assert.Equal(t, 0, b.count())
}

func TestReports_Stats(t *testing.T) {
	b := newBackend(t, ok(map[string]any{"total": 10, "active": 6, "pending": 2, "expired": 1, "disputed": 1, "averageScore": 712.5}))

	stats, err := NewReportService(b.client("T1")).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ReportStats{Total: 10, Active: 6, Pending: 2, Expired: 1, Disputed: 1, AverageScore: 712.5}, *stats)
	assert.Equal(t, "/reports/stats", b.last().Path)
}

func TestReports_DownloadWritesRawBody(t *testing.T) {
	pdf := []byte("%PDF-1.7\n\x00\x01binary")

	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reports/CR1/download" {
			writeEnvelope(w, http.StatusNotFound, nil)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	})

	svc := NewReportService(b.client("T1"))

	var buf bytes.Buffer
	require.NoError(t, svc.Download(context.Background(), "CR1", &buf))
	assert.Equal(t, pdf, buf.Bytes())
	assert.Equal(t, "Bearer T1", b.last().Auth)

	buf.Reset()
	err := svc.Download(context.Background(), "missing", &buf)
	require.Error(t, err)

	he, ok := apperrors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindNotFound, he.Kind())
	assert.Empty(t, buf.Bytes())
}

type fixedRefresher string

func (r fixedRefresher) Refresh(context.Context, string) (string, error) { return string(r), nil }

func TestReports_DownloadRetriesAfterRefresh(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T2" {
			writeEnvelope(w, http.StatusUnauthorized, nil)
			return
		}

		_, _ = w.Write([]byte("pdf"))
	})

	client := b.client("T1")
	client.SetRefresher(fixedRefresher("T2"))

	var buf bytes.Buffer
	require.NoError(t, NewReportService(client).Download(context.Background(), "CR1", &buf))
	assert.Equal(t, "pdf", buf.String())
	assert.Equal(t, 2, b.count())
}

func TestAnalytics_Endpoints(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analytics/overview":
			writeEnvelope(w, http.StatusOK, map[string]any{
				"totalUsers": 120, "totalReports": 80, "averageCreditScore": 701.5,
				"growthRate": map[string]any{"users": 12.5},
			})
		case "/analytics/trends/monthly":
			writeEnvelope(w, http.StatusOK, []map[string]any{{"month": "Jan", "users": 10, "reports": 4}})
		case "/analytics/credit-score/distribution":
			writeEnvelope(w, http.StatusOK, []map[string]any{{"range": "750-900", "count": 30, "percentage": 25}})
		case "/analytics/loans/distribution":
			writeEnvelope(w, http.StatusOK, []map[string]any{{"name": "Home Loan", "value": 40, "percentage": 50}})
		case "/analytics/geographic":
			writeEnvelope(w, http.StatusOK, []map[string]any{{"city": "Pune", "state": "MH", "users": 9}})
		case "/analytics/timeseries/revenue", "/analytics/revenue/trends":
			writeEnvelope(w, http.StatusOK, []map[string]any{{"date": "2026-01-01", "value": 1500}})
		default:
			writeEnvelope(w, http.StatusNotFound, nil)
		}
	})

	svc := NewAnalyticsService(b.client("T1"))
	ctx := context.Background()

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120, overview.TotalUsers)
	assert.InDelta(t, 12.5, overview.GrowthRate.Users, 0.001)
	assert.Empty(t, b.last().Query)

	trends, err := svc.MonthlyTrends(ctx, AnalyticsFilter{DateFrom: "2026-01-01", GroupBy: models.GroupByMonth})
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, "Jan", trends[0].Month)

	q, err := url.ParseQuery(b.last().Query)
	require.NoError(t, err)
	assert.Equal(t, url.Values{"dateFrom": {"2026-01-01"}, "groupBy": {"month"}}, q)

	scores, err := svc.CreditScoreDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, scores[0].Count)

	loans, err := svc.LoanDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Home Loan", loans[0].Name)

	geo, err := svc.Geographic(ctx, AnalyticsFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Pune", geo[0].City)

	series, err := svc.TimeSeries(ctx, models.MetricRevenue, AnalyticsFilter{GroupBy: models.GroupByWeek})
	require.NoError(t, err)
	assert.Equal(t, "/analytics/timeseries/revenue", b.last().Path)
	assert.Equal(t, "groupBy=week", b.last().Query)
	assert.InDelta(t, 1500, series[0].Value, 0.001)

	_, err = svc.RevenueTrends(ctx, AnalyticsFilter{})
	require.NoError(t, err)
	assert.Equal(t, "/analytics/revenue/trends", b.last().Path)
}

func TestSettings_GetAndPartialUpdate(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/settings/system":
			writeEnvelope(w, http.StatusOK, map[string]any{"companyName": "Acme", "maintenanceMode": true, "apiRateLimit": 100})
		case "/settings/notifications":
			writeEnvelope(w, http.StatusOK, map[string]any{"email": true, "sms": false})
		case "/settings/security":
			writeEnvelope(w, http.StatusOK, map[string]any{"maxLoginAttempts": 5, "requireStrongPassword": true})
		default:
			writeEnvelope(w, http.StatusNotFound, nil)
		}
	})

	svc := NewSettingsService(b.client("T1"))
	ctx := context.Background()

	sys, err := svc.System(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", sys.CompanyName)
	assert.True(t, sys.MaintenanceMode)

	off := false
	_, err = svc.UpdateSystem(ctx, models.SystemSettingsPatch{MaintenanceMode: &off})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, b.last().Method)
	assert.Equal(t, map[string]any{"maintenanceMode": false}, b.last().Body)

	notif, err := svc.Notifications(ctx)
	require.NoError(t, err)
	assert.True(t, notif.Email)

	on := true
	_, err = svc.UpdateNotifications(ctx, models.NotificationSettingsPatch{SMS: &on})
	require.NoError(t, err)
	assert.Equal(t, "/settings/notifications", b.last().Path)
	assert.Equal(t, map[string]any{"sms": true}, b.last().Body)

	sec, err := svc.Security(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, sec.MaxLoginAttempts)

	attempts := 3
	_, err = svc.UpdateSecurity(ctx, models.SecuritySettingsPatch{MaxLoginAttempts: &attempts})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"maxLoginAttempts": float64(3)}, b.last().Body)
}
