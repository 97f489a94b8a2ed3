package api

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alexjbarnes/admin-console/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	// dashboardFetchLimit is the page size used to pull every record for
	// the overview counts.
	dashboardFetchLimit = 1000

	recentUserCount = 5
)

// DashboardStats summarizes users, roles and permissions.
type DashboardStats struct {
	TotalUsers        int                  `json:"totalUsers"`
	VerifiedUsers     int                  `json:"verifiedUsers"`
	AdminUsers        int                  `json:"adminUsers"`
	TotalRoles        int                  `json:"totalRoles"`
	ActiveRoles       int                  `json:"activeRoles"`
	TotalPermissions  int                  `json:"totalPermissions"`
	ActivePermissions int                  `json:"activePermissions"`
	RecentUsers       []models.UserProfile `json:"recentUsers"`
}

// DashboardService aggregates the overview page.
type DashboardService struct {
	users       *UserService
	roles       *RoleService
	permissions *PermissionService
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(users *UserService, roles *RoleService, permissions *PermissionService) *DashboardService {
	return &DashboardService{users: users, roles: roles, permissions: permissions}
}

// Stats fetches users, roles and permissions concurrently and derives
// the overview counts. Any failed fetch fails the whole call.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var (
		users *models.UserList
		roles *models.RoleList
		perms *models.PermissionList
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		users, err = s.users.List(gctx, UserFilter{Limit: dashboardFetchLimit})

		return err
	})

	g.Go(func() error {
		var err error
		roles, err = s.roles.List(gctx, RoleFilter{Limit: dashboardFetchLimit})

		return err
	})

	g.Go(func() error {
		var err error
		perms, err = s.permissions.List(gctx, PermissionFilter{Limit: dashboardFetchLimit})

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading dashboard: %w", err)
	}

	stats := &DashboardStats{
		TotalUsers:       len(users.Users),
		TotalRoles:       len(roles.Roles),
		TotalPermissions: len(perms.Permissions),
	}

	for i := range users.Users {
		u := &users.Users[i]
		if u.IsVerified {
			stats.VerifiedUsers++
		}

		if u.Type == models.UserTypeAdmin {
			stats.AdminUsers++
		}
	}

	for _, r := range roles.Roles {
		if r.IsActive {
			stats.ActiveRoles++
		}
	}

	for _, p := range perms.Permissions {
		if p.IsActive {
			stats.ActivePermissions++
		}
	}

	stats.RecentUsers = recentUsers(users.Users, recentUserCount)

	return stats, nil
}

// recentUsers returns the n most recently created users, newest first.
// Users without a creation time sort last.
func recentUsers(users []models.UserProfile, n int) []models.UserProfile {
	sorted := make([]models.UserProfile, len(users))
	copy(sorted, users)

	created := func(u models.UserProfile) time.Time {
		if u.CreatedAt == nil {
			return time.Time{}
		}

		return *u.CreatedAt
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return created(sorted[i]).After(created(sorted[j]))
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	return sorted
}
