package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alexjbarnes/admin-console/internal/gateway"
	"github.com/alexjbarnes/admin-console/internal/models"
)

// RoleFilter narrows GET /roles.
type RoleFilter struct {
	IsActive *bool
	Page     int
	Limit    int
}

func (f RoleFilter) query() url.Values {
	q := url.Values{}
	setBool(q, "isActive", f.IsActive)
	setInt(q, "page", f.Page)
	setInt(q, "limit", f.Limit)

	return q
}

// RoleService covers the /roles endpoints.
type RoleService struct {
	client *gateway.Client
}

// NewRoleService creates a RoleService over client.
func NewRoleService(client *gateway.Client) *RoleService {
	return &RoleService{client: client}
}

// List returns one page of roles.
func (s *RoleService) List(ctx context.Context, f RoleFilter) (*models.RoleList, error) {
	var out models.RoleList
	if err := s.client.Get(ctx, "/roles", &out, gateway.WithQuery(f.query())); err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}

	return &out, nil
}

// Get returns one role with its permissions.
func (s *RoleService) Get(ctx context.Context, id string) (*models.Role, error) {
	var out models.Role
	if err := s.client.Get(ctx, "/roles/"+url.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("fetching role %s: %w", id, err)
	}

	return &out, nil
}

// Create adds a role.
func (s *RoleService) Create(ctx context.Context, req models.CreateRoleRequest) (*models.Role, error) {
	var out models.Role
	if err := s.client.Post(ctx, "/roles", req, &out); err != nil {
		return nil, fmt.Errorf("creating role: %w", err)
	}

	return &out, nil
}

// Update replaces a role. With partial set, only the given fields are
// sent as a PATCH.
func (s *RoleService) Update(ctx context.Context, id string, req models.UpdateRoleRequest, partial bool) (*models.Role, error) {
	var (
		out  models.Role
		err  error
		path = "/roles/" + url.PathEscape(id)
	)

	if partial {
		err = s.client.Patch(ctx, path, req, &out)
	} else {
		err = s.client.Put(ctx, path, req, &out)
	}

	if err != nil {
		return nil, fmt.Errorf("updating role %s: %w", id, err)
	}

	return &out, nil
}

// Delete removes a role.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/roles/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("deleting role %s: %w", id, err)
	}

	return nil
}

// Assign gives a user a role.
func (s *RoleService) Assign(ctx context.Context, userID, roleID string) error {
	req := models.AssignRoleRequest{UserID: userID, RoleID: roleID}

	if err := s.client.Post(ctx, "/roles/assign", req, nil); err != nil {
		return fmt.Errorf("assigning role %s to %s: %w", roleID, userID, err)
	}

	return nil
}
