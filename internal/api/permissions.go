package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alexjbarnes/admin-console/internal/gateway"
	"github.com/alexjbarnes/admin-console/internal/models"
)

// PermissionFilter narrows GET /permissions.
type PermissionFilter struct {
	IsActive *bool
	Module   string
	Action   string
	Page     int
	Limit    int
}

func (f PermissionFilter) query() url.Values {
	q := url.Values{}
	setBool(q, "isActive", f.IsActive)
	setString(q, "module", f.Module)
	setString(q, "action", f.Action)
	setInt(q, "page", f.Page)
	setInt(q, "limit", f.Limit)

	return q
}

// PermissionService covers the /permissions endpoints.
type PermissionService struct {
	client *gateway.Client
}

// NewPermissionService creates a PermissionService over client.
func NewPermissionService(client *gateway.Client) *PermissionService {
	return &PermissionService{client: client}
}

// List returns one page of permissions.
func (s *PermissionService) List(ctx context.Context, f PermissionFilter) (*models.PermissionList, error) {
	var out models.PermissionList
	if err := s.client.Get(ctx, "/permissions", &out, gateway.WithQuery(f.query())); err != nil {
		return nil, fmt.Errorf("listing permissions: %w", err)
	}

	return &out, nil
}

// Get returns one permission.
func (s *PermissionService) Get(ctx context.Context, id string) (*models.Permission, error) {
	var out models.Permission
	if err := s.client.Get(ctx, "/permissions/"+url.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("fetching permission %s: %w", id, err)
	}

	return &out, nil
}

// ByModule returns every permission of a module.
func (s *PermissionService) ByModule(ctx context.Context, module string) ([]models.Permission, error) {
	var out []models.Permission
	if err := s.client.Get(ctx, "/permissions/module/"+url.PathEscape(module), &out); err != nil {
		return nil, fmt.Errorf("listing permissions of %s: %w", module, err)
	}

	return out, nil
}

// Create adds a permission.
func (s *PermissionService) Create(ctx context.Context, req models.CreatePermissionRequest) (*models.Permission, error) {
	var out models.Permission
	if err := s.client.Post(ctx, "/permissions", req, &out); err != nil {
		return nil, fmt.Errorf("creating permission: %w", err)
	}

	return &out, nil
}

// Update replaces a permission, or patches it when partial is set.
func (s *PermissionService) Update(ctx context.Context, id string, req models.UpdatePermissionRequest, partial bool) (*models.Permission, error) {
	var (
		out  models.Permission
		err  error
		path = "/permissions/" + url.PathEscape(id)
	)

	if partial {
		err = s.client.Patch(ctx, path, req, &out)
	} else {
		err = s.client.Put(ctx, path, req, &out)
	}

	if err != nil {
		return nil, fmt.Errorf("updating permission %s: %w", id, err)
	}

	return &out, nil
}

// Delete removes a permission.
func (s *PermissionService) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/permissions/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("deleting permission %s: %w", id, err)
	}

	return nil
}

// Assign grants permissions directly to a user.
func (s *PermissionService) Assign(ctx context.Context, userID string, permissionIDs []string) error {
	req := models.AssignPermissionsRequest{UserID: userID, PermissionIDs: permissionIDs}

	if err := s.client.Post(ctx, "/permissions/assign", req, nil); err != nil {
		return fmt.Errorf("assigning permissions to %s: %w", userID, err)
	}

	return nil
}
