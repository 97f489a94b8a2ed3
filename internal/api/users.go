package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alexjbarnes/admin-console/internal/gateway"
	"github.com/alexjbarnes/admin-console/internal/models"
)

// UserFilter narrows GET /users. Zero fields are omitted.
type UserFilter struct {
	Search    string
	Role      string
	Status    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (f UserFilter) query() url.Values {
	q := url.Values{}
	setString(q, "search", f.Search)
	setString(q, "role", f.Role)
	setString(q, "status", f.Status)
	setInt(q, "page", f.Page)
	setInt(q, "limit", f.Limit)
	setString(q, "sortBy", f.SortBy)
	setString(q, "sortOrder", f.SortOrder)

	return q
}

// UserService covers the /users endpoints.
type UserService struct {
	client *gateway.Client
}

// NewUserService creates a UserService over client.
func NewUserService(client *gateway.Client) *UserService {
	return &UserService{client: client}
}

// Profile returns the signed-in user's profile.
func (s *UserService) Profile(ctx context.Context) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := s.client.Get(ctx, "/users/profile", &out); err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	return &out, nil
}

// UpdateProfile changes the signed-in user's profile and returns the
// stored result.
func (s *UserService) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := s.client.Put(ctx, "/users/profile", patch, &out); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return &out, nil
}

// ChangePassword changes the signed-in user's password.
func (s *UserService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	if err := s.client.Post(ctx, "/users/change-password", req, nil); err != nil {
		return fmt.Errorf("changing password: %w", err)
	}

	return nil
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, f UserFilter) (*models.UserList, error) {
	var out models.UserList
	if err := s.client.Get(ctx, "/users", &out, gateway.WithQuery(f.query())); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return &out, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := s.client.Get(ctx, "/users/"+url.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", id, err)
	}

	return &out, nil
}

// Update replaces the editable fields of a user.
func (s *UserService) Update(ctx context.Context, id string, patch models.UserPatch) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := s.client.Put(ctx, "/users/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, fmt.Errorf("updating user %s: %w", id, err)
	}

	return &out, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/users/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}

	return nil
}

// Suspend blocks a user from signing in.
func (s *UserService) Suspend(ctx context.Context, id string) error {
	if err := s.client.Post(ctx, "/users/"+url.PathEscape(id)+"/suspend", nil, nil); err != nil {
		return fmt.Errorf("suspending user %s: %w", id, err)
	}

	return nil
}

// Activate lifts a suspension.
func (s *UserService) Activate(ctx context.Context, id string) error {
	if err := s.client.Post(ctx, "/users/"+url.PathEscape(id)+"/activate", nil, nil); err != nil {
		return fmt.Errorf("activating user %s: %w", id, err)
	}

	return nil
}

// Stats returns the user counters.
func (s *UserService) Stats(ctx context.Context) (*models.UserStats, error) {
	var out models.UserStats
	if err := s.client.Get(ctx, "/users/stats", &out); err != nil {
		return nil, fmt.Errorf("fetching user stats: %w", err)
	}

	return &out, nil
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func setBool(q url.Values, key string, v *bool) {
	if v != nil {
		q.Set(key, strconv.FormatBool(*v))
	}
}
