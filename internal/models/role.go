package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// RoleRef is a user's role as the backend sends it: an ObjectId string,
// a legacy role name string, a populated role object, or null.
type RoleRef struct {
	ID        string
	Name      string
	Populated bool
}

// UnmarshalJSON decodes any of the role shapes.
func (r *RoleRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = RoleRef{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*r = RoleRef{ID: s, Name: s}

		return nil
	}

	var role Role
	if err := json.Unmarshal(data, &role); err != nil {
		return fmt.Errorf("decoding role: %w", err)
	}

	*r = RoleRef{ID: role.ID, Name: role.Name, Populated: true}

	return nil
}

// MarshalJSON writes populated roles as {_id, name} and bare references
// as a string, so cached profiles round-trip through the store.
func (r RoleRef) MarshalJSON() ([]byte, error) {
	switch {
	case r.Populated:
		return json.Marshal(struct {
			ID   string `json:"_id"`
			Name string `json:"name"`
		}{r.ID, r.Name})
	case r.ID != "":
		return json.Marshal(r.ID)
	default:
		return []byte("null"), nil
	}
}

// IsZero lets omitempty-aware encoders skip empty references.
func (r RoleRef) IsZero() bool {
	return r == RoleRef{}
}

// Role matches the backend IRole document.
type Role struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Permissions PermissionRefs `json:"permissions,omitempty"`
	IsActive    bool           `json:"isActive"`
	Path        string         `json:"path,omitempty"`
	CreatedAt   *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts both "id" and "_id".
func (r *Role) UnmarshalJSON(data []byte) error {
	type plain Role

	aux := struct {
		*plain
		LegacyID string `json:"_id"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if r.ID == "" {
		r.ID = aux.LegacyID
	}

	return nil
}

// RoleList is the payload of GET /roles.
type RoleList struct {
	Roles      []Role     `json:"roles"`
	Pagination Pagination `json:"pagination"`
}

// CreateRoleRequest is the body of POST /roles.
type CreateRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	ParentID    string   `json:"parentId,omitempty"`
}

// UpdateRoleRequest is the body of PUT and PATCH /roles/{id}.
type UpdateRoleRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// AssignRoleRequest is the body of POST /roles/assign.
type AssignRoleRequest struct {
	UserID string `json:"userId"`
	RoleID string `json:"roleId"`
}
