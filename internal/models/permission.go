package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Permission actions understood by the backend.
const (
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionManage = "manage"
	ActionAll    = "all"
)

// Permission matches the backend IPermission document.
type Permission struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Module      string     `json:"module,omitempty"`
	Action      string     `json:"action,omitempty"`
	Fields      []string   `json:"fields,omitempty"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts both "id" and "_id".
func (p *Permission) UnmarshalJSON(data []byte) error {
	type plain Permission

	aux := struct {
		*plain
		LegacyID string `json:"_id"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = aux.LegacyID
	}

	return nil
}

// PermissionRefs holds a role's permissions, which the backend sends
// either as bare ids or as populated documents. Bare ids decode to a
// Permission with only ID set.
type PermissionRefs []Permission

// UnmarshalJSON decodes a mixed array of ids and objects.
func (p *PermissionRefs) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding permissions: %w", err)
	}

	out := make(PermissionRefs, 0, len(raw))

	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var id string
			if err := json.Unmarshal(item, &id); err != nil {
				return err
			}

			out = append(out, Permission{ID: id})

			continue
		}

		var perm Permission
		if err := json.Unmarshal(item, &perm); err != nil {
			return err
		}

		out = append(out, perm)
	}

	*p = out

	return nil
}

// IDs returns the permission ids in order.
func (p PermissionRefs) IDs() []string {
	ids := make([]string, 0, len(p))
	for _, perm := range p {
		ids = append(ids, perm.ID)
	}

	return ids
}

// PermissionList is the payload of GET /permissions.
type PermissionList struct {
	Permissions []Permission `json:"permissions"`
	Pagination  Pagination   `json:"pagination"`
}

// CreatePermissionRequest is the body of POST /permissions.
type CreatePermissionRequest struct {
	Name        string   `json:"name"`
	Module      string   `json:"module"`
	Action      string   `json:"action"`
	Fields      []string `json:"fields"`
	Description string   `json:"description,omitempty"`
}

// UpdatePermissionRequest is the body of PUT and PATCH /permissions/{id}.
type UpdatePermissionRequest struct {
	Name        *string  `json:"name,omitempty"`
	Module      *string  `json:"module,omitempty"`
	Action      *string  `json:"action,omitempty"`
	Fields      []string `json:"fields,omitempty"`
	Description *string  `json:"description,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// AssignPermissionsRequest is the body of POST /permissions/assign.
type AssignPermissionsRequest struct {
	UserID        string   `json:"userId"`
	PermissionIDs []string `json:"permissionIds"`
}
