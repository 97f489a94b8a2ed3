// Package models defines the backend resource shapes shared across
// internal packages.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// User types reported by the backend.
const (
	UserTypeUser  = "user"
	UserTypeAdmin = "admin"
)

// Legacy role names that may arrive as plain strings.
const (
	RoleAdministrator = "Administrator"
	RoleUser          = "User"
	RoleViewer        = "Viewer"
)

// UserProfile is the cached identity snapshot kept alongside the
// access token, and the payload of the /users endpoints.
type UserProfile struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Type             string     `json:"type,omitempty"`
	Role             RoleRef    `json:"role,omitzero"`
	IsVerified       bool       `json:"isVerified"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled"`
	Avatar           string     `json:"avatar,omitempty"`
	Department       string     `json:"department,omitempty"`
	Address          string     `json:"address,omitempty"`
	City             string     `json:"city,omitempty"`
	State            string     `json:"state,omitempty"`
	ZipCode          string     `json:"zipCode,omitempty"`
	Country          string     `json:"country,omitempty"`
	Status           string     `json:"status,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts both "id" and the Mongo-style "_id".
func (u *UserProfile) UnmarshalJSON(data []byte) error {
	type plain UserProfile

	aux := struct {
		*plain
		LegacyID string `json:"_id"`
	}{plain: (*plain)(u)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if u.ID == "" {
		u.ID = aux.LegacyID
	}

	return nil
}

// RoleName returns a display name for the user's role. Populated roles
// use their name, legacy string roles are returned as-is, and anything
// else (an unpopulated ObjectId or no role) falls back to the user type.
func (u *UserProfile) RoleName() string {
	if name := u.Role.Name; name != "" {
		switch {
		case u.Role.Populated:
			return name
		case name == RoleAdministrator, name == RoleUser, name == RoleViewer:
			return name
		}
	}

	if u.Type == UserTypeAdmin {
		return RoleAdministrator
	}

	return RoleUser
}

// IsAdmin reports whether the user has administrative rights.
func (u *UserProfile) IsAdmin() bool {
	if u == nil {
		return false
	}

	return u.Type == UserTypeAdmin || u.RoleName() == RoleAdministrator
}

// Contact returns the email when present, otherwise the phone number.
func (u *UserProfile) Contact() string {
	if u.Email != "" {
		return u.Email
	}

	return u.Phone
}

// UserPatch is a partial update to a cached profile. Nil fields are
// left untouched by Apply.
type UserPatch struct {
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Avatar           *string `json:"avatar,omitempty"`
	Department       *string `json:"department,omitempty"`
	Address          *string `json:"address,omitempty"`
	City             *string `json:"city,omitempty"`
	State            *string `json:"state,omitempty"`
	ZipCode          *string `json:"zipCode,omitempty"`
	Country          *string `json:"country,omitempty"`
	IsVerified       *bool   `json:"isVerified,omitempty"`
	TwoFactorEnabled *bool   `json:"twoFactorEnabled,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p == UserPatch{}
}

// Apply returns a copy of u with the patch merged in.
func (p UserPatch) Apply(u UserProfile) UserProfile {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	setString(&u.Name, p.Name)
	setString(&u.Email, p.Email)
	setString(&u.Phone, p.Phone)
	setString(&u.Avatar, p.Avatar)
	setString(&u.Department, p.Department)
	setString(&u.Address, p.Address)
	setString(&u.City, p.City)
	setString(&u.State, p.State)
	setString(&u.ZipCode, p.ZipCode)
	setString(&u.Country, p.Country)

	if p.IsVerified != nil {
		u.IsVerified = *p.IsVerified
	}

	if p.TwoFactorEnabled != nil {
		u.TwoFactorEnabled = *p.TwoFactorEnabled
	}

	return u
}

// PatchFromProfile builds a patch carrying every non-empty editable
// field of an updated profile returned by the backend.
func PatchFromProfile(u UserProfile) UserPatch {
	str := func(s string) *string {
		if s == "" {
			return nil
		}

		return &s
	}

	verified := u.IsVerified
	twoFactor := u.TwoFactorEnabled

	return UserPatch{
		Name:             str(u.Name),
		Email:            str(u.Email),
		Phone:            str(u.Phone),
		Avatar:           str(u.Avatar),
		Department:       str(u.Department),
		Address:          str(u.Address),
		City:             str(u.City),
		State:            str(u.State),
		ZipCode:          str(u.ZipCode),
		Country:          str(u.Country),
		IsVerified:       &verified,
		TwoFactorEnabled: &twoFactor,
	}
}

// UserStats is the payload of GET /users/stats.
type UserStats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Suspended    int `json:"suspended"`
	Inactive     int `json:"inactive"`
	NewThisMonth int `json:"newThisMonth"`
}

// UserList is the payload of GET /users.
type UserList struct {
	Users      []UserProfile `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

// Pagination is the paging block attached to list responses. Roles and
// permissions report "pages", users report "totalPages".
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	Pages      int `json:"pages,omitempty"`
	TotalPages int `json:"totalPages,omitempty"`
}

// PageCount returns whichever page total the backend populated.
func (p Pagination) PageCount() int {
	if p.Pages > 0 {
		return p.Pages
	}

	return p.TotalPages
}
