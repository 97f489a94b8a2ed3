package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile_AcceptsLegacyID(t *testing.T) {
	var u UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"U1","name":"Ada","email":"a@b.com"}`), &u))
	assert.Equal(t, "U1", u.ID)
	assert.Equal(t, "Ada", u.Name)
}

func TestUserProfile_PrefersID(t *testing.T) {
	var u UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"id":"U2","_id":"U1"}`), &u))
	assert.Equal(t, "U2", u.ID)
}

func TestUserProfile_RoleShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantRole string
	}{
		{"populated role", `{"type":"user","role":{"_id":"R1","name":"Auditor"}}`, "Auditor"},
		{"legacy string", `{"type":"user","role":"Viewer"}`, RoleViewer},
		{"object id admin", `{"type":"admin","role":"65f0c0ffee"}`, RoleAdministrator},
		{"object id user", `{"type":"user","role":"65f0c0ffee"}`, RoleUser},
		{"null role", `{"type":"admin","role":null}`, RoleAdministrator},
		{"missing role", `{"type":"user"}`, RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u UserProfile
			require.NoError(t, json.Unmarshal([]byte(tt.body), &u))
			assert.Equal(t, tt.wantRole, u.RoleName())
		})
	}
}

func TestUserProfile_IsAdmin(t *testing.T) {
	assert.False(t, (*UserProfile)(nil).IsAdmin())
	assert.True(t, (&UserProfile{Type: UserTypeAdmin}).IsAdmin())
	assert.True(t, (&UserProfile{Type: UserTypeUser, Role: RoleRef{Name: RoleAdministrator}}).IsAdmin())
	assert.False(t, (&UserProfile{Type: UserTypeUser, Role: RoleRef{Name: "Auditor", Populated: true}}).IsAdmin())
}

func TestUserProfile_CachedRoundTripKeepsRole(t *testing.T) {
	in := UserProfile{ID: "U1", Name: "Ada", Role: RoleRef{ID: "R1", Name: "Auditor", Populated: true}}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out UserProfile
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Role, out.Role)
	assert.Equal(t, "Auditor", out.RoleName())
}

func TestUserProfile_EmptyRoleOmitted(t *testing.T) {
	data, err := json.Marshal(UserProfile{ID: "U1"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"role"`)
}

func TestUserProfile_Contact(t *testing.T) {
	assert.Equal(t, "a@b.com", (&UserProfile{Email: "a@b.com", Phone: "+1"}).Contact())
	assert.Equal(t, "+1", (&UserProfile{Phone: "+1"}).Contact())
}

func TestUserPatch_Apply(t *testing.T) {
	name := "  Grace "
	enabled := true
	base := UserProfile{ID: "U1", Name: "Ada", Email: "a@b.com"}

	got := UserPatch{Name: &name, TwoFactorEnabled: &enabled}.Apply(base)
	assert.Equal(t, "Grace", got.Name)
	assert.Equal(t, "a@b.com", got.Email)
	assert.True(t, got.TwoFactorEnabled)
	assert.Equal(t, "Ada", base.Name, "Apply must not mutate its input")
}

func TestUserPatch_IsEmpty(t *testing.T) {
	assert.True(t, UserPatch{}.IsEmpty())
	city := "Pune"
	assert.False(t, UserPatch{City: &city}.IsEmpty())
}

func TestPatchFromProfile_SkipsEmptyStrings(t *testing.T) {
	p := PatchFromProfile(UserProfile{Name: "Ada", TwoFactorEnabled: true})
	require.NotNil(t, p.Name)
	assert.Equal(t, "Ada", *p.Name)
	assert.Nil(t, p.Email)
	require.NotNil(t, p.TwoFactorEnabled)
	assert.True(t, *p.TwoFactorEnabled)
}

func TestPermissionRefs_MixedArray(t *testing.T) {
	var role Role
	body := `{"_id":"R1","name":"Ops","isActive":true,"permissions":["P1",{"_id":"P2","name":"users.read","module":"users","action":"read"}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &role))

	assert.Equal(t, "R1", role.ID)
	require.Len(t, role.Permissions, 2)
	assert.Equal(t, []string{"P1", "P2"}, role.Permissions.IDs())
	assert.Equal(t, "users", role.Permissions[1].Module)
}

func TestPermissionRefs_Null(t *testing.T) {
	var role Role
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ops","permissions":null}`), &role))
	assert.Nil(t, role.Permissions)
}

func TestPagination_PageCount(t *testing.T) {
	assert.Equal(t, 3, Pagination{Pages: 3}.PageCount())
	assert.Equal(t, 4, Pagination{TotalPages: 4}.PageCount())
}

func TestAuthResult_HasSession(t *testing.T) {
	var nilResult *AuthResult
	assert.False(t, nilResult.HasSession())
	assert.False(t, (&AuthResult{Require2FA: true, UserID: "U9"}).HasSession())
	assert.True(t, (&AuthResult{User: &UserProfile{ID: "U1"}, AccessToken: "T1", RefreshToken: "R1"}).HasSession())
}
