package permission

import (
	"testing"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

func TestHas_ShortCircuit(t *testing.T) {
	custom := Empty("u1")

	assert.True(t, Has(user.RoleEmployee, custom, user.PermissionRequestLeave))
	assert.False(t, Has(user.RoleEmployee, custom, user.PermissionApproveLeave))

	custom = custom.Grant(user.PermissionApproveLeave)
	assert.True(t, Has(user.RoleEmployee, custom, user.PermissionApproveLeave))

	custom = custom.Deny(user.PermissionRequestLeave)
	assert.False(t, Has(user.RoleEmployee, custom, user.PermissionRequestLeave))
}

func TestGrantDeny_MoveBetweenLists(t *testing.T) {
	custom := Empty("u1").Deny(user.PermissionViewAllLeave)
	assert.Equal(t, []user.Permission{user.PermissionViewAllLeave}, custom.DeniedPermissions)

	custom = custom.Grant(user.PermissionViewAllLeave)
	assert.Empty(t, custom.DeniedPermissions)
	assert.Equal(t, []user.Permission{user.PermissionViewAllLeave}, custom.GrantedPermissions)

	// granting twice does not duplicate
	custom = custom.Grant(user.PermissionViewAllLeave)
	assert.Len(t, custom.GrantedPermissions, 1)

	custom = custom.Deny(user.PermissionViewAllLeave)
	assert.Empty(t, custom.GrantedPermissions)
	assert.Equal(t, []user.Permission{user.PermissionViewAllLeave}, custom.DeniedPermissions)
}

func TestNormalize_DenyWinsAndDedupes(t *testing.T) {
	custom := CustomUserPermissions{
		UserID: "u1",
		GrantedPermissions: []user.Permission{
			user.PermissionManageUsers, user.PermissionManageUsers, user.PermissionViewAllLeave,
		},
		DeniedPermissions: []user.Permission{
			user.PermissionViewAllLeave, user.PermissionViewAllLeave,
		},
	}.Normalize()

	assert.Equal(t, []user.Permission{user.PermissionManageUsers}, custom.GrantedPermissions)
	assert.Equal(t, []user.Permission{user.PermissionViewAllLeave}, custom.DeniedPermissions)
}

func TestEffective_RoleUnionGrantedMinusDenied(t *testing.T) {
	custom := Empty("u1").
		Grant(user.PermissionViewPayrollReports).
		Deny(user.PermissionCancelOwnLeave)

	effective := Effective(user.RoleEmployee, custom)

	assert.Contains(t, effective, user.PermissionViewPayrollReports)
	assert.NotContains(t, effective, user.PermissionCancelOwnLeave)
	assert.Contains(t, effective, user.PermissionRequestLeave)
	assert.Len(t, effective, 10)
}

func TestEffective_AgreesWithHas(t *testing.T) {
	overrides := []CustomUserPermissions{
		Empty("u"),
		Empty("u").Grant(user.PermissionManageRoles).Deny(user.PermissionViewOwnProfile),
		Empty("u").Deny(user.PermissionApproveLeave).Deny(user.PermissionConfigureSystem),
		// not normalized: a permission in both lists must behave as denied
		{UserID: "u", GrantedPermissions: []user.Permission{user.PermissionRejectLeave}, DeniedPermissions: []user.Permission{user.PermissionRejectLeave}},
	}

	for _, role := range append(user.AllRoles(), user.Role("unknown")) {
		for _, custom := range overrides {
			effective := Effective(role, custom)
			for _, p := range user.AllPermissions() {
				assert.Equal(t, Has(role, custom, p), contains(effective, p), "role=%s perm=%s", role, p)
				if custom.IsDenied(p) {
					assert.NotContains(t, effective, p)
				}
			}
		}
	}
}

func TestRoleTable(t *testing.T) {
	assert.Len(t, user.PermissionsForRole(user.RoleEmployee), 10)
	assert.Len(t, user.PermissionsForRole(user.RoleHRAdvisor), 21)
	assert.Len(t, user.PermissionsForRole(user.RoleAdmin), len(user.AllPermissions()))
	assert.Empty(t, user.PermissionsForRole(user.Role("ghost")))

	role, ok := user.NormalizeRole("Advisor")
	assert.True(t, ok)
	assert.Equal(t, user.RoleHRAdvisor, role)

	_, ok = user.NormalizeRole("owner")
	assert.False(t, ok)
}

func TestSetCustomPermissionsRequest_Validate(t *testing.T) {
	req := SetCustomPermissionsRequest{
		GrantedPermissions: []string{"manage_users", "fly"},
		DeniedPermissions:  []string{"view_own_leave"},
	}
	err := req.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "granted_permissions[1]")

	req.GrantedPermissions = []string{"manage_users", "view_own_leave"}
	assert.NoError(t, req.Validate())

	custom := req.ToCustom("u1")
	assert.Equal(t, []user.Permission{user.PermissionManageUsers}, custom.GrantedPermissions)
	assert.Equal(t, []user.Permission{user.PermissionViewOwnLeave}, custom.DeniedPermissions)
}
