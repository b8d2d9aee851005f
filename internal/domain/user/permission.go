package user

type Permission string

const (
	// Self service
	PermissionViewOwnProfile   Permission = "view_own_profile"
	PermissionEditOwnProfile   Permission = "edit_own_profile"
	PermissionViewOwnPayslips  Permission = "view_own_payslips"
	PermissionRequestLeave     Permission = "request_leave"
	PermissionViewOwnLeave     Permission = "view_own_leave"
	PermissionCancelOwnLeave   Permission = "cancel_own_leave"
	PermissionRecordOwnIllness Permission = "record_own_illness"
	PermissionViewOwnIllness   Permission = "view_own_illness"
	PermissionSubmitClaim      Permission = "submit_claim"
	PermissionViewOwnClaims    Permission = "view_own_claims"

	// HR
	PermissionViewAllEmployees     Permission = "view_all_employees"
	PermissionViewEmployeeDetails  Permission = "view_employee_details"
	PermissionEditEmployeeDetails  Permission = "edit_employee_details"
	PermissionApproveLeave         Permission = "approve_leave"
	PermissionRejectLeave          Permission = "reject_leave"
	PermissionViewAllLeave         Permission = "view_all_leave"
	PermissionManageIllnessRecords Permission = "manage_illness_records"
	PermissionViewPayrollReports   Permission = "view_payroll_reports"
	PermissionViewAllClaims        Permission = "view_all_claims"
	PermissionManageClaims         Permission = "manage_claims"
	PermissionManageTeams          Permission = "manage_teams"

	// Administration
	PermissionManageUsers       Permission = "manage_users"
	PermissionManageRoles       Permission = "manage_roles"
	PermissionManagePermissions Permission = "manage_permissions"
	PermissionCreatePayslips    Permission = "create_payslips"
	PermissionEditPayslips      Permission = "edit_payslips"
	PermissionDeletePayslips    Permission = "delete_payslips"
	PermissionViewSystemLogs    Permission = "view_system_logs"
	PermissionConfigureSystem   Permission = "configure_system"
	PermissionManageDocuments   Permission = "manage_documents"
)

var employeePermissions = []Permission{
	PermissionViewOwnProfile,
	PermissionEditOwnProfile,
	PermissionViewOwnPayslips,
	PermissionRequestLeave,
	PermissionViewOwnLeave,
	PermissionCancelOwnLeave,
	PermissionRecordOwnIllness,
	PermissionViewOwnIllness,
	PermissionSubmitClaim,
	PermissionViewOwnClaims,
}

var hrPermissions = []Permission{
	PermissionViewAllEmployees,
	PermissionViewEmployeeDetails,
	PermissionEditEmployeeDetails,
	PermissionApproveLeave,
	PermissionRejectLeave,
	PermissionViewAllLeave,
	PermissionManageIllnessRecords,
	PermissionViewPayrollReports,
	PermissionViewAllClaims,
	PermissionManageClaims,
	PermissionManageTeams,
}

var adminPermissions = []Permission{
	PermissionManageUsers,
	PermissionManageRoles,
	PermissionManagePermissions,
	PermissionCreatePayslips,
	PermissionEditPayslips,
	PermissionDeletePayslips,
	PermissionViewSystemLogs,
	PermissionConfigureSystem,
	PermissionManageDocuments,
}

// AllPermissions returns the permission catalogue in display order.
func AllPermissions() []Permission {
	all := make([]Permission, 0, len(employeePermissions)+len(hrPermissions)+len(adminPermissions))
	all = append(all, employeePermissions...)
	all = append(all, hrPermissions...)
	all = append(all, adminPermissions...)
	return all
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleEmployee:  employeePermissions,
	RoleHRAdvisor: append(append([]Permission{}, employeePermissions...), hrPermissions...),
	RoleAdmin:     AllPermissions(),
}

// IsValid reports whether p is part of the catalogue.
func (p Permission) IsValid() bool {
	for _, known := range AllPermissions() {
		if known == p {
			return true
		}
	}
	return false
}

// PermissionsForRole returns a copy of the static permission set for role.
func PermissionsForRole(role Role) []Permission {
	perms := RolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission checks the static role table only.
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
