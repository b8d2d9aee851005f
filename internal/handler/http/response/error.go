package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/auth"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/calendar"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/claim"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/dashboard"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	empDashboard "github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee_dashboard"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/illness"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/invoice"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/leave"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/department"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/team"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/report"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, jwt.ErrNoActor),
		errors.Is(err, jwt.ErrInvalidTokenType),
		errors.Is(err, jwt.ErrMissingUserID):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrRefreshTokenCookieNotFound),
		errors.Is(err, auth.ErrRefreshTokenCookieEmpty):
		Unauthorized(w, "Refresh token missing")
	case errors.Is(err, auth.ErrUserInactive):
		Forbidden(w, "Account is inactive or suspended")
	case errors.Is(err, auth.ErrGoogleEmailNotVerified):
		Forbidden(w, "Google email is not verified")
	case errors.Is(err, auth.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, auth.ErrInvalidResetToken):
		BadRequest(w, "Invalid or expired password reset token", nil)
	case errors.Is(err, auth.ErrOAuthStateMismatch):
		BadRequest(w, "OAuth state mismatch", nil)
	case errors.Is(err, auth.ErrOAuthDisabled):
		NotFound(w, "Google sign-in is not configured")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrInvalidRole), errors.Is(err, user.ErrInvalidStatus):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, user.ErrCannotDeleteSelf), errors.Is(err, user.ErrCannotChangeOwnRole):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Permission domain errors
	case errors.Is(err, permission.ErrPermissionDenied):
		Forbidden(w, "Permission denied")
	case errors.Is(err, permission.ErrUnknownPermission):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrDocumentNotFound):
		NotFound(w, "Document not found")
	case errors.Is(err, employee.ErrUserAlreadyLinked):
		Conflict(w, "User is already linked to another employee")
	case errors.Is(err, employee.ErrLinkedUserNotFound):
		BadRequest(w, "Linked user not found", nil)
	case errors.Is(err, employee.ErrDepartmentNotFound), errors.Is(err, employee.ErrTeamNotFound):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, employee.ErrFileTooLarge):
		BadRequest(w, "File exceeds the 10 MiB limit", nil)
	case errors.Is(err, employee.ErrInvalidFileType):
		BadRequest(w, "File type is not allowed", nil)
	case errors.Is(err, employee.ErrForbidden):
		Forbidden(w, err.Error())

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrLeaveOverlap):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrNotOwner), errors.Is(err, leave.ErrForbidden):
		Forbidden(w, err.Error())

	// Illness domain errors
	case errors.Is(err, illness.ErrIllnessRecordNotFound):
		NotFound(w, "Illness record not found")
	case errors.Is(err, illness.ErrInvalidStatusTransition):
		Conflict(w, err.Error())
	case errors.Is(err, illness.ErrForbidden):
		Forbidden(w, err.Error())

	// Claim domain errors
	case errors.Is(err, claim.ErrClaimNotFound):
		NotFound(w, "Claim not found")
	case errors.Is(err, claim.ErrClaimAlreadyProcessed):
		Conflict(w, "Claim already processed")
	case errors.Is(err, claim.ErrForbidden):
		Forbidden(w, err.Error())

	// Departments and teams
	case errors.Is(err, department.ErrDepartmentNotFound):
		NotFound(w, "Department not found")
	case errors.Is(err, department.ErrDepartmentNameExists), errors.Is(err, department.ErrDepartmentInUse):
		Conflict(w, err.Error())
	case errors.Is(err, team.ErrTeamNotFound):
		NotFound(w, "Team not found")
	case errors.Is(err, team.ErrTeamNameExists), errors.Is(err, team.ErrMemberInOtherTeam):
		Conflict(w, err.Error())
	case errors.Is(err, team.ErrManagerNotFound), errors.Is(err, team.ErrMemberNotFound),
		errors.Is(err, team.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, department.ErrForbidden), errors.Is(err, team.ErrForbidden):
		Forbidden(w, err.Error())

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrPayslipPDFNotFound):
		NotFound(w, "Payslip PDF not available")
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrPayslipExists):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrPayslipAlreadyPublished), errors.Is(err, payroll.ErrPayslipNotPublished):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrInvalidPDF):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrForbidden):
		Forbidden(w, err.Error())

	// Invoice domain errors
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		NotFound(w, "Invoice not found")
	case errors.Is(err, invoice.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, invoice.ErrInvalidStatusTransition), errors.Is(err, invoice.ErrInvoiceNotDraft):
		Conflict(w, err.Error())
	case errors.Is(err, invoice.ErrForbidden):
		Forbidden(w, err.Error())

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrInvalidNotificationType):
		BadRequest(w, err.Error(), nil)

	// Calendar domain errors
	case errors.Is(err, calendar.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, calendar.ErrHolidayExists):
		Conflict(w, err.Error())
	case errors.Is(err, calendar.ErrInvalidRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, calendar.ErrForbidden):
		Forbidden(w, err.Error())

	// Dashboards and reports
	case errors.Is(err, dashboard.ErrForbidden), errors.Is(err, report.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, report.ErrUnknownFormat), errors.Is(err, report.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Callers without an employee record
	case errors.Is(err, employee.ErrNoEmployeeRecord),
		errors.Is(err, leave.ErrNoEmployeeRecord),
		errors.Is(err, illness.ErrNoEmployeeRecord),
		errors.Is(err, payroll.ErrNoEmployeeRecord),
		errors.Is(err, invoice.ErrNoEmployeeRecord),
		errors.Is(err, claim.ErrNoEmployeeRecord),
		errors.Is(err, team.ErrNoEmployeeRecord),
		errors.Is(err, empDashboard.ErrNoEmployeeRecord):
		NotFound(w, "No employee record is linked to this account")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
