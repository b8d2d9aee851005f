package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hr-portal-backend/internal/config"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/time/rate"
)

const Version = "v1.0.0"

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth              AuthHandler
	User              UserHandler
	Permission        PermissionHandler
	Employee          EmployeeHandler
	Leave             LeaveHandler
	Illness           IllnessHandler
	Claim             ClaimHandler
	Master            MasterHandler
	Payroll           PayrollHandler
	Invoice           InvoiceHandler
	Notification      NotificationHandler
	Calendar          CalendarHandler
	Dashboard         DashboardHandler
	EmployeeDashboard EmployeeDashboardHandler
	Report            ReportHandler
}

func NewRouter(cfg *config.Config, JWTService jwt.Service, checker permission.Checker, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
		Level:       cfg.SlogLevel(),
	})).With(
		slog.String("app", "hr-portal"),
		slog.String("version", Version),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	need := func(perms ...user.Permission) func(chi.Router) chi.Router {
		return func(r chi.Router) chi.Router {
			return r.With(middleware.RequirePermission(checker, perms...))
		}
	}
	authLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.AuthRPS), cfg.RateLimit.AuthBurst)

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimitByIP(authLimiter))
				r.Post("/signup", h.Auth.SignUp)
				r.Post("/signin", h.Auth.SignIn)
				r.Post("/refresh", h.Auth.RefreshToken)
				r.Post("/signout", h.Auth.SignOut)
				r.Post("/forgot-password", h.Auth.ForgotPassword)
				r.Post("/reset-password", h.Auth.ResetPassword)
				r.Get("/google", h.Auth.SignInWithGoogle)
				r.Get("/google/callback", h.Auth.GoogleCallback)
			})

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
				r.Get("/me", h.Auth.Me)
				r.Get("/role", h.Auth.GetUserRole)
			})
		})

		// EventSource cannot send headers; the stream authenticates with its own token.
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Get("/permissions", h.Permission.Catalogue)
			need(user.PermissionManagePermissions)(r).Post("/permissions/cache/clear", h.Permission.ClearCache)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequirePermission(checker, user.PermissionManageUsers))
				r.Get("/", h.User.ListUsers)
				r.Get("/active", h.User.ListActiveUsers)
				r.Post("/", h.User.CreateUser)
				r.Get("/{id}", h.User.GetUser)
				r.Put("/{id}", h.User.UpdateUser)
				r.Delete("/{id}", h.User.DeleteUser)
				need(user.PermissionManageRoles)(r).Put("/{id}/role", h.User.UpdateRole)

				r.Route("/{id}/permissions", func(r chi.Router) {
					r.Use(middleware.RequirePermission(checker, user.PermissionManagePermissions))
					r.Get("/", h.Permission.GetUserPermissions)
					r.Put("/", h.Permission.SetUserPermissions)
					r.Delete("/", h.Permission.ResetUserPermissions)
					r.Post("/grant", h.Permission.GrantPermission)
					r.Post("/deny", h.Permission.DenyPermission)
				})
			})

			// Services enforce ownership; route guards only cover staff-only endpoints.
			r.Route("/employees", func(r chi.Router) {
				need(user.PermissionViewAllEmployees)(r).Get("/", h.Employee.ListEmployees)
				need(user.PermissionEditEmployeeDetails)(r).Post("/", h.Employee.CreateEmployee)
				r.Get("/me", h.Employee.GetMyEmployee)
				r.Patch("/me", h.Employee.UpdateOwnProfile)
				r.Get("/by-user/{userID}", h.Employee.GetEmployeeByUser)
				r.Get("/{id}", h.Employee.GetEmployee)
				need(user.PermissionEditEmployeeDetails)(r).Put("/{id}", h.Employee.UpdateEmployee)
				r.Post("/{id}/avatar", h.Employee.UploadAvatar)
				r.Post("/{id}/documents", h.Employee.UploadDocument)
				r.Get("/{id}/documents/{docID}", h.Employee.DownloadDocument)
				need(user.PermissionManageDocuments)(r).Delete("/{id}/documents/{docID}", h.Employee.DeleteDocument)

				r.Get("/{id}/leave", h.Leave.GetEmployeeRequests)
				r.Get("/{id}/illness", h.Illness.GetEmployeeRecords)
				r.Get("/{id}/payslips", h.Payroll.GetEmployeePayslips)
				r.Get("/{id}/invoices", h.Invoice.GetEmployeeInvoices)
			})

			r.Route("/leave", func(r chi.Router) {
				need(user.PermissionViewAllLeave)(r).Get("/", h.Leave.ListRequests)
				need(user.PermissionViewAllLeave)(r).Get("/pending", h.Leave.GetPendingRequests)
				r.Get("/me", h.Leave.GetMyRequests)
				r.Post("/", h.Leave.CreateRequest)
				r.Get("/{id}", h.Leave.GetRequest)
				need(user.PermissionApproveLeave)(r).Post("/{id}/approve", h.Leave.ApproveRequest)
				need(user.PermissionRejectLeave)(r).Post("/{id}/reject", h.Leave.RejectRequest)
				r.Post("/{id}/cancel", h.Leave.CancelRequest)
			})

			r.Route("/illness", func(r chi.Router) {
				r.Post("/", h.Illness.CreateRecord)
				r.Get("/me", h.Illness.GetMyRecords)
				need(user.PermissionManageIllnessRecords)(r).Get("/active", h.Illness.GetActiveRecords)
				need(user.PermissionManageIllnessRecords)(r).Get("/statistics", h.Illness.GetStatistics)
				r.Get("/{id}", h.Illness.GetRecord)
				need(user.PermissionManageIllnessRecords)(r).Put("/{id}", h.Illness.UpdateRecord)
				need(user.PermissionManageIllnessRecords)(r).Patch("/{id}/status", h.Illness.UpdateStatus)
				r.Post("/{id}/certificate", h.Illness.UploadCertificate)
			})

			r.Route("/claims", func(r chi.Router) {
				need(user.PermissionViewAllClaims)(r).Get("/", h.Claim.ListClaims)
				r.Post("/", h.Claim.CreateClaim)
				r.Get("/me", h.Claim.GetMyClaims)
				r.Get("/{id}", h.Claim.GetClaim)
				r.Delete("/{id}", h.Claim.DeleteClaim)
				r.Post("/{id}/attachment", h.Claim.UploadAttachment)
				need(user.PermissionManageClaims)(r).Post("/{id}/process", h.Claim.ProcessClaim)
				need(user.PermissionManageClaims)(r).Post("/{id}/reject", h.Claim.RejectClaim)
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.Master.ListDepartments)
				r.Get("/{id}", h.Master.GetDepartment)
				need(user.PermissionManageTeams)(r).Post("/", h.Master.CreateDepartment)
				need(user.PermissionManageTeams)(r).Put("/{id}", h.Master.UpdateDepartment)
				need(user.PermissionManageTeams)(r).Delete("/{id}", h.Master.DeleteDepartment)
			})

			r.Route("/teams", func(r chi.Router) {
				need(user.PermissionViewAllEmployees)(r).Get("/", h.Master.ListTeams)
				r.Get("/me", h.Master.GetMyTeams)
				r.Get("/{id}", h.Master.GetTeam)
				r.Get("/{id}/absences", h.Master.GetTeamAbsences)
				need(user.PermissionManageTeams)(r).Post("/", h.Master.CreateTeam)
				need(user.PermissionManageTeams)(r).Put("/{id}", h.Master.UpdateTeam)
				need(user.PermissionManageTeams)(r).Put("/{id}/members", h.Master.SetTeamMembers)
				need(user.PermissionManageTeams)(r).Delete("/{id}", h.Master.DeleteTeam)
			})

			r.Route("/payslips", func(r chi.Router) {
				need(user.PermissionViewPayrollReports)(r).Get("/", h.Payroll.ListPayslips)
				need(user.PermissionCreatePayslips)(r).Post("/", h.Payroll.CreatePayslip)
				r.Get("/me", h.Payroll.GetMyPayslips)
				r.Get("/{id}", h.Payroll.GetPayslip)
				r.Get("/{id}/pdf", h.Payroll.DownloadPDF)
				r.Post("/{id}/viewed", h.Payroll.MarkAsViewed)
				need(user.PermissionEditPayslips)(r).Put("/{id}", h.Payroll.UpdatePayslip)
				need(user.PermissionDeletePayslips)(r).Delete("/{id}", h.Payroll.DeletePayslip)
				need(user.PermissionEditPayslips)(r).Post("/{id}/publish", h.Payroll.PublishPayslip)
				need(user.PermissionEditPayslips)(r).Post("/{id}/pdf", h.Payroll.UploadPDF)
			})

			r.Route("/invoices", func(r chi.Router) {
				need(user.PermissionViewPayrollReports)(r).Get("/", h.Invoice.ListInvoices)
				need(user.PermissionCreatePayslips)(r).Post("/", h.Invoice.CreateInvoice)
				r.Get("/me", h.Invoice.GetMyInvoices)
				r.Get("/{id}", h.Invoice.GetInvoice)
				need(user.PermissionEditPayslips)(r).Put("/{id}", h.Invoice.UpdateInvoice)
				need(user.PermissionEditPayslips)(r).Patch("/{id}/status", h.Invoice.UpdateStatus)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Delete("/{id}", h.Notification.Delete)
				r.Get("/preferences", h.Notification.GetPreferences)
				r.Put("/preferences", h.Notification.UpdatePreference)
				r.Post("/sse-token", h.Notification.GetSSEToken)
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/events", h.Calendar.GetEvents)
				r.Get("/events/leave", h.Calendar.GetLeaveEvents)
				r.Get("/events/holidays", h.Calendar.GetHolidayEvents)
				r.Get("/export.ics", h.Calendar.ExportICS)
				r.Get("/holidays", h.Calendar.ListHolidays)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(checker, user.PermissionConfigureSystem))
					r.Post("/holidays", h.Calendar.CreateHoliday)
					r.Put("/holidays/{id}", h.Calendar.UpdateHoliday)
					r.Delete("/holidays/{id}", h.Calendar.DeleteHoliday)
				})
			})

			r.Route("/dashboard", func(r chi.Router) {
				need(user.PermissionViewAllEmployees)(r).Get("/", h.Dashboard.GetDashboard)
				r.Get("/me", h.EmployeeDashboard.GetDashboard)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(checker, user.PermissionViewPayrollReports))
				r.Get("/payroll", h.Report.GetPayrollSummaryReport)
				r.Get("/leave", h.Report.GetLeaveSummaryReport)
				r.Get("/new-hires", h.Report.GetNewHireReport)
			})
		})
	})
	return r
}
