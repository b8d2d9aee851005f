package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/config"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	appHTTP "github.com/cmlabs-hris/hr-portal-backend/internal/handler/http"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/cache"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/cron"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/email"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/oauth"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/pdf"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/seed"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/sse"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/storage"
	"github.com/cmlabs-hris/hr-portal-backend/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/hr-portal-backend/internal/service/auth"
	calendarService "github.com/cmlabs-hris/hr-portal-backend/internal/service/calendar"
	claimService "github.com/cmlabs-hris/hr-portal-backend/internal/service/claim"
	dashboardService "github.com/cmlabs-hris/hr-portal-backend/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/hr-portal-backend/internal/service/employee"
	employeeDashboardService "github.com/cmlabs-hris/hr-portal-backend/internal/service/employee_dashboard"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/file"
	illnessService "github.com/cmlabs-hris/hr-portal-backend/internal/service/illness"
	invoiceService "github.com/cmlabs-hris/hr-portal-backend/internal/service/invoice"
	leaveService "github.com/cmlabs-hris/hr-portal-backend/internal/service/leave"
	masterService "github.com/cmlabs-hris/hr-portal-backend/internal/service/master"
	notificationService "github.com/cmlabs-hris/hr-portal-backend/internal/service/notification"
	payrollService "github.com/cmlabs-hris/hr-portal-backend/internal/service/payroll"
	permissionService "github.com/cmlabs-hris/hr-portal-backend/internal/service/permission"
	reportService "github.com/cmlabs-hris/hr-portal-backend/internal/service/report"
	userService "github.com/cmlabs-hris/hr-portal-backend/internal/service/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal("Error applying migrations: ", err)
	}

	var permissionCache permission.Cache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Error connecting to redis: ", err)
		}
		defer rdb.Close()
		permissionCache = cache.NewRedisPermissionCache(rdb, cfg.Redis.TTL)
	} else {
		permissionCache = cache.NewMemoryPermissionCache(cfg.Redis.TTL)
	}

	userRepo := postgresql.NewUserRepository(db)
	tokenRepo := postgresql.NewTokenRepository(db)
	permissionRepo := postgresql.NewPermissionRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	leaveRepo := postgresql.NewLeaveRequestRepository(db)
	illnessRepo := postgresql.NewIllnessRepository(db)
	claimRepo := postgresql.NewClaimRepository(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	teamRepo := postgresql.NewTeamRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)
	invoiceRepo := postgresql.NewInvoiceRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)
	empDashboardRepo := postgresql.NewEmployeeDashboardRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	secureCookie := cfg.App.Env == "production"
	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, secureCookie)
	if err != nil {
		log.Fatal("Failed to initialize JWT service: ", err)
	}

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	} else {
		slog.Info("Google sign-in disabled")
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage: ", err)
	}
	fileService := file.NewFileService(fileStorage)

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}

	hub := sse.NewHub()
	notifSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	})

	permissionSvc := permissionService.NewPermissionService(permissionRepo, userRepo, permissionCache)
	authSvc := serviceAuth.NewAuthService(userRepo, tokenRepo, JWTService, postgresql.NewTransactor(db), permissionSvc, emailService, googleService, cfg.App.FrontendURL)
	userSvc := userService.NewUserService(userRepo, permissionSvc, notifSvc, emailService, cfg.App.FrontendURL)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, userRepo, permissionSvc, fileService, notifSvc)
	leaveSvc := leaveService.NewLeaveService(leaveRepo, employeeRepo, userRepo, permissionSvc, notifSvc)
	illnessSvc := illnessService.NewIllnessService(illnessRepo, employeeRepo, userRepo, permissionSvc, fileService, notifSvc)
	claimSvc := claimService.NewClaimService(claimRepo, employeeRepo, userRepo, fileService, permissionSvc, notifSvc)
	masterSvc := masterService.NewMasterService(departmentRepo, teamRepo, employeeRepo, leaveRepo, permissionSvc)
	payrollSvc := payrollService.NewPayrollService(
		payslipRepo,
		employeeRepo,
		permissionSvc,
		fileService,
		pdf.NewPayslipRenderer(cfg.App.CompanyName, cfg.App.Currency),
		notifSvc,
	)
	invoiceSvc := invoiceService.NewInvoiceService(invoiceRepo, employeeRepo, permissionSvc)
	calendarSvc := calendarService.NewCalendarService(holidayRepo, leaveRepo, permissionSvc)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, illnessRepo, notificationRepo, permissionSvc)
	empDashboardSvc := employeeDashboardService.NewEmployeeDashboardService(empDashboardRepo, employeeRepo, payslipRepo, leaveRepo, illnessRepo, notificationRepo)
	reportSvc := reportService.NewReportService(reportRepo, permissionSvc)

	if cfg.Holidays.SeedFile != "" {
		holidays, err := seed.LoadHolidaysFile(cfg.Holidays.SeedFile)
		if err != nil {
			log.Fatal("Failed to load holidays seed file: ", err)
		}
		inserted, err := calendarSvc.SeedHolidays(ctx, holidays)
		if err != nil {
			log.Fatal("Failed to seed holidays: ", err)
		}
		slog.Info("Holidays seeded", "file", cfg.Holidays.SeedFile, "inserted", inserted)
	}

	var scheduler *cron.Scheduler
	if cfg.Cron.Enabled {
		scheduler = cron.NewScheduler()
		cron.NewMaintenanceJobs(illnessSvc, invoiceSvc, tokenRepo).RegisterJobs(scheduler, cfg.Cron.Interval)
		scheduler.Start()
	}

	router := appHTTP.NewRouter(cfg, JWTService, permissionSvc, appHTTP.Handlers{
		Auth:              appHTTP.NewAuthHandler(JWTService, authSvc, googleService, cfg.App.FrontendURL, secureCookie),
		User:              appHTTP.NewUserHandler(userSvc),
		Permission:        appHTTP.NewPermissionHandler(permissionSvc),
		Employee:          appHTTP.NewEmployeeHandler(employeeSvc),
		Leave:             appHTTP.NewLeaveHandler(leaveSvc),
		Illness:           appHTTP.NewIllnessHandler(illnessSvc),
		Claim:             appHTTP.NewClaimHandler(claimSvc),
		Master:            appHTTP.NewMasterHandler(masterSvc),
		Payroll:           appHTTP.NewPayrollHandler(payrollSvc),
		Invoice:           appHTTP.NewInvoiceHandler(invoiceSvc),
		Notification:      appHTTP.NewNotificationHandler(notifSvc, JWTService),
		Calendar:          appHTTP.NewCalendarHandler(calendarSvc),
		Dashboard:         appHTTP.NewDashboardHandler(dashboardSvc),
		EmployeeDashboard: appHTTP.NewEmployeeDashboardHandler(empDashboardSvc),
		Report:            appHTTP.NewReportHandler(reportSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "version", appHTTP.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	// SSE streams never finish on their own; close them before draining.
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	if scheduler != nil {
		scheduler.Stop()
	}
	notifSvc.Stop()
}
