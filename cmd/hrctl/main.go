package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hr-portal-backend/internal/config"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/seed"
	"github.com/cmlabs-hris/hr-portal-backend/internal/repository/postgresql"
	calendarService "github.com/cmlabs-hris/hr-portal-backend/internal/service/calendar"
	userService "github.com/cmlabs-hris/hr-portal-backend/internal/service/user"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hrctl",
		Short:        "Operator commands for the HR portal",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newCreateAdminCmd())
	return root
}

// openDB loads config, connects and applies pending migrations.
func openDB(ctx context.Context) (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data",
	}

	var file string
	holidays := &cobra.Command{
		Use:   "holidays",
		Short: "Insert holidays from a YAML file, skipping dates that already exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := seed.LoadHolidaysFile(file)
			if err != nil {
				return err
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			svc := calendarService.NewCalendarService(postgresql.NewHolidayRepository(db), postgresql.NewLeaveRequestRepository(db), nil)
			inserted, err := svc.SeedHolidays(cmd.Context(), entries)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d holidays inserted\n", inserted, len(entries))
			return nil
		},
	}
	holidays.Flags().StringVar(&file, "file", "", "path to the holidays YAML file")
	_ = holidays.MarkFlagRequired("file")

	seedCmd.AddCommand(holidays)
	return seedCmd
}

func newCreateAdminCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or promote an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			u, created, err := userService.EnsureAdmin(cmd.Context(), postgresql.NewUserRepository(db), email, password, name)
			if err != nil {
				return err
			}
			verb := "promoted"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s: %s (%s)\n", verb, u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password, at least 8 characters")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	for _, f := range []string{"email", "password", "name"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
