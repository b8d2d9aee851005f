package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	JobIllnessReminders    = "illness-reminders"
	JobInvoiceOverdue      = "invoice-overdue"
	JobRefreshTokenCleanup = "refresh-token-cleanup"

	// revoked or expired refresh tokens are kept this long for audit
	refreshTokenRetentionDays = 7
)

type IllnessReminder interface {
	SendReminders(ctx context.Context) (int, error)
}

type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

type TokenCleaner interface {
	DeleteExpiredRefreshTokens(ctx context.Context, olderThanDays int) (int64, error)
}

// MaintenanceJobs are the periodic housekeeping tasks of the portal.
type MaintenanceJobs struct {
	illness  IllnessReminder
	invoices OverdueMarker
	tokens   TokenCleaner
}

func NewMaintenanceJobs(illness IllnessReminder, invoices OverdueMarker, tokens TokenCleaner) *MaintenanceJobs {
	return &MaintenanceJobs{
		illness:  illness,
		invoices: invoices,
		tokens:   tokens,
	}
}

func (j *MaintenanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(JobIllnessReminders, interval, j.SendIllnessReminders)
	scheduler.AddJob(JobInvoiceOverdue, interval, j.MarkOverdueInvoices)
	scheduler.AddJob(JobRefreshTokenCleanup, 24*time.Hour, j.CleanupRefreshTokens)
}

// SendIllnessReminders notifies HR about follow-ups due today and certificates about to expire.
func (j *MaintenanceJobs) SendIllnessReminders(ctx context.Context) error {
	sent, err := j.illness.SendReminders(ctx)
	if err != nil {
		return fmt.Errorf("send illness reminders: %w", err)
	}
	if sent > 0 {
		slog.Info("Cron: illness reminders sent", "count", sent)
	}
	return nil
}

func (j *MaintenanceJobs) MarkOverdueInvoices(ctx context.Context) error {
	n, err := j.invoices.MarkOverdue(ctx)
	if err != nil {
		return fmt.Errorf("mark overdue invoices: %w", err)
	}
	if n > 0 {
		slog.Info("Cron: invoices marked overdue", "count", n)
	}
	return nil
}

func (j *MaintenanceJobs) CleanupRefreshTokens(ctx context.Context) error {
	n, err := j.tokens.DeleteExpiredRefreshTokens(ctx, refreshTokenRetentionDays)
	if err != nil {
		return fmt.Errorf("cleanup refresh tokens: %w", err)
	}
	slog.Info("Cron: refresh tokens cleaned up", "deleted", n)
	return nil
}
