package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

const sseEventName = "notification"

type service struct {
	repo   notification.Repository
	hub    *sse.Hub
	config Config

	queue    chan notification.CreateNotificationRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once

	// sendMu is held for reading around queue sends; Stop takes it to flip stopped.
	sendMu  sync.RWMutex
	stopped bool
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(repo notification.Repository, hub *sse.Hub, cfg Config) notification.Service {
	s := newService(repo, hub, cfg)
	s.start()
	return s
}

func newService(repo notification.Repository, hub *sse.Hub, cfg Config) *service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}

	return &service{
		repo:   repo,
		hub:    hub,
		config: cfg,
		queue:  make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}
}

func (s *service) start() {
	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started",
		"workers", s.config.WorkerCount,
		"batch_size", s.config.BatchSize,
		"flush_interval", s.config.FlushInterval)
}

func newNotification(req notification.CreateNotificationRequest) *notification.Notification {
	return &notification.Notification{
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *service) publish(n *notification.Notification) {
	s.hub.Publish(n.UserID, sse.Event{
		ID:     n.ID,
		UserID: n.UserID,
		Event:  sseEventName,
		Data:   n.ToResponse(),
	})
}

// worker batches queued notifications and flushes on size, on the ticker and on stop
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = newNotification(req)
		}

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			slog.Error("failed to batch insert notifications", "worker", id, "count", len(notifications), "error", err)
		} else {
			slog.Debug("inserted notifications", "worker", id, "count", len(notifications))
			for _, n := range notifications {
				s.publish(n)
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// drain what is already queued before exiting
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// QueueNotification queues a notification for async processing. Users who turned off
// push for the type are skipped. A full queue or a stopped service falls back to a direct insert.
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if !req.Type.IsValid() {
		return notification.ErrInvalidNotificationType
	}

	enabled, err := s.repo.IsNotificationEnabled(ctx, req.UserID, req.Type)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	queued, stopped := s.enqueue(req)
	if queued {
		return nil
	}
	if !stopped {
		slog.Warn("notification queue full, inserting directly", "user_id", req.UserID, "type", req.Type)
	}
	return s.directInsert(ctx, req)
}

// enqueue never blocks. Once Stop has begun nothing more is queued.
func (s *service) enqueue(req notification.CreateNotificationRequest) (queued, stopped bool) {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.stopped {
		return false, true
	}
	select {
	case s.queue <- req:
		return true, false
	default:
		return false, false
	}
}

// QueueBulkNotification queues multiple notifications; individual failures are logged
func (s *service) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		if err := s.QueueNotification(ctx, req); err != nil {
			slog.Error("failed to queue notification", "user_id", req.UserID, "type", req.Type, "error", err)
		}
	}
	return nil
}

func (s *service) directInsert(ctx context.Context, req notification.CreateNotificationRequest) error {
	n := newNotification(req)
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.publish(n)
	return nil
}

// ============= Helpers used by other services =============

func (s *service) NotifyLeaveRequest(ctx context.Context, recipientIDs []string, employeeName, leaveType, startDate, endDate, leaveRequestID string) error {
	reqs := make([]notification.CreateNotificationRequest, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		reqs = append(reqs, notification.CreateNotificationRequest{
			UserID:  id,
			Type:    notification.TypeLeaveRequest,
			Title:   notification.TitleLeaveRequest,
			Message: notification.LeaveRequestMessage(employeeName, leaveType, startDate, endDate),
			Data:    map[string]interface{}{"leaveRequestId": leaveRequestID},
		})
	}
	return s.QueueBulkNotification(ctx, reqs)
}

func (s *service) NotifyLeaveStatus(ctx context.Context, userID string, approved bool, leaveType, startDate, endDate, reason string) error {
	req := notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeLeaveRejected,
		Title:   notification.TitleLeaveRejected,
		Message: notification.LeaveStatusMessage(approved, leaveType, startDate, endDate, reason),
	}
	if approved {
		req.Type = notification.TypeLeaveApproved
		req.Title = notification.TitleLeaveApproved
	}
	return s.QueueNotification(ctx, req)
}

func (s *service) NotifyPayslipAvailable(ctx context.Context, userID string, month, year int, payslipID string) error {
	return s.QueueNotification(ctx, notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypePayslipAvailable,
		Title:   notification.TitlePayslipAvailable,
		Message: notification.PayslipMessage(month, year),
		Data:    map[string]interface{}{"payslipId": payslipID},
	})
}

func (s *service) NotifyDocumentUploaded(ctx context.Context, userID, documentName, employeeID string) error {
	return s.QueueNotification(ctx, notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeDocumentUploaded,
		Title:   notification.TitleDocumentUploaded,
		Message: notification.DocumentUploadedMessage(documentName),
		Data:    map[string]interface{}{"employeeId": employeeID},
	})
}

func (s *service) NotifyRoleChanged(ctx context.Context, userID, newRole string) error {
	return s.QueueNotification(ctx, notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeRoleChanged,
		Title:   notification.TitleRoleChanged,
		Message: notification.RoleChangedMessage(newRole),
		Data:    map[string]interface{}{"role": newRole},
	})
}

func (s *service) NotifyClaimSubmitted(ctx context.Context, recipientIDs []string, employeeName, claimType string, urgent bool, claimID string) error {
	reqs := make([]notification.CreateNotificationRequest, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		reqs = append(reqs, notification.CreateNotificationRequest{
			UserID:  id,
			Type:    notification.TypeClaimSubmitted,
			Title:   notification.TitleClaimSubmitted,
			Message: notification.ClaimSubmittedMessage(employeeName, claimType, urgent),
			Data:    map[string]interface{}{"claimId": claimID, "urgent": urgent},
		})
	}
	return s.QueueBulkNotification(ctx, reqs)
}

func (s *service) NotifyClaimResolved(ctx context.Context, userID string, processed bool, claimType, note, claimID string) error {
	title := notification.TitleClaimRejected
	if processed {
		title = notification.TitleClaimProcessed
	}
	return s.QueueNotification(ctx, notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeClaimResolved,
		Title:   title,
		Message: notification.ClaimResolvedMessage(processed, claimType, note),
		Data:    map[string]interface{}{"claimId": claimID},
	})
}

func (s *service) NotifySystem(ctx context.Context, userIDs []string, title, message string, data map[string]interface{}) error {
	reqs := make([]notification.CreateNotificationRequest, 0, len(userIDs))
	for _, id := range userIDs {
		reqs = append(reqs, notification.CreateNotificationRequest{
			UserID:  id,
			Type:    notification.TypeSystem,
			Title:   title,
			Message: message,
			Data:    data,
		})
	}
	return s.QueueBulkNotification(ctx, reqs)
}

// ============= Direct operations =============

// GetNotifications retrieves paginated notifications for a user, newest first
func (s *service) GetNotifications(ctx context.Context, userID string, req notification.ListNotificationsRequest) (*notification.NotificationListResponse, error) {
	req.Normalize()

	notifications, total, err := s.repo.GetByUserID(ctx, userID, req.Page, req.Limit, req.UnreadOnly)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = n.ToResponse()
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          req.Page,
		Limit:         req.Limit,
	}, nil
}

func (s *service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead only touches rows owned by userID
func (s *service) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	return s.repo.MarkAsRead(ctx, req.NotificationIDs, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID string, notificationID string) error {
	return s.repo.Delete(ctx, notificationID, userID)
}

// GetPreferences returns every notification type; unset types default to enabled
func (s *service) GetPreferences(ctx context.Context, userID string) ([]notification.PreferenceResponse, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefMap := make(map[notification.NotificationType]*notification.NotificationPreference)
	for _, p := range prefs {
		prefMap[p.NotificationType] = p
	}

	allTypes := notification.AllNotificationTypes()
	responses := make([]notification.PreferenceResponse, len(allTypes))
	for i, t := range allTypes {
		responses[i] = notification.PreferenceResponse{
			NotificationType: t,
			EmailEnabled:     true,
			PushEnabled:      true,
		}
		if p, ok := prefMap[t]; ok {
			responses[i].EmailEnabled = p.EmailEnabled
			responses[i].PushEnabled = p.PushEnabled
		}
	}

	return responses, nil
}

func (s *service) UpdatePreference(ctx context.Context, userID string, req notification.UpdatePreferenceRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.repo.UpsertPreference(ctx, &notification.NotificationPreference{
		UserID:           userID,
		NotificationType: req.NotificationType,
		EmailEnabled:     req.EmailEnabled,
		PushEnabled:      req.PushEnabled,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
}

// Subscribe creates an SSE subscription for a user. The channel closes when ctx ends or the hub shuts down.
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop flushes queued notifications and waits for the workers. Safe to call twice.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		s.sendMu.Lock()
		s.stopped = true
		s.sendMu.Unlock()
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("notification service stopped")
	})
}
