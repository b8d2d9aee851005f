package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, title, message, data, read, read_at, deleted, created_at`

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	var dataJSON []byte
	var notifType string

	err := row.Scan(
		&n.ID,
		&n.UserID,
		&notifType,
		&n.Title,
		&n.Message,
		&dataJSON,
		&n.Read,
		&n.ReadAt,
		&n.Deleted,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Type = notification.NotificationType(notifType)
	if dataJSON != nil {
		if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}
	return &n, nil
}

func marshalData(data map[string]interface{}) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification data: %w", err)
	}
	return b, nil
}

// Create creates a new notification
func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

// CreateBatch inserts all notifications with one multi-row INSERT
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	const cols = 7
	valueStrings := make([]string, 0, len(notifications))
	valueArgs := make([]interface{}, 0, len(notifications)*cols)

	for i, n := range notifications {
		if n.ID == "" {
			id, err := newID()
			if err != nil {
				return err
			}
			n.ID = id
		}

		dataJSON, err := marshalData(n.Data)
		if err != nil {
			return err
		}

		base := i * cols
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, NOW())",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		valueArgs = append(valueArgs,
			n.ID,
			n.UserID,
			string(n.Type),
			n.Title,
			n.Message,
			dataJSON,
			n.Read,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO notifications (id, user_id, type, title, message, data, read, created_at)
		VALUES %s
		RETURNING created_at
	`, strings.Join(valueStrings, ", "))

	rows, err := q.Query(ctx, query, valueArgs...)
	if err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	defer rows.Close()

	for i := 0; rows.Next() && i < len(notifications); i++ {
		if err := rows.Scan(&notifications[i].CreatedAt); err != nil {
			return fmt.Errorf("failed to scan notification timestamp: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

// GetByUserID retrieves a page of the user's notifications, newest first
func (r *notificationRepository) GetByUserID(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]*notification.Notification, int, error) {
	q := GetQuerier(ctx, r.db)

	where := "user_id = $1 AND deleted = FALSE"
	if unreadOnly {
		where += " AND read = FALSE"
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE "+where, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, notificationColumns, where)

	rows, err := q.Query(ctx, query, userID, limit, offset(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*notification.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// GetUnreadCount returns the count of unread notifications for a user
func (r *notificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE AND deleted = FALSE`
	var count int
	if err := q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkAsRead marks the listed notifications of userID as read. Ids of other users are ignored.
func (r *notificationRepository) MarkAsRead(ctx context.Context, ids []string, userID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND id = ANY($2) AND read = FALSE AND deleted = FALSE
	`
	tag, err := q.Exec(ctx, query, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}

	return tag.RowsAffected(), nil
}

// MarkAllAsRead marks all notifications as read for a user
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND read = FALSE AND deleted = FALSE
	`
	tag, err := q.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *notificationRepository) Delete(ctx context.Context, id string, userID string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE notifications SET deleted = TRUE WHERE id = $1 AND user_id = $2 AND deleted = FALSE`
	result, err := q.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	if result.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}

	return nil
}

// ============= Preferences =============

// GetPreferences retrieves all stored notification preferences for a user
func (r *notificationRepository) GetPreferences(ctx context.Context, userID string) ([]*notification.NotificationPreference, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT user_id, notification_type, email_enabled, push_enabled, created_at, updated_at
		FROM notification_preferences
		WHERE user_id = $1
		ORDER BY notification_type
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	prefs := make([]*notification.NotificationPreference, 0)
	for rows.Next() {
		var p notification.NotificationPreference
		var notifType string

		if err := rows.Scan(
			&p.UserID,
			&notifType,
			&p.EmailEnabled,
			&p.PushEnabled,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}

		p.NotificationType = notification.NotificationType(notifType)
		prefs = append(prefs, &p)
	}

	return prefs, rows.Err()
}

// UpsertPreference creates or updates a notification preference
func (r *notificationRepository) UpsertPreference(ctx context.Context, pref *notification.NotificationPreference) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notification_preferences (user_id, notification_type, email_enabled, push_enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, notification_type)
		DO UPDATE SET email_enabled = EXCLUDED.email_enabled,
		              push_enabled = EXCLUDED.push_enabled,
		              updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		pref.UserID,
		string(pref.NotificationType),
		pref.EmailEnabled,
		pref.PushEnabled,
	).Scan(&pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}

	return nil
}

// IsNotificationEnabled reports the push setting; a type with no stored preference is enabled.
func (r *notificationRepository) IsNotificationEnabled(ctx context.Context, userID string, notifType notification.NotificationType) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var enabled bool
	err := q.QueryRow(ctx, `
		SELECT push_enabled FROM notification_preferences
		WHERE user_id = $1 AND notification_type = $2
	`, userID, string(notifType)).Scan(&enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, fmt.Errorf("failed to get preference: %w", err)
	}

	return enabled, nil
}
