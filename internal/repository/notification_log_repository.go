package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/docnotify/docnotify-api/internal/models"
)

// NotificationLogRepository records which notifications were already sent so
// repeated sweep runs stay idempotent within a window.
type NotificationLogRepository struct {
	db *sqlx.DB
}

// NewNotificationLogRepository creates a new instance of NotificationLogRepository.
func NewNotificationLogRepository(db *sqlx.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

// WasSent reports whether a notification of this kind was already recorded
// for the document within the window.
func (r *NotificationLogRepository) WasSent(ctx context.Context, documentID, kind, windowID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM notification_log WHERE document_id = $1 AND kind = $2 AND window_id = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, documentID, kind, windowID); err != nil {
		return false, fmt.Errorf("check notification log: %w", err)
	}
	return exists, nil
}

// RecordSent writes a ledger entry. Concurrent duplicates are tolerated via
// ON CONFLICT DO NOTHING on the (document_id, kind, window_id) key.
func (r *NotificationLogRepository) RecordSent(ctx context.Context, entry *models.NotificationLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC()
	}

	const query = `INSERT INTO notification_log (id, user_id, document_id, kind, window_id, sent_at)
		VALUES (:id, :user_id, :document_id, :kind, :window_id, :sent_at)
		ON CONFLICT (document_id, kind, window_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}
