package models

import "time"

// Notification kinds recorded in the ledger.
const (
	NotificationKindExpiryWarning   = "EXPIRY_WARNING"
	NotificationKindDocumentExpired = "DOCUMENT_EXPIRED"
)

// NotificationLog records that a notification of a given kind was sent for a
// document within a dedup window. WindowID is the document's expiry date
// rendered as YYYY-MM-DD, so changing the expiry date opens a fresh window.
type NotificationLog struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	DocumentID string    `db:"document_id"`
	Kind       string    `db:"kind"`
	WindowID   string    `db:"window_id"`
	SentAt     time.Time `db:"sent_at"`
}
