package service

import (
	"fmt"
	"time"

	"github.com/docnotify/docnotify-api/internal/models"
)

// expiry date formats accepted from clients, tried in order.
var expiryDateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseExpiryDate parses a stored expiry date string. Full RFC 3339
// timestamps are preferred; bare dates are read as midnight UTC.
func ParseExpiryDate(raw string) (time.Time, error) {
	for _, layout := range expiryDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expiry date %q", raw)
}

// ExpiryClassifier decides which documents belong in an expiration notice.
type ExpiryClassifier struct {
	WindowDays int
}

// NewExpiryClassifier builds a classifier, defaulting to a 30 day window.
func NewExpiryClassifier(windowDays int) *ExpiryClassifier {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &ExpiryClassifier{WindowDays: windowDays}
}

// Classify evaluates one document against the notification window at the
// given instant. It returns ok=false when the document has no parseable
// expiry date or falls outside the window; such documents are skipped, never
// treated as errors. A document expiring exactly now counts as expired, and
// one expiring exactly at the window edge is included.
func (c *ExpiryClassifier) Classify(doc models.Document, now time.Time) (models.DocumentNotice, bool) {
	if !doc.ExpiryDate.Valid || doc.ExpiryDate.String == "" {
		return models.DocumentNotice{}, false
	}

	expiry, err := ParseExpiryDate(doc.ExpiryDate.String)
	if err != nil {
		return models.DocumentNotice{}, false
	}

	windowEnd := now.Add(time.Duration(c.WindowDays) * 24 * time.Hour)
	if expiry.After(windowEnd) {
		return models.DocumentNotice{}, false
	}

	notice := models.DocumentNotice{
		DocumentID:      doc.ID,
		Title:           doc.Title,
		ExpiryDate:      expiry,
		IsExpired:       !expiry.After(now),
		DaysUntilExpiry: daysUntil(now, expiry),
	}
	return notice, true
}

// NotificationKind maps a classified notice to its ledger kind.
func NotificationKind(notice models.DocumentNotice) string {
	if notice.IsExpired {
		return models.NotificationKindDocumentExpired
	}
	return models.NotificationKindExpiryWarning
}

// DedupWindowID identifies the dedup window for a notice. Keying on the
// expiry date means a rescheduled document opens a fresh window.
func DedupWindowID(notice models.DocumentNotice) string {
	return notice.ExpiryDate.UTC().Format("2006-01-02")
}

// daysUntil counts remaining days rounded up, so a document expiring in one
// second still reports one day. Past expiries go negative.
func daysUntil(now, expiry time.Time) int {
	diff := expiry.Sub(now)
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}
