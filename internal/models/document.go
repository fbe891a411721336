package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Document is a tracked document belonging to one user. ExpiryDate is stored
// as the raw ISO-8601 string the client supplied; parsing and validation
// happen where the date is consumed, so a record with a malformed date is
// still readable.
type Document struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"userId"`
	Title       string         `db:"title" json:"title"`
	Description sql.NullString `db:"description" json:"-"`
	ExpiryDate  sql.NullString `db:"expiry_date" json:"-"`
	Reminders   bool           `db:"reminders" json:"reminders"`
	FileURLs    pq.StringArray `db:"file_urls" json:"fileUrls"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// DocumentNotice is one classified row of a user's expiration email.
type DocumentNotice struct {
	DocumentID      string
	Title           string
	ExpiryDate      time.Time
	IsExpired       bool
	DaysUntilExpiry int
}
