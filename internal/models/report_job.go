package models

import (
	"database/sql"
	"time"
)

// Report job lifecycle states.
const (
	ReportStatusPending    = "PENDING"
	ReportStatusProcessing = "PROCESSING"
	ReportStatusCompleted  = "COMPLETED"
	ReportStatusFailed     = "FAILED"
)

// Report output formats.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

// ReportJob tracks one asynchronous expiry-report export request.
type ReportJob struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Format      string         `db:"format"`
	Status      string         `db:"status"`
	FileName    sql.NullString `db:"file_name"`
	ErrorDetail sql.NullString `db:"error_detail"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}
