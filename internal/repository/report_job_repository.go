package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/docnotify/docnotify-api/internal/models"
)

// ReportJobRepository tracks asynchronous export jobs.
type ReportJobRepository struct {
	db *sqlx.DB
}

// NewReportJobRepository creates a new instance of ReportJobRepository.
func NewReportJobRepository(db *sqlx.DB) *ReportJobRepository {
	return &ReportJobRepository{db: db}
}

// Create inserts a pending report job.
func (r *ReportJobRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = models.ReportStatusPending
	}

	const query = `INSERT INTO report_jobs (id, user_id, format, status, file_name, error_detail, created_at, updated_at)
		VALUES (:id, :user_id, :format, :status, :file_name, :error_detail, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// FindByID returns a report job by identifier.
func (r *ReportJobRepository) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	const query = `SELECT id, user_id, format, status, file_name, error_detail, created_at, updated_at FROM report_jobs WHERE id = $1 LIMIT 1`
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find report job by id: %w", err)
	}
	return &job, nil
}

// FailStale marks jobs left pending or processing by a previous process as
// failed. The in-memory queue does not survive a restart, so these jobs will
// never complete.
func (r *ReportJobRepository) FailStale(ctx context.Context) (int64, error) {
	const query = `UPDATE report_jobs SET status = $1, error_detail = $2, updated_at = $3 WHERE status IN ($4, $5)`
	res, err := r.db.ExecContext(ctx, query,
		models.ReportStatusFailed, "interrupted by service restart", time.Now().UTC(),
		models.ReportStatusPending, models.ReportStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("fail stale report jobs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("fail stale report jobs: %w", err)
	}
	return affected, nil
}

// UpdateStatus transitions a job and records the artifact name or failure
// detail for the terminal states.
func (r *ReportJobRepository) UpdateStatus(ctx context.Context, id, status string, fileName, errorDetail sql.NullString) error {
	const query = `UPDATE report_jobs SET status = $2, file_name = $3, error_detail = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, fileName, errorDetail, time.Now().UTC()); err != nil {
		return fmt.Errorf("update report job status: %w", err)
	}
	return nil
}
