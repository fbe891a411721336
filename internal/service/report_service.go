package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/docnotify/docnotify-api/internal/dto"
	"github.com/docnotify/docnotify-api/internal/models"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
	"github.com/docnotify/docnotify-api/pkg/export"
	"github.com/docnotify/docnotify-api/pkg/jobs"
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	UpdateStatus(ctx context.Context, id, status string, fileName, errorDetail sql.NullString) error
	FailStale(ctx context.Context) (int64, error)
}

type reportDocumentSource interface {
	ListByUser(ctx context.Context, userID string) ([]models.Document, error)
}

type artifactStore interface {
	Save(name string, content []byte) (string, error)
	Open(name string) (io.ReadCloser, error)
	CleanupOlderThan(maxAge time.Duration) (int, error)
}

type downloadTokenSigner interface {
	Generate(resourceID string) string
	Validate(resourceID, token string) error
}

type tableExporter interface {
	Render(t export.Table) ([]byte, error)
}

// ReportService generates expiry reports asynchronously. A request creates a
// pending job, a queue worker renders the artifact, and the client polls
// until a signed download link appears.
type ReportService struct {
	repo       reportJobStore
	documents  reportDocumentSource
	store      artifactStore
	signer     downloadTokenSigner
	queue      *jobs.Queue
	classifier *ExpiryClassifier
	exporters  map[string]tableExporter
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService creates a new instance of ReportService.
func NewReportService(repo reportJobStore, documents reportDocumentSource, store artifactStore, signer downloadTokenSigner, queue *jobs.Queue, classifier *ExpiryClassifier, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:       repo,
		documents:  documents,
		store:      store,
		signer:     signer,
		queue:      queue,
		classifier: classifier,
		exporters: map[string]tableExporter{
			models.ReportFormatCSV: export.NewCSVExporter(),
			models.ReportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// CreateJob registers an export job and queues its generation.
func (s *ReportService) CreateJob(ctx context.Context, userID, format string) (*dto.ReportJobResponse, error) {
	if _, ok := s.exporters[format]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}

	job := &models.ReportJob{UserID: userID, Format: format}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}

	jobID := job.ID
	if s.queue != nil {
		s.queue.Enqueue(jobs.Job{
			ID:   jobID,
			Kind: "expiry-report",
			Run: func(ctx context.Context) error {
				return s.generate(ctx, jobID)
			},
		})
	} else if err := s.generate(ctx, jobID); err != nil {
		s.logger.Error("inline report generation failed", zap.String("job_id", jobID), zap.Error(err))
	}

	return s.toResponse(job), nil
}

// GetJob returns the state of an owned export job.
func (s *ReportService) GetJob(ctx context.Context, userID, jobID string) (*dto.ReportJobResponse, error) {
	job, err := s.findOwned(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(job), nil
}

// OpenArtifact validates the signed token and opens the finished artifact for
// streaming. The returned file name is the suggested download name.
func (s *ReportService) OpenArtifact(ctx context.Context, jobID, token string) (io.ReadCloser, string, error) {
	if err := s.signer.Validate(jobID, token); err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.Status != models.ReportStatusCompleted || !job.FileName.Valid {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report is not ready")
	}

	reader, err := s.store.Open(job.FileName.String)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report artifact")
	}
	return reader, job.FileName.String, nil
}

// RecoverStale fails jobs orphaned by a previous process. Call once at
// startup, before accepting new jobs.
func (s *ReportService) RecoverStale(ctx context.Context) {
	failed, err := s.repo.FailStale(ctx)
	if err != nil {
		s.logger.Warn("failed to recover stale report jobs", zap.Error(err))
		return
	}
	if failed > 0 {
		s.logger.Info("failed stale report jobs from previous run", zap.Int64("count", failed))
	}
}

// StartCleanup periodically prunes old artifacts until the context ends.
func (s *ReportService) StartCleanup(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.store.CleanupOlderThan(maxAge)
				if err != nil {
					s.logger.Warn("report artifact cleanup failed", zap.Error(err))
					continue
				}
				if removed > 0 {
					s.logger.Info("pruned report artifacts", zap.Int("removed", removed))
				}
			}
		}
	}()
}

func (s *ReportService) generate(ctx context.Context, jobID string) error {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load report job: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, jobID, models.ReportStatusProcessing, sql.NullString{}, sql.NullString{}); err != nil {
		return err
	}

	content, err := s.render(ctx, job)
	if err != nil {
		detail := sql.NullString{String: err.Error(), Valid: true}
		if updateErr := s.repo.UpdateStatus(ctx, jobID, models.ReportStatusFailed, sql.NullString{}, detail); updateErr != nil {
			s.logger.Error("failed to mark report job failed", zap.String("job_id", jobID), zap.Error(updateErr))
		}
		return err
	}

	fileName := fmt.Sprintf("expiry-report-%s.%s", jobID, job.Format)
	if _, err := s.store.Save(fileName, content); err != nil {
		detail := sql.NullString{String: err.Error(), Valid: true}
		if updateErr := s.repo.UpdateStatus(ctx, jobID, models.ReportStatusFailed, sql.NullString{}, detail); updateErr != nil {
			s.logger.Error("failed to mark report job failed", zap.String("job_id", jobID), zap.Error(updateErr))
		}
		return err
	}

	return s.repo.UpdateStatus(ctx, jobID, models.ReportStatusCompleted,
		sql.NullString{String: fileName, Valid: true}, sql.NullString{})
}

func (s *ReportService) render(ctx context.Context, job *models.ReportJob) ([]byte, error) {
	docs, err := s.documents.ListByUser(ctx, job.UserID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	now := s.now()
	table := export.Table{
		Title:   "Document Expiry Report",
		Columns: []string{"Document", "Expiry Date", "Reminders", "Status"},
	}
	for _, doc := range docs {
		expiry := ""
		if doc.ExpiryDate.Valid {
			expiry = doc.ExpiryDate.String
		}
		reminders := "off"
		if doc.Reminders {
			reminders = "on"
		}
		table.Rows = append(table.Rows, []string{doc.Title, expiry, reminders, reportStatus(s.classifier, doc, now)})
	}

	exporter := s.exporters[job.Format]
	if exporter == nil {
		return nil, fmt.Errorf("unsupported report format %q", job.Format)
	}
	return exporter.Render(table)
}

func reportStatus(classifier *ExpiryClassifier, doc models.Document, now time.Time) string {
	if !doc.ExpiryDate.Valid || doc.ExpiryDate.String == "" {
		return "No expiry date"
	}
	expiry, err := ParseExpiryDate(doc.ExpiryDate.String)
	if err != nil {
		return "Invalid expiry date"
	}
	if !expiry.After(now) {
		return "Expired"
	}
	if notice, ok := classifier.Classify(doc, now); ok {
		return statusLabel(notice)
	}
	return "Active"
}

func (s *ReportService) findOwned(ctx context.Context, userID, jobID string) (*models.ReportJob, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	return job, nil
}

func (s *ReportService) toResponse(job *models.ReportJob) *dto.ReportJobResponse {
	resp := &dto.ReportJobResponse{
		ID:        job.ID,
		Format:    job.Format,
		Status:    job.Status,
		CreatedAt: job.CreatedAt.UTC().Format(time.RFC3339),
	}
	if job.Status == models.ReportStatusCompleted && job.FileName.Valid {
		resp.DownloadURL = fmt.Sprintf("/api/v1/reports/%s/download?token=%s", job.ID, s.signer.Generate(job.ID))
	}
	if job.Status == models.ReportStatusFailed && job.ErrorDetail.Valid {
		resp.Error = job.ErrorDetail.String
	}
	return resp
}
