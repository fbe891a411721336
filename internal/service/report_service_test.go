package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docnotify/docnotify-api/internal/models"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
)

type fakeReportJobStore struct {
	jobs        map[string]*models.ReportJob
	transitions []string
}

func newFakeReportJobStore() *fakeReportJobStore {
	return &fakeReportJobStore{jobs: map[string]*models.ReportJob{}}
}

func (f *fakeReportJobStore) Create(_ context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", len(f.jobs)+1)
	}
	if job.Status == "" {
		job.Status = models.ReportStatusPending
	}
	job.CreatedAt = time.Now()
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeReportJobStore) FindByID(_ context.Context, id string) (*models.ReportJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (f *fakeReportJobStore) UpdateStatus(_ context.Context, id, status string, fileName, errorDetail sql.NullString) error {
	job, ok := f.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	job.Status = status
	job.FileName = fileName
	job.ErrorDetail = errorDetail
	f.transitions = append(f.transitions, status)
	return nil
}

func (f *fakeReportJobStore) FailStale(_ context.Context) (int64, error) {
	var failed int64
	for _, job := range f.jobs {
		if job.Status == models.ReportStatusPending || job.Status == models.ReportStatusProcessing {
			job.Status = models.ReportStatusFailed
			job.ErrorDetail = sql.NullString{String: "interrupted by service restart", Valid: true}
			failed++
		}
	}
	return failed, nil
}

type memoryArtifactStore struct {
	files map[string][]byte
}

func newMemoryArtifactStore() *memoryArtifactStore {
	return &memoryArtifactStore{files: map[string][]byte{}}
}

func (m *memoryArtifactStore) Save(name string, content []byte) (string, error) {
	m.files[name] = content
	return name, nil
}

func (m *memoryArtifactStore) Open(name string) (io.ReadCloser, error) {
	content, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("artifact %q not found", name)
	}
	return io.NopCloser(strings.NewReader(string(content))), nil
}

func (m *memoryArtifactStore) CleanupOlderThan(time.Duration) (int, error) {
	return 0, nil
}

type fakeSigner struct{}

func (fakeSigner) Generate(resourceID string) string {
	return "token-" + resourceID
}

func (fakeSigner) Validate(resourceID, token string) error {
	if token != "token-"+resourceID {
		return fmt.Errorf("bad token")
	}
	return nil
}

func newReportFixture() (*ReportService, *fakeReportJobStore, *fakeDocumentStore, *memoryArtifactStore) {
	jobsStore := newFakeReportJobStore()
	docs := newFakeDocumentStore()
	artifacts := newMemoryArtifactStore()
	svc := NewReportService(jobsStore, docs, artifacts, fakeSigner{}, nil, NewExpiryClassifier(30), nil)
	return svc, jobsStore, docs, artifacts
}

func TestGenerateCSVReport(t *testing.T) {
	svc, jobsStore, docs, artifacts := newReportFixture()

	doc := expiryDoc("d1", "2026-09-10")
	doc.UserID = "u1"
	require.NoError(t, docs.Create(context.Background(), &doc))

	job := &models.ReportJob{UserID: "u1", Format: models.ReportFormatCSV}
	require.NoError(t, jobsStore.Create(context.Background(), job))

	require.NoError(t, svc.generate(context.Background(), job.ID))

	assert.Equal(t, []string{models.ReportStatusProcessing, models.ReportStatusCompleted}, jobsStore.transitions)

	stored, err := jobsStore.FindByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.True(t, stored.FileName.Valid)
	content := string(artifacts.files[stored.FileName.String])
	assert.Contains(t, content, "Document,Expiry Date,Reminders,Status")
	assert.Contains(t, content, "Doc d1")
}

func TestGenerateMarksJobFailed(t *testing.T) {
	svc, jobsStore, docs, _ := newReportFixture()
	docs.listErr = fmt.Errorf("db down")

	job := &models.ReportJob{UserID: "u1", Format: models.ReportFormatCSV}
	require.NoError(t, jobsStore.Create(context.Background(), job))

	require.Error(t, svc.generate(context.Background(), job.ID))

	stored, err := jobsStore.FindByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, stored.Status)
	assert.True(t, stored.ErrorDetail.Valid)
}

func TestGetJobExposesDownloadURLWhenCompleted(t *testing.T) {
	svc, jobsStore, _, _ := newReportFixture()

	job := &models.ReportJob{UserID: "u1", Format: models.ReportFormatPDF}
	require.NoError(t, jobsStore.Create(context.Background(), job))
	require.NoError(t, jobsStore.UpdateStatus(context.Background(), job.ID, models.ReportStatusCompleted,
		sql.NullString{String: "expiry-report.pdf", Valid: true}, sql.NullString{}))

	resp, err := svc.GetJob(context.Background(), "u1", job.ID)
	require.NoError(t, err)
	assert.Contains(t, resp.DownloadURL, "/api/v1/reports/"+job.ID+"/download?token=token-"+job.ID)
}

func TestGetJobHidesForeignJobs(t *testing.T) {
	svc, jobsStore, _, _ := newReportFixture()

	job := &models.ReportJob{UserID: "u1", Format: models.ReportFormatCSV}
	require.NoError(t, jobsStore.Create(context.Background(), job))

	_, err := svc.GetJob(context.Background(), "u2", job.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestOpenArtifactValidatesToken(t *testing.T) {
	svc, jobsStore, _, artifacts := newReportFixture()

	job := &models.ReportJob{UserID: "u1", Format: models.ReportFormatCSV}
	require.NoError(t, jobsStore.Create(context.Background(), job))
	artifacts.files["report.csv"] = []byte("data")
	require.NoError(t, jobsStore.UpdateStatus(context.Background(), job.ID, models.ReportStatusCompleted,
		sql.NullString{String: "report.csv", Valid: true}, sql.NullString{}))

	_, _, err := svc.OpenArtifact(context.Background(), job.ID, "wrong")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	reader, name, err := svc.OpenArtifact(context.Background(), job.ID, "token-"+job.ID)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "report.csv", name)
}

func TestCreateJobRejectsUnknownFormat(t *testing.T) {
	svc, _, _, _ := newReportFixture()

	_, err := svc.CreateJob(context.Background(), "u1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecoverStaleFailsOrphanedJobs(t *testing.T) {
	svc, jobsStore, _, _ := newReportFixture()

	pending := &models.ReportJob{UserID: "u1", Format: models.ReportFormatCSV}
	require.NoError(t, jobsStore.Create(context.Background(), pending))
	done := &models.ReportJob{UserID: "u1", Format: models.ReportFormatCSV, Status: models.ReportStatusCompleted}
	require.NoError(t, jobsStore.Create(context.Background(), done))

	svc.RecoverStale(context.Background())

	stale, err := jobsStore.FindByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, stale.Status)

	kept, err := jobsStore.FindByID(context.Background(), done.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusCompleted, kept.Status)
}
