package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/docnotify/docnotify-api/internal/models"
)

// DocumentRepository provides database access for tracked documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.FileURLs == nil {
		doc.FileURLs = pq.StringArray{}
	}

	const query = `INSERT INTO documents (id, user_id, title, description, expiry_date, reminders, file_urls, created_at, updated_at)
		VALUES (:id, :user_id, :title, :description, :expiry_date, :reminders, :file_urls, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// FindByID returns a document by identifier.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	const query = `SELECT id, user_id, title, description, expiry_date, reminders, file_urls, created_at, updated_at FROM documents WHERE id = $1 LIMIT 1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	return &doc, nil
}

// ListByUser returns every document owned by a user, newest first.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	const query = `SELECT id, user_id, title, description, expiry_date, reminders, file_urls, created_at, updated_at FROM documents WHERE user_id = $1 ORDER BY created_at DESC`
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, userID); err != nil {
		return nil, fmt.Errorf("list documents by user: %w", err)
	}
	return docs, nil
}

// ListReminderEnabled returns the documents of one user that opted into
// expiration reminders. The reminder filter belongs in the query, not in the
// caller, so disabled documents never reach the classifier.
func (r *DocumentRepository) ListReminderEnabled(ctx context.Context, userID string) ([]models.Document, error) {
	const query = `SELECT id, user_id, title, description, expiry_date, reminders, file_urls, created_at, updated_at FROM documents WHERE user_id = $1 AND reminders = TRUE`
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, userID); err != nil {
		return nil, fmt.Errorf("list reminder documents: %w", err)
	}
	return docs, nil
}

// Update updates mutable fields of a document.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE documents SET title = :title, description = :description, expiry_date = :expiry_date, reminders = :reminders, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// AppendFileURL links an uploaded object to the document.
func (r *DocumentRepository) AppendFileURL(ctx context.Context, id, fileURL string) error {
	const query = `UPDATE documents SET file_urls = array_append(file_urls, $2), updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, fileURL, time.Now().UTC()); err != nil {
		return fmt.Errorf("append document file url: %w", err)
	}
	return nil
}

// Delete removes a document.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
