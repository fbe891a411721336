package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docnotify/docnotify-api/internal/dto"
	"github.com/docnotify/docnotify-api/internal/models"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
)

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id string) (*models.Document, error)
	ListByUser(ctx context.Context, userID string) ([]models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	AppendFileURL(ctx context.Context, id, fileURL string) error
	Delete(ctx context.Context, id string) error
}

type objectStore interface {
	PresignPut(ctx context.Context, objectName string) (string, error)
	PresignGet(ctx context.Context, objectName string) (string, error)
	Remove(ctx context.Context, objectName string) error
}

// DocumentService implements document CRUD with per-user cache invalidation
// and presigned file transfers. Documents are strictly owner scoped; a
// document belonging to another user reads as not found.
type DocumentService struct {
	documents  documentStore
	cache      *CacheService
	objects    objectStore
	classifier *ExpiryClassifier
	logger     *zap.Logger
	now        func() time.Time
}

// NewDocumentService creates a new instance of DocumentService. The object
// store may be nil, which disables file endpoints.
func NewDocumentService(documents documentStore, cache *CacheService, objects objectStore, classifier *ExpiryClassifier, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		documents:  documents,
		cache:      cache,
		objects:    objects,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Create registers a new document. Reminders default to on unless the client
// opts out explicitly.
func (s *DocumentService) Create(ctx context.Context, userID string, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if req.ExpiryDate != "" {
		if _, err := ParseExpiryDate(req.ExpiryDate); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "expiryDate must be RFC 3339 or YYYY-MM-DD")
		}
	}

	reminders := true
	if req.Reminders != nil {
		reminders = *req.Reminders
	}

	doc := &models.Document{
		UserID:      userID,
		Title:       req.Title,
		Description: sql.NullString{String: req.Description, Valid: req.Description != ""},
		ExpiryDate:  sql.NullString{String: req.ExpiryDate, Valid: req.ExpiryDate != ""},
		Reminders:   reminders,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}

	s.cache.InvalidateDocuments(ctx, userID)
	return s.toResponse(doc), nil
}

// List returns every document of the user, served from cache when possible.
func (s *DocumentService) List(ctx context.Context, userID string) ([]dto.DocumentResponse, bool, error) {
	if cached, ok := s.cache.GetDocuments(ctx, userID); ok {
		return cached, true, nil
	}

	docs, err := s.documents.ListByUser(ctx, userID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	responses := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		responses = append(responses, *s.toResponse(&docs[i]))
	}

	s.cache.SetDocuments(ctx, userID, responses)
	return responses, false, nil
}

// Get returns a single owned document.
func (s *DocumentService) Get(ctx context.Context, userID, docID string) (*dto.DocumentResponse, error) {
	doc, err := s.findOwned(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(doc), nil
}

// Update applies partial changes to an owned document.
func (s *DocumentService) Update(ctx context.Context, userID, docID string, req dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	doc, err := s.findOwned(ctx, userID, docID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Description != nil {
		doc.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.ExpiryDate != nil {
		if *req.ExpiryDate != "" {
			if _, err := ParseExpiryDate(*req.ExpiryDate); err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "expiryDate must be RFC 3339 or YYYY-MM-DD")
			}
		}
		doc.ExpiryDate = sql.NullString{String: *req.ExpiryDate, Valid: *req.ExpiryDate != ""}
	}
	if req.Reminders != nil {
		doc.Reminders = *req.Reminders
	}

	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}

	s.cache.InvalidateDocuments(ctx, userID)
	return s.toResponse(doc), nil
}

// Delete removes an owned document and best-effort deletes its stored files.
func (s *DocumentService) Delete(ctx context.Context, userID, docID string) error {
	doc, err := s.findOwned(ctx, userID, docID)
	if err != nil {
		return err
	}

	if err := s.documents.Delete(ctx, docID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}

	if s.objects != nil {
		for _, objectName := range doc.FileURLs {
			if err := s.objects.Remove(ctx, objectName); err != nil {
				s.logger.Warn("failed to remove stored file",
					zap.String("document_id", docID),
					zap.String("object", objectName),
					zap.Error(err))
			}
		}
	}

	s.cache.InvalidateDocuments(ctx, userID)
	return nil
}

// UploadURL issues a presigned PUT slot for a new document file.
func (s *DocumentService) UploadURL(ctx context.Context, userID, docID, fileName string) (*dto.UploadURLResponse, error) {
	if s.objects == nil {
		return nil, appErrors.Clone(appErrors.ErrConfig, "file storage is not configured")
	}
	if _, err := s.findOwned(ctx, userID, docID); err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("docs/%s/%s-%s", docID, uuid.NewString(), sanitizeFileName(fileName))
	uploadURL, err := s.objects.PresignPut(ctx, objectName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to presign upload")
	}

	return &dto.UploadURLResponse{UploadURL: uploadURL, ObjectName: objectName}, nil
}

// AttachFile links a completed upload to the document.
func (s *DocumentService) AttachFile(ctx context.Context, userID, docID, objectName string) error {
	if s.objects == nil {
		return appErrors.Clone(appErrors.ErrConfig, "file storage is not configured")
	}
	if _, err := s.findOwned(ctx, userID, docID); err != nil {
		return err
	}
	if !strings.HasPrefix(objectName, fmt.Sprintf("docs/%s/", docID)) {
		return appErrors.Clone(appErrors.ErrValidation, "object does not belong to this document")
	}

	if err := s.documents.AppendFileURL(ctx, docID, objectName); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach file")
	}

	s.cache.InvalidateDocuments(ctx, userID)
	return nil
}

// DownloadURL issues a presigned GET URL for a stored document file.
func (s *DocumentService) DownloadURL(ctx context.Context, userID, docID, objectName string) (*dto.DownloadURLResponse, error) {
	if s.objects == nil {
		return nil, appErrors.Clone(appErrors.ErrConfig, "file storage is not configured")
	}

	doc, err := s.findOwned(ctx, userID, docID)
	if err != nil {
		return nil, err
	}

	linked := false
	for _, stored := range doc.FileURLs {
		if stored == objectName {
			linked = true
			break
		}
	}
	if !linked {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found on document")
	}

	downloadURL, err := s.objects.PresignGet(ctx, objectName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to presign download")
	}
	return &dto.DownloadURLResponse{DownloadURL: downloadURL}, nil
}

func (s *DocumentService) findOwned(ctx context.Context, userID, docID string) (*models.Document, error) {
	doc, err := s.documents.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if doc.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	return doc, nil
}

func (s *DocumentService) toResponse(doc *models.Document) *dto.DocumentResponse {
	resp := &dto.DocumentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Reminders: doc.Reminders,
		FileURLs:  doc.FileURLs,
		CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: doc.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if resp.FileURLs == nil {
		resp.FileURLs = []string{}
	}
	if doc.Description.Valid {
		resp.Description = doc.Description.String
	}
	if doc.ExpiryDate.Valid {
		resp.ExpiryDate = doc.ExpiryDate.String
	}

	// Expiry status is advisory in API responses: an out-of-window or
	// unparseable date just leaves the fields unset.
	if notice, ok := s.classifier.Classify(*doc, s.now()); ok {
		expired := notice.IsExpired
		days := notice.DaysUntilExpiry
		resp.IsExpired = &expired
		resp.DaysUntilExpiry = &days
	}
	return resp
}

func sanitizeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		base = "file"
	}
	return base
}
