package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docnotify/docnotify-api/internal/dto"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
)

const documentCacheTTL = 5 * time.Minute

type cacheStore interface {
	Enabled() bool
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheService namespaces cache keys for the document listing and keeps hit
// and miss metrics. Cache failures never surface to callers.
type CacheService struct {
	store   cacheStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCacheService creates a new instance of CacheService.
func NewCacheService(store cacheStore, metrics *MetricsService, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{store: store, metrics: metrics, logger: logger}
}

func documentListKey(userID string) string {
	return fmt.Sprintf("docnotify:documents:user:%s", userID)
}

// GetDocuments returns a cached document listing and whether it was present.
func (s *CacheService) GetDocuments(ctx context.Context, userID string) ([]dto.DocumentResponse, bool) {
	if !s.store.Enabled() {
		return nil, false
	}

	var docs []dto.DocumentResponse
	err := s.store.Get(ctx, documentListKey(userID), &docs)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("document cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
		return nil, false
	}

	s.metrics.RecordCacheOperation(true)
	return docs, true
}

// SetDocuments stores a document listing snapshot.
func (s *CacheService) SetDocuments(ctx context.Context, userID string, docs []dto.DocumentResponse) {
	if !s.store.Enabled() {
		return
	}
	if err := s.store.Set(ctx, documentListKey(userID), docs, documentCacheTTL); err != nil {
		s.logger.Warn("document cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// InvalidateDocuments drops the cached listing after a write.
func (s *CacheService) InvalidateDocuments(ctx context.Context, userID string) {
	if !s.store.Enabled() {
		return
	}
	if err := s.store.Delete(ctx, documentListKey(userID)); err != nil {
		s.logger.Warn("document cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}
