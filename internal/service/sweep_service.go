package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docnotify/docnotify-api/internal/models"
	"github.com/docnotify/docnotify-api/pkg/mailer"
)

type sweepUserSource interface {
	ListPage(ctx context.Context, afterID string, limit int) ([]models.User, error)
}

type sweepDocumentSource interface {
	ListReminderEnabled(ctx context.Context, userID string) ([]models.Document, error)
}

type notificationLedger interface {
	WasSent(ctx context.Context, documentID, kind, windowID string) (bool, error)
	RecordSent(ctx context.Context, entry *models.NotificationLog) error
}

type sweepLocker interface {
	Acquire(ctx context.Context) (token string, ok bool, err error)
	Release(ctx context.Context, token string) error
}

type sweepObserver interface {
	ObserveSweepRun(success bool, duration time.Duration, emailsSent, errorCount int)
}

// SweepService runs the expiration-notification sweep: it walks every user,
// classifies their reminder-enabled documents against the expiry window, and
// sends one consolidated email per affected user. Users are processed
// independently, so one failure never aborts the run.
type SweepService struct {
	users      sweepUserSource
	documents  sweepDocumentSource
	ledger     notificationLedger
	locker     sweepLocker
	dialer     mailer.Dialer
	classifier *ExpiryClassifier
	email      *NoticeEmailBuilder
	observer   sweepObserver
	logger     *zap.Logger

	pageSize     int
	dedupEnabled bool
	now          func() time.Time
}

// SweepServiceParams collects the SweepService dependencies.
type SweepServiceParams struct {
	Users        sweepUserSource
	Documents    sweepDocumentSource
	Ledger       notificationLedger
	Locker       sweepLocker
	Dialer       mailer.Dialer
	Classifier   *ExpiryClassifier
	Email        *NoticeEmailBuilder
	Observer     sweepObserver
	Logger       *zap.Logger
	PageSize     int
	DedupEnabled bool
}

// NewSweepService creates a new instance of SweepService.
func NewSweepService(p SweepServiceParams) *SweepService {
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepService{
		users:        p.Users,
		documents:    p.Documents,
		ledger:       p.Ledger,
		locker:       p.Locker,
		dialer:       p.Dialer,
		classifier:   p.Classifier,
		email:        p.Email,
		observer:     p.Observer,
		logger:       logger,
		pageSize:     pageSize,
		dedupEnabled: p.DedupEnabled,
		now:          time.Now,
	}
}

// Run executes one full sweep and always returns a usable result. Run-level
// failures (lock, transport, user listing) flip Success to false; per-user
// failures are collected into Errors while the run continues.
func (s *SweepService) Run(ctx context.Context) models.SweepResult {
	started := s.now()
	result := s.run(ctx)

	if s.observer != nil {
		s.observer.ObserveSweepRun(result.Success, s.now().Sub(started), result.EmailsSent, result.ErrorCount)
	}

	s.logger.Info("expiration sweep finished",
		zap.Bool("success", result.Success),
		zap.Int("processed_users", result.ProcessedUsers),
		zap.Int("emails_sent", result.EmailsSent),
		zap.Int("error_count", result.ErrorCount),
		zap.Duration("duration", s.now().Sub(started)))

	return result
}

func (s *SweepService) run(ctx context.Context) models.SweepResult {
	result := models.SweepResult{Errors: []string{}}

	token, acquired, err := s.locker.Acquire(ctx)
	if err != nil {
		return s.fatal(result, fmt.Sprintf("Sweep lock unavailable: %v", err))
	}
	if !acquired {
		result.Message = "Expiration sweep already running"
		return result
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), token); err != nil {
			s.logger.Warn("failed to release sweep lock", zap.Error(err))
		}
	}()

	// Verify the mail transport before touching any user. One connection
	// serves the whole run.
	transport, err := s.dialer.Dial()
	if err != nil {
		return s.fatal(result, fmt.Sprintf("Email transport verification failed: %v", err))
	}
	defer func() {
		if err := transport.Close(); err != nil {
			s.logger.Warn("failed to close mail transport", zap.Error(err))
		}
	}()

	afterID := ""
	for {
		users, err := s.users.ListPage(ctx, afterID, s.pageSize)
		if err != nil {
			return s.fatal(result, fmt.Sprintf("Failed to list users: %v", err))
		}
		if len(users) == 0 {
			break
		}

		for i := range users {
			if ctx.Err() != nil {
				return s.fatal(result, fmt.Sprintf("Sweep aborted: %v", ctx.Err()))
			}
			s.processUser(ctx, transport, users[i], &result)
		}

		afterID = users[len(users)-1].ID
		if len(users) < s.pageSize {
			break
		}
	}

	result.Success = true
	result.Message = fmt.Sprintf("Processed %d users, sent %d emails", result.ProcessedUsers, result.EmailsSent)
	return result
}

func (s *SweepService) processUser(ctx context.Context, transport mailer.Transport, user models.User, result *models.SweepResult) {
	result.ProcessedUsers++

	// Accounts without an email address are counted but never an error.
	if user.Email == "" {
		return
	}

	docs, err := s.documents.ListReminderEnabled(ctx, user.ID)
	if err != nil {
		s.recordUserError(result, user.Email, err)
		return
	}

	now := s.now()
	var notices []models.DocumentNotice
	for _, doc := range docs {
		notice, ok := s.classifier.Classify(doc, now)
		if !ok {
			continue
		}
		if s.alreadyNotified(ctx, user.ID, notice) {
			continue
		}
		notices = append(notices, notice)
	}
	if len(notices) == 0 {
		return
	}

	subject, text, htmlBody, err := s.email.Build(user.Name, notices)
	if err != nil {
		s.recordUserError(result, user.Email, err)
		return
	}

	messageID, err := transport.Send(mailer.Message{
		To:      user.Email,
		Subject: subject,
		Text:    text,
		HTML:    htmlBody,
	})
	if err != nil {
		s.recordUserError(result, user.Email, err)
		return
	}

	result.EmailsSent++
	s.logger.Debug("expiration notice sent",
		zap.String("user_id", user.ID),
		zap.String("message_id", messageID),
		zap.Int("documents", len(notices)))

	s.recordNotices(ctx, user.ID, notices)
}

// alreadyNotified checks the dedup ledger. Ledger read failures fail open so
// an unavailable ledger degrades to duplicate emails, not missed ones.
func (s *SweepService) alreadyNotified(ctx context.Context, userID string, notice models.DocumentNotice) bool {
	if !s.dedupEnabled {
		return false
	}

	sent, err := s.ledger.WasSent(ctx, notice.DocumentID, NotificationKind(notice), DedupWindowID(notice))
	if err != nil {
		s.logger.Warn("notification ledger read failed",
			zap.String("user_id", userID),
			zap.String("document_id", notice.DocumentID),
			zap.Error(err))
		return false
	}
	return sent
}

// recordNotices writes ledger entries after a successful send. A write
// failure is logged but not counted: the email went out.
func (s *SweepService) recordNotices(ctx context.Context, userID string, notices []models.DocumentNotice) {
	if !s.dedupEnabled {
		return
	}

	for _, notice := range notices {
		entry := &models.NotificationLog{
			UserID:     userID,
			DocumentID: notice.DocumentID,
			Kind:       NotificationKind(notice),
			WindowID:   DedupWindowID(notice),
		}
		if err := s.ledger.RecordSent(ctx, entry); err != nil {
			s.logger.Warn("notification ledger write failed",
				zap.String("user_id", userID),
				zap.String("document_id", notice.DocumentID),
				zap.Error(err))
		}
	}
}

// fatal ends the run. The failure is both the message and the sole (or last)
// error entry so the caller sees it in the aggregated list too.
func (s *SweepService) fatal(result models.SweepResult, message string) models.SweepResult {
	result.ErrorCount++
	result.Errors = append(result.Errors, message)
	result.Message = message
	return result
}

func (s *SweepService) recordUserError(result *models.SweepResult, email string, err error) {
	result.ErrorCount++
	result.Errors = append(result.Errors, fmt.Sprintf("Error processing user %s: %v", email, err))
	s.logger.Error("failed to process user", zap.String("user", email), zap.Error(err))
}
