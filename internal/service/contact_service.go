package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/docnotify/docnotify-api/internal/dto"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
	"github.com/docnotify/docnotify-api/pkg/mailer"
)

// ContactService forwards support-form submissions to the support inbox with
// the submitter set as Reply-To.
type ContactService struct {
	dialer    mailer.Dialer
	recipient string
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewContactService creates a new instance of ContactService.
func NewContactService(dialer mailer.Dialer, recipient string, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		dialer:    dialer,
		recipient: recipient,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Submit sends the support message. Each submission opens its own transport;
// contact volume does not justify a pooled connection.
func (s *ContactService) Submit(ctx context.Context, req dto.ContactRequest) error {
	if s.recipient == "" {
		return appErrors.Clone(appErrors.ErrConfig, "contact recipient is not configured")
	}
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	transport, err := s.dialer.Dial()
	if err != nil {
		return err
	}
	defer func() {
		if err := transport.Close(); err != nil {
			s.logger.Warn("failed to close contact mail transport", zap.Error(err))
		}
	}()

	messageID, err := transport.Send(mailer.Message{
		To:      s.recipient,
		ReplyTo: req.Email,
		Subject: fmt.Sprintf("[Support] %s", req.Subject),
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", req.Name, req.Email, req.Message),
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send support message")
	}

	s.logger.Info("support message forwarded", zap.String("message_id", messageID))
	return nil
}
