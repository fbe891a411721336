package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/docnotify/docnotify-api/internal/dto"
	"github.com/docnotify/docnotify-api/internal/models"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
)

type userStore interface {
	Upsert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// UserService syncs accounts from the identity provider and serves profiles.
type UserService struct {
	users userStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(users userStore) *UserService {
	return &UserService{users: users}
}

// Sync upserts the caller's account from its verified token claims plus the
// optional profile fields in the request.
func (s *UserService) Sync(ctx context.Context, claims *models.JWTClaims, req dto.SyncUserRequest) (*dto.UserResponse, error) {
	name := req.Name
	if name == "" {
		name = claims.Name
	}

	user := &models.User{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  name,
		Phone: req.Phone,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sync user")
	}
	return userResponse(user), nil
}

// Me returns the caller's stored profile.
func (s *UserService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return userResponse(user), nil
}

func userResponse(user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
