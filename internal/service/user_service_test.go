package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docnotify/docnotify-api/internal/dto"
	"github.com/docnotify/docnotify-api/internal/models"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) Upsert(_ context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func TestSyncUsesClaimNameWhenBodyEmpty(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	claims := &models.JWTClaims{UserID: "sub-1", Email: "a@example.com", Name: "Alice"}
	resp, err := svc.Sync(context.Background(), claims, dto.SyncUserRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.Name)
	assert.Equal(t, "a@example.com", resp.Email)
}

func TestSyncPrefersRequestProfileFields(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	claims := &models.JWTClaims{UserID: "sub-1", Email: "a@example.com", Name: "Alice"}
	resp, err := svc.Sync(context.Background(), claims, dto.SyncUserRequest{Name: "Alice B", Phone: "+31612345678"})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", resp.Name)
	assert.Equal(t, "+31612345678", resp.Phone)
}

func TestMeNotFound(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	_, err := svc.Me(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
