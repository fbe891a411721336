package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/docnotify/docnotify-api/internal/models"
)

// UserRepository provides database access for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts a user or refreshes its profile fields. The ID comes from
// the identity provider, so conflicts key on it.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, email, name, phone, created_at, updated_at)
		VALUES (:id, :email, :name, :phone, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name, phone = EXCLUDED.phone, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, name, phone, created_at, updated_at FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// ListPage returns one keyset page of users ordered by ID. Pass an empty
// afterID for the first page; a short page signals the end.
func (r *UserRepository) ListPage(ctx context.Context, afterID string, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `SELECT id, email, name, phone, created_at, updated_at FROM users WHERE id > $1 ORDER BY id LIMIT $2`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, afterID, limit); err != nil {
		return nil, fmt.Errorf("list users page: %w", err)
	}
	return users, nil
}
