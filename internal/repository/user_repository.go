package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

var userColumns = []string{"id", "email", "name", "avatar_url", "role", "created_at", "updated_at"}

// UserRepository implements domain.UserRepository
type UserRepository struct {
	store
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, logger *slog.Logger) *UserRepository {
	return &UserRepository{store: newStore(db, logger)}
}

// List returns every user ordered by name
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	query := "SELECT " + columns("", userColumns) + " FROM users ORDER BY name, id"
	if err := r.selectAll(ctx, &users, query); err != nil {
		r.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	query := "SELECT " + columns("", userColumns) + " FROM users WHERE id = ?"
	if err := r.getOne(ctx, "User", u, query, id); err != nil {
		return nil, err
	}
	return u, nil
}
