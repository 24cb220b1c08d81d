package service

import (
	"context"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

// UserService exposes the read-only user directory
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new user service
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// List returns every user
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Get returns a single user
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.Get(ctx, id)
}
