package service

import (
	"context"
	"strings"

	"telegram-casino-bot/internal/model"
)

// UserService keeps the username directory used for mentions and rankings.
type UserService struct {
	store Store
}

// NewUserService creates a UserService.
func NewUserService(store Store) *UserService {
	return &UserService{store: store}
}

// Ensure records the user and their latest username.
func (s *UserService) Ensure(ctx context.Context, userID int64, username string) error {
	return s.store.UpsertUser(ctx, userID, username)
}

// FindByName resolves a username, with or without the leading @.
func (s *UserService) FindByName(ctx context.Context, username string) (*model.User, error) {
	name := strings.TrimPrefix(strings.TrimSpace(username), "@")
	if name == "" {
		return nil, ErrUserNotFound
	}
	return s.store.FindUserByName(ctx, name)
}
