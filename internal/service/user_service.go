package service

import (
	"context"
	"strings"

	"weave/internal/models"
	"weave/internal/repository"
	"weave/internal/search"
)

// UserService provides profile operations that keep the search index in
// step with user writes.
type UserService struct {
	userRepo repository.UserRepository
	index    *search.Index
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, index *search.Index) *UserService {
	return &UserService{userRepo: userRepo, index: index}
}

// Register creates an account and indexes it for search.
func (s *UserService) Register(ctx context.Context, username, email, bio string, isPrivate bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	if email == "" {
		return nil, models.NewValidationError("Email is required")
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Bio:       bio,
		IsPrivate: isPrivate,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.index.IndexUser(user)
	return user, nil
}

// GetUser returns a single user.
func (s *UserService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile edits the searchable profile fields and reindexes.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, bio *string, isPrivate *bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bio != nil {
		user.Bio = *bio
	}
	if isPrivate != nil {
		user.IsPrivate = *isPrivate
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.index.IndexUser(user)
	return user, nil
}

// DeleteAccount removes a user, their owned edges, and their search entry.
// The cascade and audit trail live in the repository.
func (s *UserService) DeleteAccount(ctx context.Context, actorID, userID uint) error {
	if actorID != userID {
		return models.NewUnauthorizedError("You can only delete your own account")
	}
	if err := s.userRepo.Delete(ctx, actorID, userID); err != nil {
		return err
	}
	s.index.RemoveUser(userID)
	return nil
}
