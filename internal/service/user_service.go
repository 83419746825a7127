package service

import (
	"context"
	"time"

	"chirper/social-service/internal/models"
	"chirper/social-service/internal/policy"
	"chirper/social-service/internal/repository"
)

// ProfileUpdate carries the editable profile fields. Zero values leave the
// stored field unchanged.
type ProfileUpdate struct {
	Name     string
	Bio      string
	Location string
	Link     string
	BirthDay *time.Time
}

type UserService interface {
	GetUserByID(ctx context.Context, userID uint64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint64, update ProfileUpdate) error
	PublicToPrivate(ctx context.Context, userID uint64) error
	// PrivateToPublic flips the account public and admits every pending
	// follow request it had queued.
	PrivateToPublic(ctx context.Context, userID uint64) error
}

type userService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewUserService(users repository.UserRepository, follows repository.FollowRepository) UserService {
	return &userService{
		users:   users,
		follows: follows,
	}
}

func (s *userService) GetUserByID(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, policy.ErrUserNotFound
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, policy.ErrUserNotFound
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint64, update ProfileUpdate) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if update.Name != "" {
		user.Name = update.Name
	}
	if update.Bio != "" {
		user.Bio = update.Bio
	}
	if update.Location != "" {
		user.Location = update.Location
	}
	if update.Link != "" {
		user.Link = update.Link
	}
	if update.BirthDay != nil {
		user.BirthDay = update.BirthDay
	}
	return s.users.UpdateProfile(ctx, user)
}

func (s *userService) PublicToPrivate(ctx context.Context, userID uint64) error {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return s.users.SetStatus(ctx, userID, models.UserStatusPublic, models.UserStatusPrivate)
}

func (s *userService) PrivateToPublic(ctx context.Context, userID uint64) error {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.SetStatus(ctx, userID, models.UserStatusPrivate, models.UserStatusPublic); err != nil {
		return err
	}
	return s.follows.AcceptAllPending(ctx, userID)
}
