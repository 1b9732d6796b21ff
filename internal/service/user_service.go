package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"invopay/internal/cache"
	apperrors "invopay/internal/errors"
	"invopay/internal/model"
	"invopay/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes the current user's profile.
type UserService interface {
	Me(ctx context.Context, userID uint) (*model.User, error)
	// UpdateProfile changes only the supplied fields. Role and password
	// are not reachable through this path.
	UpdateProfile(ctx context.Context, userID uint, profileName, profileImage *string) (*model.User, error)
}

type userService struct {
	userRepo  repository.UserRepository
	emailRepo repository.EmailRepository
	cache     *cache.Client
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, emailRepo repository.EmailRepository, cache *cache.Client) UserService {
	return &userService{userRepo: userRepo, emailRepo: emailRepo, cache: cache}
}

func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// Me returns the user behind a verified token, cached for a short time.
func (s *userService) Me(ctx context.Context, userID uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, userCacheKey(userID)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if email, err := s.emailRepo.FindByUserID(ctx, userID); err == nil {
		user.Emails = []model.Email{*email}
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, userCacheKey(userID), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, profileName, profileImage *string) (*model.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, profileName, profileImage)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	_ = s.cache.Delete(ctx, userCacheKey(userID))
	return user, nil
}
