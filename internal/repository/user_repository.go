package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"invopay/internal/model"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// CreateWithEmail inserts the user and their first email row in one
	// transaction. The email's UserID is backfilled from the generated
	// user id; a failure on either insert rolls back both.
	CreateWithEmail(ctx context.Context, user *model.User, email *model.Email) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateLastSignIn(ctx context.Context, id uint, at time.Time) error
	UpdateProfile(ctx context.Context, id uint, profileName, profileImage *string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateWithEmail(ctx context.Context, user *model.User, email *model.Email) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		email.UserID = user.ID
		return tx.Create(email).Error
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername looks a user up by case-normalized username.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateLastSignIn(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("last_sign_in_at", at).Error
}

// UpdateProfile changes only the supplied fields and returns the fresh row.
// Role and credentials are not reachable through this path.
func (r *userRepository) UpdateProfile(ctx context.Context, id uint, profileName, profileImage *string) (*model.User, error) {
	changes := map[string]interface{}{}
	if profileName != nil {
		changes["profile_name"] = *profileName
	}
	if profileImage != nil {
		changes["profile_image"] = *profileImage
	}

	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(changes) > 0 {
			if err := tx.Model(&model.User{}).Where("id = ?", id).Updates(changes).Error; err != nil {
				return err
			}
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
