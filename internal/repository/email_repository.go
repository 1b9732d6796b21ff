package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"invopay/internal/model"
)

// EmailRepository defines persistence operations for email rows.
type EmailRepository interface {
	FindByToken(ctx context.Context, token string) (*model.Email, error)
	FindByUserID(ctx context.Context, userID uint) (*model.Email, error)
	// MarkVerified flips the verified flag to true. There is no path that
	// sets it back; verification is monotonic.
	MarkVerified(ctx context.Context, id uint) error
	// RegenerateToken replaces the token on the user's email row inside a
	// transaction (read current row, then update) and returns the updated
	// row for re-sending.
	RegenerateToken(ctx context.Context, userID uint, token string, at time.Time) (*model.Email, error)
}

type emailRepository struct {
	db *gorm.DB
}

// NewEmailRepository builds a GORM-backed repository.
func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{db: db}
}

func (r *emailRepository) FindByToken(ctx context.Context, token string) (*model.Email, error) {
	var email model.Email
	if err := r.db.WithContext(ctx).Where("verification_token = ?", token).First(&email).Error; err != nil {
		return nil, err
	}
	return &email, nil
}

func (r *emailRepository) FindByUserID(ctx context.Context, userID uint) (*model.Email, error) {
	var email model.Email
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").First(&email).Error; err != nil {
		return nil, err
	}
	return &email, nil
}

func (r *emailRepository) MarkVerified(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Email{}).Where("id = ?", id).
		Update("verified", true).Error
}

func (r *emailRepository) RegenerateToken(ctx context.Context, userID uint, token string, at time.Time) (*model.Email, error) {
	var email model.Email
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Order("id").First(&email).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"verification_token": token,
			"token_generated_at": at,
		}
		if err := tx.Model(&email).Updates(updates).Error; err != nil {
			return err
		}
		email.VerificationToken = token
		email.TokenGeneratedAt = at
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &email, nil
}
