package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "invopay/internal/errors"
	"invopay/internal/model"
)

func TestUserService_Me(t *testing.T) {
	t.Run("returns the user with its email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockEmails := new(MockEmailRepository)
		mockRepo.On("FindByID", mock.Anything, uint(7)).Return(&model.User{ID: 7, Username: "user@example.com"}, nil)
		mockEmails.On("FindByUserID", mock.Anything, uint(7)).
			Return(&model.Email{ID: 3, UserID: 7, Address: "user@example.com", Verified: true}, nil)

		svc := NewUserService(mockRepo, mockEmails, nil)
		user, err := svc.Me(context.Background(), 7)

		assert.NoError(t, err)
		assert.Equal(t, "user@example.com", user.Username)
		if assert.Len(t, user.Emails, 1) {
			assert.True(t, user.Emails[0].Verified)
		}
		mockRepo.AssertExpectations(t)
		mockEmails.AssertExpectations(t)
	})

	t.Run("missing email row leaves the user untouched", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockEmails := new(MockEmailRepository)
		mockRepo.On("FindByID", mock.Anything, uint(7)).Return(&model.User{ID: 7, Username: "user@example.com"}, nil)
		mockEmails.On("FindByUserID", mock.Anything, uint(7)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, mockEmails, nil)
		user, err := svc.Me(context.Background(), 7)

		assert.NoError(t, err)
		assert.Empty(t, user.Emails)
	})

	t.Run("deleted user reads as invalid token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(8)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, new(MockEmailRepository), nil)
		_, err := svc.Me(context.Background(), 8)

		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	name := "New Name"
	mockRepo.On("UpdateProfile", mock.Anything, uint(7), &name, (*string)(nil)).
		Return(&model.User{ID: 7, ProfileName: "New Name"}, nil)

	svc := NewUserService(mockRepo, new(MockEmailRepository), nil)
	user, err := svc.UpdateProfile(context.Background(), 7, &name, nil)

	assert.NoError(t, err)
	assert.Equal(t, "New Name", user.ProfileName)
	mockRepo.AssertExpectations(t)
}
