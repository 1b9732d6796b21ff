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

func strPtr(s string) *string { return &s }

func TestClientService_Create(t *testing.T) {
	mockRepo := new(MockClientRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Client")).Return(nil)

	svc := NewClientService(mockRepo)

	// A caller-supplied id and owner must not survive; ownership comes
	// from the authenticated user only.
	client, err := svc.Create(context.Background(), 1, &model.Client{
		ID:     999,
		UserID: 42,
		Name:   "Acme",
		Email:  "billing@acme.example",
	})

	assert.NoError(t, err)
	assert.Equal(t, uint(0), client.ID)
	assert.Equal(t, uint(1), client.UserID)
	mockRepo.AssertExpectations(t)
}

func TestClientService_Get(t *testing.T) {
	t.Run("owned client", func(t *testing.T) {
		mockRepo := new(MockClientRepository)
		mockRepo.On("FindOwned", mock.Anything, uint(5), uint(1)).Return(&model.Client{ID: 5, UserID: 1, Name: "Acme"}, nil)

		svc := NewClientService(mockRepo)
		client, err := svc.Get(context.Background(), 5, 1)

		assert.NoError(t, err)
		assert.Equal(t, "Acme", client.Name)
	})

	t.Run("foreign client is not found", func(t *testing.T) {
		mockRepo := new(MockClientRepository)
		mockRepo.On("FindOwned", mock.Anything, uint(5), uint(2)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewClientService(mockRepo)
		_, err := svc.Get(context.Background(), 5, 2)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestClientService_Update(t *testing.T) {
	mockRepo := new(MockClientRepository)
	mockRepo.On("UpdateOwned", mock.Anything, uint(5), uint(1), map[string]interface{}{
		"name": "Acme Ltd",
		"city": "Berlin",
	}).Return(&model.Client{ID: 5, UserID: 1, Name: "Acme Ltd", City: "Berlin"}, nil)

	svc := NewClientService(mockRepo)
	client, err := svc.Update(context.Background(), 5, 1, ClientChanges{
		Name: strPtr("Acme Ltd"),
		City: strPtr("Berlin"),
	})

	assert.NoError(t, err)
	assert.Equal(t, "Acme Ltd", client.Name)
	mockRepo.AssertExpectations(t)
}

func TestClientService_Delete(t *testing.T) {
	t.Run("deletes owned client", func(t *testing.T) {
		mockRepo := new(MockClientRepository)
		mockRepo.On("DeleteOwned", mock.Anything, uint(5), uint(1)).Return(int64(1), nil)

		svc := NewClientService(mockRepo)
		assert.NoError(t, svc.Delete(context.Background(), 5, 1))
	})

	t.Run("missing client is not found", func(t *testing.T) {
		mockRepo := new(MockClientRepository)
		mockRepo.On("DeleteOwned", mock.Anything, uint(5), uint(1)).Return(int64(0), nil)

		svc := NewClientService(mockRepo)
		assert.ErrorIs(t, svc.Delete(context.Background(), 5, 1), apperrors.ErrNotFound)
	})
}
