package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "invopay/internal/errors"
	"invopay/internal/model"
	"invopay/internal/repository"
)

// ClientChanges is a partial update: nil fields are left untouched. The
// owner is not part of the change set on purpose.
type ClientChanges struct {
	Name        *string
	Email       *string
	CompanyName *string
	Address1    *string
	Address2    *string
	City        *string
	State       *string
	ZipCode     *string
	Country     *string
	Website     *string
	Notes       *string
}

func (c *ClientChanges) columns() map[string]interface{} {
	changes := map[string]interface{}{}
	setIfPresent(changes, "name", c.Name)
	setIfPresent(changes, "email", c.Email)
	setIfPresent(changes, "company_name", c.CompanyName)
	setIfPresent(changes, "address_1", c.Address1)
	setIfPresent(changes, "address_2", c.Address2)
	setIfPresent(changes, "city", c.City)
	setIfPresent(changes, "state", c.State)
	setIfPresent(changes, "zip_code", c.ZipCode)
	setIfPresent(changes, "country", c.Country)
	setIfPresent(changes, "website", c.Website)
	setIfPresent(changes, "notes", c.Notes)
	return changes
}

func setIfPresent(changes map[string]interface{}, column string, value *string) {
	if value != nil {
		changes[column] = *value
	}
}

// ClientService is owner-scoped CRUD over clients.
type ClientService interface {
	Create(ctx context.Context, ownerID uint, client *model.Client) (*model.Client, error)
	Get(ctx context.Context, id, ownerID uint) (*model.Client, error)
	List(ctx context.Context, ownerID uint, page, perPage int, search string) ([]model.Client, int64, error)
	Update(ctx context.Context, id, ownerID uint, changes ClientChanges) (*model.Client, error)
	Delete(ctx context.Context, id, ownerID uint) error
}

type clientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new client service.
func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) Create(ctx context.Context, ownerID uint, client *model.Client) (*model.Client, error) {
	client.ID = 0
	client.UserID = ownerID
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

func (s *clientService) Get(ctx context.Context, id, ownerID uint) (*model.Client, error) {
	client, err := s.clientRepo.FindOwned(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return client, nil
}

func (s *clientService) List(ctx context.Context, ownerID uint, page, perPage int, search string) ([]model.Client, int64, error) {
	clients, totalPages, err := s.clientRepo.List(ctx, ownerID, page, perPage, search)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	return clients, totalPages, nil
}

func (s *clientService) Update(ctx context.Context, id, ownerID uint, changes ClientChanges) (*model.Client, error) {
	client, err := s.clientRepo.UpdateOwned(ctx, id, ownerID, changes.columns())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, id, ownerID uint) error {
	deleted, err := s.clientRepo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if deleted == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
