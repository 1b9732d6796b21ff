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

// CompanyChanges is a partial update: nil fields are left untouched.
type CompanyChanges struct {
	Name     *string
	Address1 *string
	Address2 *string
	City     *string
	State    *string
	ZipCode  *string
	Country  *string
}

func (c *CompanyChanges) columns() map[string]interface{} {
	changes := map[string]interface{}{}
	setIfPresent(changes, "name", c.Name)
	setIfPresent(changes, "address_1", c.Address1)
	setIfPresent(changes, "address_2", c.Address2)
	setIfPresent(changes, "city", c.City)
	setIfPresent(changes, "state", c.State)
	setIfPresent(changes, "zip_code", c.ZipCode)
	setIfPresent(changes, "country", c.Country)
	return changes
}

// CompanyService is owner-scoped CRUD over companies.
type CompanyService interface {
	Create(ctx context.Context, ownerID uint, company *model.Company) (*model.Company, error)
	Get(ctx context.Context, id, ownerID uint) (*model.Company, error)
	List(ctx context.Context, ownerID uint, page, perPage int, search string) ([]model.Company, int64, error)
	Update(ctx context.Context, id, ownerID uint, changes CompanyChanges) (*model.Company, error)
	Delete(ctx context.Context, id, ownerID uint) error
}

type companyService struct {
	companyRepo repository.CompanyRepository
}

// NewCompanyService creates a new company service.
func NewCompanyService(companyRepo repository.CompanyRepository) CompanyService {
	return &companyService{companyRepo: companyRepo}
}

func (s *companyService) Create(ctx context.Context, ownerID uint, company *model.Company) (*model.Company, error) {
	company.ID = 0
	company.UserID = ownerID
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return company, nil
}

func (s *companyService) Get(ctx context.Context, id, ownerID uint) (*model.Company, error) {
	company, err := s.companyRepo.FindOwned(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find company: %w", err)
	}
	return company, nil
}

func (s *companyService) List(ctx context.Context, ownerID uint, page, perPage int, search string) ([]model.Company, int64, error) {
	companies, totalPages, err := s.companyRepo.List(ctx, ownerID, page, perPage, search)
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	return companies, totalPages, nil
}

func (s *companyService) Update(ctx context.Context, id, ownerID uint, changes CompanyChanges) (*model.Company, error) {
	company, err := s.companyRepo.UpdateOwned(ctx, id, ownerID, changes.columns())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update company: %w", err)
	}
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, id, ownerID uint) error {
	deleted, err := s.companyRepo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if deleted == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
