package repository

import (
	"context"

	"gorm.io/gorm"

	"invopay/internal/model"
)

// CompanyRepository defines persistence operations for companies, with
// the same owner-filtered contract as ClientRepository.
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindOwned(ctx context.Context, id, ownerID uint) (*model.Company, error)
	List(ctx context.Context, ownerID uint, page, perPage int, search string) ([]model.Company, int64, error)
	UpdateOwned(ctx context.Context, id, ownerID uint, changes map[string]interface{}) (*model.Company, error)
	DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository builds a GORM-backed repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *companyRepository) FindOwned(ctx context.Context, id, ownerID uint) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context, ownerID uint, page, perPage int, search string) ([]model.Company, int64, error) {
	page, perPage = NormalizePageArgs(page, perPage)

	query := r.db.WithContext(ctx).Model(&model.Company{}).Where("user_id = ?", ownerID)
	if search != "" {
		query = query.Where("name LIKE ?", search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []model.Company
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&companies).Error
	if err != nil {
		return nil, 0, err
	}
	return companies, TotalPages(total, perPage), nil
}

func (r *companyRepository) UpdateOwned(ctx context.Context, id, ownerID uint, changes map[string]interface{}) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&company).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&model.Company{}).
			Where("id = ? AND user_id = ?", id, ownerID).
			Updates(changes).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, ownerID).First(&company).Error
	})
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&model.Company{})
	return res.RowsAffected, res.Error
}
