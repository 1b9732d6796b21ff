package repository

import (
	"context"

	"gorm.io/gorm"

	"invopay/internal/model"
)

// ClientRepository defines persistence operations for clients. Every
// query is filtered by the owning user id; ownership is enforced here,
// not by comparing after the fact in application code.
type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	FindOwned(ctx context.Context, id, ownerID uint) (*model.Client, error)
	// List returns one page of the owner's clients, newest first, with the
	// total page count. A non-empty search narrows by name prefix.
	List(ctx context.Context, ownerID uint, page, perPage int, search string) ([]model.Client, int64, error)
	// UpdateOwned applies the given column changes to the row only when it
	// belongs to ownerID. A row owned by someone else behaves exactly like
	// a missing row.
	UpdateOwned(ctx context.Context, id, ownerID uint, changes map[string]interface{}) (*model.Client, error)
	// DeleteOwned removes the row when owned and reports how many rows
	// went away. Zero means not found or not owned.
	DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository builds a GORM-backed repository.
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) FindOwned(ctx context.Context, id, ownerID uint) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, ownerID uint, page, perPage int, search string) ([]model.Client, int64, error) {
	page, perPage = NormalizePageArgs(page, perPage)

	query := r.db.WithContext(ctx).Model(&model.Client{}).Where("user_id = ?", ownerID)
	if search != "" {
		query = query.Where("name LIKE ?", search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []model.Client
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, TotalPages(total, perPage), nil
}

func (r *clientRepository) UpdateOwned(ctx context.Context, id, ownerID uint, changes map[string]interface{}) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&client).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&model.Client{}).
			Where("id = ? AND user_id = ?", id, ownerID).
			Updates(changes).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, ownerID).First(&client).Error
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&model.Client{})
	return res.RowsAffected, res.Error
}
