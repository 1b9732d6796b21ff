package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "invopay/internal/errors"
	"invopay/internal/model"
	"invopay/internal/repository"
)

// MockInvoiceRepository is a mock implementation of InvoiceRepository.
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) CreateWithItems(ctx context.Context, invoice *model.Invoice, items []model.InvoiceItem) error {
	args := m.Called(ctx, invoice, items)
	if args.Error(0) == nil {
		invoice.ID = 1
		for i := range items {
			items[i].ID = uint(i + 1)
			items[i].InvoiceID = invoice.ID
		}
	}
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindOwned(ctx context.Context, id, ownerID uint) (*model.Invoice, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, ownerID uint, page, perPage int) ([]model.Invoice, int64, error) {
	args := m.Called(ctx, ownerID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) CountForClientYear(ctx context.Context, ownerID, clientID uint, year int) (int64, error) {
	args := m.Called(ctx, ownerID, clientID, year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateOwned(ctx context.Context, id, ownerID uint, changes map[string]interface{}) (*model.Invoice, error) {
	args := m.Called(ctx, id, ownerID, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Items(ctx context.Context, invoiceID uint) ([]model.InvoiceItem, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InvoiceItem), args.Error(1)
}

func (m *MockInvoiceRepository) CreateItem(ctx context.Context, item *model.InvoiceItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteItem(ctx context.Context, invoiceID, itemID uint) (int64, error) {
	args := m.Called(ctx, invoiceID, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateAmount(ctx context.Context, invoiceID uint, amount decimal.Decimal) error {
	args := m.Called(ctx, invoiceID, amount)
	return args.Error(0)
}

// WithTransaction runs fn against the mock itself; transactional
// boundaries are the real repository's concern.
func (m *MockInvoiceRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.InvoiceRepository) error) error {
	return fn(ctx, m)
}

// MockClientRepository is a mock implementation of ClientRepository.
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *model.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) FindOwned(ctx context.Context, id, ownerID uint) (*model.Client, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context, ownerID uint, page, perPage int, search string) ([]model.Client, int64, error) {
	args := m.Called(ctx, ownerID, page, perPage, search)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) UpdateOwned(ctx context.Context, id, ownerID uint, changes map[string]interface{}) (*model.Client, error) {
	args := m.Called(ctx, id, ownerID, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}

func (m *MockClientRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCompanyRepository is a mock implementation of CompanyRepository.
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *model.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindOwned(ctx context.Context, id, ownerID uint) (*model.Company, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) List(ctx context.Context, ownerID uint, page, perPage int, search string) ([]model.Company, int64, error) {
	args := m.Called(ctx, ownerID, page, perPage, search)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Company), args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyRepository) UpdateOwned(ctx context.Context, id, ownerID uint, changes map[string]interface{}) (*model.Company, error) {
	args := m.Called(ctx, id, ownerID, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestNextInvoiceNumber(t *testing.T) {
	assert.Equal(t, "2024/001", NextInvoiceNumber(2024, 0))
	assert.Equal(t, "2024/002", NextInvoiceNumber(2024, 1))
	assert.Equal(t, "2024/013", NextInvoiceNumber(2024, 12))
	assert.Equal(t, "2025/100", NextInvoiceNumber(2025, 99))
	// Sequences past three digits keep growing rather than wrapping.
	assert.Equal(t, "2025/1000", NextInvoiceNumber(2025, 999))
}

func TestItemsTotal(t *testing.T) {
	tests := []struct {
		name     string
		items    []model.InvoiceItem
		expected string
	}{
		{
			name:     "no items",
			items:    nil,
			expected: "0",
		},
		{
			name: "fractional prices stay exact",
			items: []model.InvoiceItem{
				{Amount: dec("10.10"), Quantity: dec("3")},
				{Amount: dec("5.00"), Quantity: dec("2")},
			},
			expected: "40.3",
		},
		{
			name: "fractional quantity",
			items: []model.InvoiceItem{
				{Amount: dec("120.00"), Quantity: dec("37.5")},
			},
			expected: "4500",
		},
		{
			name: "classic float trap",
			items: []model.InvoiceItem{
				{Amount: dec("0.1"), Quantity: dec("1")},
				{Amount: dec("0.2"), Quantity: dec("1")},
			},
			expected: "0.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ItemsTotal(tt.items).String())
		})
	}
}

func TestInvoiceService_Create(t *testing.T) {
	year := time.Now().Year()

	t.Run("assigns number and total", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		mockClientRepo := new(MockClientRepository)
		mockCompanyRepo := new(MockCompanyRepository)

		mockClientRepo.On("FindOwned", mock.Anything, uint(2), uint(1)).Return(&model.Client{ID: 2, UserID: 1}, nil)
		mockCompanyRepo.On("FindOwned", mock.Anything, uint(3), uint(1)).Return(&model.Company{ID: 3, UserID: 1}, nil)
		mockInvoiceRepo.On("CountForClientYear", mock.Anything, uint(1), uint(2), year).Return(int64(4), nil)
		mockInvoiceRepo.On("CreateWithItems", mock.Anything, mock.AnythingOfType("*model.Invoice"), mock.AnythingOfType("[]model.InvoiceItem")).Return(nil)

		svc := NewInvoiceService(mockInvoiceRepo, mockClientRepo, mockCompanyRepo)

		invoice, items, err := svc.Create(context.Background(), 1, CreateInvoiceInput{
			ClientID:  2,
			CompanyID: 3,
			Currency:  "USD",
			Items: []ItemInput{
				{Name: "Design", Amount: dec("10.10"), Quantity: dec("3")},
				{Name: "Hosting", Amount: dec("5.00"), Quantity: dec("2")},
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d/005", year), invoice.InvoiceNumber)
		assert.True(t, invoice.Amount.Equal(dec("40.30")), "amount = %s", invoice.Amount)
		assert.Equal(t, model.StatusDraft, invoice.Status)
		assert.Equal(t, model.BillingManual, invoice.BillingReason)
		assert.Len(t, items, 2)

		mockInvoiceRepo.AssertExpectations(t)
		mockClientRepo.AssertExpectations(t)
		mockCompanyRepo.AssertExpectations(t)
	})

	t.Run("caller-supplied number skips the counter", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		mockClientRepo := new(MockClientRepository)
		mockCompanyRepo := new(MockCompanyRepository)

		mockClientRepo.On("FindOwned", mock.Anything, uint(2), uint(1)).Return(&model.Client{ID: 2, UserID: 1}, nil)
		mockCompanyRepo.On("FindOwned", mock.Anything, uint(3), uint(1)).Return(&model.Company{ID: 3, UserID: 1}, nil)
		mockInvoiceRepo.On("CreateWithItems", mock.Anything, mock.AnythingOfType("*model.Invoice"), mock.AnythingOfType("[]model.InvoiceItem")).Return(nil)

		svc := NewInvoiceService(mockInvoiceRepo, mockClientRepo, mockCompanyRepo)

		number := "CUSTOM-7"
		invoice, items, err := svc.Create(context.Background(), 1, CreateInvoiceInput{
			ClientID:      2,
			CompanyID:     3,
			Currency:      "USD",
			InvoiceNumber: &number,
		})

		assert.NoError(t, err)
		assert.Equal(t, "CUSTOM-7", invoice.InvoiceNumber)
		assert.True(t, invoice.Amount.IsZero())
		assert.Empty(t, items)

		mockInvoiceRepo.AssertNotCalled(t, "CountForClientYear", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("number collision surfaces as conflict", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		mockClientRepo := new(MockClientRepository)
		mockCompanyRepo := new(MockCompanyRepository)

		mockClientRepo.On("FindOwned", mock.Anything, uint(2), uint(1)).Return(&model.Client{ID: 2, UserID: 1}, nil)
		mockCompanyRepo.On("FindOwned", mock.Anything, uint(3), uint(1)).Return(&model.Company{ID: 3, UserID: 1}, nil)
		mockInvoiceRepo.On("CountForClientYear", mock.Anything, uint(1), uint(2), year).Return(int64(0), nil)
		mockInvoiceRepo.On("CreateWithItems", mock.Anything, mock.AnythingOfType("*model.Invoice"), mock.AnythingOfType("[]model.InvoiceItem")).Return(gorm.ErrDuplicatedKey)

		svc := NewInvoiceService(mockInvoiceRepo, mockClientRepo, mockCompanyRepo)

		_, _, err := svc.Create(context.Background(), 1, CreateInvoiceInput{
			ClientID:  2,
			CompanyID: 3,
			Currency:  "USD",
		})

		assert.ErrorIs(t, err, apperrors.ErrDuplicateInvoiceNumber)
	})

	t.Run("foreign client reads as missing", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		mockClientRepo := new(MockClientRepository)
		mockCompanyRepo := new(MockCompanyRepository)

		mockClientRepo.On("FindOwned", mock.Anything, uint(99), uint(1)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewInvoiceService(mockInvoiceRepo, mockClientRepo, mockCompanyRepo)

		_, _, err := svc.Create(context.Background(), 1, CreateInvoiceInput{
			ClientID:  99,
			CompanyID: 3,
			Currency:  "USD",
		})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockCompanyRepo.AssertNotCalled(t, "FindOwned", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("negative quantities are rejected", func(t *testing.T) {
		svc := NewInvoiceService(new(MockInvoiceRepository), new(MockClientRepository), new(MockCompanyRepository))

		_, _, err := svc.Create(context.Background(), 1, CreateInvoiceInput{
			ClientID:  2,
			CompanyID: 3,
			Currency:  "USD",
			Items: []ItemInput{
				{Name: "Refund", Amount: dec("10"), Quantity: dec("-1")},
			},
		})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestInvoiceService_AddItem(t *testing.T) {
	mockInvoiceRepo := new(MockInvoiceRepository)
	invoice := &model.Invoice{ID: 10, UserID: 1, Amount: dec("40.30")}

	mockInvoiceRepo.On("FindOwned", mock.Anything, uint(10), uint(1)).Return(invoice, nil)
	mockInvoiceRepo.On("CreateItem", mock.Anything, mock.AnythingOfType("*model.InvoiceItem")).Return(nil)
	mockInvoiceRepo.On("Items", mock.Anything, uint(10)).Return([]model.InvoiceItem{
		{Amount: dec("10.10"), Quantity: dec("3")},
		{Amount: dec("5.00"), Quantity: dec("2")},
		{Amount: dec("7.25"), Quantity: dec("4")},
	}, nil)
	mockInvoiceRepo.On("UpdateAmount", mock.Anything, uint(10), mock.Anything).Return(nil)

	svc := NewInvoiceService(mockInvoiceRepo, new(MockClientRepository), new(MockCompanyRepository))

	updated, err := svc.AddItem(context.Background(), 10, 1, ItemInput{
		Name:     "Support",
		Amount:   dec("7.25"),
		Quantity: dec("4"),
	})

	assert.NoError(t, err)
	assert.True(t, updated.Amount.Equal(dec("69.30")), "amount = %s", updated.Amount)
	assert.Len(t, updated.Items, 3)

	mockInvoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_RemoveItem(t *testing.T) {
	t.Run("recalculates after removal", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		invoice := &model.Invoice{ID: 10, UserID: 1}

		mockInvoiceRepo.On("FindOwned", mock.Anything, uint(10), uint(1)).Return(invoice, nil)
		mockInvoiceRepo.On("DeleteItem", mock.Anything, uint(10), uint(4)).Return(int64(1), nil)
		mockInvoiceRepo.On("Items", mock.Anything, uint(10)).Return([]model.InvoiceItem{}, nil)
		mockInvoiceRepo.On("UpdateAmount", mock.Anything, uint(10), mock.Anything).Return(nil)

		svc := NewInvoiceService(mockInvoiceRepo, new(MockClientRepository), new(MockCompanyRepository))

		updated, err := svc.RemoveItem(context.Background(), 10, 4, 1)
		assert.NoError(t, err)
		assert.True(t, updated.Amount.IsZero())

		mockInvoiceRepo.AssertExpectations(t)
	})

	t.Run("missing item is not found", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		mockInvoiceRepo.On("FindOwned", mock.Anything, uint(10), uint(1)).Return(&model.Invoice{ID: 10, UserID: 1}, nil)
		mockInvoiceRepo.On("DeleteItem", mock.Anything, uint(10), uint(99)).Return(int64(0), nil)

		svc := NewInvoiceService(mockInvoiceRepo, new(MockClientRepository), new(MockCompanyRepository))

		_, err := svc.RemoveItem(context.Background(), 10, 99, 1)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestInvoiceService_RecalculateAmount(t *testing.T) {
	mockInvoiceRepo := new(MockInvoiceRepository)
	mockInvoiceRepo.On("FindOwned", mock.Anything, uint(10), uint(1)).Return(&model.Invoice{ID: 10, UserID: 1}, nil)
	mockInvoiceRepo.On("Items", mock.Anything, uint(10)).Return([]model.InvoiceItem{
		{Amount: dec("19.99"), Quantity: dec("2")},
	}, nil)
	mockInvoiceRepo.On("UpdateAmount", mock.Anything, uint(10), mock.Anything).Return(nil)

	svc := NewInvoiceService(mockInvoiceRepo, new(MockClientRepository), new(MockCompanyRepository))

	amount, err := svc.RecalculateAmount(context.Background(), 10, 1)
	assert.NoError(t, err)
	assert.True(t, amount.Equal(dec("39.98")), "amount = %s", amount)
	mockInvoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Delete(t *testing.T) {
	t.Run("deletes owned invoice", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		mockInvoiceRepo.On("DeleteOwned", mock.Anything, uint(10), uint(1)).Return(int64(1), nil)

		svc := NewInvoiceService(mockInvoiceRepo, new(MockClientRepository), new(MockCompanyRepository))
		assert.NoError(t, svc.Delete(context.Background(), 10, 1))
	})

	t.Run("foreign invoice is not found", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		mockInvoiceRepo.On("DeleteOwned", mock.Anything, uint(10), uint(2)).Return(int64(0), nil)

		svc := NewInvoiceService(mockInvoiceRepo, new(MockClientRepository), new(MockCompanyRepository))
		assert.ErrorIs(t, svc.Delete(context.Background(), 10, 2), apperrors.ErrNotFound)
	})
}
