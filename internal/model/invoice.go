package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus is persisted as a smallint with a frozen integer mapping.
type InvoiceStatus int16

const (
	StatusDraft         InvoiceStatus = 0
	StatusOpen          InvoiceStatus = 1
	StatusPaid          InvoiceStatus = 2
	StatusUncollectible InvoiceStatus = 3
	StatusVoid          InvoiceStatus = 4
)

var invoiceStatusLabels = map[InvoiceStatus]string{
	StatusDraft:         "draft",
	StatusOpen:          "open",
	StatusPaid:          "paid",
	StatusUncollectible: "uncollectible",
	StatusVoid:          "void",
}

var invoiceStatusValues = map[string]InvoiceStatus{
	"draft":         StatusDraft,
	"open":          StatusOpen,
	"paid":          StatusPaid,
	"uncollectible": StatusUncollectible,
	"void":          StatusVoid,
}

func (s InvoiceStatus) String() string {
	if label, ok := invoiceStatusLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("status(%d)", int16(s))
}

// MarshalJSON serializes the status under its string label.
func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	label, ok := invoiceStatusLabels[s]
	if !ok {
		return nil, fmt.Errorf("unknown invoice status: %d", int16(s))
	}
	return json.Marshal(label)
}

// UnmarshalJSON parses a status from its string label.
func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	value, ok := invoiceStatusValues[label]
	if !ok {
		return fmt.Errorf("unknown invoice status: %q", label)
	}
	*s = value
	return nil
}

// BillingReason is persisted as a smallint with a frozen integer mapping.
type BillingReason int16

const (
	BillingManual        BillingReason = 0
	BillingContractCycle BillingReason = 1
)

var billingReasonLabels = map[BillingReason]string{
	BillingManual:        "manual",
	BillingContractCycle: "contract_cycle",
}

var billingReasonValues = map[string]BillingReason{
	"manual":         BillingManual,
	"contract_cycle": BillingContractCycle,
}

func (b BillingReason) String() string {
	if label, ok := billingReasonLabels[b]; ok {
		return label
	}
	return fmt.Sprintf("billing_reason(%d)", int16(b))
}

// MarshalJSON serializes the billing reason under its string label.
func (b BillingReason) MarshalJSON() ([]byte, error) {
	label, ok := billingReasonLabels[b]
	if !ok {
		return nil, fmt.Errorf("unknown billing reason: %d", int16(b))
	}
	return json.Marshal(label)
}

// UnmarshalJSON parses a billing reason from its string label.
func (b *BillingReason) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	value, ok := billingReasonValues[label]
	if !ok {
		return fmt.Errorf("unknown billing reason: %q", label)
	}
	*b = value
	return nil
}

// Invoice is the aggregate root for billing. Amount always equals the sum
// of amount x quantity over its items and is recomputed transactionally on
// every item mutation. InvoiceNumber is unique within (user, client); the
// composite index backs the auto-numbering race at the storage level.
type Invoice struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	InvoiceID     uuid.UUID       `json:"invoice_id" gorm:"type:char(36);uniqueIndex;not null"`
	UserID        uint            `json:"user_id" gorm:"not null;index;uniqueIndex:idx_invoice_number,priority:1"`
	ClientID      uint            `json:"client_id" gorm:"not null;uniqueIndex:idx_invoice_number,priority:2"`
	CompanyID     uint            `json:"company_id" gorm:"not null;index"`
	InvoiceNumber string          `json:"invoice_number" gorm:"size:64;not null;uniqueIndex:idx_invoice_number,priority:3"`
	Description   string          `json:"description" gorm:"type:text"`
	Currency      string          `json:"currency" gorm:"size:8;not null"`
	Status        InvoiceStatus   `json:"status" gorm:"type:smallint;not null;default:0"`
	BillingReason BillingReason   `json:"billing_reason" gorm:"type:smallint;not null;default:0"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	InvoiceDate   *time.Time      `json:"invoice_date,omitempty"`
	LastSendDate  *time.Time      `json:"last_send_date,omitempty"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Balance       decimal.Decimal `json:"balance" gorm:"type:decimal(20,2);not null"`
	Discount      decimal.Decimal `json:"discount" gorm:"type:decimal(20,2);not null"`
	Tax           decimal.Decimal `json:"tax" gorm:"type:decimal(20,2);not null"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relations
	Items []InvoiceItem `json:"items,omitempty" gorm:"foreignKey:InvoiceID;references:ID"`
}

// BeforeCreate sets the opaque invoice identifier before inserting.
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.InvoiceID == uuid.Nil {
		i.InvoiceID = uuid.New()
	}
	return nil
}

// InvoiceItem is a single line on an invoice. Amount is the unit price;
// Quantity may be fractional (hours, partial units).
type InvoiceItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	InvoiceID   uint            `json:"invoice_id" gorm:"not null;index"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:decimal(20,2);not null"`
}

// Total returns amount x quantity for this line.
func (it *InvoiceItem) Total() decimal.Decimal {
	return it.Amount.Mul(it.Quantity)
}
