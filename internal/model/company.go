package model

import "time"

// Company is an issuing entity owned by one user, referenced by invoices.
type Company struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null;index"`
	Address1  string    `json:"address_1" gorm:"column:address_1;size:255"`
	Address2  string    `json:"address_2" gorm:"column:address_2;size:255"`
	City      string    `json:"city" gorm:"size:255"`
	State     string    `json:"state" gorm:"size:255"`
	ZipCode   string    `json:"zip_code" gorm:"size:32"`
	Country   string    `json:"country" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
