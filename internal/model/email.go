package model

import "time"

// Email is a user's email address together with its verification state.
// A user may hold several addresses; each carries its own token.
// Verified only ever transitions from false to true.
type Email struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id" gorm:"not null;index"`
	Address           string    `json:"address" gorm:"size:255;not null;index"`
	VerificationToken string    `json:"-" gorm:"size:64;not null;uniqueIndex"`
	Verified          bool      `json:"verified" gorm:"not null;default:false"`
	TokenGeneratedAt  time.Time `json:"token_generated_at"`
}
