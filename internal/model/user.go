package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role is persisted as a smallint. The integer assignment is a frozen
// contract shared with existing rows; never reorder these constants.
type Role int16

const (
	RoleCustomer  Role = 0
	RoleStaff     Role = 1
	RoleSuperUser Role = 2
)

var roleLabels = map[Role]string{
	RoleCustomer:  "customer",
	RoleStaff:     "staff",
	RoleSuperUser: "superuser",
}

var roleValues = map[string]Role{
	"customer":  RoleCustomer,
	"staff":     RoleStaff,
	"superuser": RoleSuperUser,
}

func (r Role) String() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return fmt.Sprintf("role(%d)", int16(r))
}

// MarshalJSON serializes the role under its string label.
func (r Role) MarshalJSON() ([]byte, error) {
	label, ok := roleLabels[r]
	if !ok {
		return nil, fmt.Errorf("unknown role: %d", int16(r))
	}
	return json.Marshal(label)
}

// UnmarshalJSON parses a role from its string label.
func (r *Role) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	value, ok := roleValues[label]
	if !ok {
		return fmt.Errorf("unknown role: %q", label)
	}
	*r = value
	return nil
}

// User represents an authenticated user in the system.
type User struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Role           Role       `json:"role" gorm:"type:smallint;not null;default:0"`
	Username       string     `json:"username" gorm:"uniqueIndex;size:255;not null"`
	HashedPassword string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	ProfileName    string     `json:"profile_name" gorm:"size:255"`
	ProfileImage   string     `json:"profile_image" gorm:"size:255"`
	LastSignInAt   *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt      time.Time  `json:"joined_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Emails []Email `json:"emails,omitempty" gorm:"foreignKey:UserID"`
}
