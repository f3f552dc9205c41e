package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a player account. Suspension is account-wide: once set,
// every battle-initiating action for every character the user owns is
// rejected until an administrative unsuspend clears both the flag and the
// warning count.
type User struct {
	ID               string `gorm:"primaryKey" json:"id"`
	DisplayName      string `gorm:"uniqueIndex;not null" json:"display_name"`
	IsSuspended      bool   `json:"is_suspended"`
	SuspensionReason string `json:"suspension_reason,omitempty"`
	WarningCount     int    `json:"warning_count"`
	IsAdmin          bool   `json:"-"`
}

// BeforeCreate generates a new UUID for the user if the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
