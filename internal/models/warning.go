package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Warning records one moderation violation for a user. Append-only while
// the user is in good standing; an administrative unsuspend forgives and
// deletes the user's rows, re-arming the escalation counter.
type Warning struct {
	gorm.Model

	UserID   string `gorm:"index;not null" json:"user_id"`
	Category string `gorm:"not null" json:"category"`
	// Content is a snapshot of the offending submission.
	Content    string         `gorm:"type:text" json:"content"`
	Violations pq.StringArray `gorm:"type:text[]" json:"violations"`
}

// Audit log action tags.
const (
	AuditAutoSuspension = "auto_suspension"
	AuditAdminSuspend   = "admin_suspend"
	AuditAdminUnsuspend = "admin_unsuspend"
)

// AuditLog records administrative and automatic account actions.
type AuditLog struct {
	gorm.Model

	Action string `gorm:"index;not null" json:"action"`
	UserID string `gorm:"index" json:"user_id"`
	Detail string `gorm:"type:text" json:"detail"`
}
