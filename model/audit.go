package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEntry records an administrative mutation. Target holds either a
// display label or a client UUID; UUIDs are resolved to names at read time.
// Details is a structured payload whose shape depends on Action.
type AuditEntry struct {
	ID        uint           `gorm:"primarykey"`
	AdminID   string         `gorm:"index;size:36;not null"`
	Action    string         `gorm:"size:32;not null;index"`
	Target    string         `gorm:"size:128;not null"`
	Details   datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (AuditEntry) TableName() string {
	return "admin_audit_log"
}

func (e *AuditEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == 0 {
		e.ID = GenerateID()
	}
	return nil
}
