package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client stores a portal account. Both regular clients and administrators
// live in the same table, distinguished by IsAdmin.
type Client struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"uniqueIndex;size:32;not null"`
	PasswordHash string `gorm:"size:64;not null"`
	Name         string `gorm:"size:128;not null"`
	ReportURL    string `gorm:"size:512;not null"`
	DriveURL     string `gorm:"size:512;not null"`
	IsAdmin      bool   `gorm:"default:false;not null"`
	IsActive     bool   `gorm:"default:true;not null"`
	LogoURL      string `gorm:"size:512"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
