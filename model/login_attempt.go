package model

import (
	"time"

	"gorm.io/gorm"
)

// LoginAttempt records every call to the login endpoint, successful or not.
// The username is stored verbatim even when no such account exists. Rows are
// never updated or deleted.
type LoginAttempt struct {
	ID        uint      `gorm:"primarykey"`
	Username  string    `gorm:"size:64;not null;index"`
	Success   bool      `gorm:"not null;index"`
	IP        string    `gorm:"size:45;not null;index"`
	UserAgent string    `gorm:"size:512;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (a *LoginAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == 0 {
		a.ID = GenerateID()
	}
	return nil
}
