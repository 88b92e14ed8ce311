package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is a bearer token issued on login. Expiry is absolute; a session is
// never extended after creation.
type Session struct {
	ID        uint      `gorm:"primarykey"`
	Token     string    `gorm:"uniqueIndex;size:96;not null"`
	ClientID  string    `gorm:"index;size:36;not null"`
	Client    Client    `gorm:"foreignKey:ClientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	IP        string    `gorm:"size:45;not null"`
	UserAgent string    `gorm:"size:512;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == 0 {
		s.ID = GenerateID()
	}
	return nil
}
